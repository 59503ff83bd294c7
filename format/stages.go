package format

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var (
	fencedCodeRe = regexp.MustCompile("```(\\w+)?\\n?([\\s\\S]*?)```")
	inlineCodeRe = regexp.MustCompile("`([^`\\n]+)`")

	boldStarRe  = regexp.MustCompile(`\*\*(.*?)\*\*`)
	boldUnderRe = regexp.MustCompile(`__(.*?)__`)
	emStarRe    = regexp.MustCompile(`\*([^*\n]+)\*`)
	emUnderRe   = regexp.MustCompile(`_([^_\n]+)_`)
	strikeRe    = regexp.MustCompile(`~~(.*?)~~`)

	linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	h3Re = regexp.MustCompile(`(?m)^### (.*)$`)
	h2Re = regexp.MustCompile(`(?m)^## (.*)$`)
	h1Re = regexp.MustCompile(`(?m)^# (.*)$`)

	bulletRe   = regexp.MustCompile(`^[\-\*] (.+)$`)
	numberedRe = regexp.MustCompile(`^\d+\. (.+)$`)

	quoteRe = regexp.MustCompile(`(?m)^> (.+)$`)
	ruleRe  = regexp.MustCompile(`(?m)^(---|\*\*\*)$`)

	blockStartRe = regexp.MustCompile(`^<(pre|h[1-6]|ul|ol|li|blockquote|hr|p)[\s>]`)
)

func fencedCode(d *Document) {
	d.Text = replaceSubmatchFunc(fencedCodeRe, d.Text, func(g []string) string {
		class := ""
		if g[1] != "" {
			class = ` class="language-` + g[1] + `"`
		}
		return d.Stash("<pre><code" + class + ">" + html.EscapeString(strings.TrimSpace(g[2])) + "</code></pre>")
	})
}

func inlineCode(d *Document) {
	d.Text = replaceSubmatchFunc(inlineCodeRe, d.Text, func(g []string) string {
		return d.Stash("<code>" + html.EscapeString(g[1]) + "</code>")
	})
}

func bold(d *Document) {
	d.Text = boldStarRe.ReplaceAllString(d.Text, "<strong>$1</strong>")
	d.Text = boldUnderRe.ReplaceAllString(d.Text, "<strong>$1</strong>")
}

func italic(d *Document) {
	d.Text = emStarRe.ReplaceAllString(d.Text, "<em>$1</em>")
	d.Text = emUnderRe.ReplaceAllString(d.Text, "<em>$1</em>")
}

func strike(d *Document) {
	d.Text = strikeRe.ReplaceAllString(d.Text, "<del>$1</del>")
}

// link opens targets in a new browsing context without leaking the opener or
// the referrer. Targets with a scheme other than http, https or mailto are left
// as plain text.
func link(d *Document) {
	d.Text = replaceSubmatchFunc(linkRe, d.Text, func(g []string) string {
		href, ok := safeHref(g[2])
		if !ok {
			return g[0]
		}
		return `<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">` + g[1] + `</a>`
	})
}

func safeHref(raw string) (string, bool) {
	href := strings.TrimSpace(raw)
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return href, true
	}
	return "", false
}

func headers(d *Document) {
	d.Text = h3Re.ReplaceAllString(d.Text, "<h3>$1</h3>")
	d.Text = h2Re.ReplaceAllString(d.Text, "<h2>$1</h2>")
	d.Text = h1Re.ReplaceAllString(d.Text, "<h1>$1</h1>")
}

// bullets turns every line starting with "- " or "* " into a list item, even
// when the line was meant as prose. Contiguous items share one <ul>.
func bullets(d *Document) {
	d.Text = wrapListRuns(d.Text, bulletRe, "ul")
}

func numbered(d *Document) {
	d.Text = wrapListRuns(d.Text, numberedRe, "ol")
}

func wrapListRuns(text string, item *regexp.Regexp, container string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, "<"+container+">"+strings.Join(run, "")+"</"+container+">")
		run = run[:0]
	}

	for _, line := range lines {
		if m := item.FindStringSubmatch(line); m != nil {
			run = append(run, "<li>"+m[1]+"</li>")
			continue
		}
		flush()
		out = append(out, line)
	}
	flush()
	return strings.Join(out, "\n")
}

func blockquote(d *Document) {
	d.Text = quoteRe.ReplaceAllString(d.Text, "<blockquote>$1</blockquote>")
}

func rule(d *Document) {
	d.Text = ruleRe.ReplaceAllString(d.Text, "<hr>")
}

func breaks(d *Document) {
	d.Text = strings.ReplaceAll(d.Text, "\n\n", "</p><p>")
	d.Text = strings.ReplaceAll(d.Text, "\n", "<br>")
}

func paragraph(d *Document) {
	if !blockStartRe.MatchString(d.Text) {
		d.Text = "<p>" + d.Text + "</p>"
	}
}

func dropEmpty(d *Document) {
	d.Text = strings.ReplaceAll(d.Text, "<p></p>", "")
}
