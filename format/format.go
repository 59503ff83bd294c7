// Package format converts the constrained markdown dialect produced by the
// chat backend into HTML for bot messages.
//
// The conversion is an ordered pipeline of rewrite stages. Each stage works on
// the output of the previous one, so the order is part of the contract: later
// patterns must never re-match markup produced by earlier stages. Code spans
// are escaped and set aside by the first two stages and only put back once
// every other stage has run.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Stage is one named rewrite step of the pipeline
type Stage struct {
	Name  string
	Apply func(d *Document)
}

// Document is the text being rewritten plus the code fragments that have been
// set aside behind placeholders.
type Document struct {
	Text  string
	stash []string
}

const (
	stashOpen  = "\uE000"
	stashClose = "\uE001"
)

var (
	stashRef = regexp.MustCompile(stashOpen + `(\d+)` + stashClose)

	// Input must not be able to forge a placeholder
	stashMarks = strings.NewReplacer(stashOpen, "", stashClose, "")
)

// Stash stores an already rendered fragment and returns the placeholder that
// stands for it until Restore runs.
func (d *Document) Stash(fragment string) string {
	d.stash = append(d.stash, fragment)
	return fmt.Sprintf("%s%d%s", stashOpen, len(d.stash)-1, stashClose)
}

// Restore replaces every placeholder by its stashed fragment
func (d *Document) Restore() {
	if len(d.stash) == 0 {
		return
	}
	d.Text = replaceSubmatchFunc(stashRef, d.Text, func(groups []string) string {
		i, err := strconv.Atoi(groups[1])
		if err != nil || i >= len(d.stash) {
			return groups[0]
		}
		return d.stash[i]
	})
}

// Pipeline is the default stage order
var Pipeline = []Stage{
	{Name: "fenced-code", Apply: fencedCode},
	{Name: "inline-code", Apply: inlineCode},
	{Name: "bold", Apply: bold},
	{Name: "italic", Apply: italic},
	{Name: "strike", Apply: strike},
	{Name: "link", Apply: link},
	{Name: "headers", Apply: headers},
	{Name: "bullets", Apply: bullets},
	{Name: "numbered", Apply: numbered},
	{Name: "blockquote", Apply: blockquote},
	{Name: "rule", Apply: rule},
	{Name: "breaks", Apply: breaks},
	{Name: "restore-code", Apply: func(d *Document) { d.Restore() }},
	{Name: "paragraph", Apply: paragraph},
	{Name: "drop-empty", Apply: dropEmpty},
}

// Format converts markdown text to HTML. It is not idempotent: formatting
// already formatted output wraps it again.
func Format(text string) string {
	return Run(Pipeline, text)
}

// Run applies the stages in order
func Run(stages []Stage, text string) string {
	d := &Document{Text: stashMarks.Replace(text)}
	for _, s := range stages {
		s.Apply(d)
	}
	return d.Text
}

// StageNames lists the names of the default pipeline in order
func StageNames() []string {
	names := make([]string, len(Pipeline))
	for i, s := range Pipeline {
		names[i] = s.Name
	}
	return names
}

// replaceSubmatchFunc is regexp.ReplaceAllStringFunc with access to the
// capture groups of each match. Unmatched optional groups are empty strings.
func replaceSubmatchFunc(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = s[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
