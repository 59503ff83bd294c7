package format

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// botPolicy allows the markup Format emits and nothing else. Model output is
// not escaped before formatting, so anything outside this set is dropped here.
func botPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(
			"p", "br", "strong", "em", "del",
			"pre", "code",
			"h1", "h2", "h3",
			"ul", "ol", "li",
			"blockquote", "hr",
		)
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-\w+$`)).OnElements("code")

		p.AllowAttrs("href").OnElements("a")
		p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		p.AllowURLSchemes("http", "https", "mailto")
		p.AllowRelativeURLs(true)
		p.RequireParseableURLs(true)
		p.RequireNoReferrerOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// Sanitize strips every element and attribute Format does not produce
func Sanitize(htmlText string) string {
	return botPolicy().Sanitize(htmlText)
}

// Render formats bot text and sanitizes the result
func Render(text string) string {
	return Sanitize(Format(text))
}
