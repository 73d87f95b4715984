// Package sanitize strips disallowed markup from user-submitted titles,
// post bodies and comments before they are persisted.
package sanitize

import "github.com/microcosm-cc/bluemonday"

type Sanitizer struct {
	policy *bluemonday.Policy
}

// New builds the policy used for rich-text post content: simple formatting
// tags survive, scripts and event handlers do not.
func New() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"b", "i", "u", "s", "em", "strong",
		"p", "br", "span",
		"ul", "ol", "li",
		"blockquote", "code", "pre",
		"h1", "h2", "h3",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	return &Sanitizer{policy: p}
}

// NewWithRules builds a policy from explicit tag/attribute allow-lists.
func NewWithRules(allowedTags []string, allowedAttrs map[string][]string) *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(allowedTags...)
	for tag, attrs := range allowedAttrs {
		p.AllowAttrs(attrs...).OnElements(tag)
	}
	return &Sanitizer{policy: p}
}

// NewStrict strips all markup. Used for titles and plain-text fields.
func NewStrict() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
