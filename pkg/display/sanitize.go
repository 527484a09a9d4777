package display

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicyOnce sync.Once
	richPolicy     *bluemonday.Policy

	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// SafeHTML sanitises schema-provided markup (section titles, description
// labels) for embedding in HTML pages.
func SafeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(richSanitizer().Sanitize(trimmed))
}

// PlainText strips all markup, for terminals and tables.
func PlainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := plainSanitizer().Sanitize(strings.NewReplacer("<br>", " ", "<br/>", " ", "</p>", "</p> ").Replace(trimmed))
	return strings.Join(strings.Fields(html.UnescapeString(cleaned)), " ")
}

func richSanitizer() *bluemonday.Policy {
	richPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"h1", "h2", "h3", "h4", "h5", "h6", "p", "br", "hr",
			"b", "strong", "i", "em", "u", "small", "span", "div",
			"ul", "ol", "li", "blockquote", "code", "pre",
		)
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		policy.AllowAttrs("class").Globally()
		richPolicy = policy
	})
	return richPolicy
}

func plainSanitizer() *bluemonday.Policy {
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return plainPolicy
}
