// Package snippet turns feed HTML fragments into short plain-text snippets.
package snippet

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromHTML returns the visible text of an HTML fragment with whitespace
// collapsed. Entities are decoded. Plain text passes through unchanged apart
// from whitespace.
func FromHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}
	doc.Find("script, style, noscript, iframe").Remove()

	// Block elements run together in Text(); pad them so words stay apart.
	doc.Find("p, div, br, li, h1, h2, h3, h4, h5, h6, blockquote, figcaption").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return collapse(doc.Text())
}

// Truncate shortens s to at most n runes, ending in "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return strings.TrimRight(string(runes[:n-3]), " ") + "..."
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
