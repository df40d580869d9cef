package app

import (
	"fmt"
	"strings"

	"github.com/deusflow/goodnews/internal/news"
	"github.com/deusflow/goodnews/internal/snippet"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// FormatSelection renders articles for a terminal, snippets cut to snippetLen runes.
func FormatSelection(items []news.Article, snippetLen int) string {
	var b strings.Builder

	b.WriteString("☀️ Good News\n")
	b.WriteString(rule + "\n\n")

	if len(items) == 0 {
		b.WriteString("No news right now. Check back soon.\n")
	}
	for i, a := range items {
		b.WriteString(formatArticle(a, i+1, snippetLen))
	}

	b.WriteString(rule + "\n")
	return b.String()
}

func formatArticle(a news.Article, number, snippetLen int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d. %s\n", number, a.Title)
	fmt.Fprintf(&b, "   %s", a.Source)
	if t := a.PublishedAt(); !t.IsZero() {
		fmt.Fprintf(&b, " · %s", t.UTC().Format("2 Jan 2006 15:04"))
	}
	b.WriteString("\n")

	if s := snippet.Truncate(strings.TrimSpace(a.ContentSnippet), snippetLen); s != "" {
		fmt.Fprintf(&b, "   %s\n", s)
	}
	fmt.Fprintf(&b, "   %s\n\n", a.Link)

	return b.String()
}
