package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"feed_digest/internal/domain"
	"feed_digest/internal/tokens"
)

// SummaryTokenBudget caps each article's summary in the prompt.
const SummaryTokenBudget = 1000

const (
	placeholderContent    = "{content}"
	placeholderTargetLang = "{targetLang}"
)

const defaultTemplate = `You are a professional news editor. Turn the articles below into a digest.

Requirements:
1. Write the whole digest in {targetLang}.
2. Open with a 2-3 sentence overview of the most important developments.
3. Group the articles by topic and merge articles that cover the same story.
4. Use concise markdown bullet points and mention the source of each point.
5. Output the digest directly, with no preamble or closing remarks.

{content}`

type PreparedArticle struct {
	Index       int
	Title       string
	FeedTitle   string
	PublishedAt time.Time
	Summary     string
	URL         string
}

type PromptOptions struct {
	TargetLang     string
	ScopeLabel     string
	CustomTemplate string
}

// PrepareArticles numbers entries from 1, converts their HTML to plain text
// and truncates each summary to SummaryTokenBudget. Dates are shown in loc.
func PrepareArticles(entries []domain.Entry, loc *time.Location) []PreparedArticle {
	if loc == nil {
		loc = time.UTC
	}

	prepared := make([]PreparedArticle, 0, len(entries))
	for i, e := range entries {
		prepared = append(prepared, PreparedArticle{
			Index:       i + 1,
			Title:       e.Title,
			FeedTitle:   e.FeedTitle,
			PublishedAt: e.PublishedAt.In(loc),
			Summary:     tokens.EstimateTruncate(PlainText(e.Content), SummaryTokenBudget),
			URL:         e.URL,
		})
	}
	return prepared
}

// PlainText strips markup and collapses whitespace.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}

	doc.Find("script, style").Remove()
	doc.Find("p, div, li, br, h1, h2, h3, h4, h5, h6, blockquote, pre, tr").AfterHtml(" ")

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// BuildPrompt renders the article list into the user's template, or the
// default editor template when none is set. A custom template without a
// {content} placeholder gets one appended so the articles are never lost.
func BuildPrompt(articles []PreparedArticle, opts PromptOptions) string {
	template := defaultTemplate
	if strings.TrimSpace(opts.CustomTemplate) != "" {
		template = opts.CustomTemplate
		if !strings.Contains(template, placeholderContent) {
			template += "\n\n" + placeholderContent
		}
	}

	content := renderContent(articles, opts.ScopeLabel)

	prompt := strings.ReplaceAll(template, placeholderTargetLang, opts.TargetLang)
	return strings.ReplaceAll(prompt, placeholderContent, content)
}

func renderContent(articles []PreparedArticle, scopeLabel string) string {
	var sb strings.Builder
	if scopeLabel != "" {
		fmt.Fprintf(&sb, "Articles from %s (%d):\n\n", scopeLabel, len(articles))
	} else {
		fmt.Fprintf(&sb, "Articles (%d):\n\n", len(articles))
	}

	for i, a := range articles {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "### %d. %s\n", a.Index, a.Title)
		fmt.Fprintf(&sb, "Source: %s\n", a.FeedTitle)
		fmt.Fprintf(&sb, "Date: %s\n", formatDate(a.PublishedAt))
		fmt.Fprintf(&sb, "Summary: %s\n", a.Summary)
		fmt.Fprintf(&sb, "Link: %s", a.URL)
	}
	return sb.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02 15:04")
}
