package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feed_digest/internal/domain"
	"feed_digest/internal/tokens"
)

func sampleArticles() []PreparedArticle {
	return []PreparedArticle{
		{
			Index:       1,
			Title:       "Go 1.25 released",
			FeedTitle:   "Go Blog",
			PublishedAt: time.Date(2024, 8, 13, 16, 0, 0, 0, time.UTC),
			Summary:     "New release.",
			URL:         "https://go.dev/blog/go1.25",
		},
		{
			Index:     2,
			Title:     "Untimed",
			FeedTitle: "Misc",
			Summary:   "No date.",
			URL:       "https://example.com/2",
		},
	}
}

func TestBuildPrompt_DefaultTemplate(t *testing.T) {
	prompt := BuildPrompt(sampleArticles(), PromptOptions{TargetLang: "German", ScopeLabel: "Tech"})

	assert.Contains(t, prompt, "professional news editor")
	assert.Contains(t, prompt, "Write the whole digest in German.")
	assert.Contains(t, prompt, "Articles from Tech (2):")
	assert.Contains(t, prompt, "### 1. Go 1.25 released\nSource: Go Blog\nDate: 2024-08-13 16:00\nSummary: New release.\nLink: https://go.dev/blog/go1.25")
	assert.Contains(t, prompt, "Date: unknown")
	assert.NotContains(t, prompt, placeholderContent)
	assert.NotContains(t, prompt, placeholderTargetLang)
}

func TestBuildPrompt_CustomTemplate(t *testing.T) {
	prompt := BuildPrompt(sampleArticles(), PromptOptions{
		TargetLang:     "French",
		CustomTemplate: "Résumé en {targetLang}:\n{content}\nFin.",
	})

	assert.True(t, strings.HasPrefix(prompt, "Résumé en French:\nArticles (2):"))
	assert.True(t, strings.HasSuffix(prompt, "\nFin."))
}

func TestBuildPrompt_CustomTemplateWithoutPlaceholder(t *testing.T) {
	prompt := BuildPrompt(sampleArticles(), PromptOptions{
		TargetLang:     "English",
		CustomTemplate: "Summarize briefly in {targetLang}.",
	})

	assert.True(t, strings.HasPrefix(prompt, "Summarize briefly in English.\n\nArticles (2):"))
	assert.Contains(t, prompt, "### 2. Untimed")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	opts := PromptOptions{TargetLang: "English"}
	assert.Equal(t, BuildPrompt(sampleArticles(), opts), BuildPrompt(sampleArticles(), opts))
}

func TestPlainText(t *testing.T) {
	html := `<div><h1>Title</h1><p>First   paragraph &amp; more.</p><script>alert(1)</script><ul><li>one</li><li>two</li></ul></div>`

	assert.Equal(t, "Title First paragraph & more. one two", PlainText(html))
	assert.Equal(t, "", PlainText("   "))
	assert.Equal(t, "plain text", PlainText("plain\n\ttext"))
}

func TestPrepareArticles(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 2000) + "</p>"
	published := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	prepared := PrepareArticles([]domain.Entry{
		{Title: "A", Content: "<b>short</b>", FeedTitle: "F", PublishedAt: published, URL: "u1"},
		{Title: "B", Content: long, FeedTitle: "F", PublishedAt: published, URL: "u2"},
	}, tokyo)

	require.Len(t, prepared, 2)
	assert.Equal(t, 1, prepared[0].Index)
	assert.Equal(t, 2, prepared[1].Index)
	assert.Equal(t, "short", prepared[0].Summary)
	assert.Equal(t, 2, prepared[0].PublishedAt.Day())
	assert.True(t, strings.HasSuffix(prepared[1].Summary, tokens.Ellipsis))
	assert.Less(t, tokens.Estimate(prepared[1].Summary), float64(SummaryTokenBudget)+1)
}
