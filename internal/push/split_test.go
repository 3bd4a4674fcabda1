package push

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ParagraphBoundaries(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 6; i++ {
		paragraphs = append(paragraphs, strings.Repeat(string(rune('a'+i)), 798))
	}
	text := strings.Join(paragraphs, "\n\n")
	require.Greater(t, utf8.RuneCountInString(text), 4000)

	chunks := SplitText(text, 2000)

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 2000, "chunk %d", i)
		assert.False(t, strings.HasPrefix(c, "\n"), "chunk %d", i)
	}
	assert.Equal(t, paragraphs[0]+"\n\n"+paragraphs[1], chunks[0])
	assert.Equal(t, text, strings.Join(chunks, "\n\n"))
}

func TestSplitText_FallsBackToLineBreak(t *testing.T) {
	// The only paragraph break sits in the first 30% of the window.
	text := strings.Repeat("a", 10) + "\n\n" + strings.Repeat("b", 50) + "\n" + strings.Repeat("c", 60)

	chunks := SplitText(text, 100)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 10)+"\n\n"+strings.Repeat("b", 50), chunks[0])
	assert.Equal(t, strings.Repeat("c", 60), chunks[1])
}

func TestSplitText_HardCut(t *testing.T) {
	text := strings.Repeat("x", 250)

	chunks := SplitText(text, 100)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 100)
	assert.Len(t, chunks[1], 100)
	assert.Len(t, chunks[2], 50)
}

func TestSplitText_CountsRunes(t *testing.T) {
	text := strings.Repeat("新闻", 150)

	chunks := SplitText(text, 100)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c))
		assert.Equal(t, 100, utf8.RuneCountInString(c))
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitText_Short(t *testing.T) {
	assert.Equal(t, []string{"hello"}, SplitText("hello", 100))
	assert.Nil(t, SplitText("", 100))
}
