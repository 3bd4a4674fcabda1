package push

import (
	"strings"
	"unicode/utf8"
)

// minSplitRatio keeps chunks from degenerating: a boundary found in the
// first 30% of the window is ignored in favour of the next fallback.
const minSplitRatio = 0.3

// SplitText breaks text into chunks of at most maxLen runes. It cuts at
// the last paragraph break inside the window, then the last line break,
// then hard at maxLen. Newlines at the start of the remainder are dropped.
func SplitText(text string, maxLen int) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return []string{text}
	}

	minCut := int(float64(maxLen) * minSplitRatio)

	var chunks []string
	for len(runes) > maxLen {
		window := string(runes[:maxLen])

		cut := lastRuneIndex(window, "\n\n")
		if cut < minCut {
			cut = lastRuneIndex(window, "\n")
		}
		if cut < minCut || cut <= 0 {
			cut = maxLen
		}

		chunks = append(chunks, string(runes[:cut]))

		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == '\n' {
			runes = runes[1:]
		}
	}

	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func lastRuneIndex(s, sep string) int {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}
