// Package tokens approximates LLM token cost without a real tokenizer.
//
// Latin text averages roughly four characters per token while CJK text
// costs more than one token per character, so each rune is weighted by
// script. The numbers are estimates for sizing prompts, never exact counts.
package tokens

const (
	cjkCost   = 1.6
	otherCost = 0.3

	// Ellipsis is appended to truncated text.
	Ellipsis = "..."
)

func runeCost(r rune) float64 {
	if r >= 0x4E00 && r <= 0x9FFF {
		return cjkCost
	}
	return otherCost
}

// Estimate returns the approximate token cost of text.
func Estimate(text string) float64 {
	var total float64
	for _, r := range text {
		total += runeCost(r)
	}
	return total
}

// EstimateTruncate cuts text before the rune at which the running estimate
// reaches maxTokens and appends Ellipsis. Text that stays under the budget
// is returned unchanged.
func EstimateTruncate(text string, maxTokens int) string {
	if text == "" {
		return ""
	}

	budget := float64(maxTokens)
	var total float64
	for i, r := range text {
		total += runeCost(r)
		if total >= budget {
			return text[:i] + Ellipsis
		}
	}
	return text
}
