package summarizer

import (
	"fmt"
	"strings"
)

const (
	// Chat models count words, not encoder tokens; roughly three words per four tokens.
	wordsPerTokenNumerator   = 3
	wordsPerTokenDenominator = 4

	instructionsTemplate = `Summarize the uploaded text as a few plain declarative sentences.

Rules:
- Between %d and %d words in total.
- Every sentence ends with a period followed by a space, like a news abstract.
- No lists, no headings, no markdown, no preamble.
- Keep names, dates and numbers that matter.
- Write in the same language as the input.`
)

func instructions(req Request) string {
	return fmt.Sprintf(instructionsTemplate, tokensToWords(req.MinLength), tokensToWords(req.MaxLength))
}

func userPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Text:\n")
	b.WriteString(req.Text)

	return b.String()
}

func tokensToWords(tokens int) int {
	return max(tokens*wordsPerTokenNumerator/wordsPerTokenDenominator, 1)
}
