// Package markdown builds Telegram MarkdownV2 message bodies.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const (
	mdV2SpecialChars   = `\_*[](){}#|!+-=~>.` + "`"
	mdV2PreSpecialChar = `\` + "`"

	// MaxMessageLength is the Bot API limit for a message text, in characters.
	MaxMessageLength = 4096
)

func EscapeV2(input string) string {
	return escape(input, mdV2SpecialCharLookup(mdV2SpecialChars))
}

// Pre wraps text in a code block; only backslashes and backticks are escaped there.
func Pre(text string) string {
	return "```\n" + escape(text, mdV2SpecialCharLookup(mdV2PreSpecialChar)) + "\n```"
}

func Bold(text string) string {
	return "*" + EscapeV2(text) + "*"
}

// ExpandableQuote renders text as a collapsed block quote the reader can expand.
func ExpandableQuote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	var b strings.Builder
	for i, line := range lines {
		if i == 0 {
			b.WriteString("**")
		} else {
			b.WriteString("\n")
		}
		b.WriteString(">")
		b.WriteString(EscapeV2(line))
	}
	b.WriteString("||")

	return b.String()
}

// Chunk packs blocks into messages no longer than limit characters, joining
// blocks with a newline. A block longer than limit is split on rune boundaries.
func Chunk(blocks []string, limit int) []string {
	var messages []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			messages = append(messages, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, block := range blocks {
		for _, part := range splitRunes(block, limit) {
			partLen := utf8.RuneCountInString(part)

			sepLen := 0
			if currentLen > 0 {
				sepLen = 1
			}

			if currentLen+sepLen+partLen > limit {
				flush()
				sepLen = 0
			}

			if sepLen > 0 {
				current.WriteString("\n")
			}
			current.WriteString(part)
			currentLen += sepLen + partLen
		}
	}
	flush()

	return messages
}

func splitRunes(s string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return []string{s}
	}

	var parts []string
	count, start := 0, 0
	for i := range s {
		if count == limit {
			parts = append(parts, s[start:i])
			start, count = i, 0
		}
		count++
	}

	return append(parts, s[start:])
}

func escape(input string, lookup [256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func mdV2SpecialCharLookup(chars string) [256]bool {
	var m [256]bool
	for _, c := range []byte(chars) {
		m[c] = true
	}
	return m
}
