// Package bullets turns a model summary into a list of key points.
package bullets

import "strings"

const (
	// Separator is a heuristic sentence boundary. Abbreviations and decimals
	// followed by a space are split as well.
	Separator = ". "
	Marker    = "• "

	terminal = "."
)

// Document is an ordered list of sentences, each ending with a period.
type Document []string

func Format(summary string) Document {
	var doc Document

	for _, fragment := range strings.Split(summary, Separator) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}

		if !strings.HasSuffix(fragment, terminal) {
			fragment += terminal
		}

		doc = append(doc, fragment)
	}

	return doc
}

func (d Document) Lines() []string {
	lines := make([]string, 0, len(d))
	for _, sentence := range d {
		lines = append(lines, Marker+sentence)
	}

	return lines
}

// Blob is the plain-text export: every bullet followed by a blank line.
func (d Document) Blob() string {
	var b strings.Builder
	for _, line := range d.Lines() {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	return b.String()
}
