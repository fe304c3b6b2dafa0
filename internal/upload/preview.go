package upload

const (
	PreviewLength   = 500
	truncatedMarker = "..."
)

// Preview returns the first PreviewLength characters of text, marked when cut.
func Preview(text string) string {
	count := 0
	for i := range text {
		if count == PreviewLength {
			return text[:i] + truncatedMarker
		}
		count++
	}

	return text
}
