package upload

import (
	"fmt"
	"txtsummarizer/internal/domain"
	"unicode/utf8"
)

func Decode(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}

	return "", fmt.Errorf("%w: invalid UTF-8 at byte %d", domain.ErrDecode, firstInvalidOffset(b))
}

func firstInvalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}

	return len(b)
}
