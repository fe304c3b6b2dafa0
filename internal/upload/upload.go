package upload

import (
	"fmt"
	"mime"
	"strings"
	"txtsummarizer/internal/domain"
)

const PlainTextMimeType = "text/plain"

// File is an uploaded document held only for the duration of one request.
type File struct {
	Bytes    []byte
	MimeType string
}

// Validate trusts the declared type; the content itself is never sniffed.
func Validate(mimeType string) error {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return fmt.Errorf("%w: type is not declared", domain.ErrRejectedUpload)
	}

	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return fmt.Errorf("%w: parse %q: %w", domain.ErrRejectedUpload, mimeType, err)
	}

	if mediaType != PlainTextMimeType {
		return fmt.Errorf("%w: got %q", domain.ErrRejectedUpload, mediaType)
	}

	return nil
}
