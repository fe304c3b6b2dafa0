package domain

import "time"

// FileRef points at a document a chat has selected. Bytes are fetched
// only when summarization is triggered.
type FileRef struct {
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

type Session struct {
	ChatID    int64
	State     State
	File      *FileRef
	LastError string
	UpdatedAt time.Time
}

type SummaryRecord struct {
	ID        int64
	ChatID    int64
	FileName  string
	ModelID   string
	Bullets   []string
	CreatedAt time.Time
}
