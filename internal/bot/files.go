package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"txtsummarizer/internal/domain"
	"txtsummarizer/internal/upload"

	tgbot "github.com/go-telegram/bot"
)

// FileFetcher downloads documents users sent to the bot.
type FileFetcher struct {
	api        *tgbot.Bot
	httpClient *http.Client
	maxBytes   int64
}

func NewFileFetcher(token string, maxBytes int64, opts ...tgbot.Option) (*FileFetcher, error) {
	opts = append([]tgbot.Option{tgbot.WithSkipGetMe()}, opts...)

	api, err := tgbot.New(strings.TrimSpace(token), opts...)
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	return &FileFetcher{
		api:        api,
		httpClient: &http.Client{},
		maxBytes:   maxBytes,
	}, nil
}

func (f *FileFetcher) Fetch(ctx context.Context, ref domain.FileRef) (upload.File, error) {
	if ref.Size > f.maxBytes {
		return upload.File{}, fmt.Errorf("file is %d bytes, the limit is %d", ref.Size, f.maxBytes)
	}

	file, err := f.api.GetFile(ctx, &tgbot.GetFileParams{FileID: ref.FileID})
	if err != nil {
		return upload.File{}, fmt.Errorf("get file: %w", err)
	}

	if file.FilePath == "" {
		return upload.File{}, errors.New("file path is missing")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.api.FileDownloadLink(file), nil)
	if err != nil {
		return upload.File{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return upload.File{}, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return upload.File{}, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return upload.File{}, fmt.Errorf("read file: %w", err)
	}

	if int64(len(data)) > f.maxBytes {
		return upload.File{}, fmt.Errorf("file exceeds the limit of %d bytes", f.maxBytes)
	}

	return upload.File{Bytes: data, MimeType: ref.MimeType}, nil
}
