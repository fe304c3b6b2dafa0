package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"txtsummarizer/internal/domain"
)

func (d *Database) GetSession(ctx context.Context, chatID int64) (domain.Session, error) {
	query := `select state, file_id, file_name, mime_type, file_size, last_error, updated_at
	from sessions
	where chat_id = ?`

	var (
		state     string
		fileID    sql.NullString
		fileName  sql.NullString
		mimeType  sql.NullString
		fileSize  sql.NullInt64
		lastError string
		updatedAt int64
	)

	err := d.db.QueryRowContext(ctx, query, chatID).
		Scan(&state, &fileID, &fileName, &mimeType, &fileSize, &lastError, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{ChatID: chatID, State: domain.StateIdle}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to scan row: %w", err)
	}

	session := domain.Session{
		ChatID:    chatID,
		State:     domain.ParseState(state),
		LastError: lastError,
		UpdatedAt: time.Unix(updatedAt, 0).UTC(),
	}

	if fileID.Valid && fileID.String != "" {
		session.File = &domain.FileRef{
			FileID:   fileID.String,
			FileName: fileName.String,
			MimeType: mimeType.String,
			Size:     fileSize.Int64,
		}
	}

	return session, nil
}

func (d *Database) SaveSession(ctx context.Context, session domain.Session) error {
	query := `insert into sessions (chat_id, state, file_id, file_name, mime_type, file_size, last_error, updated_at)
	values (?, ?, ?, ?, ?, ?, ?, ?)
	on conflict (chat_id) do update
	set state = excluded.state,
	file_id = excluded.file_id,
	file_name = excluded.file_name,
	mime_type = excluded.mime_type,
	file_size = excluded.file_size,
	last_error = excluded.last_error,
	updated_at = excluded.updated_at`

	var fileID, fileName, mimeType sql.NullString
	var fileSize sql.NullInt64

	if f := session.File; f != nil {
		fileID = sql.NullString{String: f.FileID, Valid: true}
		fileName = sql.NullString{String: f.FileName, Valid: true}
		mimeType = sql.NullString{String: f.MimeType, Valid: true}
		fileSize = sql.NullInt64{Int64: f.Size, Valid: true}
	}

	updatedAt := session.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := d.db.ExecContext(ctx, query,
		session.ChatID,
		string(session.State),
		fileID,
		fileName,
		mimeType,
		fileSize,
		session.LastError,
		updatedAt.Unix(),
	)

	return err
}

// ResetRunningSessions returns sessions interrupted mid-summary to Ready.
func (d *Database) ResetRunningSessions(ctx context.Context) (int64, error) {
	query := "update sessions set state = ? where state = ?"

	res, err := d.db.ExecContext(ctx, query, string(domain.StateReady), string(domain.StateRunning))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// ExpireIdleSessions drops file references of sessions untouched since before.
// Running sessions are left alone.
func (d *Database) ExpireIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	query := `update sessions
	set state = ?, file_id = null, file_name = null, mime_type = null, file_size = null, last_error = ''
	where updated_at < ? and state not in (?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		string(domain.StateIdle),
		before.Unix(),
		string(domain.StateIdle),
		string(domain.StateRunning),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
