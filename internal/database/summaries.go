package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"txtsummarizer/internal/domain"
)

func (d *Database) AddSummary(ctx context.Context, record domain.SummaryRecord) error {
	bullets, err := json.Marshal(record.Bullets)
	if err != nil {
		return fmt.Errorf("marshal bullets: %w", err)
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `insert into summaries (chat_id, file_name, model_id, bullets, created_at)
	values (?, ?, ?, ?, ?)`

	_, err = d.db.ExecContext(ctx, query,
		record.ChatID,
		record.FileName,
		record.ModelID,
		string(bullets),
		createdAt.Unix(),
	)

	return err
}

// LastSummary returns nil without error when the chat has no history.
func (d *Database) LastSummary(ctx context.Context, chatID int64) (*domain.SummaryRecord, error) {
	query := `select id, file_name, model_id, bullets, created_at
	from summaries
	where chat_id = ?
	order by created_at desc, id desc
	limit 1`

	var (
		record    domain.SummaryRecord
		bullets   string
		createdAt int64
	)

	err := d.db.QueryRowContext(ctx, query, chatID).
		Scan(&record.ID, &record.FileName, &record.ModelID, &bullets, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	if err = json.Unmarshal([]byte(bullets), &record.Bullets); err != nil {
		return nil, fmt.Errorf("unmarshal bullets: %w", err)
	}

	record.ChatID = chatID
	record.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &record, nil
}

func (d *Database) DeleteSummariesBefore(ctx context.Context, before time.Time) (int64, error) {
	query := "delete from summaries where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, before.Unix())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
