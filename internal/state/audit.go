package state

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/yubzen/fileops/internal/engine"
	"github.com/yubzen/fileops/internal/ops"
	"github.com/yubzen/fileops/internal/scrub"
)

const excerptLimit = 2000

// BatchRecord is one executed (or rejected) batch in the audit log.
type BatchRecord struct {
	ID              int64
	CreatedAt       time.Time
	Status          string
	ResponseExcerpt string
	CreatedCount    int
	EditedCount     int
	DeletedCount    int
	FailedCount     int
	Detail          string
}

// RecordBatch persists one batch outcome. The response excerpt is
// scrubbed of secret-looking material and truncated before storage.
func (db *DB) RecordBatch(ctx context.Context, responseText string, result *engine.Result) error {
	excerpt := scrub.Clean(responseText)
	if len(excerpt) > excerptLimit {
		cut := excerptLimit
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut]
	}
	counts := result.Counts()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO batches (created_at, status, response_excerpt, created_count, edited_count, deleted_count, failed_count, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now(), string(result.Status), excerpt,
		counts[ops.KindCreate], counts[ops.KindEdit], counts[ops.KindDelete],
		len(result.Failed), result.FailureDetails(),
	)
	return err
}

// ListBatches returns the most recent batches, newest first.
func (db *DB) ListBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, created_at, status, response_excerpt, created_count, edited_count, deleted_count, failed_count, detail
		FROM batches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var r BatchRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Status, &r.ResponseExcerpt,
			&r.CreatedCount, &r.EditedCount, &r.DeletedCount, &r.FailedCount, &r.Detail); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
