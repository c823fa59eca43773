package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notestore/internal/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Record appends one activity entry. Missing ID and timestamp are filled in.
func (db *DB) Record(ctx context.Context, a models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO activity (id, op, name, size, checksum, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.Op, a.Name, a.Size, a.Checksum, a.At.UTC())
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Out-of-range limits are
// clamped to [1, MaxLimit]; zero or negative means DefaultLimit.
func (db *DB) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, op, name, size, checksum, at
		FROM activity
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	out := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Op, &a.Name, &a.Size, &a.Checksum, &a.At); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
