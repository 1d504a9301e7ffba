// Package repository holds the local persistence for submitted bills. The
// journal is a convenience record of what this instance sent to the remote
// store; the remote store remains the source of truth.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dcseguramedina/billed-server/internal/models"
	"github.com/dcseguramedina/billed-server/pkg/database"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS submissions (
	id           TEXT PRIMARY KEY,
	bill_id      TEXT NOT NULL,
	email        TEXT NOT NULL,
	bill_name    TEXT NOT NULL,
	bill_type    TEXT NOT NULL,
	amount       REAL NOT NULL,
	bill_date    TEXT NOT NULL,
	file_name    TEXT NOT NULL,
	submitted_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_email ON submissions(email);
`

// SubmissionEntry is one journaled submission.
type SubmissionEntry struct {
	ID          string
	BillID      string
	Email       string
	BillName    string
	BillType    string
	Amount      float64
	BillDate    string
	FileName    string
	SubmittedAt time.Time
}

// SubmissionJournal records successful bill submissions in sqlite.
type SubmissionJournal struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSubmissionJournal creates the journal and ensures its schema exists.
func NewSubmissionJournal(db *database.DB, logger *zap.Logger) (*SubmissionJournal, error) {
	if _, err := db.Exec(journalSchema); err != nil {
		return nil, fmt.Errorf("ensure journal schema: %w", err)
	}
	return &SubmissionJournal{
		db:     db,
		logger: logger,
	}, nil
}

// Record journals one persisted bill.
func (j *SubmissionJournal) Record(ctx context.Context, bill models.Bill) error {
	query := `
		INSERT INTO submissions (
			id, bill_id, email, bill_name, bill_type, amount, bill_date,
			file_name, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := j.db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			uuid.NewString(),
			bill.ID,
			bill.Email,
			bill.Name,
			bill.Type,
			bill.Amount,
			bill.Date,
			bill.FileName,
			time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		j.logger.Error("Failed to journal submission",
			zap.String("bill_id", bill.ID),
			zap.Error(err))
		return fmt.Errorf("failed to journal submission: %w", err)
	}

	return nil
}

// ListRecent returns the latest journaled submissions, newest first.
func (j *SubmissionJournal) ListRecent(ctx context.Context, limit int) ([]SubmissionEntry, error) {
	query := `
		SELECT id, bill_id, email, bill_name, bill_type, amount, bill_date,
			file_name, submitted_at
		FROM submissions
		ORDER BY submitted_at DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var entries []SubmissionEntry
	for rows.Next() {
		var e SubmissionEntry
		if err := rows.Scan(
			&e.ID,
			&e.BillID,
			&e.Email,
			&e.BillName,
			&e.BillType,
			&e.Amount,
			&e.BillDate,
			&e.FileName,
			&e.SubmittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return entries, nil
}
