// Package store owns the external data surfaces: read-only message
// extraction from an iMessage chat.db and the optional Postgres report
// archive. Everything downstream works on fully materialized values; the
// analysis core never touches a database handle.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/overcastsec/smishscan/pkg/analysis"
)

// appleEpoch anchors chat.db timestamps: nanoseconds since 2001-01-01 UTC.
var appleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Store reads an iMessage chat.db. The handle is opened read-only; nothing
// here ever mutates the database.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
	path   string
}

// Open opens a chat.db read-only and verifies the connection.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open chat database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping chat database: %w", err)
	}

	logger.Info("Chat database opened", zap.String("path", path))
	return &Store{db: db, logger: logger, path: path}, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string { return s.path }

// messageRow mirrors the extraction query columns.
type messageRow struct {
	RowID    int64          `db:"rowid"`
	Text     sql.NullString `db:"text"`
	Date     int64          `db:"date"`
	FromMe   int64          `db:"is_from_me"`
	Service  sql.NullString `db:"service"`
	HandleID sql.NullString `db:"handle_id"`
	ChatID   sql.NullString `db:"chat_identifier"`
}

const extractQuery = `
SELECT
    m.ROWID AS rowid,
    m.text,
    m.date,
    m.is_from_me,
    m.service,
    h.id AS handle_id,
    c.chat_identifier
FROM message m
LEFT JOIN handle h ON m.handle_id = h.ROWID
LEFT JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
LEFT JOIN chat c ON cmj.chat_id = c.ROWID
WHERE h.id LIKE ? OR c.chat_identifier LIKE ?
ORDER BY m.date DESC`

// ExtractByContact returns the messages whose handle or chat identifier
// contains contact, most recent first, fully materialized. limit <= 0 means
// no limit. NULL text surfaces as a nil Text on the record; Apple-epoch
// timestamps come back as UTC time.Time values.
func (s *Store) ExtractByContact(ctx context.Context, contact string, limit int) ([]analysis.MessageRecord, error) {
	query := extractQuery
	needle := "%" + contact + "%"
	args := []any{needle, needle}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("extract messages for %q: %w", contact, err)
	}
	defer rows.Close()

	var msgs []analysis.MessageRecord
	for rows.Next() {
		var row messageRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msgs = append(msgs, recordFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate message rows: %w", err)
	}

	s.logger.Info("Messages extracted",
		zap.String("contact", contact),
		zap.Int("count", len(msgs)))
	return msgs, nil
}

func recordFromRow(row messageRow) analysis.MessageRecord {
	rec := analysis.MessageRecord{
		ID:      row.RowID,
		Date:    appleTime(row.Date),
		FromMe:  row.FromMe != 0,
		Handle:  row.HandleID.String,
		ChatID:  row.ChatID.String,
		Service: row.Service.String,
	}
	if row.Text.Valid {
		text := row.Text.String
		rec.Text = &text
	}
	return rec
}

// appleTime converts a chat.db timestamp (nanoseconds since 2001-01-01 UTC)
// to a time.Time.
func appleTime(ns int64) time.Time {
	return appleEpoch.Add(time.Duration(ns))
}
