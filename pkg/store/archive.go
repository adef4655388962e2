package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// archiveSchema is applied at startup. One table; no migration tooling
// needed.
const archiveSchema = `
CREATE TABLE IF NOT EXISTS reports (
	id UUID PRIMARY KEY,
	subject TEXT NOT NULL,
	risk_score INTEGER NOT NULL,
	report JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_reports_subject ON reports(subject, created_at DESC);`

// Archive persists assembled reports to Postgres for the serve-mode history
// endpoint. Optional: constructed only when an archive URL is configured.
type Archive struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// ArchivedReport is one persisted report row.
type ArchivedReport struct {
	ID        uuid.UUID       `json:"id"`
	Subject   string          `json:"subject"`
	RiskScore int             `json:"risk_score"`
	Report    json.RawMessage `json:"report"`
	CreatedAt time.Time       `json:"created_at"`
}

// OpenArchive connects a pgx pool and ensures the schema exists.
func OpenArchive(ctx context.Context, databaseURL string, logger *zap.Logger) (*Archive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect report archive: %w", err)
	}
	if _, err := pool.Exec(ctx, archiveSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}

	logger.Info("Report archive ready")
	return &Archive{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (a *Archive) Close() {
	a.pool.Close()
}

// SaveReport stores one report JSON document and returns its row id.
func (a *Archive) SaveReport(ctx context.Context, subject string, riskScore int, reportJSON []byte) (uuid.UUID, error) {
	id := uuid.New()
	_, err := a.pool.Exec(ctx,
		`INSERT INTO reports (id, subject, risk_score, report) VALUES ($1, $2, $3, $4)`,
		id, subject, riskScore, reportJSON)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save report for %q: %w", subject, err)
	}

	a.logger.Info("Report archived",
		zap.String("subject", subject),
		zap.Int("risk_score", riskScore),
		zap.String("id", id.String()))
	return id, nil
}

// RecentReports returns up to n archived reports for a subject, newest
// first. n <= 0 defaults to 10.
func (a *Archive) RecentReports(ctx context.Context, subject string, n int) ([]ArchivedReport, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := a.pool.Query(ctx,
		`SELECT id, subject, risk_score, report, created_at
		 FROM reports WHERE subject = $1
		 ORDER BY created_at DESC LIMIT $2`,
		subject, n)
	if err != nil {
		return nil, fmt.Errorf("query archived reports for %q: %w", subject, err)
	}
	defer rows.Close()

	var out []ArchivedReport
	for rows.Next() {
		var r ArchivedReport
		if err := rows.Scan(&r.ID, &r.Subject, &r.RiskScore, &r.Report, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan archived report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived reports: %w", err)
	}
	return out, nil
}
