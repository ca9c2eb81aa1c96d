package audit

import (
	"context"
	"database/sql"

	_ "embed"

	"nidaan-triage/pkg"
)

//go:embed schema.sql
var schemaSQL string

// PostgresLedger stores audit events and consent records in Postgres.  It is
// the opt-in durable backend selected by setting DATABASE_URL.
type PostgresLedger struct {
	DB *sql.DB
}

// NewPostgresLedger wraps an existing sql.DB.  The caller is responsible for
// managing the connection lifecycle.
func NewPostgresLedger(db *sql.DB) *PostgresLedger { return &PostgresLedger{DB: db} }

// Migrate applies the ledger schema.  The statements are idempotent and safe
// to run at every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

// Record appends an audit event.
func (p *PostgresLedger) Record(ctx context.Context, ev pkg.AuditEvent) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO audit_events (action, request_id, user_hash, status, created_at)
         VALUES ($1, $2, $3, $4, $5)`,
		ev.Action, ev.RequestID, ev.UserHash, ev.Status, ev.Timestamp,
	)
	return err
}

// RecordConsent appends a consent record and a matching audit event.
func (p *PostgresLedger) RecordConsent(ctx context.Context, rec pkg.ConsentRecord) error {
	_, err := p.DB.ExecContext(ctx,
		`INSERT INTO consent_records (user_hash, consent_type, consent_given, created_at, expires_at)
         VALUES ($1, $2, $3, $4, $5)`,
		rec.UserHash, rec.ConsentType, rec.ConsentGiven, rec.Timestamp, rec.ExpiresAt,
	)
	if err != nil {
		return err
	}
	return p.Record(ctx, pkg.AuditEvent{
		Timestamp: rec.Timestamp,
		Action:    "consent_recorded",
		UserHash:  rec.UserHash,
		Status:    consentStatus(rec.ConsentGiven),
	})
}

// Recent returns up to n events ordered oldest first.
func (p *PostgresLedger) Recent(ctx context.Context, n int) ([]pkg.AuditEvent, error) {
	if n <= 0 {
		n = 100
	}
	rows, err := p.DB.QueryContext(ctx,
		`SELECT action, request_id, user_hash, status, created_at FROM (
             SELECT action, request_id, user_hash, status, created_at
             FROM audit_events ORDER BY created_at DESC LIMIT $1
         ) latest ORDER BY created_at ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []pkg.AuditEvent
	for rows.Next() {
		var ev pkg.AuditEvent
		if err := rows.Scan(&ev.Action, &ev.RequestID, &ev.UserHash, &ev.Status, &ev.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Count returns the total number of recorded events.
func (p *PostgresLedger) Count(ctx context.Context) (int, error) {
	var count int
	err := p.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&count)
	return count, err
}
