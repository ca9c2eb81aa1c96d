package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"nidaan-triage/pkg"
)

// Ledger is an append-only record of compliance-relevant actions.  Writes
// must never fail a request: callers log ledger errors and move on.
type Ledger interface {
	Record(ctx context.Context, ev pkg.AuditEvent) error
	RecordConsent(ctx context.Context, rec pkg.ConsentRecord) error
	Recent(ctx context.Context, n int) ([]pkg.AuditEvent, error)
	Count(ctx context.Context) (int, error)
}

// HashIdentifier reduces identifying data to a truncated SHA-256 digest so
// raw identifiers never reach the ledger.
func HashIdentifier(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

// ConsentExpiry is how long a recorded consent remains valid.
const ConsentExpiry = 365 * 24 * time.Hour

// memoryCap bounds the in-memory ledger; the oldest events are dropped once
// the cap is reached.
const memoryCap = 1024

// MemoryLedger is the default in-process backend.  It keeps a bounded window
// of recent events and is safe for concurrent use.
type MemoryLedger struct {
	mu       sync.Mutex
	events   []pkg.AuditEvent
	consents []pkg.ConsentRecord
	total    int
}

// NewMemoryLedger constructs an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger { return &MemoryLedger{} }

// Record appends an audit event, evicting the oldest entry at capacity.
func (m *MemoryLedger) Record(ctx context.Context, ev pkg.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) >= memoryCap {
		m.events = m.events[1:]
	}
	m.events = append(m.events, ev)
	m.total++
	return nil
}

// RecordConsent appends a consent record and a matching audit event.
func (m *MemoryLedger) RecordConsent(ctx context.Context, rec pkg.ConsentRecord) error {
	m.mu.Lock()
	if len(m.consents) >= memoryCap {
		m.consents = m.consents[1:]
	}
	m.consents = append(m.consents, rec)
	m.mu.Unlock()

	return m.Record(ctx, pkg.AuditEvent{
		Timestamp: rec.Timestamp,
		Action:    "consent_recorded",
		UserHash:  rec.UserHash,
		Status:    consentStatus(rec.ConsentGiven),
	})
}

// Recent returns up to n events, newest last.
func (m *MemoryLedger) Recent(ctx context.Context, n int) ([]pkg.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > len(m.events) {
		n = len(m.events)
	}
	out := make([]pkg.AuditEvent, n)
	copy(out, m.events[len(m.events)-n:])
	return out, nil
}

// Count returns the total number of events recorded, including evicted ones.
func (m *MemoryLedger) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total, nil
}

func consentStatus(given bool) string {
	if given {
		return "granted"
	}
	return "denied"
}
