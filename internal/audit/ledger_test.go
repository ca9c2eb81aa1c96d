package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nidaan-triage/pkg"
)

func TestHashIdentifier(t *testing.T) {
	h := HashIdentifier("user-42")
	if len(h) != 16 {
		t.Fatalf("hash length = %d, want 16", len(h))
	}
	if h != HashIdentifier("user-42") {
		t.Error("hash not deterministic")
	}
	if h == HashIdentifier("user-43") {
		t.Error("distinct inputs collided")
	}
}

func TestMemoryLedgerRecordAndRecent(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := pkg.AuditEvent{
			Timestamp: time.Now(),
			Action:    "analyze_request",
			RequestID: fmt.Sprintf("req-%d", i),
			Status:    "started",
		}
		if err := l.Record(ctx, ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	events, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].RequestID != "req-2" {
		t.Errorf("newest event = %q, want req-2", events[1].RequestID)
	}

	count, err := l.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestMemoryLedgerEviction(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	for i := 0; i < memoryCap+10; i++ {
		_ = l.Record(ctx, pkg.AuditEvent{RequestID: fmt.Sprintf("req-%d", i)})
	}

	events, _ := l.Recent(ctx, 0)
	if len(events) != memoryCap {
		t.Fatalf("window size = %d, want %d", len(events), memoryCap)
	}
	if events[0].RequestID != "req-10" {
		t.Errorf("oldest retained = %q, want req-10", events[0].RequestID)
	}
	// Count reflects everything ever recorded, not just the window.
	count, _ := l.Count(ctx)
	if count != memoryCap+10 {
		t.Errorf("count = %d, want %d", count, memoryCap+10)
	}
}

func TestMemoryLedgerConsent(t *testing.T) {
	l := NewMemoryLedger()
	ctx := context.Background()

	now := time.Now()
	rec := pkg.ConsentRecord{
		UserHash:     HashIdentifier("user-42"),
		ConsentType:  "data_collection",
		ConsentGiven: true,
		Timestamp:    now,
		ExpiresAt:    now.Add(ConsentExpiry),
	}
	if err := l.RecordConsent(ctx, rec); err != nil {
		t.Fatalf("RecordConsent: %v", err)
	}

	// A consent write doubles as an audit event.
	events, _ := l.Recent(ctx, 0)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Action != "consent_recorded" || events[0].Status != "granted" {
		t.Errorf("event = %+v", events[0])
	}
}
