package audit_test

import (
	"testing"

	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/testutil"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	event := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventDonorCreated,
		Actor:     "admin",
		Target:    "42",
		IP:        "192.168.1.1",
		Success:   true,
	}
	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Recent(ctx, "admin", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
	if events[0].Target != "42" {
		t.Errorf("Target: got %q, want %q", events[0].Target, "42")
	}
}

func TestStore_Recent_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	for _, typ := range []string{audit.EventDonorCreated, audit.EventDonorUpdated} {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: typ, Actor: "admin", Success: true}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.Recent(ctx, "", 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}
