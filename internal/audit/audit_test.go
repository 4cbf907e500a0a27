package audit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"blockpress/internal/models"
	"blockpress/internal/store/memory"
)

func TestRecordAndRecent(t *testing.T) {
	mem := memory.NewStore()
	log := New(mem.Audit())
	workspaceID := uuid.New()
	actorID := uuid.New()

	for i := 0; i < 3; i++ {
		log.Record(&workspaceID, actorID, fmt.Sprintf("page.action%d", i), "page", uuid.NewString(),
			map[string]any{"step": i})
	}

	entries, err := log.Recent(workspaceID, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Action != "page.action2" || entries[2].Action != "page.action0" {
		t.Errorf("order = [%s ... %s], want newest first", entries[0].Action, entries[2].Action)
	}
	if entries[0].ID <= entries[2].ID {
		t.Errorf("ids not monotonic: %d then %d", entries[0].ID, entries[2].ID)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("entry missing timestamp")
	}
	if entries[0].Details["step"] != 2 {
		t.Errorf("details = %v", entries[0].Details)
	}
}

func TestRecentLimit(t *testing.T) {
	mem := memory.NewStore()
	log := New(mem.Audit())
	workspaceID := uuid.New()

	for i := 0; i < 60; i++ {
		log.Record(&workspaceID, uuid.New(), "user.login", "user", uuid.NewString(), nil)
	}

	// Zero, negative, and absurd limits all clamp to the default.
	for _, limit := range []int{0, -5, 100000} {
		entries, err := log.Recent(workspaceID, limit)
		if err != nil {
			t.Fatalf("Recent(%d) failed: %v", limit, err)
		}
		if len(entries) != DefaultLimit {
			t.Errorf("Recent(%d) returned %d entries, want %d", limit, len(entries), DefaultLimit)
		}
	}

	entries, err := log.Recent(workspaceID, 5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Recent(5) returned %d entries", len(entries))
	}
}

func TestRecentFiltersByWorkspace(t *testing.T) {
	mem := memory.NewStore()
	log := New(mem.Audit())
	mine := uuid.New()
	theirs := uuid.New()

	log.Record(&mine, uuid.New(), "page.create", "page", uuid.NewString(), nil)
	log.Record(&theirs, uuid.New(), "page.create", "page", uuid.NewString(), nil)
	// A registration entry carries no workspace yet and belongs to neither feed.
	log.Record(nil, uuid.New(), "auth.register", "user", uuid.NewString(), nil)

	entries, err := log.Recent(mine, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].WorkspaceID == nil || *entries[0].WorkspaceID != mine {
		t.Errorf("entry workspace = %v", entries[0].WorkspaceID)
	}
}

// failingSink always rejects inserts.
type failingSink struct{}

func (failingSink) Insert(*models.AuditEntry) error { return errors.New("sink down") }
func (failingSink) Recent(uuid.UUID, int) ([]models.AuditEntry, error) {
	return nil, nil
}

func TestRecordIsBestEffort(t *testing.T) {
	log := New(failingSink{})
	workspaceID := uuid.New()
	// Must not panic or propagate the sink failure.
	log.Record(&workspaceID, uuid.New(), "page.create", "page", uuid.NewString(), nil)
}
