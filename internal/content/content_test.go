package content

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"blockpress/internal/audit"
	"blockpress/internal/auth"
	"blockpress/internal/models"
	"blockpress/internal/store/memory"
)

// recordingInvalidator captures cache invalidations for assertions.
type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(workspaceID uuid.UUID, slug string) {
	r.keys = append(r.keys, fmt.Sprintf("%s/%s", workspaceID, slug))
}

func (r *recordingInvalidator) saw(workspaceID uuid.UUID, slug string) bool {
	want := fmt.Sprintf("%s/%s", workspaceID, slug)
	for _, k := range r.keys {
		if k == want {
			return true
		}
	}
	return false
}

type fixture struct {
	svc    *Service
	mem    *memory.Store
	cache  *recordingInvalidator
	admin  *auth.Identity
	editor *auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.NewStore()
	cache := &recordingInvalidator{}
	workspaceID := uuid.New()
	return &fixture{
		svc:   New(mem.Pages(), mem.Blocks(), mem.Sections(), cache, audit.New(mem.Audit())),
		mem:   mem,
		cache: cache,
		admin: &auth.Identity{
			UserID:      uuid.New(),
			WorkspaceID: workspaceID,
			Role:        models.RoleAdmin,
		},
		editor: &auth.Identity{
			UserID:      uuid.New(),
			WorkspaceID: workspaceID,
			Role:        models.RoleEditor,
		},
	}
}

// outsider is an admin in a different workspace.
func (f *fixture) outsider() *auth.Identity {
	return &auth.Identity{
		UserID:      uuid.New(),
		WorkspaceID: uuid.New(),
		Role:        models.RoleAdmin,
	}
}

func (f *fixture) mustCreatePage(t *testing.T, title, slug string) *models.Page {
	t.Helper()
	page, err := f.svc.CreatePage(f.admin, title, slug)
	if err != nil {
		t.Fatalf("CreatePage(%q) failed: %v", title, err)
	}
	return page
}

func (f *fixture) mustAddText(t *testing.T, pageID uuid.UUID, body string, maxLength *int) *models.Block {
	t.Helper()
	block, err := f.svc.AddBlock(f.admin, pageID, models.TextContent{Body: body, MaxLength: maxLength}, models.BlockLayout{}, -1)
	if err != nil {
		t.Fatalf("AddBlock failed: %v", err)
	}
	return block
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
