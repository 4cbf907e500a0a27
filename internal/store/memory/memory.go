// Package memory is an in-process implementation of the persistence
// interfaces the services consume. It mirrors the Postgres stores'
// observable semantics (uniqueness conflicts, not-found as nil, atomic
// order splices, cascade deletes) so service and handler tests run
// without a database.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// Store holds all entities behind one mutex. Facet accessors expose the
// per-entity method sets the services expect.
type Store struct {
	mu sync.Mutex

	workspaces map[uuid.UUID]models.Workspace
	users      map[uuid.UUID]models.User
	sessions   map[string]models.Session
	keys       map[uuid.UUID]models.APIKey
	pages      map[uuid.UUID]models.Page
	blocks     map[uuid.UUID]models.Block
	sections   map[uuid.UUID]models.GlobalSection

	audit       []models.AuditEntry
	nextAuditID int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		workspaces:  make(map[uuid.UUID]models.Workspace),
		users:       make(map[uuid.UUID]models.User),
		sessions:    make(map[string]models.Session),
		keys:        make(map[uuid.UUID]models.APIKey),
		pages:       make(map[uuid.UUID]models.Page),
		blocks:      make(map[uuid.UUID]models.Block),
		sections:    make(map[uuid.UUID]models.GlobalSection),
		nextAuditID: 1,
	}
}

func (s *Store) Workspaces() *WorkspaceStore { return &WorkspaceStore{s} }
func (s *Store) Users() *UserStore           { return &UserStore{s} }
func (s *Store) Sessions() *SessionStore     { return &SessionStore{s} }
func (s *Store) APIKeys() *APIKeyStore       { return &APIKeyStore{s} }
func (s *Store) Pages() *PageStore           { return &PageStore{s} }
func (s *Store) Blocks() *BlockStore         { return &BlockStore{s} }
func (s *Store) Sections() *SectionStore     { return &SectionStore{s} }
func (s *Store) Audit() *AuditStore          { return &AuditStore{s} }

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func cloneOrder(order []uuid.UUID) []uuid.UUID {
	if order == nil {
		return nil
	}
	out := make([]uuid.UUID, len(order))
	copy(out, order)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
