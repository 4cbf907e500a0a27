package memory

import (
	"time"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// SessionStore is the in-memory session facet. Expiry is the caller's
// concern, matching the database store.
type SessionStore struct {
	s *Store
}

func (ss *SessionStore) Create(userID uuid.UUID, token string, expiresAt time.Time) (*models.Session, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	sess := models.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now(),
	}
	ss.s.sessions[token] = sess
	return &sess, nil
}

func (ss *SessionStore) FindByToken(token string) (*models.Session, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	sess, ok := ss.s.sessions[token]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (ss *SessionStore) DeleteByToken(token string) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	delete(ss.s.sessions, token)
	return nil
}

func (ss *SessionStore) DeleteAllForUser(userID uuid.UUID) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	for token, sess := range ss.s.sessions {
		if sess.UserID == userID {
			delete(ss.s.sessions, token)
		}
	}
	return nil
}

func (ss *SessionStore) DeleteExpired(asOf time.Time) (int64, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	var n int64
	for token, sess := range ss.s.sessions {
		if asOf.After(sess.ExpiresAt) {
			delete(ss.s.sessions, token)
			n++
		}
	}
	return n, nil
}
