package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// SessionStore handles bearer-session database operations.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a new SessionStore with the given database connection.
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a new session for a user.
func (s *SessionStore) Create(userID uuid.UUID, token string, expiresAt time.Time) (*models.Session, error) {
	sess := &models.Session{}
	err := s.db.QueryRow(`
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token, expires_at, created_at
	`, userID, token, expiresAt).Scan(
		&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// FindByToken retrieves a session by its opaque token. Returns nil if not
// found. Expiry is checked by the caller so expired and unknown tokens can
// fail with distinct errors.
func (s *SessionStore) FindByToken(token string) (*models.Session, error) {
	sess := &models.Session{}
	err := s.db.QueryRow(`
		SELECT id, user_id, token, expires_at, created_at
		FROM sessions WHERE token = $1
	`, token).Scan(
		&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session by token: %w", err)
	}
	return sess, nil
}

// DeleteByToken removes a session. Unknown tokens are a no-op, which makes
// logout idempotent.
func (s *SessionStore) DeleteByToken(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteAllForUser removes every session belonging to a user. Called on
// login so older tokens become invalid as soon as the new session is
// durably written, and on account deactivation.
func (s *SessionStore) DeleteAllForUser(userID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete sessions for user: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. Expired sessions are
// already treated as invalid lazily; this keeps the table from growing.
func (s *SessionStore) DeleteExpired(now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
