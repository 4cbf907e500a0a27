package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an opaque bearer credential proving a logged-in user's
// identity for a bounded time. A user holds at most one live session;
// logging in again invalidates all prior sessions.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"` // Opaque credential, never serialized
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
