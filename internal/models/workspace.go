package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary. Every content entity belongs to
// exactly one workspace, created at first-user registration and owned
// by that user.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
