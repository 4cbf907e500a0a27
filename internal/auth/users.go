// users.go covers user administration within a workspace: only admins may
// create accounts, and deactivation is a soft flag that also drops the
// target's live sessions.
package auth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// CreateUser adds a user to the actor's workspace. Admin only.
func (s *Service) CreateUser(actor *Identity, name, email, password string, role models.Role) (*models.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return nil, errs.Invalid("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Invalid("a valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, errs.Invalid("password must be at least %d characters", MinPasswordLength)
	}
	if !role.Valid() {
		return nil, errs.Invalid("unknown role %q", role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(actor.WorkspaceID, name, email, hash, role)
	if err != nil {
		return nil, err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "user.create", "user", user.ID.String(),
		map[string]any{"role": string(role)})
	return user, nil
}

// ListUsers returns the actor's workspace members. Admin only.
func (s *Service) ListUsers(actor *Identity) ([]models.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.ListByWorkspace(actor.WorkspaceID)
}

// SetUserActive flips the soft active flag of a workspace member. Admins
// cannot deactivate themselves. Deactivating also invalidates the target's
// sessions so access ends immediately.
func (s *Service) SetUserActive(actor *Identity, userID uuid.UUID, active bool) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if !active && userID == actor.UserID {
		return errs.Invalid("you cannot deactivate your own account")
	}

	user, err := s.workspaceUser(actor, userID)
	if err != nil {
		return err
	}

	if err := s.users.SetActive(user.ID, active); err != nil {
		return err
	}

	if !active {
		if err := s.sessions.DeleteAllForUser(user.ID); err != nil {
			return err
		}
	}

	action := "user.deactivate"
	if active {
		action = "user.reactivate"
	}
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, action, "user", user.ID.String(), nil)
	return nil
}

// workspaceUser fetches a user and verifies workspace membership. A user
// in another workspace is reported as not found, never as forbidden.
func (s *Service) workspaceUser(actor *Identity, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.WorkspaceID != actor.WorkspaceID {
		return nil, errs.ErrNotFound
	}
	return user, nil
}
