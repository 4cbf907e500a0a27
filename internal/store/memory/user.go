package memory

import (
	"time"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// UserStore is the in-memory user facet.
type UserStore struct {
	s *Store
}

func (us *UserStore) Create(workspaceID uuid.UUID, name, email, passwordHash string, role models.Role) (*models.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	for _, u := range us.s.users {
		if u.Email == email {
			return nil, errs.ErrEmailTaken
		}
	}

	u := models.User{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now(),
		UpdatedAt:    now(),
	}
	us.s.users[u.ID] = u
	return &u, nil
}

func (us *UserStore) FindByEmail(email string) (*models.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	for _, u := range us.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (us *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	u, ok := us.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (us *UserStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	var out []models.User
	for _, u := range us.s.users {
		if u.WorkspaceID == workspaceID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (us *UserStore) SetActive(userID uuid.UUID, active bool) error {
	return us.update(userID, func(u *models.User) {
		u.Active = active
	})
}

func (us *UserStore) UpdateLastLogin(userID uuid.UUID, at time.Time) error {
	return us.update(userID, func(u *models.User) {
		u.LastLoginAt = &at
	})
}

func (us *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	return us.update(userID, func(u *models.User) {
		u.TOTPSecret = &secret
		u.TOTPEnabled = false
	})
}

func (us *UserStore) EnableTOTP(userID uuid.UUID) error {
	return us.update(userID, func(u *models.User) {
		u.TOTPEnabled = true
	})
}

func (us *UserStore) ResetTOTP(userID uuid.UUID) error {
	return us.update(userID, func(u *models.User) {
		u.TOTPSecret = nil
		u.TOTPEnabled = false
	})
}

func (us *UserStore) update(userID uuid.UUID, apply func(*models.User)) error {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	u, ok := us.s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	apply(&u)
	u.UpdatedAt = now()
	us.s.users[userID] = u
	return nil
}
