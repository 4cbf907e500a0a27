package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

const userColumns = `id, workspace_id, name, email, password_hash, role, active,
	totp_secret, totp_enabled, last_login_at, created_at, updated_at`

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.WorkspaceID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Active, &u.TOTPSecret, &u.TOTPEnabled, &u.LastLoginAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. The caller supplies an already-hashed
// password. A duplicate email surfaces as errs.ErrEmailTaken via the
// unique index on users(email).
func (s *UserStore) Create(workspaceID uuid.UUID, name, email, passwordHash string, role models.Role) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`
		INSERT INTO users (workspace_id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		workspaceID, name, email, passwordHash, role))
	if violatesUnique(err, "users_email_key") {
		return nil, errs.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindByEmail retrieves a user by email. Returns nil if not found.
func (s *UserStore) FindByEmail(email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

// FindByID retrieves a user by UUID. Returns nil if not found.
func (s *UserStore) FindByID(id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRow(`
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// ListByWorkspace returns all users of a workspace ordered by creation date.
func (s *UserStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT `+userColumns+` FROM users
		WHERE workspace_id = $1 ORDER BY created_at ASC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetActive flips the soft active flag. Deactivation never hard-deletes.
func (s *UserStore) SetActive(userID uuid.UUID, active bool) error {
	_, err := s.db.Exec(`
		UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2
	`, active, userID)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

// UpdateLastLogin records the time of a successful login.
func (s *UserStore) UpdateLastLogin(userID uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(`
		UPDATE users SET last_login_at = $1, updated_at = NOW() WHERE id = $2
	`, at, userID)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the pending TOTP secret for a user during 2FA setup.
func (s *UserStore) SetTOTPSecret(userID uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, userID)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a user after code verification.
func (s *UserStore) EnableTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// ResetTOTP clears the TOTP secret and disables 2FA for a user.
func (s *UserStore) ResetTOTP(userID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE users SET totp_secret = NULL, totp_enabled = FALSE, updated_at = NOW() WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("reset totp: %w", err)
	}
	return nil
}
