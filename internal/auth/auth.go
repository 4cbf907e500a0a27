// Package auth owns session-based authentication and role gating: user
// registration, login/logout, bearer-token resolution, and the two-level
// admin/editor role check composed by every privileged operation.
package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/audit"
	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// MinPasswordLength is the minimum accepted password size.
const MinPasswordLength = 8

// DefaultSessionTTL is how long a session lives before lazy expiry.
const DefaultSessionTTL = 24 * time.Hour

// Users is the user persistence the service consumes.
type Users interface {
	Create(workspaceID uuid.UUID, name, email, passwordHash string, role models.Role) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.User, error)
	SetActive(userID uuid.UUID, active bool) error
	UpdateLastLogin(userID uuid.UUID, at time.Time) error
	SetTOTPSecret(userID uuid.UUID, secret string) error
	EnableTOTP(userID uuid.UUID) error
	ResetTOTP(userID uuid.UUID) error
}

// Sessions is the session persistence the service consumes.
type Sessions interface {
	Create(userID uuid.UUID, token string, expiresAt time.Time) (*models.Session, error)
	FindByToken(token string) (*models.Session, error)
	DeleteByToken(token string) error
	DeleteAllForUser(userID uuid.UUID) error
}

// Workspaces is the workspace persistence the service consumes.
type Workspaces interface {
	Create(name string) (*models.Workspace, error)
	SetOwner(workspaceID, ownerID uuid.UUID) error
}

// Identity is the minimal projection of an authenticated user handed to
// downstream components. It never carries the password hash.
type Identity struct {
	UserID      uuid.UUID   `json:"user_id"`
	WorkspaceID uuid.UUID   `json:"workspace_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
}

// Credentials is what register and login hand back to the caller.
type Credentials struct {
	Token       string    `json:"token"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	User        Identity  `json:"user"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service implements registration, login, and bearer-token authentication.
type Service struct {
	users      Users
	sessions   Sessions
	workspaces Workspaces
	hasher     PasswordHasher
	auditLog   *audit.Logger
	sessionTTL time.Duration
}

// New creates an auth Service. A zero ttl falls back to DefaultSessionTTL.
func New(users Users, sessions Sessions, workspaces Workspaces, auditLog *audit.Logger, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		workspaces: workspaces,
		hasher:     BcryptHasher{},
		auditLog:   auditLog,
		sessionTTL: ttl,
	}
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// stored values use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new workspace with the caller as its admin owner and
// returns a fresh session. Fails with errs.ErrEmailTaken when the email is
// already registered.
func (s *Service) Register(name, email, password string) (*Credentials, error) {
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

	// Pre-check for a friendlier failure; the unique index on users(email)
	// remains the authoritative guard under concurrency.
	existing, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	workspace, err := s.workspaces.Create(fmt.Sprintf("%s's Workspace", name))
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(workspace.ID, name, email, hash, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := s.workspaces.SetOwner(workspace.ID, user.ID); err != nil {
		return nil, err
	}

	creds, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	s.auditLog.Record(&workspace.ID, user.ID, "user.register", "user", user.ID.String(), nil)
	return creds, nil
}

// Login verifies credentials and issues a new session, invalidating every
// prior session for the user. When the account has TOTP enrolled, a valid
// code must accompany the password.
func (s *Service) Login(email, password, totpCode string) (*Credentials, error) {
	user, err := s.users.FindByEmail(NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, password) {
		return nil, errs.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, errs.ErrAccountInactive
	}

	if user.TOTPEnabled {
		if totpCode == "" {
			return nil, errs.ErrTwoFactorRequired
		}
		if user.TOTPSecret == nil || !validateTOTP(totpCode, *user.TOTPSecret) {
			return nil, errs.ErrInvalidTwoFactorCode
		}
	}

	// Old tokens become invalid as soon as the new session is written.
	if err := s.sessions.DeleteAllForUser(user.ID); err != nil {
		return nil, err
	}

	creds, err := s.issueSession(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(user.ID, time.Now()); err != nil {
		slog.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	s.auditLog.Record(&user.WorkspaceID, user.ID, "user.login", "user", user.ID.String(), nil)
	return creds, nil
}

// Logout invalidates a session. Unknown tokens are an idempotent no-op.
func (s *Service) Logout(token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.DeleteByToken(token)
}

// Authenticate resolves a bearer token to an Identity. It fails with
// ErrUnauthenticated for absent or unknown tokens, ErrSessionExpired past
// expiry, and ErrAccountInactive for deactivated users. Read-only: login
// and logout mutate sessions separately.
func (s *Service) Authenticate(token string) (*Identity, error) {
	if token == "" {
		return nil, errs.ErrUnauthenticated
	}

	sess, err := s.sessions.FindByToken(token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errs.ErrUnauthenticated
	}
	if sess.Expired(time.Now()) {
		return nil, errs.ErrSessionExpired
	}

	user, err := s.users.FindByID(sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.ErrUnauthenticated
	}
	if !user.Active {
		return nil, errs.ErrAccountInactive
	}

	return identityOf(user), nil
}

// RequireRole enforces a minimum-role requirement. Admin satisfies both
// levels. Pure predicate, no side effects.
func RequireRole(id *Identity, minimum models.Role) error {
	if id == nil {
		return errs.ErrUnauthenticated
	}
	if !id.Role.Satisfies(minimum) {
		return errs.ErrInsufficientRole
	}
	return nil
}

// RequireAdmin is RequireRole(id, admin).
func RequireAdmin(id *Identity) error {
	return RequireRole(id, models.RoleAdmin)
}

// RequireEditor is RequireRole(id, editor).
func RequireEditor(id *Identity) error {
	return RequireRole(id, models.RoleEditor)
}

func (s *Service) issueSession(user *models.User) (*Credentials, error) {
	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	sess, err := s.sessions.Create(user.ID, token, time.Now().Add(s.sessionTTL))
	if err != nil {
		return nil, err
	}

	return &Credentials{
		Token:       token,
		WorkspaceID: user.WorkspaceID,
		User:        *identityOf(user),
		ExpiresAt:   sess.ExpiresAt,
	}, nil
}

func identityOf(user *models.User) *Identity {
	return &Identity{
		UserID:      user.ID,
		WorkspaceID: user.WorkspaceID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
	}
}
