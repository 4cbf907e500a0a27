package handlers

import (
	"net/http"

	"blockpress/internal/auth"
	"blockpress/internal/middleware"
	"blockpress/internal/models"
)

// Users groups workspace user administration endpoints.
type Users struct {
	svc *auth.Service
}

// NewUsers creates a new Users handler group.
func NewUsers(svc *auth.Service) *Users {
	return &Users{svc: svc}
}

type createUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Create adds a user to the caller's workspace.
func (u *Users) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := u.svc.CreateUser(identity, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// List returns the caller's workspace members.
func (u *Users) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	users, err := u.svc.ListUsers(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive toggles a user's active flag. Deactivation also drops the
// target's live sessions.
func (u *Users) SetActive(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := u.svc.SetUserActive(identity, userID, req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
