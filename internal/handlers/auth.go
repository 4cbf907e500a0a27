package handlers

import (
	"encoding/base64"
	"net/http"

	"blockpress/internal/auth"
	"blockpress/internal/errs"
	"blockpress/internal/middleware"
)

// Auth groups the session and two-factor endpoints.
type Auth struct {
	svc *auth.Service
}

// NewAuth creates a new Auth handler group.
func NewAuth(svc *auth.Service) *Auth {
	return &Auth{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a workspace with the caller as its admin owner and
// returns a fresh session token.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	creds, err := a.svc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, creds)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// Login exchanges credentials for a session token, invalidating any
// previous sessions of the same user.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	creds, err := a.svc.Login(req.Email, req.Password, req.TOTPCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

// Logout invalidates the presented session token. Logging out an already
// dead token succeeds.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Logout(middleware.BearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Me returns the authenticated identity.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if identity == nil {
		writeError(w, errs.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

type enrollmentResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRPNG  string `json:"qr_png"` // base64-encoded PNG
}

// TwoFactorSetup generates a TOTP secret for the caller and returns the
// provisioning URL plus a QR code. The secret stays pending until the
// caller confirms a code via TwoFactorActivate.
func (a *Auth) TwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	enrollment, err := a.svc.SetupTwoFactor(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollmentResponse{
		Secret: enrollment.Secret,
		URL:    enrollment.URL,
		QRPNG:  base64.StdEncoding.EncodeToString(enrollment.QRPNG),
	})
}

type totpCodeRequest struct {
	Code string `json:"code"`
}

// TwoFactorActivate confirms a pending TOTP enrollment with a valid code.
func (a *Auth) TwoFactorActivate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	var req totpCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := a.svc.ActivateTwoFactor(identity, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// TwoFactorReset clears a user's TOTP enrollment. Users may reset their
// own; admins may reset anyone's in the workspace.
func (a *Auth) TwoFactorReset(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	userID, err := pathUUID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := a.svc.ResetTwoFactor(identity, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
