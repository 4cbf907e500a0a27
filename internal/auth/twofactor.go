// twofactor.go implements optional TOTP enrollment. A user generates a
// secret, confirms one code to activate it, and from then on login
// requires a current code alongside the password.
package auth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"blockpress/internal/errs"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "blockpress"

// Enrollment is returned once from SetupTwoFactor. The secret and QR code
// are shown to the user for their authenticator app; only the secret is
// persisted.
type Enrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRPNG  []byte `json:"qr_png"`
}

// SetupTwoFactor generates a fresh TOTP secret for the actor and stores it
// pending activation. Calling it again replaces any unconfirmed secret.
func (s *Service) SetupTwoFactor(actor *Identity) (*Enrollment, error) {
	if actor == nil {
		return nil, errs.ErrUnauthenticated
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: actor.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.users.SetTOTPSecret(actor.UserID, key.Secret()); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode totp qr: %w", err)
	}

	return &Enrollment{Secret: key.Secret(), URL: key.URL(), QRPNG: png}, nil
}

// ActivateTwoFactor verifies one code against the pending secret and turns
// TOTP enforcement on for the actor's logins.
func (s *Service) ActivateTwoFactor(actor *Identity, code string) error {
	if actor == nil {
		return errs.ErrUnauthenticated
	}

	user, err := s.users.FindByID(actor.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.ErrUnauthenticated
	}
	if user.TOTPSecret == nil {
		return errs.Invalid("two-factor setup has not been started")
	}
	if !validateTOTP(code, *user.TOTPSecret) {
		return errs.ErrInvalidTwoFactorCode
	}

	if err := s.users.EnableTOTP(user.ID); err != nil {
		return err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "user.totp_enable", "user", user.ID.String(), nil)
	return nil
}

// ResetTwoFactor clears TOTP for a user. Allowed for the user themself or
// a workspace admin; the target re-enrolls on their next login if desired.
func (s *Service) ResetTwoFactor(actor *Identity, userID uuid.UUID) error {
	if actor == nil {
		return errs.ErrUnauthenticated
	}
	if userID != actor.UserID {
		if err := RequireAdmin(actor); err != nil {
			return err
		}
	}

	user, err := s.workspaceUser(actor, userID)
	if err != nil {
		return err
	}

	if err := s.users.ResetTOTP(user.ID); err != nil {
		return err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "user.totp_reset", "user", user.ID.String(), nil)
	return nil
}

func validateTOTP(code, secret string) bool {
	return totp.Validate(code, secret)
}
