package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"blockpress/internal/errs"
)

func TestTwoFactorEnrollment(t *testing.T) {
	svc, _ := newTestService(t, 0)
	creds := register(t, svc, "Ada", "ada@example.com")
	actor := &creds.User

	enrollment, err := svc.SetupTwoFactor(actor)
	if err != nil {
		t.Fatalf("SetupTwoFactor failed: %v", err)
	}
	if enrollment.Secret == "" || enrollment.URL == "" {
		t.Fatal("enrollment missing secret or provisioning URL")
	}
	if len(enrollment.QRPNG) == 0 {
		t.Error("enrollment missing QR code")
	}

	// Enrollment is pending until a code confirms it; login stays
	// password-only meanwhile.
	if _, err := svc.Login("ada@example.com", "correct horse battery", ""); err != nil {
		t.Fatalf("login during pending enrollment failed: %v", err)
	}

	if err := svc.ActivateTwoFactor(actor, "000000"); !errors.Is(err, errs.ErrInvalidTwoFactorCode) {
		t.Errorf("activate with bogus code = %v, want ErrInvalidTwoFactorCode", err)
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.ActivateTwoFactor(actor, code); err != nil {
		t.Fatalf("ActivateTwoFactor failed: %v", err)
	}

	// From now on login demands a current code.
	if _, err := svc.Login("ada@example.com", "correct horse battery", ""); !errors.Is(err, errs.ErrTwoFactorRequired) {
		t.Errorf("login without code = %v, want ErrTwoFactorRequired", err)
	}
	if _, err := svc.Login("ada@example.com", "correct horse battery", "000000"); !errors.Is(err, errs.ErrInvalidTwoFactorCode) {
		t.Errorf("login with bad code = %v, want ErrInvalidTwoFactorCode", err)
	}

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if _, err := svc.Login("ada@example.com", "correct horse battery", code); err != nil {
		t.Errorf("login with valid code failed: %v", err)
	}
}

func TestTwoFactorReset(t *testing.T) {
	svc, _ := newTestService(t, 0)
	adminCreds := register(t, svc, "Ada", "ada@example.com")
	admin := &adminCreds.User

	user, err := svc.CreateUser(admin, "Ed", "ed@example.com", "long enough pw", "editor")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	editorCreds, err := svc.Login("ed@example.com", "long enough pw", "")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	editor := &editorCreds.User

	enrollment, err := svc.SetupTwoFactor(editor)
	if err != nil {
		t.Fatalf("SetupTwoFactor failed: %v", err)
	}
	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.ActivateTwoFactor(editor, code); err != nil {
		t.Fatalf("ActivateTwoFactor failed: %v", err)
	}

	// Editors may reset their own enrollment but nobody else's.
	if err := svc.ResetTwoFactor(editor, admin.UserID); !errors.Is(err, errs.ErrInsufficientRole) {
		t.Errorf("editor resetting admin = %v, want ErrInsufficientRole", err)
	}

	// An admin may reset any workspace member.
	if err := svc.ResetTwoFactor(admin, user.ID); err != nil {
		t.Fatalf("admin reset failed: %v", err)
	}
	if _, err := svc.Login("ed@example.com", "long enough pw", ""); err != nil {
		t.Errorf("login after reset still demands a code: %v", err)
	}
}
