// Package errs defines the domain error taxonomy shared by the service
// layer and the HTTP handlers. Services return these sentinels (possibly
// wrapped with fmt.Errorf and %w); handlers match them with errors.Is to
// pick a status code, so failures stay distinguishable to the caller.
package errs

import (
	"errors"
	"fmt"
)

// Authentication and authorization failures.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrAccountInactive  = errors.New("account is deactivated")
	ErrInsufficientRole = errors.New("insufficient role")

	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
)

// API key failures, in validation order.
var (
	ErrInvalidKey             = errors.New("unknown api key")
	ErrKeyRevoked             = errors.New("api key revoked")
	ErrKeyExpired             = errors.New("api key expired")
	ErrInvalidSecret          = errors.New("api key secret mismatch")
	ErrInsufficientPermission = errors.New("api key lacks required permission")
	ErrOriginNotAllowed       = errors.New("origin not allowed for api key")
)

// ErrNotFound covers both genuinely missing entities and cross-workspace
// references: a caller must not be able to distinguish "exists in another
// tenant" from "does not exist".
var ErrNotFound = errors.New("not found")

// ErrConflict marks concurrent-modification conflicts such as a duplicate
// default section or a slug race lost at the storage layer.
var ErrConflict = errors.New("conflict")

// ErrValidation is the root of all input-validation failures. The specific
// variants below wrap it, so errors.Is(err, ErrValidation) matches any of
// them while each stays individually distinguishable.
var ErrValidation = errors.New("validation failed")

var (
	ErrEmailTaken              = fmt.Errorf("%w: email already registered", ErrValidation)
	ErrSlugTaken               = fmt.Errorf("%w: slug already in use", ErrValidation)
	ErrInvalidSlugFormat       = fmt.Errorf("%w: slug must be lowercase alphanumerics and hyphens", ErrValidation)
	ErrContentTooLong          = fmt.Errorf("%w: content exceeds the block's maximum length", ErrValidation)
	ErrTypeChangeRequiresAdmin = fmt.Errorf("%w: changing a block's type is a structural mutation", ErrValidation)
)

// Invalid builds an ad-hoc validation error with a human-readable message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
