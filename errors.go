package auth

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidCredentials is the uniform rejection for sign in. Unknown
// email and wrong password produce the same value so callers cannot tell
// whether an address is registered.
var ErrInvalidCredentials = errors.New("user or password are invalid")

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrEmailInUse is returned when registering an email that already exists
var ErrEmailInUse = errors.New("the provided email is already in use")

// ErrTicketInvalid is the uniform rejection for reset ticket redemption,
// it does not reveal which check failed
var ErrTicketInvalid = errors.New("invalid or expired password reset ticket")

// ErrNoEmptyString guards hashing of empty passwords
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the bcrypt mismatch rejection
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch")

// TextCodeTokenExpired tags expired bearer tokens
const TextCodeTokenExpired = "TOKEN_EXPIRED"

// TextCodeTokenMalformed tags undecodable bearer tokens
const TextCodeTokenMalformed = "TOKEN_MALFORMED"

// ErrTokenExpired is returned for bearer tokens past their expiration
var ErrTokenExpired = goerrors.New("authentication token has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned when a bearer token cannot be decoded or
// its signature does not verify
var ErrTokenMalformed = goerrors.New("authentication token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrSigningFailure indicates the process is misconfigured for token
// issuance. It is fatal, sign in must not be served without a key.
var ErrSigningFailure = goerrors.New("token signing key is not configured", goerrors.CategoryInternal).
	WithTextCode("SIGNING_FAILURE")

// NewPolicyViolation wraps the first password policy violation reported
// by the identity store.
func NewPolicyViolation(detail string) *goerrors.Error {
	return goerrors.New(detail, goerrors.CategoryValidation).
		WithTextCode("PASSWORD_POLICY")
}

// IsPolicyViolation reports whether err carries a password policy text code
func IsPolicyViolation(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == "PASSWORD_POLICY"
	}
	return false
}

// IsDeliveryFailure reports whether err originated in the mail dispatcher
func IsDeliveryFailure(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == "DELIVERY_FAILURE"
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired") ||
		strings.Contains(err.Error(), "token has expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
