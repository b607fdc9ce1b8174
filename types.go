package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of a verified account
type Identity interface {
	ID() string
	Username() string
	Email() string
	Fullname() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	IdentityFromToken(ctx context.Context, raw string) (Identity, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

// IdentityStore is the capability interface the core needs from an
// identity backend. Concrete storage engines implement it; the core
// depends only on this contract.
type IdentityStore interface {
	// FindByEmail resolves an identity by email, case insensitive.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// CheckPassword verifies the cleartext password against the stored hash.
	CheckPassword(ctx context.Context, user *User, password string) error
	// GetRoles lists the role names assigned to the user.
	GetRoles(ctx context.Context, user *User) ([]string, error)
	// Create registers a new identity. The store applies password policy
	// and assigns a fresh security stamp.
	Create(ctx context.Context, email, fullname, password string) (*User, error)
	// GenerateResetTicket mints a single use reset ticket bound to the
	// user's current security stamp.
	GenerateResetTicket(ctx context.Context, user *User) (*ResetTicket, error)
	// ValidateAndConsumeResetTicket redeems a ticket. At most one call per
	// ticket ever succeeds.
	ValidateAndConsumeResetTicket(ctx context.Context, ticket string) (*User, error)
	// SetPassword applies a new password and rotates the security stamp,
	// invalidating any outstanding reset tickets.
	SetPassword(ctx context.Context, user *User, password string) error
}

// Mailer dispatches a message to an address. Failure must be observable
// by the caller, delivery is otherwise fire and forget.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
