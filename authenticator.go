package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Auther verifies credentials against the identity store and issues
// signed bearer tokens for verified identities.
type Auther struct {
	store        IdentityStore
	tokenService TokenService
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store IdentityStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service used for issuance.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the email/password pair and returns a signed bearer
// token. Unknown email and wrong password are indistinguishable from the
// caller's side, both produce ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		// Only a missing identity collapses into the generic rejection.
		// Store outages and timeouts are infrastructure failures, not
		// credential failures, and must stay distinguishable.
		if !goerrors.IsNotFound(err) && !goerrors.Is(err, ErrIdentityNotFound) {
			s.logger.Error("Login lookup failed for %s: %v", email, err)
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up identity")
		}

		s.logger.Debug("Login lookup failed for %s: %v", email, err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
			"email": email,
		})
		return "", ErrInvalidCredentials
	}

	if err := s.store.CheckPassword(ctx, user, password); err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"email": email,
		})
		return "", ErrInvalidCredentials
	}

	roles, err := s.store.GetRoles(ctx, user)
	if err != nil {
		s.logger.Error("Login failed to fetch roles: %v", err)
		return "", err
	}

	token, err := s.tokenService.Issue(identityFromUser(user), roles)
	if err != nil {
		s.logger.Error("Login token issuance failed: %v", err)
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), map[string]any{
		"email": email,
	})

	return token, nil
}

// IdentityFromToken validates a bearer token and resolves the identity
// it was issued for.
func (s *Auther) IdentityFromToken(ctx context.Context, raw string) (Identity, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("IdentityFromToken validation failed: %v", err)
		return nil, err
	}

	user, err := s.store.FindByEmail(ctx, claims.Name())
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	return identityFromUser(user), nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

type authIdentity struct {
	id       string
	username string
	email    string
	fullname string
}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
		fullname: user.FullName,
	}
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Fullname() string {
	return a.fullname
}

var _ Identity = authIdentity{}
var _ Authenticator = (*Auther)(nil)
