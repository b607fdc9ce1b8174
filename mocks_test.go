package auth_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	auth "github.com/kta-platform/kta-auth"
)

// MockIdentityStore is a mock implementation of auth.IdentityStore
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) CheckPassword(ctx context.Context, user *auth.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func (m *MockIdentityStore) GetRoles(ctx context.Context, user *auth.User) ([]string, error) {
	args := m.Called(ctx, user)
	if roles := args.Get(0); roles != nil {
		return roles.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) Create(ctx context.Context, email, fullname, password string) (*auth.User, error) {
	args := m.Called(ctx, email, fullname, password)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) GenerateResetTicket(ctx context.Context, user *auth.User) (*auth.ResetTicket, error) {
	args := m.Called(ctx, user)
	if ticket := args.Get(0); ticket != nil {
		return ticket.(*auth.ResetTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) ValidateAndConsumeResetTicket(ctx context.Context, ticket string) (*auth.User, error) {
	args := m.Called(ctx, ticket)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityStore) SetPassword(ctx context.Context, user *auth.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

// MockMailer is a mock implementation of auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// memorySink collects activity events for assertions
type memorySink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *memorySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memorySink) Events() []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	audience        []string
}

func (c testConfig) GetSigningKey() string   { return c.signingKey }
func (c testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c testConfig) GetIssuer() string       { return c.issuer }
func (c testConfig) GetAudience() []string   { return c.audience }

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 3,
		issuer:          "test-issuer",
	}
}

// testIdentity implements auth.Identity
type testIdentity struct {
	id       string
	username string
	email    string
	fullname string
}

func (i testIdentity) ID() string       { return i.id }
func (i testIdentity) Username() string { return i.username }
func (i testIdentity) Email() string    { return i.email }
func (i testIdentity) Fullname() string { return i.fullname }
