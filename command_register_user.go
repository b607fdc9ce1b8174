package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterUserMessage carries a sign up request. No token is issued on
// registration, the caller must sign in separately.
type RegisterUserMessage struct {
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	store    IdentityStore
	activity ActivitySink
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(store IdentityStore) *RegisterUserHandler {
	return &RegisterUserHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if _, err := h.store.FindByEmail(ctx, event.Email); err == nil {
		return goerrors.Wrap(ErrEmailInUse, goerrors.CategoryConflict, "the provided email is already in use").
			WithTextCode("EMAIL_IN_USE")
	} else if !goerrors.IsNotFound(err) && !goerrors.Is(err, ErrIdentityNotFound) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
	}

	user, err := h.store.Create(ctx, event.Email, event.Fullname, event.Password)
	if err != nil {
		if IsPolicyViolation(err) {
			return err
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	h.recordActivity(ctx, user)

	return nil
}

func (h *RegisterUserHandler) recordActivity(ctx context.Context, user *User) {
	if user == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventUserRegistered,
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"email": user.Email,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}
