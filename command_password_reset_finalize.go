package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// FinalizePasswordResetMessage redeems a reset ticket and applies the new
// password. Validation failures are uniform, the caller is not told which
// check failed.
type FinalizePasswordResetMessage struct {
	Ticket   string `json:"token"`
	Password string `json:"password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetHandler struct {
	store    IdentityStore
	activity ActivitySink
	logger   Logger
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(store IdentityStore) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		store:    store,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *FinalizePasswordResetHandler) WithActivitySink(sink ActivitySink) *FinalizePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// Policy check runs before the ticket is consumed so a weak password
	// does not burn a valid ticket.
	if err := ValidatePassword(event.Password); err != nil {
		return err
	}

	// The store checks the ticket exists, is unconsumed, is inside its
	// validity window, and was minted against the current security stamp.
	// All failures collapse into the same rejection.
	user, err := h.store.ValidateAndConsumeResetTicket(ctx, event.Ticket)
	if err != nil {
		h.logger.Debug("reset ticket rejected: %v", err)
		return goerrors.Wrap(ErrTicketInvalid, goerrors.CategoryValidation, "invalid or expired password reset ticket").
			WithTextCode("TICKET_INVALID")
	}

	// Applying the password rotates the security stamp, invalidating this
	// ticket and every other outstanding one for the identity.
	if err := h.store.SetPassword(ctx, user, event.Password); err != nil {
		if IsPolicyViolation(err) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply new password")
	}

	h.recordActivity(ctx, user)

	return nil
}

func (h *FinalizePasswordResetHandler) recordActivity(ctx context.Context, user *User) {
	if user == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"email": user.Email,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during password reset: %v", err)
	}
}
