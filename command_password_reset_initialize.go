package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetLinkPath is the default path embedded in redemption links.
var ResetLinkPath = "/password-reset"

// InitializePasswordResetMessage asks for a reset ticket to be minted and
// delivered to the account's email address.
type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Ticket  *ResetTicket
	Link    string
	Success bool
}

type InitializePasswordResetHandler struct {
	store    IdentityStore
	mailer   Mailer
	linkBase string
	activity ActivitySink
	logger   Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
// linkBase is the absolute prefix for redemption links, e.g.
// "https://app.example.com".
func NewInitializePasswordResetHandler(store IdentityStore, mailer Mailer, linkBase string) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		store:    store,
		mailer:   mailer,
		linkBase: linkBase,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit reset request events.
func (h *InitializePasswordResetHandler) WithActivitySink(sink ActivitySink) *InitializePasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.store.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) || goerrors.Is(err, ErrIdentityNotFound) {
			// Unlike sign in, this path reports non existence so the
			// caller can tell the address is not registered.
			return goerrors.Wrap(ErrIdentityNotFound, goerrors.CategoryNotFound, "the provided email is not registered").
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	ticket, err := h.store.GenerateResetTicket(ctx, user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint password reset ticket")
	}

	resp.Ticket = ticket
	resp.Link = h.redemptionLink(ticket)

	// The ticket is already minted at this point. A dispatch failure is
	// surfaced to the caller so the send can be retried, never swallowed.
	if err := h.mailer.Send(ctx, user.Email, "Account password reset link", resp.Link); err != nil {
		h.logger.Error("reset link dispatch failed for %s: %v", user.Email, err)
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to deliver password reset email").
			WithTextCode("DELIVERY_FAILURE")
	}

	h.recordActivity(ctx, user, ticket)

	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *InitializePasswordResetHandler) redemptionLink(ticket *ResetTicket) string {
	return fmt.Sprintf("%s%s/%s", h.linkBase, ResetLinkPath, ticket.ID.String())
}

func (h *InitializePasswordResetHandler) recordActivity(ctx context.Context, user *User, ticket *ResetTicket) {
	event := ActivityEvent{
		EventType: ActivityEventResetRequested,
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"ticket_id": ticket.ID.String(),
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during reset request: %v", err)
	}
}
