package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auth "github.com/kta-platform/kta-auth"
)

func TestRegisterUserHandler(t *testing.T) {
	ctx := context.Background()

	msg := auth.RegisterUserMessage{
		Email:    "newuser@example.com",
		Fullname: "New User",
		Password: "Sup3rS3cret!",
	}

	t.Run("Creates the user and emits an event", func(t *testing.T) {
		store := new(MockIdentityStore)
		sink := &memorySink{}

		created := newStoredUser(msg.Email)
		store.On("FindByEmail", mock.Anything, msg.Email).Return(nil, auth.ErrIdentityNotFound)
		store.On("Create", mock.Anything, msg.Email, msg.Fullname, msg.Password).Return(created, nil)

		handler := auth.NewRegisterUserHandler(store).WithActivitySink(sink)

		err := handler.Execute(ctx, msg)
		assert.NoError(t, err)

		events := sink.Events()
		assert.Len(t, events, 1)
		assert.Equal(t, auth.ActivityEventUserRegistered, events[0].EventType)
		assert.Equal(t, created.ID.String(), events[0].UserID)

		store.AssertExpectations(t)
	})

	t.Run("Existing email is rejected", func(t *testing.T) {
		store := new(MockIdentityStore)

		existing := newStoredUser(msg.Email)
		store.On("FindByEmail", mock.Anything, msg.Email).Return(existing, nil)

		handler := auth.NewRegisterUserHandler(store)

		err := handler.Execute(ctx, msg)
		assert.Error(t, err)
		assert.True(t, goerrors.Is(err, auth.ErrEmailInUse))
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Existing email wins over a weak password", func(t *testing.T) {
		store := new(MockIdentityStore)

		existing := newStoredUser(msg.Email)
		store.On("FindByEmail", mock.Anything, msg.Email).Return(existing, nil)

		handler := auth.NewRegisterUserHandler(store)

		weak := msg
		weak.Password = "short"

		err := handler.Execute(ctx, weak)
		assert.Error(t, err)
		assert.True(t, goerrors.Is(err, auth.ErrEmailInUse))
		assert.False(t, auth.IsPolicyViolation(err))
	})

	t.Run("Policy violation passes through", func(t *testing.T) {
		store := new(MockIdentityStore)

		store.On("FindByEmail", mock.Anything, msg.Email).Return(nil, auth.ErrIdentityNotFound)
		store.On("Create", mock.Anything, msg.Email, msg.Fullname, "weakpass").
			Return(nil, auth.NewPolicyViolation("password must contain at least one digit"))

		handler := auth.NewRegisterUserHandler(store)

		weak := msg
		weak.Password = "weakpass"

		err := handler.Execute(ctx, weak)
		assert.Error(t, err)
		assert.True(t, auth.IsPolicyViolation(err))
	})

	t.Run("Lookup failure does not attempt creation", func(t *testing.T) {
		store := new(MockIdentityStore)

		store.On("FindByEmail", mock.Anything, msg.Email).Return(nil, assert.AnError)

		handler := auth.NewRegisterUserHandler(store)

		err := handler.Execute(ctx, msg)
		assert.Error(t, err)
		assert.False(t, goerrors.Is(err, auth.ErrEmailInUse))
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cancelled context aborts", func(t *testing.T) {
		store := new(MockIdentityStore)
		handler := auth.NewRegisterUserHandler(store)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := handler.Execute(cancelled, msg)
		assert.Error(t, err)
		store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("Registration never issues a token", func(t *testing.T) {
		store := new(MockIdentityStore)

		created := newStoredUser(msg.Email)
		created.ID = uuid.New()
		store.On("FindByEmail", mock.Anything, msg.Email).Return(nil, auth.ErrIdentityNotFound)
		store.On("Create", mock.Anything, msg.Email, msg.Fullname, msg.Password).Return(created, nil)

		handler := auth.NewRegisterUserHandler(store)

		err := handler.Execute(ctx, msg)
		assert.NoError(t, err)
		store.AssertNotCalled(t, "GetRoles", mock.Anything, mock.Anything)
	})
}

func TestRegisterUserMessageType(t *testing.T) {
	assert.Equal(t, "user.register", auth.RegisterUserMessage{}.Type())
}
