package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/kta-platform/kta-auth"
)

// newStoreFixture builds an IdentityStore over an in-memory sqlite
// database with the real repositories, so the ticket and stamp
// invariants are exercised against actual SQL.
func newStoreFixture(t *testing.T) (auth.IdentityStore, auth.RepositoryManager) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	db.RegisterModel((*auth.UserRole)(nil))
	t.Cleanup(func() { db.Close() })

	require.NoError(t, auth.BootstrapSchema(context.Background(), db))

	repo := auth.NewRepositoryManager(db)
	require.NoError(t, repo.Validate())

	return auth.NewIdentityStore(repo), repo
}

func TestIdentityStoreCreateAndVerify(t *testing.T) {
	ctx := context.Background()
	store, _ := newStoreFixture(t)

	user, err := store.Create(ctx, "Reset.User@Example.com", "Reset User", "Sup3rS3cret!")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "reset.user@example.com", user.Email)
	assert.Equal(t, user.Email, user.Username)
	assert.NotEmpty(t, user.SecurityStamp)
	assert.NotEqual(t, uuid.Nil, user.ID)

	t.Run("Lookup is case insensitive", func(t *testing.T) {
		found, err := store.FindByEmail(ctx, "RESET.USER@EXAMPLE.COM")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
	})

	t.Run("Password verifies against the stored hash", func(t *testing.T) {
		assert.NoError(t, store.CheckPassword(ctx, user, "Sup3rS3cret!"))
		assert.ErrorIs(t, store.CheckPassword(ctx, user, "wrong-password"), auth.ErrMismatchedHashAndPassword)
	})

	t.Run("New user has zero roles", func(t *testing.T) {
		roles, err := store.GetRoles(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, roles)
	})
}

func TestIdentityStoreTicketRedemption(t *testing.T) {
	ctx := context.Background()
	store, repo := newStoreFixture(t)

	user, err := store.Create(ctx, "redeem@example.com", "Redeem User", "Sup3rS3cret!")
	require.NoError(t, err)

	t.Run("Requested ticket redeems exactly once", func(t *testing.T) {
		ticket, err := store.GenerateResetTicket(ctx, user)
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, auth.TicketRequestedStatus, ticket.Status)

		redeemed, err := store.ValidateAndConsumeResetTicket(ctx, ticket.ID.String())
		require.NoError(t, err)
		assert.Equal(t, user.ID, redeemed.ID)

		stored, err := repo.ResetTickets().GetByID(ctx, ticket.ID.String())
		require.NoError(t, err)
		assert.Equal(t, auth.TicketConsumedStatus, stored.Status)
		assert.NotNil(t, stored.ConsumedAt)
		// The consume touches only the status columns.
		assert.Equal(t, user.ID, *stored.UserID)
		assert.Equal(t, user.Email, stored.Email)
		assert.Equal(t, ticket.SecurityStamp, stored.SecurityStamp)

		_, err = store.ValidateAndConsumeResetTicket(ctx, ticket.ID.String())
		assert.ErrorIs(t, err, auth.ErrTicketInvalid)
	})

	t.Run("Rotated stamp invalidates outstanding tickets", func(t *testing.T) {
		ticket, err := store.GenerateResetTicket(ctx, user)
		require.NoError(t, err)

		require.NoError(t, store.SetPassword(ctx, user, "An0therS3cret!"))

		_, err = store.ValidateAndConsumeResetTicket(ctx, ticket.ID.String())
		assert.ErrorIs(t, err, auth.ErrTicketInvalid)

		assert.NoError(t, store.CheckPassword(ctx, user, "An0therS3cret!"))
	})

	t.Run("Expired ticket is rejected", func(t *testing.T) {
		past := time.Now().Add(-25 * time.Hour)
		stale := &auth.ResetTicket{
			ID:            uuid.New(),
			UserID:        &user.ID,
			Email:         user.Email,
			SecurityStamp: user.SecurityStamp,
			Status:        auth.TicketRequestedStatus,
			CreatedAt:     &past,
		}

		_, err := repo.ResetTickets().Create(ctx, stale)
		require.NoError(t, err)

		_, err = store.ValidateAndConsumeResetTicket(ctx, stale.ID.String())
		assert.ErrorIs(t, err, auth.ErrTicketInvalid)
	})

	t.Run("Unknown and malformed tickets are rejected", func(t *testing.T) {
		_, err := store.ValidateAndConsumeResetTicket(ctx, uuid.NewString())
		assert.ErrorIs(t, err, auth.ErrTicketInvalid)

		_, err = store.ValidateAndConsumeResetTicket(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, auth.ErrTicketInvalid)
	})
}
