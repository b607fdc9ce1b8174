package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// identityStore is the default IdentityStore, backed by the bun
// repositories. Ticket consumption and password changes run inside a
// transaction so the stamp check and the consume are atomic.
type identityStore struct {
	repo   RepositoryManager
	logger Logger
}

// NewIdentityStore wraps a RepositoryManager in the IdentityStore
// capability interface.
func NewIdentityStore(repo RepositoryManager) IdentityStore {
	return &identityStore{
		repo:   repo,
		logger: defLogger{},
	}
}

var _ IdentityStore = (*identityStore)(nil)

func (s *identityStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.Users().GetByEmail(ctx, email)
}

func (s *identityStore) CheckPassword(ctx context.Context, user *User, password string) error {
	if user == nil {
		return ErrIdentityNotFound
	}
	return ComparePasswordAndHash(password, user.PasswordHash)
}

func (s *identityStore) GetRoles(ctx context.Context, user *User) ([]string, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}
	return s.repo.Users().ListRoleNames(ctx, user.ID)
}

// Create registers a new identity with zero roles, a fresh random
// security stamp, and the password policy applied. Only the first policy
// violation is reported.
func (s *identityStore) Create(ctx context.Context, email, fullname, password string) (*User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		FullName:     fullname,
		PasswordHash: hash,
	}

	if user, err = s.repo.Users().Create(ctx, user); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	return user, nil
}

func (s *identityStore) GenerateResetTicket(ctx context.Context, user *User) (*ResetTicket, error) {
	if user == nil {
		return nil, ErrIdentityNotFound
	}

	ticket := &ResetTicket{
		ID:            uuid.New(),
		UserID:        &user.ID,
		Email:         user.Email,
		SecurityStamp: user.SecurityStamp,
		Status:        TicketRequestedStatus,
	}

	return s.repo.ResetTickets().Create(ctx, ticket)
}

// ValidateAndConsumeResetTicket redeems a ticket. The checks and the
// consume run in one transaction so a ticket can never be redeemed twice,
// even under concurrent attempts.
func (s *identityStore) ValidateAndConsumeResetTicket(ctx context.Context, raw string) (*User, error) {
	var user *User

	ticketID, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrTicketInvalid
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ticket, err := s.repo.ResetTickets().GetByIDInTx(ctx, tx, ticketID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrTicketInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve reset ticket")
		}

		if ticket.Status != TicketRequestedStatus {
			return ErrTicketInvalid
		}

		if ticket.CreatedAt == nil {
			return goerrors.New("reset ticket is missing creation date", goerrors.CategoryInternal)
		}

		expired, err := IsOutsideThresholdPeriod(*ticket.CreatedAt, TicketValidityPeriod)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check ticket expiration period")
		}

		if expired {
			return ErrTicketInvalid
		}

		if ticket.UserID == nil {
			return goerrors.New("reset ticket is not associated with a user", goerrors.CategoryInternal)
		}

		if user, err = s.repo.Users().GetByIDInTx(ctx, tx, *ticket.UserID); err != nil {
			return ErrTicketInvalid
		}

		// A rotated stamp invalidates every ticket minted before the
		// rotation, redeemed or not.
		if ticket.SecurityStamp != user.SecurityStamp {
			return ErrTicketInvalid
		}

		// The consume only succeeds while the ticket is still in the
		// requested status, so a concurrent redeemer loses here even if
		// both passed the checks above.
		if _, err := s.repo.ResetTickets().ConsumeTx(ctx, tx, ticket.ID); err != nil {
			if goerrors.IsNotFound(err) {
				return ErrTicketInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume reset ticket")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// SetPassword applies the new password and rotates the security stamp in
// a single statement.
func (s *identityStore) SetPassword(ctx context.Context, user *User, password string) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	if err := ValidatePassword(password); err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	stamp := uuid.NewString()
	if err := s.repo.Users().SetPassword(ctx, user.ID, hash, stamp); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
	}

	user.PasswordHash = hash
	user.SecurityStamp = stamp

	return nil
}
