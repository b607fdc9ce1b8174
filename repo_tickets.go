package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeResetTicketSQL flips a requested ticket to consumed. The status
// guard makes the consume a compare-and-set: only one redeemer can win,
// and only the status columns are touched.
var ConsumeResetTicketSQL = `UPDATE "reset_tickets" AS "tkt"
SET
	"status" = 'consumed',
	"consumed_at" = CURRENT_TIMESTAMP,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"tkt"."status" = 'requested'
AND (
	"tkt"."id" = ?
) RETURNING *;`

type ResetTickets interface {
	repository.Repository[*ResetTicket]

	GetByIDInTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*ResetTicket, error)

	Consume(ctx context.Context, id uuid.UUID) (*ResetTicket, error)
	ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*ResetTicket, error)
}

type resetTickets struct {
	repository.Repository[*ResetTicket]
	db *bun.DB
}

var (
	_ ResetTickets                        = (*resetTickets)(nil)
	_ repository.Repository[*ResetTicket] = (*resetTickets)(nil)
)

func NewResetTicketsRepository(db *bun.DB) ResetTickets {
	repo := repository.NewRepository[*ResetTicket](db, repository.ModelHandlers[*ResetTicket]{
		NewRecord: func() *ResetTicket { return &ResetTicket{} },
		GetID: func(record *ResetTicket) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *ResetTicket, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &resetTickets{
		Repository: repo,
		db:         db,
	}
}

// GetByIDInTx resolves a ticket by ID inside the caller's transaction.
func (a *resetTickets) GetByIDInTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*ResetTicket, error) {
	record := &ResetTicket{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *resetTickets) Consume(ctx context.Context, id uuid.UUID) (*ResetTicket, error) {
	return a.ConsumeTx(ctx, a.db, id)
}

// ConsumeTx redeems a ticket. Not-found here means the ticket was not in
// the requested status anymore, e.g. a concurrent redeemer got there
// first.
func (a *resetTickets) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*ResetTicket, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeResetTicketSQL, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}
