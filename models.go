package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity model. The email is the case insensitive identity
// key, the username mirrors it. PasswordHash never leaves the store
// boundary in cleartext form.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	FullName      string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	SecurityStamp string     `bun:"security_stamp,notnull" json:"-"`
	Roles         []*Role    `bun:"m2m:user_roles,join:User=Role" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// RotateSecurityStamp assigns a fresh stamp, invalidating every reset
// ticket minted against the previous one.
func (u *User) RotateSecurityStamp() {
	u.SecurityStamp = uuid.NewString()
}

// Role is a named permission group. Assignment and management are
// external, the core only reads role names at sign in.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string    `bun:"name,notnull,unique" json:"name,omitempty"`
}

// UserRole joins users to roles
type UserRole struct {
	bun.BaseModel `bun:"table:user_roles,alias:usrrol"`
	UserID        uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	User          *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid" json:"role_id,omitempty"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}

const (
	// TicketRequestedStatus is the only redeemable status
	TicketRequestedStatus = "requested"
	// TicketConsumedStatus marks a redeemed ticket
	TicketConsumedStatus = "consumed"
)

// TicketValidityPeriod is how long a reset ticket can be redeemed after
// it was minted.
var TicketValidityPeriod = "24h"

// ResetTicket is a single use password reset token. Its value is opaque
// to the caller, it is bound to the security stamp current at generation
// time and delivered out of band via email.
type ResetTicket struct {
	bun.BaseModel `bun:"table:reset_tickets,alias:tkt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	SecurityStamp string     `bun:"security_stamp,notnull" json:"-"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	ConsumedAt    *time.Time `bun:"consumed_at,nullzero" json:"consumed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
