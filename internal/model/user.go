package model

import "time"

// Roles assignable to an account.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  Credits is the spendable balance consumed by AI generation
// operations; it is mutated only through the credit ledger and never
// decremented below zero.  Tier is informational (FREE/PRO) and feeds
// the balance-check response.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – USER or ADMIN; admins may grant credits.
//  Credits      – current spendable credit balance (non-negative).
//  Tier         – subscription tier name (e.g. FREE, PRO).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	Credits      int64     // users.credits
	Tier         string    // users.tier
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
