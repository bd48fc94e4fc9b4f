package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the business reason for a credit mutation.
type TransactionType string

const (
	TxDeduct          TransactionType = "DEDUCT"
	TxAdd             TransactionType = "ADD"
	TxRefund          TransactionType = "REFUND"
	TxAdminAdjustment TransactionType = "ADMIN_ADJUSTMENT"
)

// CreditTransaction is one immutable row in the credit audit trail.
// Amount is signed: negative for deductions, positive for additions
// and refunds.  Rows are appended once per ledger mutation and never
// updated or deleted, so for any user the sum of amounts equals the
// current balance minus the initial balance.
//
// Fields:
//  ID          – UUID primary key.
//  UserID      – user whose balance the transaction affected.
//  Amount      – signed credit delta.
//  Type        – DEDUCT, ADD, REFUND or ADMIN_ADJUSTMENT.
//  Description – human-readable summary.
//  Metadata    – free-form key/value context (failure reason,
//                document type, previous version, ...).
//  CreatedAt   – append timestamp (UTC).
type CreditTransaction struct {
	ID          string            // credit_transactions.id
	UserID      uint64            // credit_transactions.user_id
	Amount      int64             // credit_transactions.amount
	Type        TransactionType   // credit_transactions.type
	Description string            // credit_transactions.description
	Metadata    map[string]string // credit_transactions.metadata (JSON)
	CreatedAt   time.Time         // credit_transactions.created_at
}

// NewCreditTransaction builds an audit row with a fresh identity and
// the current UTC timestamp.  Metadata may be nil.
func NewCreditTransaction(userID uint64, amount int64, txType TransactionType, description string, metadata map[string]string) CreditTransaction {
	return CreditTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Type:        txType,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
}
