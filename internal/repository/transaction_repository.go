package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ideaforge/ideaforge/internal/model"
)

// TransactionRepo appends rows to the 'credit_transactions' audit
// trail. Rows are write-once: there are no update or delete paths,
// so the table is a permanent record of every balance mutation.
type TransactionRepo struct{ DB *sql.DB }

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{DB: db} }

// Record appends one audit row. Metadata is stored as JSON; a nil map
// is stored as SQL NULL.
func (r *TransactionRepo) Record(ctx context.Context, tx model.CreditTransaction) error {
	var meta interface{}
	if tx.Metadata != nil {
		b, err := json.Marshal(tx.Metadata)
		if err != nil {
			return err
		}
		meta = string(b)
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO credit_transactions (id, user_id, amount, type, description, metadata, created_at) VALUES (?,?,?,?,?,?,?)",
		tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Description, meta, tx.CreatedAt)
	return err
}

// ListByUser returns a user's transactions, newest first, capped at
// limit rows (0 means a default page of 50).
func (r *TransactionRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,amount,type,description,metadata,created_at FROM credit_transactions WHERE user_id=? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CreditTransaction
	for rows.Next() {
		var (
			tx   model.CreditTransaction
			meta sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Description, &meta, &tx.CreatedAt); err != nil {
			return nil, err
		}
		if meta.Valid && meta.String != "" {
			// Malformed metadata is tolerated; the audit row is still useful.
			_ = json.Unmarshal([]byte(meta.String), &tx.Metadata)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}
