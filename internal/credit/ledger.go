// Package credit implements the ledger that gates paid AI operations.
// Balances live in the user store and every mutation appends an
// immutable audit transaction; a short-lived Redis cache fronts the
// balance reads. Bypass modes (credit system disabled, local-dev,
// open-source) are plain configuration injected at construction so
// the deduct/refund logic stays testable without process-wide state.
package credit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ideaforge/ideaforge/internal/model"
)

// ErrInsufficientCredits is an expected business outcome, not a
// system fault: the governed operation must fail terminally and the
// user has to add credits before retrying.
var ErrInsufficientCredits = errors.New("insufficient credits")

// bypassBalance is the sentinel reported when charging is bypassed.
// It is never written to the user store.
const bypassBalance = 999999

// Config controls ledger behavior. All three bypass flags disable
// charging entirely; they differ only in why.
type Config struct {
	Enabled        bool          // credit system globally enabled
	LocalDevBypass bool          // local development bypass
	OpenSourceMode bool          // self-hosted/open-source deployments run uncharged
	CacheTTL       time.Duration // balance/check cache lifetime (default 60s)
}

// Bypassed reports whether charging is switched off.
func (c Config) Bypassed() bool {
	return !c.Enabled || c.LocalDevBypass || c.OpenSourceMode
}

// UserStore is the slice of user persistence the ledger needs. Both
// balance mutations are single atomic adjustments; DeductCredits
// reports false without error when the stored balance is short, so
// concurrent spends race safely inside the store.
type UserStore interface {
	FindByID(ctx context.Context, id uint64) (model.User, error)
	DeductCredits(ctx context.Context, id uint64, amount int64) (bool, error)
	AddCredits(ctx context.Context, id uint64, amount int64) error
}

// TransactionLog appends audit rows. Append failures are reported to
// the caller of Record but the ledger treats them as warnings only:
// the balance write is the consistency-critical path, the audit row
// is not, so a lost audit row never rolls back a balance change.
type TransactionLog interface {
	Record(ctx context.Context, tx model.CreditTransaction) error
}

// BalanceCache is the delete-on-write cache in front of balance
// reads. Implementations must treat an unavailable backend as a
// permanent miss rather than an error.
type BalanceCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

// BalanceCheck is the answer to "may this user start a paid
// operation right now".
type BalanceCheck struct {
	Allowed bool   `json:"allowed"`
	Credits int64  `json:"credits"`
	Tier    string `json:"tier"`
}

// Ledger tracks spendable balances with an audit trail.
type Ledger struct {
	cfg   Config
	users UserStore
	txlog TransactionLog
	cache BalanceCache
}

// NewLedger wires a ledger. cache may be a no-op implementation when
// Redis is unavailable. A zero CacheTTL defaults to 60 seconds.
func NewLedger(cfg Config, users UserStore, txlog TransactionLog, cache BalanceCache) *Ledger {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 60 * time.Second
	}
	return &Ledger{cfg: cfg, users: users, txlog: txlog, cache: cache}
}

func balanceKey(userID uint64) string { return fmt.Sprintf("credits:%d", userID) }
func checkKey(userID uint64) string   { return fmt.Sprintf("credit_balance:%d", userID) }

// CheckBalance reports whether the user may start a paid operation.
// Bypass modes always allow and report the sentinel balance. Results
// are cached under credit_balance:{userID} for CacheTTL.
func (l *Ledger) CheckBalance(ctx context.Context, userID uint64) (BalanceCheck, error) {
	if l.cfg.Bypassed() {
		return BalanceCheck{Allowed: true, Credits: bypassBalance, Tier: "UNLIMITED"}, nil
	}
	if raw, ok := l.cache.Get(ctx, checkKey(userID)); ok {
		var bc BalanceCheck
		if err := json.Unmarshal([]byte(raw), &bc); err == nil {
			return bc, nil
		}
	}
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return BalanceCheck{}, err
	}
	bc := BalanceCheck{Allowed: u.Credits > 0, Credits: u.Credits, Tier: u.Tier}
	if b, err := json.Marshal(bc); err == nil {
		l.cache.Set(ctx, checkKey(userID), string(b), l.cfg.CacheTTL)
	}
	return bc, nil
}

// Balance returns the user's current balance, served from the
// credits:{userID} cache when fresh.
func (l *Ledger) Balance(ctx context.Context, userID uint64) (int64, error) {
	if l.cfg.Bypassed() {
		return bypassBalance, nil
	}
	if raw, ok := l.cache.Get(ctx, balanceKey(userID)); ok {
		var n int64
		if _, err := fmt.Sscan(raw, &n); err == nil {
			return n, nil
		}
	}
	u, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	l.cache.Set(ctx, balanceKey(userID), fmt.Sprint(u.Credits), l.cfg.CacheTTL)
	return u.Credits, nil
}

// Deduct removes amount credits from the user. It fails with
// ErrInsufficientCredits when the stored balance is lower than
// amount; bypass modes make it a no-op. The balance check and the
// subtraction happen in one store operation, so concurrent spends
// can not interleave past the check and a stale cache can not let a
// spend through.
func (l *Ledger) Deduct(ctx context.Context, userID uint64, amount int64, description string, metadata map[string]string) error {
	if l.cfg.Bypassed() || amount <= 0 {
		return nil
	}
	applied, err := l.users.DeductCredits(ctx, userID, amount)
	if err != nil {
		return err
	}
	if !applied {
		// refused either because the user is missing or the balance
		// is short; look the user up to report the right error
		if _, err := l.users.FindByID(ctx, userID); err != nil {
			return err
		}
		return ErrInsufficientCredits
	}
	l.appendAudit(ctx, model.NewCreditTransaction(userID, -amount, model.TxDeduct, description, metadata))
	l.invalidate(ctx, userID)
	return nil
}

// Refund adds amount credits back as compensation for a deduct whose
// downstream operation failed. The triggering failure is recorded in
// the transaction metadata under "reason".
func (l *Ledger) Refund(ctx context.Context, userID uint64, amount int64, reason string) error {
	if l.cfg.Bypassed() || amount <= 0 {
		return nil
	}
	if err := l.users.AddCredits(ctx, userID, amount); err != nil {
		return err
	}
	l.appendAudit(ctx, model.NewCreditTransaction(userID, amount, model.TxRefund, "refund", map[string]string{"reason": reason}))
	l.invalidate(ctx, userID)
	return nil
}

// Add is the generic credit increase used for grants, promotions and
// admin adjustments.
func (l *Ledger) Add(ctx context.Context, userID uint64, amount int64, txType model.TransactionType, description string, metadata map[string]string) error {
	if l.cfg.Bypassed() || amount <= 0 {
		return nil
	}
	if err := l.users.AddCredits(ctx, userID, amount); err != nil {
		return err
	}
	l.appendAudit(ctx, model.NewCreditTransaction(userID, amount, txType, description, metadata))
	l.invalidate(ctx, userID)
	return nil
}

// appendAudit writes the audit row, logging append failures instead
// of propagating them: the balance write already happened and is not
// rolled back for a lost audit record.
func (l *Ledger) appendAudit(ctx context.Context, tx model.CreditTransaction) {
	if err := l.txlog.Record(ctx, tx); err != nil {
		log.Printf("credit-ledger: transaction log append failed (user=%d type=%s amount=%d): %v",
			tx.UserID, tx.Type, tx.Amount, err)
	}
}

// invalidate deletes both cached entries so the next read is a
// forced read-through.
func (l *Ledger) invalidate(ctx context.Context, userID uint64) {
	l.cache.Delete(ctx, balanceKey(userID), checkKey(userID))
}
