package credit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/repository"
)

// ----- fakes -----

type fakeUsers struct {
	users     map[uint64]model.User
	updateErr error
	deltas    []int64
}

func (f *fakeUsers) FindByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) DeductCredits(_ context.Context, id uint64, amount int64) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	u, ok := f.users[id]
	if !ok || u.Credits < amount {
		return false, nil
	}
	u.Credits -= amount
	f.users[id] = u
	f.deltas = append(f.deltas, -amount)
	return true, nil
}

func (f *fakeUsers) AddCredits(_ context.Context, id uint64, amount int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Credits += amount
	f.users[id] = u
	f.deltas = append(f.deltas, amount)
	return nil
}

type fakeTxLog struct {
	recorded []model.CreditTransaction
	err      error
}

func (f *fakeTxLog) Record(_ context.Context, tx model.CreditTransaction) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, tx)
	return nil
}

type fakeCache struct {
	data    map[string]string
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool) {
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) {
	f.data[key] = value
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		delete(f.data, k)
		f.deleted = append(f.deleted, k)
	}
}

func newTestLedger(credits int64) (*Ledger, *fakeUsers, *fakeTxLog, *fakeCache) {
	users := &fakeUsers{users: map[uint64]model.User{
		1: {ID: 1, Email: "a@b.c", Credits: credits, Tier: "FREE"},
	}}
	txlog := &fakeTxLog{}
	cache := newFakeCache()
	l := NewLedger(Config{Enabled: true}, users, txlog, cache)
	return l, users, txlog, cache
}

// ----- tests -----

func TestDeductHappyPath(t *testing.T) {
	l, users, txlog, cache := newTestLedger(5)
	ctx := context.Background()

	err := l.Deduct(ctx, 1, 1, "PRD generation", map[string]string{"idea_id": "7"})
	require.NoError(t, err)

	assert.Equal(t, int64(4), users.users[1].Credits)
	require.Len(t, txlog.recorded, 1)
	tx := txlog.recorded[0]
	assert.Equal(t, model.TxDeduct, tx.Type)
	assert.Equal(t, int64(-1), tx.Amount)
	assert.Equal(t, "PRD generation", tx.Description)
	assert.Equal(t, "7", tx.Metadata["idea_id"])
	assert.NotEmpty(t, tx.ID)

	// both cache keys are dropped on write
	assert.Contains(t, cache.deleted, "credits:1")
	assert.Contains(t, cache.deleted, "credit_balance:1")
}

func TestDeductInsufficient(t *testing.T) {
	l, users, txlog, _ := newTestLedger(0)

	err := l.Deduct(context.Background(), 1, 1, "PRD generation", nil)
	require.ErrorIs(t, err, ErrInsufficientCredits)

	assert.Equal(t, int64(0), users.users[1].Credits)
	assert.Empty(t, txlog.recorded)
}

func TestDeductNeverGoesNegative(t *testing.T) {
	l, users, _, _ := newTestLedger(2)

	err := l.Deduct(context.Background(), 1, 3, "expensive", nil)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, int64(2), users.users[1].Credits)
}

func TestDeductUnknownUser(t *testing.T) {
	l, _, txlog, _ := newTestLedger(5)

	err := l.Deduct(context.Background(), 404, 1, "PRD generation", nil)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.Empty(t, txlog.recorded)
}

func TestDeductRacingSpendIsRefused(t *testing.T) {
	l, users, txlog, _ := newTestLedger(1)
	ctx := context.Background()

	// two spends against a single remaining credit: the store-side
	// guard lets exactly one through
	require.NoError(t, l.Deduct(ctx, 1, 1, "first", nil))
	err := l.Deduct(ctx, 1, 1, "second", nil)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	assert.Equal(t, int64(0), users.users[1].Credits)
	require.Len(t, txlog.recorded, 1)
	assert.Equal(t, []int64{-1}, users.deltas)
}

func TestDeductAuditFailureDoesNotRollBack(t *testing.T) {
	l, users, txlog, _ := newTestLedger(5)
	txlog.err = errors.New("broker down")

	err := l.Deduct(context.Background(), 1, 1, "PRD generation", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), users.users[1].Credits)
}

func TestRefundRestoresBalance(t *testing.T) {
	l, users, txlog, _ := newTestLedger(5)
	ctx := context.Background()

	require.NoError(t, l.Deduct(ctx, 1, 2, "generation", nil))
	require.NoError(t, l.Refund(ctx, 1, 2, "ai provider timeout"))

	assert.Equal(t, int64(5), users.users[1].Credits)
	require.Len(t, txlog.recorded, 2)
	refund := txlog.recorded[1]
	assert.Equal(t, model.TxRefund, refund.Type)
	assert.Equal(t, int64(2), refund.Amount)
	assert.Equal(t, "ai provider timeout", refund.Metadata["reason"])
}

func TestAddGrantsCredits(t *testing.T) {
	l, users, txlog, _ := newTestLedger(5)

	err := l.Add(context.Background(), 1, 10, model.TxAdminAdjustment, "support grant", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(15), users.users[1].Credits)
	require.Len(t, txlog.recorded, 1)
	assert.Equal(t, model.TxAdminAdjustment, txlog.recorded[0].Type)
	assert.Equal(t, int64(10), txlog.recorded[0].Amount)
}

func TestCheckBalance(t *testing.T) {
	l, _, _, cache := newTestLedger(3)
	ctx := context.Background()

	bc, err := l.CheckBalance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, bc.Allowed)
	assert.Equal(t, int64(3), bc.Credits)
	assert.Equal(t, "FREE", bc.Tier)

	// second read is served from cache even if the store changes
	_, ok := cache.data["credit_balance:1"]
	assert.True(t, ok)
}

func TestCheckBalanceZeroIsNotAllowed(t *testing.T) {
	l, _, _, _ := newTestLedger(0)

	bc, err := l.CheckBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, bc.Allowed)
}

func TestBypassModes(t *testing.T) {
	users := &fakeUsers{users: map[uint64]model.User{}}
	for _, cfg := range []Config{
		{Enabled: false},
		{Enabled: true, LocalDevBypass: true},
		{Enabled: true, OpenSourceMode: true},
	} {
		l := NewLedger(cfg, users, &fakeTxLog{}, newFakeCache())

		bc, err := l.CheckBalance(context.Background(), 42)
		require.NoError(t, err)
		assert.True(t, bc.Allowed)
		assert.Equal(t, int64(999999), bc.Credits)
		assert.Equal(t, "UNLIMITED", bc.Tier)

		// deduct is a no-op: no user row exists and none is needed
		assert.NoError(t, l.Deduct(context.Background(), 42, 1, "free", nil))
	}
}

func TestBalanceUsesCache(t *testing.T) {
	l, users, _, _ := newTestLedger(7)
	ctx := context.Background()

	b, err := l.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b)

	// mutate the store behind the cache; the cached value wins until TTL
	u := users.users[1]
	u.Credits = 1
	users.users[1] = u

	b, err = l.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b)
}

func TestCostPolicy(t *testing.T) {
	p := NewCostPolicy(map[model.DocumentType]int64{model.DocTypePRD: 3}, 1)

	assert.Equal(t, int64(3), p.CostFor(model.DocTypePRD))
	assert.Equal(t, int64(1), p.CostFor(model.DocTypeRoadmap))

	// non-positive configs clamp to 1
	p = NewCostPolicy(map[model.DocumentType]int64{model.DocTypePRD: 0}, 0)
	assert.Equal(t, int64(1), p.CostFor(model.DocTypePRD))
	assert.Equal(t, int64(1), p.CostFor(model.DocTypeArchitecture))
}
