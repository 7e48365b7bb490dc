package ratesdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier records every Exec call made against it, optionally failing
// on a configured call index. Sufficient to exercise UpsertRates without a
// real Postgres connection.
type fakeQuerier struct {
	calls   []execCall
	failAt  int // -1 means never fail
	failErr error
}

type execCall struct {
	sql  string
	args []any
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{failAt: -1}
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.failAt == idx {
		return pgconn.CommandTag{}, f.failErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestUpsertRatesWritesEveryRow(t *testing.T) {
	q := newFakeQuerier()
	now := time.Now().UTC()

	rates := []Rate{
		{BaseID: 1, TargetID: 2, Rate: 0.91, Source: "multi-a", CreatedAt: now},
		{BaseID: 1, TargetID: 3, Rate: 0.79, Source: "multi-a", CreatedAt: now},
	}

	require.NoError(t, UpsertRates(context.Background(), q, rates))
	require.Len(t, q.calls, 2)

	assert.Equal(t, []any{int64(1), int64(2), 0.91, "multi-a", now}, q.calls[0].args)
	assert.Equal(t, []any{int64(1), int64(3), 0.79, "multi-a", now}, q.calls[1].args)
}

func TestUpsertRatesUsesNaturalKeyConflictClause(t *testing.T) {
	q := newFakeQuerier()
	now := time.Now().UTC()

	rate := Rate{BaseID: 1, TargetID: 2, Rate: 0.9, Source: "src1", CreatedAt: now}
	require.NoError(t, UpsertRates(context.Background(), q, []Rate{rate}))

	sql := q.calls[0].sql
	assert.Contains(t, sql, "ON CONFLICT (base_currency_id, target_currency_id, created_at)")
	assert.Contains(t, sql, "DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source")

	rate.Rate = 0.91
	rate.Source = "src2"
	require.NoError(t, UpsertRates(context.Background(), q, []Rate{rate}))

	require.Len(t, q.calls, 2, "re-inserting the same natural key issues the same upsert statement, letting Postgres resolve the conflict")
	assert.Equal(t, []any{int64(1), int64(2), 0.91, "src2", now}, q.calls[1].args)
}

func TestUpsertRatesEmptyIsNoOp(t *testing.T) {
	q := newFakeQuerier()
	require.NoError(t, UpsertRates(context.Background(), q, nil))
	assert.Empty(t, q.calls)
}

func TestUpsertRatesStopsOnFirstError(t *testing.T) {
	q := newFakeQuerier()
	q.failAt = 1
	q.failErr = errors.New("constraint violation")

	rates := []Rate{
		{BaseID: 1, TargetID: 2, Rate: 0.91, Source: "multi-a", CreatedAt: time.Now().UTC()},
		{BaseID: 1, TargetID: 3, Rate: 0.79, Source: "multi-a", CreatedAt: time.Now().UTC()},
		{BaseID: 1, TargetID: 4, Rate: 0.5, Source: "multi-a", CreatedAt: time.Now().UTC()},
	}

	err := UpsertRates(context.Background(), q, rates)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constraint violation")
	assert.Len(t, q.calls, 2, "execution should stop at the failing row, not continue past it")
}
