package ratesdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx, and *pgxpool.Conn — any
// handle that can run a query. UpsertRates takes one of these rather than
// a concrete type so callers control their own session/transaction
// lifecycle instead of the writer opening one implicitly.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const upsertRatesSQL = `
INSERT INTO exchange_rates (base_currency_id, target_currency_id, rate, source, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (base_currency_id, target_currency_id, created_at)
DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source
`

// UpsertRates writes a batch of rates using the natural key
// (base_currency_id, target_currency_id, created_at): a retry that
// re-scrapes the same base/target within the same instant updates the
// existing row instead of erroring on the unique constraint.
//
// This is the only bulk-write function in the package. It never owns a
// transaction or connection — the caller decides whether to run it inside
// an already-open pgx.Tx (multi-batch jobs spanning several currencies) or
// via the thin UpsertRatesCommit wrapper below. This resolves having two
// near-duplicate writer functions with different, implicit session
// ownership: there is exactly one writer, and ownership is always explicit
// at the call site.
func UpsertRates(ctx context.Context, db Querier, rates []Rate) error {
	if len(rates) == 0 {
		return nil
	}

	for _, r := range rates {
		if _, err := db.Exec(ctx, upsertRatesSQL, r.BaseID, r.TargetID, r.Rate, r.Source, r.CreatedAt); err != nil {
			return fmt.Errorf("failed to upsert rate %s->%s (source %s): %w", fmt.Sprint(r.BaseID), fmt.Sprint(r.TargetID), r.Source, err)
		}
	}

	return nil
}

// UpsertRatesCommit acquires a connection, opens a transaction, writes the
// batch via UpsertRates, and commits. Use this for a standalone write with
// no surrounding multi-batch job transaction.
func UpsertRatesCommit(ctx context.Context, pool *pgxpool.Pool, rates []Rate) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := UpsertRates(ctx, tx, rates); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("upsert failed (%w), rollback also failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rate upsert: %w", err)
	}

	return nil
}
