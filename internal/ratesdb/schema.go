package ratesdb

import (
	"context"
	"fmt"
)

// schemaDDL creates the currencies table and the range-partitioned
// exchange_rates parent table. Partitions themselves are created on demand
// by EnsurePartitionForMonth / CreateNextMonthPartition, never here.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS currencies (
	id SERIAL PRIMARY KEY,
	code VARCHAR(3) UNIQUE NOT NULL,
	name TEXT NOT NULL,
	name_plural TEXT,
	symbol TEXT NOT NULL,
	decimal_digits INT NOT NULL DEFAULT 2,
	icon TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS exchange_rates (
	id BIGSERIAL,
	base_currency_id INT NOT NULL REFERENCES currencies(id),
	target_currency_id INT NOT NULL REFERENCES currencies(id),
	rate DOUBLE PRECISION NOT NULL,
	source VARCHAR(50) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (id, created_at),
	UNIQUE (base_currency_id, target_currency_id, created_at)
) PARTITION BY RANGE (created_at);
`

// EnsureSchema creates the base tables if they do not already exist. Safe
// to call on every startup; idempotent.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
