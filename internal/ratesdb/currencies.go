package ratesdb

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const currencyColumns = "id, code, name, name_plural, symbol, decimal_digits, icon, created_at, updated_at"

// ListCurrencies returns every known currency, ordered by code. Seeding the
// currency catalog is out of scope here; this only reads what a prior
// process has already populated.
func ListCurrencies(ctx context.Context, pool *pgxpool.Pool) ([]Currency, error) {
	rows, err := pool.Query(ctx, fmt.Sprintf("SELECT %s FROM currencies ORDER BY code", currencyColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.NamePlural, &c.Symbol, &c.DecimalDigits, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}
	return currencies, nil
}

// GetCurrencyByID looks up a single currency by primary key.
func GetCurrencyByID(ctx context.Context, pool *pgxpool.Pool, id int64) (*Currency, error) {
	row := pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM currencies WHERE id = $1", currencyColumns), id)

	var c Currency
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.NamePlural, &c.Symbol, &c.DecimalDigits, &c.Icon, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to get currency %d: %w", id, err)
	}
	return &c, nil
}
