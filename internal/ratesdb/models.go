package ratesdb

import "time"

// Rate is one exchange-rate observation ready for upsert. The natural key
// is (BaseID, TargetID, CreatedAt) — the same base/target pair scraped
// again at a new timestamp is a new row, not an overwrite.
type Rate struct {
	BaseID    int64
	TargetID  int64
	Rate      float64
	Source    string
	CreatedAt time.Time
}

// Currency mirrors the currencies table row.
type Currency struct {
	ID            int64
	Code          string
	Name          string
	NamePlural    *string
	Symbol        string
	DecimalDigits int
	Icon          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
