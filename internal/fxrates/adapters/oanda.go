package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/fxrates/internal/fxrates"
)

const oandaSource = "oanda"

// Oanda is a single-pair adapter reading the OANDA exchange-rates chart
// API, which returns a time series; the last entry's mid price is kept.
type Oanda struct {
	base   string
	target string
}

// NewOanda constructs the oanda adapter. Requires target.
func NewOanda(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), Target: strings.ToUpper(target), NeedsTarget: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Oanda{base: strings.ToUpper(base), target: strings.ToUpper(target)}, nil
}

func (a *Oanda) SourceName() string            { return oandaSource }
func (a *Oanda) Capability() fxrates.Capability { return fxrates.CapabilitySinglePair }

func (a *Oanda) Extract(ctx context.Context) ([]byte, error) {
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)

	u := fmt.Sprintf(
		"https://fxds-public-exchange-rates-api.oanda.com/cc-api/currencies?base=%s&quote=%s&data_type=chart&start_date=%s&end_date=%s",
		a.base, a.target, yesterday.Format("2006-01-02"), now.Format("2006-01-02"))
	return doGet(ctx, u, oandaSource)
}

type oandaPayload struct {
	Responses []struct {
		AverageBid float64 `json:"average_bid"`
		AverageAsk float64 `json:"average_ask"`
	} `json:"responses"`
}

func (a *Oanda) Transform(raw []byte) (map[string]float64, error) {
	var payload oandaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &fxrates.ParseError{Source: oandaSource, Err: err}
	}
	if len(payload.Responses) == 0 {
		return nil, fxrates.ErrEmptyResult
	}

	last := payload.Responses[len(payload.Responses)-1]
	mid := (last.AverageBid + last.AverageAsk) / 2
	if mid == 0 {
		return nil, fxrates.ErrEmptyResult
	}

	return map[string]float64{a.target: mid}, nil
}
