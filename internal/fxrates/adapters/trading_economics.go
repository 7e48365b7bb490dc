package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const tradingEconomicsSource = "trading-economics"

// TradingEconomics is a multi-pair adapter reading the heatmap table at
// tradingeconomics.com/currencies for a given base.
type TradingEconomics struct {
	base string
}

// NewTradingEconomics constructs the trading-economics adapter. Only base
// is required; target/baseName/baseNamePlural are unused.
func NewTradingEconomics(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &TradingEconomics{base: strings.ToUpper(base)}, nil
}

func (a *TradingEconomics) SourceName() string          { return tradingEconomicsSource }
func (a *TradingEconomics) Capability() fxrates.Capability { return fxrates.CapabilityMultiPair }

func (a *TradingEconomics) Extract(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("https://tradingeconomics.com/currencies?base=%s", a.base)
	return doGet(ctx, url, tradingEconomicsSource)
}

func (a *TradingEconomics) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: tradingEconomicsSource, Err: err}
	}

	rates := make(map[string]float64)

	doc.Find("table.table-heatmap tbody tr").Each(func(_ int, row *goquery.Selection) {
		symbol, ok := row.Attr("data-symbol")
		if !ok {
			return
		}
		parts := strings.SplitN(symbol, ":", 2)
		if len(parts) != 2 {
			return
		}
		pair := parts[0]
		if !strings.HasPrefix(pair, a.base) {
			return
		}
		target := strings.TrimPrefix(pair, a.base)
		if target == "" {
			return
		}

		rateText := strings.TrimSpace(row.Find("td").Eq(1).Text())
		rate, err := parseRate(rateText)
		if err != nil {
			return
		}
		rates[strings.ToUpper(target)] = rate
	})

	if len(rates) == 0 {
		return nil, fxrates.ErrEmptyResult
	}
	return rates, nil
}
