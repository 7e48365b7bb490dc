package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const exchangeRatesOrgUKSource = "exchange-rates-org-uk"

// ExchangeRatesOrgUK is a multi-pair adapter reading the currency table at
// exchangerates.org.uk, which builds its URL from the base currency's
// title-cased display name.
type ExchangeRatesOrgUK struct {
	base     string
	baseName string
}

// NewExchangeRatesOrgUK constructs the exchange-rates-org-uk adapter.
// Requires base and baseName (the base currency's display name).
func NewExchangeRatesOrgUK(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), BaseName: baseName, NeedsBaseName: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ExchangeRatesOrgUK{base: strings.ToUpper(base), baseName: titleCaseWords(baseName)}, nil
}

func (a *ExchangeRatesOrgUK) SourceName() string            { return exchangeRatesOrgUKSource }
func (a *ExchangeRatesOrgUK) Capability() fxrates.Capability { return fxrates.CapabilityMultiPair }

func (a *ExchangeRatesOrgUK) Extract(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("https://www.exchangerates.org.uk/%s-%s-currency-table.html",
		strings.ReplaceAll(a.baseName, " ", "-"), a.base)
	return doGet(ctx, url, exchangeRatesOrgUKSource)
}

func (a *ExchangeRatesOrgUK) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: exchangeRatesOrgUKSource, Err: err}
	}

	rates := make(map[string]float64)

	doc.Find("div.mobilescrollbars table.currencypage-mini tr.colone, div.mobilescrollbars table.currencypage-mini tr.coltwo").
		Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 5 {
				return
			}

			targetCell := cells.Eq(3)
			target := strings.ToUpper(strings.TrimSpace(targetCell.Find("a").First().Text()))
			if target == "" {
				return
			}

			rateText := strings.TrimSpace(cells.Eq(4).Text())
			rate, err := parseRate(rateText)
			if err != nil {
				return
			}
			rates[target] = rate
		})

	if len(rates) == 0 {
		return nil, fxrates.ErrEmptyResult
	}
	return rates, nil
}

// titleCaseWords title-cases each whitespace-separated word, matching the
// site's URL-building convention for currency display names.
func titleCaseWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
