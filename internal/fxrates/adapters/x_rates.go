package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const xRatesSource = "x-rates"

// XRates is a multi-pair adapter reading the sortable rates table at
// x-rates.com/table.
type XRates struct {
	base string
}

// NewXRates constructs the x-rates adapter. Only base is required.
func NewXRates(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &XRates{base: strings.ToUpper(base)}, nil
}

func (a *XRates) SourceName() string            { return xRatesSource }
func (a *XRates) Capability() fxrates.Capability { return fxrates.CapabilityMultiPair }

func (a *XRates) Extract(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("https://www.x-rates.com/table/?from=%s&amount=1", a.base)
	return doGet(ctx, u, xRatesSource)
}

func (a *XRates) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: xRatesSource, Err: err}
	}

	rates := make(map[string]float64)

	doc.Find("table.tablesorter.ratesTable tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		link := cells.Eq(1).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		target := strings.ToUpper(parsed.Query().Get("to"))
		if target == "" {
			return
		}

		rate, err := parseRate(link.Text())
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
