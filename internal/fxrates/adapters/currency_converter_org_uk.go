package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const currencyConverterOrgUKSource = "currency-converter-org-uk"

var currencyConverterRowRe = regexp.MustCompile(`1\s+\w+\s*=\s*([\d.,]+)\s*(\w+)`)

// CurrencyConverterOrgUK is a multi-pair adapter reading the second
// currencies table at currencyconverter.org.uk, whose URL is built from the
// base currency's plural display name.
type CurrencyConverterOrgUK struct {
	base           string
	baseNamePlural string
}

// NewCurrencyConverterOrgUK constructs the currency-converter-org-uk
// adapter. Requires base and baseNamePlural.
func NewCurrencyConverterOrgUK(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), BaseNamePlural: baseNamePlural, NeedsBasePlural: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &CurrencyConverterOrgUK{base: strings.ToUpper(base), baseNamePlural: strings.ToLower(baseNamePlural)}, nil
}

func (a *CurrencyConverterOrgUK) SourceName() string            { return currencyConverterOrgUKSource }
func (a *CurrencyConverterOrgUK) Capability() fxrates.Capability { return fxrates.CapabilityMultiPair }

func (a *CurrencyConverterOrgUK) Extract(ctx context.Context) ([]byte, error) {
	words := strings.Fields(a.baseNamePlural)
	lastWord := a.baseNamePlural
	if len(words) > 0 {
		lastWord = words[len(words)-1]
	}
	url := fmt.Sprintf("https://www.currencyconverter.org.uk/convert-%s/convert-%s.html",
		strings.ToLower(a.base), lastWord)
	return doGet(ctx, url, currencyConverterOrgUKSource)
}

func (a *CurrencyConverterOrgUK) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: currencyConverterOrgUKSource, Err: err}
	}

	tables := doc.Find("table.currencies")
	if tables.Length() < 2 {
		return nil, fxrates.ErrEmptyResult
	}

	rates := make(map[string]float64)
	table := tables.Eq(1)

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		text := strings.TrimSpace(cells.Eq(1).Text())
		match := currencyConverterRowRe.FindStringSubmatch(text)
		if len(match) != 3 {
			return
		}

		rate, err := parseRate(match[1])
		if err != nil {
			return
		}
		rates[strings.ToUpper(match[2])] = rate
	})

	if len(rates) == 0 {
		return nil, fxrates.ErrEmptyResult
	}
	return rates, nil
}
