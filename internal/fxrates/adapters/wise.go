package adapters

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const wiseSource = "wise"

// Wise is a single-pair adapter reading the converter chart page at
// wise.com.
type Wise struct {
	base   string
	target string
}

// NewWise constructs the wise adapter. Requires target.
func NewWise(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), Target: strings.ToUpper(target), NeedsTarget: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Wise{base: strings.ToUpper(base), target: strings.ToUpper(target)}, nil
}

func (a *Wise) SourceName() string            { return wiseSource }
func (a *Wise) Capability() fxrates.Capability { return fxrates.CapabilitySinglePair }

func (a *Wise) Extract(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("https://wise.com/currency-converter/%s-to-%s/chart",
		strings.ToLower(a.base), strings.ToLower(a.target))
	return doGet(ctx, u, wiseSource)
}

func (a *Wise) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: wiseSource, Err: err}
	}

	text := strings.TrimSpace(doc.Find("div.tapestry-wrapper h3.cc__source-to-target span.text-success").First().Text())
	if text == "" {
		return nil, fxrates.ErrEmptyResult
	}

	rate, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &fxrates.ParseError{Source: wiseSource, Err: err}
	}

	return map[string]float64{a.target: rate}, nil
}
