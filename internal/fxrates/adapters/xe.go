package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const xeSource = "xe"

var xeValueRe = regexp.MustCompile(`([\d.]+)`)

// Xe is a single-pair adapter reading the currency converter result panel
// at xe.com.
type Xe struct {
	base   string
	target string
}

// NewXe constructs the xe adapter. Requires target.
func NewXe(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), Target: strings.ToUpper(target), NeedsTarget: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Xe{base: strings.ToUpper(base), target: strings.ToUpper(target)}, nil
}

func (a *Xe) SourceName() string            { return xeSource }
func (a *Xe) Capability() fxrates.Capability { return fxrates.CapabilitySinglePair }

func (a *Xe) Extract(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("https://www.xe.com/currencyconverter/convert/?Amount=1&From=%s&To=%s", a.base, a.target)
	return doGet(ctx, u, xeSource)
}

func (a *Xe) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: xeSource, Err: err}
	}

	panel := doc.Find(`div[data-testid="conversion"]`).First()
	if panel.Length() == 0 {
		return nil, fxrates.ErrEmptyResult
	}

	var text strings.Builder
	panel.Find("p").First().Find("span").Each(func(_ int, span *goquery.Selection) {
		text.WriteString(span.Text())
	})
	if text.Len() == 0 {
		text.WriteString(panel.Find("p").First().Text())
	}

	match := xeValueRe.FindString(text.String())
	if match == "" {
		return nil, fxrates.ErrEmptyResult
	}

	rate, err := parseRate(match)
	if err != nil {
		return nil, &fxrates.ParseError{Source: xeSource, Err: err}
	}

	return map[string]float64{a.target: rate}, nil
}
