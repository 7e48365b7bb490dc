package adapters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

const forbesSource = "forbes"

// Forbes is a single-pair adapter reading the Forbes Advisor money-transfer
// currency converter result box.
type Forbes struct {
	base   string
	target string
	re     *regexp.Regexp
}

// NewForbes constructs the forbes adapter. Requires target.
func NewForbes(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), Target: strings.ToUpper(target), NeedsTarget: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	base = strings.ToUpper(base)
	target = strings.ToUpper(target)
	re := regexp.MustCompile(`(?i)1\s*` + base + `\s*=\s*([\d,\.]+)\s*` + target)

	return &Forbes{base: base, target: target, re: re}, nil
}

func (a *Forbes) SourceName() string            { return forbesSource }
func (a *Forbes) Capability() fxrates.Capability { return fxrates.CapabilitySinglePair }

func (a *Forbes) Extract(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("https://www.forbes.com/advisor/money-transfer/currency-converter/%s-%s/?amount=1",
		strings.ToLower(a.base), strings.ToLower(a.target))
	return doGet(ctx, u, forbesSource)
}

func (a *Forbes) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: forbesSource, Err: err}
	}

	text := strings.TrimSpace(doc.Find("div.result-box div.result-box-c1-c2").First().Children().First().Text())
	match := a.re.FindStringSubmatch(text)
	if len(match) != 2 {
		return nil, fxrates.ErrEmptyResult
	}

	rate, err := parseRate(match[1])
	if err != nil {
		return nil, &fxrates.ParseError{Source: forbesSource, Err: err}
	}

	return map[string]float64{a.target: rate}, nil
}
