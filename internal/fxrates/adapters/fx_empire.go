package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/fxrates/internal/fxrates"
)

// fxEmpireSource is literally "fx_empire" with an underscore, unlike the
// hyphenated names of the other sources, matching the original naming.
const fxEmpireSource = "fx_empire"

// FxEmpire is a single-pair adapter reading the Next.js hydration payload
// embedded in fxempire.com currency pages.
type FxEmpire struct {
	base   string
	target string
}

// NewFxEmpire constructs the fx_empire adapter. Requires target.
func NewFxEmpire(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), Target: strings.ToUpper(target), NeedsTarget: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &FxEmpire{base: strings.ToLower(base), target: strings.ToLower(target)}, nil
}

func (a *FxEmpire) SourceName() string            { return fxEmpireSource }
func (a *FxEmpire) Capability() fxrates.Capability { return fxrates.CapabilitySinglePair }

func (a *FxEmpire) Extract(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("https://www.fxempire.com/currencies/%s-%s", a.base, a.target)
	return doGet(ctx, u, fxEmpireSource)
}

type fxEmpireNextData struct {
	Props struct {
		PageProps struct {
			DehydratedState struct {
				Queries []struct {
					State struct {
						Data struct {
							Prices map[string]struct {
								Last float64 `json:"last"`
							} `json:"prices"`
						} `json:"data"`
						StatusCode int `json:"statusCode"`
					} `json:"state"`
				} `json:"queries"`
			} `json:"dehydratedState"`
		} `json:"pageProps"`
	} `json:"props"`
}

func (a *FxEmpire) Transform(raw []byte) (map[string]float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, &fxrates.ParseError{Source: fxEmpireSource, Err: err}
	}

	scriptText := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if strings.TrimSpace(scriptText) == "" {
		return nil, fxrates.ErrEmptyResult
	}

	var payload fxEmpireNextData
	if err := json.Unmarshal([]byte(scriptText), &payload); err != nil {
		return nil, &fxrates.ParseError{Source: fxEmpireSource, Err: err}
	}

	pairKey := a.base + "-" + a.target
	for _, query := range payload.Props.PageProps.DehydratedState.Queries {
		if query.State.StatusCode != 200 {
			continue
		}
		if price, ok := query.State.Data.Prices[pairKey]; ok && price.Last != 0 {
			return map[string]float64{strings.ToUpper(a.target): price.Last}, nil
		}
	}

	return nil, fxrates.ErrEmptyResult
}
