package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/fxrates/internal/fxrates"
)

const hexarateSource = "hexarate"

// Hexarate is a single-pair adapter reading the hexarate.paikama.co JSON
// rates API.
type Hexarate struct {
	base   string
	target string
}

// NewHexarate constructs the hexarate adapter. Requires target.
func NewHexarate(base, target, baseName, baseNamePlural string) (fxrates.Adapter, error) {
	params := fxrates.AdapterParams{Base: strings.ToUpper(base), Target: strings.ToUpper(target), NeedsTarget: true}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Hexarate{base: strings.ToUpper(base), target: strings.ToUpper(target)}, nil
}

func (a *Hexarate) SourceName() string            { return hexarateSource }
func (a *Hexarate) Capability() fxrates.Capability { return fxrates.CapabilitySinglePair }

func (a *Hexarate) Extract(ctx context.Context) ([]byte, error) {
	u := fmt.Sprintf("https://hexarate.paikama.co/api/rates/latest/%s?target=%s", a.base, a.target)
	return doGet(ctx, u, hexarateSource)
}

type hexaratePayload struct {
	Data struct {
		Mid float64 `json:"mid"`
	} `json:"data"`
}

func (a *Hexarate) Transform(raw []byte) (map[string]float64, error) {
	var payload hexaratePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &fxrates.ParseError{Source: hexarateSource, Err: err}
	}
	if payload.Data.Mid == 0 {
		return nil, fxrates.ErrEmptyResult
	}
	return map[string]float64{a.target: payload.Data.Mid}, nil
}
