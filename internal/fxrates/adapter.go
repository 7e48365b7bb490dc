package fxrates

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Capability distinguishes sources that return every target rate for a
// base currency in one fetch from sources that only answer one base/target
// pair per request.
type Capability int

const (
	CapabilityMultiPair Capability = iota
	CapabilitySinglePair
)

func (c Capability) String() string {
	if c == CapabilityMultiPair {
		return "multi-pair"
	}
	return "single-pair"
}

// Adapter fetches and parses rates from one external source. Extract does
// the network I/O; Transform is pure and operates on the raw bytes Extract
// returned, so it can be exercised in tests against fixture payloads
// without any network access.
type Adapter interface {
	SourceName() string
	Capability() Capability
	Extract(ctx context.Context) ([]byte, error)
	Transform(raw []byte) (map[string]float64, error)
}

// AdapterParams is the validated construction input shared by every
// adapter constructor. Single-pair adapters require Target; adapters that
// build human-readable URL path segments from the base currency's display
// name require BaseName and/or BaseNamePlural.
type AdapterParams struct {
	Base            string `validate:"required,len=3,uppercase"`
	Target          string `validate:"omitempty,len=3,uppercase"`
	BaseName        string `validate:"omitempty"`
	BaseNamePlural  string `validate:"omitempty"`
	NeedsTarget     bool
	NeedsBaseName   bool
	NeedsBasePlural bool
}

var paramsValidator = validator.New()

// Validate applies struct-tag validation plus the adapter-specific
// requirement flags, returning ErrInvalidAdapterParams wrapped with the
// offending detail on any failure. Adapter constructors call this before
// doing anything else.
func (p AdapterParams) Validate() error {
	if err := paramsValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAdapterParams, err)
	}
	if p.NeedsTarget && p.Target == "" {
		return fmt.Errorf("%w: target code required", ErrInvalidAdapterParams)
	}
	if p.NeedsBaseName && p.BaseName == "" {
		return fmt.Errorf("%w: base display name required", ErrInvalidAdapterParams)
	}
	if p.NeedsBasePlural && p.BaseNamePlural == "" {
		return fmt.Errorf("%w: base plural display name required", ErrInvalidAdapterParams)
	}
	return nil
}
