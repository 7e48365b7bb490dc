package fxrates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// fakeAdapter is a fixture Adapter used only to exercise the failsafe
// algorithm deterministically, without any network access.
type fakeAdapter struct {
	name         string
	capability   Capability
	extractErr   error
	rates        map[string]float64
	transformErr error
}

func (f *fakeAdapter) SourceName() string     { return f.name }
func (f *fakeAdapter) Capability() Capability { return f.capability }

func (f *fakeAdapter) Extract(ctx context.Context) ([]byte, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return []byte("fixture"), nil
}

func (f *fakeAdapter) Transform(raw []byte) (map[string]float64, error) {
	if f.transformErr != nil {
		return nil, f.transformErr
	}
	return f.rates, nil
}

// withRegistry swaps the package-level registry for the duration of a test
// and restores it afterward, so tests that register fixture sources don't
// leak state into each other.
func withRegistry(t *testing.T, descs ...*SourceDescriptor) {
	t.Helper()
	savedRegistry := registry
	savedPriority := defaultPriority

	registry = map[string]*SourceDescriptor{}
	defaultPriority = nil
	for _, d := range descs {
		RegisterSource(d)
	}

	t.Cleanup(func() {
		registry = savedRegistry
		defaultPriority = savedPriority
	})
}

func noopLogger() arbor.ILogger { return arbor.NewNoOpLogger() }

func TestScrapeWithFailsafePhaseASucceedsOnFirstSource(t *testing.T) {
	called := map[string]bool{}

	withRegistry(t,
		&SourceDescriptor{
			Name:       "multi-a",
			Capability: CapabilityMultiPair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				called["multi-a"] = true
				return &fakeAdapter{name: "multi-a", capability: CapabilityMultiPair, rates: map[string]float64{"EUR": 0.9, "GBP": 0.8}}, nil
			},
		},
		&SourceDescriptor{
			Name:       "multi-b",
			Capability: CapabilityMultiPair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				called["multi-b"] = true
				return &fakeAdapter{name: "multi-b", capability: CapabilityMultiPair, rates: map[string]float64{"EUR": 0.91}}, nil
			},
		},
	)

	m := NewManager(nil, 0, noopLogger())
	result, err := m.ScrapeWithFailsafe(context.Background(), "usd", nil, nil, []string{"EUR", "GBP"})

	require.NoError(t, err)
	assert.Equal(t, "multi-a", result.Source)
	assert.Equal(t, map[string]float64{"EUR": 0.9, "GBP": 0.8}, result.Rates)
	assert.True(t, called["multi-a"])
	assert.False(t, called["multi-b"], "second multi-pair source should never be tried once the first succeeds")
}

func TestScrapeWithFailsafeFallsBackToPhaseB(t *testing.T) {
	withRegistry(t,
		&SourceDescriptor{
			Name:       "multi-fails",
			Capability: CapabilityMultiPair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				return &fakeAdapter{name: "multi-fails", capability: CapabilityMultiPair, transformErr: ErrEmptyResult}, nil
			},
		},
		&SourceDescriptor{
			Name:       "single-ok",
			Capability: CapabilitySinglePair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				return &fakeAdapter{name: "single-ok", capability: CapabilitySinglePair, rates: map[string]float64{target: 0.5}}, nil
			},
		},
	)

	m := NewManager(nil, 0, noopLogger())
	result, err := m.ScrapeWithFailsafe(context.Background(), "usd", nil, nil, []string{"EUR"})

	require.NoError(t, err)
	assert.Equal(t, "single-ok", result.Source)
	assert.Equal(t, map[string]float64{"EUR": 0.5}, result.Rates)
}

func TestScrapeWithFailsafeDiscardsPartialSinglePairCoverage(t *testing.T) {
	withRegistry(t,
		&SourceDescriptor{
			Name:       "single-partial",
			Capability: CapabilitySinglePair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				// Only ever answers for EUR; when asked for GBP it comes back empty,
				// so the whole source must be discarded rather than returning a
				// partial result.
				if target != "EUR" {
					return &fakeAdapter{name: "single-partial", capability: CapabilitySinglePair, transformErr: ErrEmptyResult}, nil
				}
				return &fakeAdapter{name: "single-partial", capability: CapabilitySinglePair, rates: map[string]float64{"EUR": 0.9}}, nil
			},
		},
		&SourceDescriptor{
			Name:       "single-complete",
			Capability: CapabilitySinglePair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				return &fakeAdapter{name: "single-complete", capability: CapabilitySinglePair, rates: map[string]float64{target: 0.75}}, nil
			},
		},
	)

	m := NewManager(nil, 0, noopLogger())
	result, err := m.ScrapeWithFailsafe(context.Background(), "usd", nil, nil, []string{"EUR", "GBP"})

	require.NoError(t, err)
	assert.Equal(t, "single-complete", result.Source, "the partially-covering source must be discarded entirely")
	assert.Equal(t, map[string]float64{"EUR": 0.75, "GBP": 0.75}, result.Rates)
}

func TestScrapeWithFailsafeAllSourcesFailed(t *testing.T) {
	withRegistry(t,
		&SourceDescriptor{
			Name:       "multi-fails",
			Capability: CapabilityMultiPair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				return &fakeAdapter{name: "multi-fails", capability: CapabilityMultiPair, extractErr: errors.New("connection refused")}, nil
			},
		},
		&SourceDescriptor{
			Name:       "single-fails",
			Capability: CapabilitySinglePair,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				return &fakeAdapter{name: "single-fails", capability: CapabilitySinglePair, extractErr: errors.New("timeout")}, nil
			},
		},
	)

	m := NewManager(nil, 0, noopLogger())
	_, err := m.ScrapeWithFailsafe(context.Background(), "usd", nil, nil, []string{"EUR"})

	var allFailed *AllSourcesFailed
	require.ErrorAs(t, err, &allFailed)
	assert.Equal(t, "USD", allFailed.BaseCode)
	assert.NotEmpty(t, allFailed.Errors)
}

func TestScrapeWithFailsafeSkipsMultiPairSourceMissingRequiredName(t *testing.T) {
	tried := false

	withRegistry(t,
		&SourceDescriptor{
			Name:          "needs-name",
			Capability:    CapabilityMultiPair,
			NeedsBaseName: true,
			New: func(base, target, baseName, baseNamePlural string) (Adapter, error) {
				tried = true
				return &fakeAdapter{name: "needs-name", capability: CapabilityMultiPair, rates: map[string]float64{"EUR": 0.9}}, nil
			},
		},
	)

	m := NewManager(nil, 0, noopLogger())
	_, err := m.ScrapeWithFailsafe(context.Background(), "usd", nil, nil, nil)

	require.Error(t, err)
	assert.False(t, tried, "a source whose display-name requirement isn't met must be skipped, never constructed")
}
