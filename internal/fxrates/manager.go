package fxrates

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

// Manager runs the two-phase failsafe scraping algorithm for one base
// currency. It owns a RateLimiter scoped to itself, so two Managers on
// distinct goroutines pace their own requests independently rather than
// sharing a process-wide limiter.
type Manager struct {
	priority []string
	limiter  *RateLimiter
	logger   arbor.ILogger
}

// NewManager creates a Manager using the given sweep priority order (pass
// nil to use the registry's DefaultPriority) and a rate limiter enforcing
// delay between outbound requests.
func NewManager(priority []string, delay time.Duration, logger arbor.ILogger) *Manager {
	if priority == nil {
		priority = DefaultPriority()
	}
	return &Manager{
		priority: priority,
		limiter:  NewRateLimiter(delay),
		logger:   logger,
	}
}

// ScrapeWithFailsafe fetches rates for baseCode against targetCodes. Phase A
// sweeps multi-pair sources in priority order, returning on the first
// non-empty result regardless of whether it covers every requested target.
// Phase B, entered only if Phase A exhausts every multi-pair source and
// targetCodes is non-empty, sweeps single-pair sources; a source must
// produce every requested target or it is discarded entirely — no partial
// rows from one source. AllSourcesFailed is returned if both phases are
// exhausted.
func (m *Manager) ScrapeWithFailsafe(ctx context.Context, baseCode string, baseName, baseNamePlural *string, targetCodes []string) (*ScrapeResult, error) {
	baseCode = strings.ToUpper(baseCode)
	var errs []error

	if result, err := m.phaseA(ctx, baseCode, baseName, baseNamePlural, &errs); err == nil {
		return result, nil
	}

	if len(targetCodes) > 0 {
		if result, err := m.phaseB(ctx, baseCode, targetCodes, &errs); err == nil {
			return result, nil
		}
	}

	return nil, &AllSourcesFailed{BaseCode: baseCode, Errors: errs}
}

func (m *Manager) phaseA(ctx context.Context, baseCode string, baseName, baseNamePlural *string, errs *[]error) (*ScrapeResult, error) {
	for _, name := range m.priority {
		desc, ok := LookupSource(name)
		if !ok || desc.Capability != CapabilityMultiPair {
			continue
		}

		name, baseNameVal, basePluralVal, skip := m.resolveDescriptorInputs(desc, baseName, baseNamePlural, errs)
		if skip {
			continue
		}

		if err := m.limiter.Wait(ctx); err != nil {
			*errs = append(*errs, err)
			return nil, err
		}

		adapter, err := desc.New(baseCode, "", baseNameVal, basePluralVal)
		if err != nil {
			*errs = append(*errs, err)
			continue
		}

		rates, err := m.fetch(ctx, adapter)
		if err != nil {
			*errs = append(*errs, err)
			m.logger.Warn().Str("source", name).Str("base", baseCode).Err(err).Msg("Multi-pair source failed")
			continue
		}

		m.logger.Info().Str("source", name).Str("base", baseCode).Int("rate_count", len(rates)).Msg("Multi-pair source succeeded")
		return &ScrapeResult{Rates: rates, Source: name, Timestamp: time.Now().UTC()}, nil
	}

	return nil, &AllSourcesFailed{BaseCode: baseCode, Errors: *errs}
}

func (m *Manager) phaseB(ctx context.Context, baseCode string, targetCodes []string, errs *[]error) (*ScrapeResult, error) {
	for _, name := range m.priority {
		desc, ok := LookupSource(name)
		if !ok || desc.Capability != CapabilitySinglePair {
			continue
		}
		if desc.NeedsBaseName || desc.NeedsBaseNamePlural {
			// Single-pair sources in this domain never need display names;
			// a descriptor requiring one can't be satisfied in Phase B.
			continue
		}

		collected := make(map[string]float64, len(targetCodes))
		sourceFailed := false

		for _, target := range targetCodes {
			target = strings.ToUpper(target)

			if err := m.limiter.Wait(ctx); err != nil {
				*errs = append(*errs, err)
				return nil, err
			}

			adapter, err := desc.New(baseCode, target, "", "")
			if err != nil {
				*errs = append(*errs, err)
				sourceFailed = true
				break
			}

			rates, err := m.fetch(ctx, adapter)
			if err != nil {
				*errs = append(*errs, err)
				sourceFailed = true
				break
			}

			rate, ok := rates[target]
			if !ok {
				*errs = append(*errs, &ParseError{Source: name, Err: ErrEmptyResult})
				sourceFailed = true
				break
			}
			collected[target] = rate
		}

		if sourceFailed || len(collected) != len(targetCodes) {
			m.logger.Warn().Str("source", name).Str("base", baseCode).Msg("Single-pair source did not cover all requested targets, discarding")
			continue
		}

		m.logger.Info().Str("source", name).Str("base", baseCode).Int("rate_count", len(collected)).Msg("Single-pair source succeeded")
		return &ScrapeResult{Rates: collected, Source: name, Timestamp: time.Now().UTC()}, nil
	}

	return nil, &AllSourcesFailed{BaseCode: baseCode, Errors: *errs}
}

// resolveDescriptorInputs checks a multi-pair descriptor's display-name
// requirements against what the caller supplied, skipping the source
// (rather than failing the whole sweep) when a requirement isn't met.
func (m *Manager) resolveDescriptorInputs(desc *SourceDescriptor, baseName, baseNamePlural *string, errs *[]error) (name, baseNameVal, basePluralVal string, skip bool) {
	name = desc.Name
	if desc.NeedsBaseName {
		if baseName == nil || *baseName == "" {
			return name, "", "", true
		}
		baseNameVal = *baseName
	}
	if desc.NeedsBaseNamePlural {
		if baseNamePlural == nil || *baseNamePlural == "" {
			return name, "", "", true
		}
		basePluralVal = *baseNamePlural
	}
	return name, baseNameVal, basePluralVal, false
}

func (m *Manager) fetch(ctx context.Context, adapter Adapter) (map[string]float64, error) {
	raw, err := adapter.Extract(ctx)
	if err != nil {
		return nil, err
	}

	rates, err := adapter.Transform(raw)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, ErrEmptyResult
	}

	return rates, nil
}
