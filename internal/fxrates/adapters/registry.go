package adapters

import "github.com/ternarybob/fxrates/internal/fxrates"

// RegisterAll registers the ten known sources with the fxrates package's
// process-wide adapter registry, in the default priority order documented
// for the failsafe sweep. Call once at startup before constructing any
// Manager.
func RegisterAll() {
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "trading-economics",
		Capability: fxrates.CapabilityMultiPair,
		New:        NewTradingEconomics,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:          "exchange-rates-org-uk",
		Capability:    fxrates.CapabilityMultiPair,
		NeedsBaseName: true,
		New:           NewExchangeRatesOrgUK,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:                "currency-converter-org-uk",
		Capability:          fxrates.CapabilityMultiPair,
		NeedsBaseNamePlural: true,
		New:                 NewCurrencyConverterOrgUK,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "x-rates",
		Capability: fxrates.CapabilityMultiPair,
		New:        NewXRates,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "forbes",
		Capability: fxrates.CapabilitySinglePair,
		New:        NewForbes,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "hexarate",
		Capability: fxrates.CapabilitySinglePair,
		New:        NewHexarate,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "fx_empire",
		Capability: fxrates.CapabilitySinglePair,
		New:        NewFxEmpire,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "oanda",
		Capability: fxrates.CapabilitySinglePair,
		New:        NewOanda,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "wise",
		Capability: fxrates.CapabilitySinglePair,
		New:        NewWise,
	})
	fxrates.RegisterSource(&fxrates.SourceDescriptor{
		Name:       "xe",
		Capability: fxrates.CapabilitySinglePair,
		New:        NewXe,
	})
}
