package fxrates

// SourceDescriptor names one registered adapter source and how to build it.
type SourceDescriptor struct {
	Name                string
	Capability          Capability
	NeedsBaseName       bool
	NeedsBaseNamePlural bool
	New                 func(base, target, baseName, baseNamePlural string) (Adapter, error)
}

// registry is the process-wide, read-mostly table of known sources, built
// once at startup via RegisterSource calls from adapters.RegisterAll — kept
// here rather than importing the adapters package directly so fxrates
// itself has no dependency on any single site's scraping details.
var registry = map[string]*SourceDescriptor{}

// defaultPriority is the fixed sweep order: the ten sources in the order
// they are documented, multi-pair sources first.
var defaultPriority []string

// RegisterSource adds a source descriptor to the registry. Called once per
// source at process startup (see cmd/fxrates/main.go), before any
// Manager is constructed.
func RegisterSource(desc *SourceDescriptor) {
	registry[desc.Name] = desc
	defaultPriority = append(defaultPriority, desc.Name)
}

// LookupSource returns the descriptor for a registered source name.
func LookupSource(name string) (*SourceDescriptor, bool) {
	desc, ok := registry[name]
	return desc, ok
}

// DefaultPriority returns the fixed sweep order sources were registered in.
func DefaultPriority() []string {
	out := make([]string, len(defaultPriority))
	copy(out, defaultPriority)
	return out
}
