// registry.go
// -----------
// The Registry maps a ProviderID to the factory that builds its Provider and
// the factory that builds its configuration value. It is an explicit value
// constructed once at process start and handed to whatever constructs
// Gateways; the set of supported providers is fixed at build time, so all
// registration happens before the registry is used for lookups.
package adbridge

import "fmt"

// ProviderFactory builds an authenticated Provider from its configuration.
type ProviderFactory func(cfg Config) (Provider, error)

// ConfigFactory returns a zero configuration value for a provider family,
// ready to be filled in and validated.
type ConfigFactory func() Config

// Registration pairs the two factories registered for one ProviderID.
type Registration struct {
	NewProvider ProviderFactory
	NewConfig   ConfigFactory
}

// Registry is the capability index from provider identifier to factories.
// Not safe for concurrent mutation; register everything up front.
type Registry struct {
	entries map[ProviderID]Registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[ProviderID]Registration)}
}

// Register associates id with its provider and config factories. Later
// registrations for the same id win; that only matters in tests.
func (r *Registry) Register(id ProviderID, newProvider ProviderFactory, newConfig ConfigFactory) {
	r.entries[id] = Registration{NewProvider: newProvider, NewConfig: newConfig}
}

// Lookup returns the registration for id, or a *ConfigurationError if no
// mapping exists.
func (r *Registry) Lookup(id ProviderID) (Registration, error) {
	reg, ok := r.entries[id]
	if !ok {
		return Registration{}, &ConfigurationError{
			Provider: id,
			Reason:   fmt.Sprintf("no interface registered for provider %q", id),
		}
	}
	return reg, nil
}
