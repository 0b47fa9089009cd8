// adapters/registry.go
package adapters

import "github.com/openadtools/adbridge"

// DefaultRegistry returns a registry with every provider supported at build
// time. Both Ad Manager tiers share the adapter and configuration type;
// construct it once at process start and pass it to adbridge.New.
func DefaultRegistry() *adbridge.Registry {
	registry := adbridge.NewRegistry()
	for _, id := range []adbridge.ProviderID{adbridge.AdManagerPremium, adbridge.AdManagerSmallBusiness} {
		id := id
		registry.Register(id,
			func(cfg adbridge.Config) (adbridge.Provider, error) { return NewAdManagerProvider(id, cfg) },
			func() adbridge.Config { return &AdManagerConfig{} },
		)
	}
	return registry
}
