// config.go
// ----------
// Config is the contract every provider family's configuration value
// satisfies. One concrete type exists per family (see adapters/); the
// Registry selects which one a ProviderID needs. Validation happens at
// gateway construction, before any network call is attempted.
package adbridge

// Config holds the credentials and connection parameters needed to construct
// a Provider. Implementations must reject incomplete or unknown settings from
// Validate rather than failing later mid-call.
type Config interface {
	Validate() error
}
