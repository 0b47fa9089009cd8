// errors.go
// ---------
// Typed errors surfaced by the gateway. Providers tag recoverable
// connectivity failures as *TransientNetworkError so the retry executor can
// dispatch on an explicit classification instead of guessing from message
// text. Everything else is fatal for the call that produced it.
package adbridge

import (
	"errors"
	"fmt"
	"time"
)

// ConfigurationError marks an unusable gateway: unknown provider identifier,
// invalid configuration, or a failed construction-time liveness check.
type ConfigurationError struct {
	Provider ProviderID
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("adbridge: provider %q not configured correctly: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("adbridge: provider %q not configured correctly: %s", e.Provider, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TimeoutError reports that a single guarded call exceeded its deadline. The
// underlying provider call is abandoned, not cancelled; its provider-side
// effects, if any, are unknown.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("adbridge: %s did not return within %s", e.Op, e.Timeout)
}

// TransientNetworkError is the provider boundary's tag for connectivity
// failures likely to succeed on immediate retry. Only the designated retry
// path acts on it; everywhere else it surfaces as-is.
type TransientNetworkError struct {
	Op  string
	Err error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("adbridge: transient network error in %s: %v", e.Op, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// RequestExhaustedError reports that the retry budget for an entity fetch ran
// out without a usable response.
type RequestExhaustedError struct {
	Op       string
	ID       int64
	Attempts int
}

func (e *RequestExhaustedError) Error() string {
	return fmt.Sprintf("adbridge: could not fetch %s %d in %d attempts", e.Op, e.ID, e.Attempts)
}

// AmbiguousTargetError reports a custom-target lookup that matched more than
// one record. This is a data-integrity problem upstream and is never retried.
type AmbiguousTargetError struct {
	Key   string
	Value string
	Count int
}

func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("adbridge: custom target %s=%s is not unique (%d matches)", e.Key, e.Value, e.Count)
}

// IsTransient reports whether err is a recoverable provider-side connectivity
// failure. Timeouts are not transient here: the guard already spent the whole
// per-call budget waiting.
func IsTransient(err error) bool {
	var te *TransientNetworkError
	return errors.As(err, &te)
}
