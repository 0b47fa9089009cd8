// request_executor.go
// -------------------
// The requestExecutor applies the bounded-attempt retry policy to the one
// read path with a production history of transient provider blips: fetching a
// single line item. Retries are sequential and immediate, each attempt under
// its own timeout guard. Every other operation gets the guard with no retry;
// writes are not assumed idempotent at this layer.
package adbridge

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxRequestAttempts is the default total number of tries (including the
// first) for the retried read path.
const MaxRequestAttempts = 3

type requestExecutor struct {
	timeout     time.Duration
	maxAttempts int
	logger      logrus.FieldLogger
	metrics     *Metrics
	providerID  ProviderID
}

// getLineItem keeps trying until a non-empty response, a non-transient
// failure, or the attempt cap. Transient failures are logged with their
// attempt number; a timeout is not transient and fails the call outright.
func (e *requestExecutor) getLineItem(ctx context.Context, provider Provider, id int64) (*LineItem, error) {
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		item, err := guardedCall(ctx, e.timeout, "GetLineItem", func(ctx context.Context) (*LineItem, error) {
			return provider.GetLineItem(ctx, id)
		})
		switch {
		case err == nil && item != nil:
			return item, nil
		case err == nil:
			// Empty response without an error; treat like a blip.
			e.logger.WithFields(logrus.Fields{
				"provider":     e.providerID,
				"line_item_id": id,
				"attempt":      attempt,
			}).Warn("empty line item response")
		case IsTransient(err):
			e.metrics.observeRetry(e.providerID, "GetLineItem")
			e.logger.WithFields(logrus.Fields{
				"provider":     e.providerID,
				"line_item_id": id,
				"attempt":      attempt,
			}).WithError(err).Warn("network error fetching line item")
		default:
			return nil, err
		}
	}
	return nil, &RequestExhaustedError{Op: "line item", ID: id, Attempts: e.maxAttempts}
}
