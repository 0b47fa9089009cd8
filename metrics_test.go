package adbridge

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetricsWithRegistry(prometheus.NewRegistry())

	m.observe(AdManagerPremium, "GetLineItem", nil, 25*time.Millisecond)
	m.observe(AdManagerPremium, "GetLineItem", errors.New("boom"), 10*time.Millisecond)
	m.observeRetry(AdManagerPremium, "GetLineItem")

	ok := m.requestsTotal.WithLabelValues(string(AdManagerPremium), "GetLineItem", "ok")
	failed := m.requestsTotal.WithLabelValues(string(AdManagerPremium), "GetLineItem", "error")
	retries := m.retriesTotal.WithLabelValues(string(AdManagerPremium), "GetLineItem")

	assert.Equal(t, 1.0, testutil.ToFloat64(ok))
	assert.Equal(t, 1.0, testutil.ToFloat64(failed))
	assert.Equal(t, 1.0, testutil.ToFloat64(retries))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(AdManagerPremium, "GetLineItem", nil, time.Millisecond)
		m.observeRetry(AdManagerPremium, "GetLineItem")
	})
}
