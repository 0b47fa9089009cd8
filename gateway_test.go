package adbridge_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openadtools/adbridge"
	"github.com/openadtools/adbridge/mock"
)

type staticConfig struct{}

func (staticConfig) Validate() error { return nil }

func newTestRegistry(p adbridge.Provider) *adbridge.Registry {
	registry := adbridge.NewRegistry()
	registry.Register("mock",
		func(cfg adbridge.Config) (adbridge.Provider, error) { return p, nil },
		func() adbridge.Config { return staticConfig{} },
	)
	return registry
}

func newTestGateway(t *testing.T, p adbridge.Provider, opts ...adbridge.Option) *adbridge.Gateway {
	t.Helper()
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	opts = append([]adbridge.Option{adbridge.WithLogger(quiet)}, opts...)
	gateway, err := adbridge.New(context.Background(), newTestRegistry(p), "mock", nil, opts...)
	require.NoError(t, err)
	return gateway
}

func TestNewRunsLivenessCheck(t *testing.T) {
	provider := &mock.Provider{NetworkTimezone: time.UTC}
	newTestGateway(t, provider)
	assert.Equal(t, 1, provider.Calls["GetNetworkTimezone"])
}

func TestNewFailsWhenLivenessCheckFails(t *testing.T) {
	provider := &mock.Provider{TimezoneErr: errors.New("bad credentials")}
	gateway, err := adbridge.New(context.Background(), newTestRegistry(provider), "mock", nil)

	assert.Nil(t, gateway)
	var cfgErr *adbridge.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorContains(t, err, "bad credentials")
}

func TestNewFailsForUnknownProvider(t *testing.T) {
	registry := adbridge.NewRegistry()
	gateway, err := adbridge.New(context.Background(), registry, "nonexistent", nil)

	assert.Nil(t, gateway)
	var cfgErr *adbridge.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, adbridge.ProviderID("nonexistent"), cfgErr.Provider)
}

func TestNewFailsForInvalidConfig(t *testing.T) {
	registry := adbridge.NewRegistry()
	registry.Register("mock",
		func(cfg adbridge.Config) (adbridge.Provider, error) { return &mock.Provider{}, nil },
		func() adbridge.Config { return staticConfig{} },
	)
	bad := invalidConfig{}
	gateway, err := adbridge.New(context.Background(), registry, "mock", bad)

	assert.Nil(t, gateway)
	var cfgErr *adbridge.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

type invalidConfig struct{}

func (invalidConfig) Validate() error { return errors.New("missing network code") }

func TestGetNetworkTimezone(t *testing.T) {
	zone, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	provider := &mock.Provider{NetworkTimezone: zone}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetNetworkTimezone(context.Background())
	require.NoError(t, err)
	assert.Equal(t, zone, got)
}

func TestGetCampaignAttachesLineItems(t *testing.T) {
	campaign := &adbridge.Campaign{ID: 7, Name: "spring push"}
	items := []*adbridge.LineItem{{ID: 70, CampaignID: 7}, {ID: 71, CampaignID: 7}}
	provider := &mock.Provider{
		Campaigns:         map[int64]*adbridge.Campaign{7: campaign},
		CampaignLineItems: map[int64][]*adbridge.LineItem{7: items},
	}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetCampaign(context.Background(), 7, false)
	require.NoError(t, err)
	assert.Empty(t, got.LineItems)
	assert.Zero(t, provider.Calls["GetCampaignLineItems"])

	got, err = gateway.GetCampaign(context.Background(), 7, true)
	require.NoError(t, err)
	assert.Equal(t, items, got.LineItems)
	assert.Equal(t, 1, provider.Calls["GetCampaignLineItems"])
}

func TestGetCustomTargetByName(t *testing.T) {
	target := &adbridge.CustomTarget{ID: 1, Name: "sports"}

	t.Run("no match returns nil without error", func(t *testing.T) {
		gateway := newTestGateway(t, &mock.Provider{})
		got, err := gateway.GetCustomTargetByName(context.Background(), "sports", "section")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("single match is returned", func(t *testing.T) {
		provider := &mock.Provider{CustomTargets: []*adbridge.CustomTarget{target}}
		gateway := newTestGateway(t, provider)
		got, err := gateway.GetCustomTargetByName(context.Background(), "sports", "section")
		require.NoError(t, err)
		assert.Equal(t, target, got)
		assert.Equal(t, "section", provider.LastKeyName)
		assert.Equal(t, "sports", provider.LastValueName)
	})

	t.Run("duplicates fail without retry", func(t *testing.T) {
		provider := &mock.Provider{
			CustomTargets: []*adbridge.CustomTarget{target, {ID: 2, Name: "sports"}},
		}
		gateway := newTestGateway(t, provider)
		got, err := gateway.GetCustomTargetByName(context.Background(), "sports", "section")
		assert.Nil(t, got)
		var ambiguous *adbridge.AmbiguousTargetError
		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, 2, ambiguous.Count)
		assert.Equal(t, 1, provider.Calls["GetCustomTargets"])
	})
}

func TestForecastPreserveIDForcesUseStart(t *testing.T) {
	units := int64(120000)
	item := &adbridge.LineItem{ID: 5, Type: "STANDARD", CostType: "CPM"}

	cases := []struct {
		name           string
		useStart       bool
		preserveID     bool
		wantUseStart   bool
		wantPreserveID bool
	}{
		{"both unset", false, false, false, false},
		{"useStart only", true, false, true, false},
		{"preserveID forces useStart", false, true, true, true},
		{"both set", true, true, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider := &mock.Provider{ForecastUnits: &units}
			gateway := newTestGateway(t, provider)

			got, err := gateway.GetLineItemAvailableInventory(context.Background(), item, tc.useStart, tc.preserveID)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, units, *got)
			assert.Equal(t, tc.wantUseStart, provider.LastUseStart)
			assert.Equal(t, tc.wantPreserveID, provider.LastPreserveID)
		})
	}
}

func TestForecastAbsenceSentinel(t *testing.T) {
	gateway := newTestGateway(t, &mock.Provider{})
	got, err := gateway.GetLineItemAvailableInventory(context.Background(), &adbridge.LineItem{ID: 5}, true, false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetLineItemReportDefaultsAndPassthrough(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	rows := []adbridge.ReportRow{
		{LineItemID: 1, Date: day, Values: map[adbridge.ReportMetric]int64{adbridge.MetricAdImpressions: 9000}},
		{LineItemID: 2, Date: day, Values: map[adbridge.ReportMetric]int64{adbridge.MetricAdImpressions: 450}},
	}
	provider := &mock.Provider{ReportRows: rows}
	gateway := newTestGateway(t, provider)

	// start == end queries that whole calendar day; rows come back untouched.
	got, err := gateway.GetLineItemReport(context.Background(), day, day)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	assert.Equal(t, []adbridge.ReportMetric{adbridge.MetricAdImpressions}, provider.LastColumns)
	assert.Equal(t, day, provider.LastReportStart)
	assert.Equal(t, day, provider.LastReportEnd)

	_, err = gateway.GetLineItemReport(context.Background(), day, day, adbridge.MetricClicks, adbridge.MetricCTR)
	require.NoError(t, err)
	assert.Equal(t, []adbridge.ReportMetric{adbridge.MetricClicks, adbridge.MetricCTR}, provider.LastColumns)
}

func TestUpdateLineItemDelegatesToBatch(t *testing.T) {
	provider := &mock.Provider{}
	gateway := newTestGateway(t, provider)
	item := &adbridge.LineItem{ID: 9}

	require.NoError(t, gateway.UpdateLineItem(context.Background(), item))
	require.Len(t, provider.UpdatedBatches, 1)
	assert.Equal(t, []*adbridge.LineItem{item}, provider.UpdatedBatches[0])
	assert.Equal(t, 1, provider.Calls["UpdateLineItems"])
}

func TestCreateCustomTarget(t *testing.T) {
	provider := &mock.Provider{}
	gateway := newTestGateway(t, provider)

	created, err := gateway.CreateCustomTarget(context.Background(), "section", "sports")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "sports", created.Name)
}

func TestCallTimesOut(t *testing.T) {
	provider := &mock.Provider{}
	gateway := newTestGateway(t, provider, adbridge.WithNetworkTimeout(50*time.Millisecond))

	// Slow the provider down only after construction so the liveness check
	// stays fast.
	provider.Delay = 300 * time.Millisecond

	start := time.Now()
	_, err := gateway.GetAdvertisers(context.Background())
	elapsed := time.Since(start)

	var timeout *adbridge.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "GetAdvertisers", timeout.Op)
	assert.Less(t, elapsed, 200*time.Millisecond, "guard must give up near the deadline, not wait out the call")
}

func TestCallerCancellationWins(t *testing.T) {
	provider := &mock.Provider{}
	gateway := newTestGateway(t, provider)
	provider.Delay = 300 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gateway.GetAdvertisers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
