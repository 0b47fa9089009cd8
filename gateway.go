// gateway.go
// ----------
// The Gateway is the caller-facing facade of the module. It owns one
// authenticated Provider and one TreeBuilder for its lifetime and exposes the
// unified operation set, wrapping every provider call in the timeout guard
// and routing the single designated read through the retry executor.
//
// Construction fails fast: the registry lookup, configuration validation, and
// a network liveness probe (fetching the network timezone) all happen before
// a Gateway is handed to the caller. A Gateway should be treated as
// single-owner for the duration of any in-flight call.
package adbridge

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type Gateway struct {
	providerID  ProviderID
	provider    Provider
	config      Config
	treeBuilder *TreeBuilder
	executor    *requestExecutor

	timeout      time.Duration
	maxAttempts  int
	treePageSize int
	logger       logrus.FieldLogger
	metrics      *Metrics
}

// Option customizes a Gateway at construction.
type Option func(*Gateway)

// WithLogger replaces the standard logrus logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithNetworkTimeout overrides the per-call deadline.
func WithNetworkTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.timeout = d }
}

// WithMaxRequestAttempts overrides the retry budget for the retried read
// path. The count includes the first attempt.
func WithMaxRequestAttempts(n int) Option {
	return func(g *Gateway) { g.maxAttempts = n }
}

// WithMetrics attaches a Prometheus collector to the gateway.
func WithMetrics(m *Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithTreePageSize overrides the page size the tree builder uses when
// draining flat listings.
func WithTreePageSize(n int) Option {
	return func(g *Gateway) { g.treePageSize = n }
}

// New constructs a Gateway for the given provider identifier. cfg may be nil,
// in which case the registry's config factory supplies the value (useful only
// for configs that validate empty, e.g. doubles in tests). Any failure —
// unknown identifier, invalid configuration, provider construction, or the
// liveness probe — yields a *ConfigurationError and no gateway.
func New(ctx context.Context, registry *Registry, id ProviderID, cfg Config, opts ...Option) (*Gateway, error) {
	reg, err := registry.Lookup(id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = reg.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Provider: id, Reason: "invalid configuration", Err: err}
	}

	provider, err := reg.NewProvider(cfg)
	if err != nil {
		return nil, &ConfigurationError{Provider: id, Reason: "could not construct provider", Err: err}
	}

	g := &Gateway{
		providerID:   id,
		provider:     provider,
		config:       cfg,
		timeout:      DefaultNetworkTimeout,
		maxAttempts:  MaxRequestAttempts,
		treePageSize: defaultTreePageSize,
		logger:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.executor = &requestExecutor{
		timeout:     g.timeout,
		maxAttempts: g.maxAttempts,
		logger:      g.logger,
		metrics:     g.metrics,
		providerID:  id,
	}
	g.treeBuilder = NewTreeBuilder(id, provider, g.timeout, g.logger)
	g.treeBuilder.pageSize = g.treePageSize

	// Touch the network once so a misconfigured client fails here, not on
	// the caller's first real request.
	if _, err := g.GetNetworkTimezone(ctx); err != nil {
		return nil, &ConfigurationError{Provider: id, Reason: "liveness check failed", Err: err}
	}
	return g, nil
}

func (g *Gateway) String() string {
	return fmt.Sprintf("Gateway(provider=%s, config=%v)", g.providerID, g.config)
}

// call wraps one provider operation in the timeout guard and records it.
func call[T any](ctx context.Context, g *Gateway, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := guardedCall(ctx, g.timeout, op, fn)
	g.metrics.observe(g.providerID, op, err, time.Since(start))
	return v, err
}

// GetNetworkTimezone returns the timezone the provider network is configured
// with. Also used as the construction-time health check.
func (g *Gateway) GetNetworkTimezone(ctx context.Context) (*time.Location, error) {
	return call(ctx, g, "GetNetworkTimezone", g.provider.GetNetworkTimezone)
}

// GetAdvertisers returns all advertiser records on the network.
func (g *Gateway) GetAdvertisers(ctx context.Context) ([]Advertiser, error) {
	return call(ctx, g, "GetAdvertisers", g.provider.GetAdvertisers)
}

// GetCampaign returns one campaign. With includeLineItems the campaign's line
// items are fetched in a second, separately guarded call and attached before
// returning.
func (g *Gateway) GetCampaign(ctx context.Context, id int64, includeLineItems bool) (*Campaign, error) {
	campaign, err := call(ctx, g, "GetCampaign", func(ctx context.Context) (*Campaign, error) {
		return g.provider.GetCampaign(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if includeLineItems && campaign != nil {
		items, err := g.GetCampaignLineItems(ctx, campaign)
		if err != nil {
			return nil, err
		}
		campaign.LineItems = items
	}
	return campaign, nil
}

// GetCampaigns returns campaigns matching opts. Filter entries are passed
// through to the provider verbatim.
func (g *Gateway) GetCampaigns(ctx context.Context, opts FilterOptions) ([]*Campaign, error) {
	return call(ctx, g, "GetCampaigns", func(ctx context.Context) ([]*Campaign, error) {
		return g.provider.GetCampaigns(ctx, opts)
	})
}

// GetLineItem returns one line item. This is the only retried read: transient
// network failures are retried immediately, up to the configured attempt cap,
// after which a *RequestExhaustedError is returned.
func (g *Gateway) GetLineItem(ctx context.Context, id int64) (*LineItem, error) {
	return g.executor.getLineItem(ctx, g.provider, id)
}

// GetLineItems returns line items matching opts.
func (g *Gateway) GetLineItems(ctx context.Context, opts FilterOptions) ([]*LineItem, error) {
	return call(ctx, g, "GetLineItems", func(ctx context.Context) ([]*LineItem, error) {
		return g.provider.GetLineItems(ctx, opts)
	})
}

// GetCampaignLineItems returns the line items belonging to campaign.
func (g *Gateway) GetCampaignLineItems(ctx context.Context, campaign *Campaign) ([]*LineItem, error) {
	return call(ctx, g, "GetCampaignLineItems", func(ctx context.Context) ([]*LineItem, error) {
		return g.provider.GetCampaignLineItems(ctx, campaign)
	})
}

// GetLineItemAvailableInventory forecasts impression availability for item.
// The provider requires type, cost type, end date and inventory targeting on
// the line item and rejects the forecast otherwise; no local check is done.
//
// preserveID tells the provider the forecast concerns a line item already in
// flight, which only makes sense evaluated from its live start, so
// preserveID=true forces useStart=true. A nil count means the provider could
// not produce a forecast.
func (g *Gateway) GetLineItemAvailableInventory(ctx context.Context, item *LineItem, useStart, preserveID bool) (*int64, error) {
	if preserveID {
		useStart = true
	}
	return call(ctx, g, "GetLineItemAvailableInventory", func(ctx context.Context) (*int64, error) {
		return g.provider.GetLineItemAvailableInventory(ctx, item, useStart, preserveID)
	})
}

// GetCreative returns one creative.
func (g *Gateway) GetCreative(ctx context.Context, id int64) (*Creative, error) {
	return call(ctx, g, "GetCreative", func(ctx context.Context) (*Creative, error) {
		return g.provider.GetCreative(ctx, id)
	})
}

// GetCreatives returns creatives matching opts.
func (g *Gateway) GetCreatives(ctx context.Context, opts FilterOptions) ([]*Creative, error) {
	return call(ctx, g, "GetCreatives", func(ctx context.Context) ([]*Creative, error) {
		return g.provider.GetCreatives(ctx, opts)
	})
}

// GetLineItemCreatives returns the creatives associated with item.
func (g *Gateway) GetLineItemCreatives(ctx context.Context, item *LineItem) ([]*Creative, error) {
	return call(ctx, g, "GetLineItemCreatives", func(ctx context.Context) ([]*Creative, error) {
		return g.provider.GetLineItemCreatives(ctx, item)
	})
}

// GetLineItemReport returns delivery rows for all line items between start
// and end. Columns default to ad impressions. The provider truncates the
// range to whole calendar days in the network timezone, so start == end
// queries that entire day; rows come back exactly as the provider produced
// them.
func (g *Gateway) GetLineItemReport(ctx context.Context, start, end time.Time, columns ...ReportMetric) ([]ReportRow, error) {
	if len(columns) == 0 {
		columns = []ReportMetric{MetricAdImpressions}
	}
	return call(ctx, g, "GetLineItemReport", func(ctx context.Context) ([]ReportRow, error) {
		return g.provider.GetLineItemReport(ctx, start, end, columns)
	})
}

// GetCustomTargetByName looks up the custom target with the given value name
// under the key parentName. Returns nil without error when nothing matches.
// More than one match is a data-integrity problem upstream and returns an
// *AmbiguousTargetError; it is never retried.
func (g *Gateway) GetCustomTargetByName(ctx context.Context, name, parentName string) (*CustomTarget, error) {
	targets, err := call(ctx, g, "GetCustomTargets", func(ctx context.Context) ([]*CustomTarget, error) {
		return g.provider.GetCustomTargets(ctx, parentName, name)
	})
	if err != nil {
		return nil, err
	}
	switch {
	case len(targets) > 1:
		return nil, &AmbiguousTargetError{Key: parentName, Value: name, Count: len(targets)}
	case len(targets) == 1:
		return targets[0], nil
	default:
		return nil, nil
	}
}

// CreateCustomTarget adds a custom targeting value under key on the
// provider. Write operation; not retried.
func (g *Gateway) CreateCustomTarget(ctx context.Context, key, value string) (*CustomTarget, error) {
	return call(ctx, g, "CreateCustomTarget", func(ctx context.Context) (*CustomTarget, error) {
		return g.provider.CreateCustomTarget(ctx, key, value)
	})
}

// UpdateLineItem updates a single line item. Delegates to UpdateLineItems.
func (g *Gateway) UpdateLineItem(ctx context.Context, item *LineItem) error {
	return g.UpdateLineItems(ctx, []*LineItem{item})
}

// UpdateLineItems updates line items in one batch. Write operation; not
// retried since the provider gives no idempotency guarantee at this layer.
func (g *Gateway) UpdateLineItems(ctx context.Context, items []*LineItem) error {
	_, err := call(ctx, g, "UpdateLineItems", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.provider.UpdateLineItems(ctx, items)
	})
	return err
}

// ConstructTree fetches all entities of targetType and assembles them into a
// NodeTree. Always a fresh fetch; trees are never cached across calls.
func (g *Gateway) ConstructTree(ctx context.Context, targetType TargetType) (*NodeTree, error) {
	return g.treeBuilder.ConstructTree(ctx, targetType)
}
