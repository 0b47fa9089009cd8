package adbridge

import (
	"context"
	"time"
)

// Provider is the outbound contract an ad-server adapter must satisfy. A
// Provider instance is bound to one authenticated session and is exclusively
// owned by the Gateway that constructed it; it is not guaranteed safe for
// concurrent use.
//
// Every method must return connectivity failures as *TransientNetworkError so
// the gateway can tell retryable blips from permanent failures.
type Provider interface {
	// GetNetworkTimezone returns the timezone the provider network is
	// configured with. Doubles as the construction-time liveness check.
	GetNetworkTimezone(ctx context.Context) (*time.Location, error)

	GetAdvertisers(ctx context.Context) ([]Advertiser, error)

	GetCampaign(ctx context.Context, id int64) (*Campaign, error)
	GetCampaigns(ctx context.Context, opts FilterOptions) ([]*Campaign, error)
	GetCampaignLineItems(ctx context.Context, campaign *Campaign) ([]*LineItem, error)

	GetLineItem(ctx context.Context, id int64) (*LineItem, error)
	GetLineItems(ctx context.Context, opts FilterOptions) ([]*LineItem, error)

	// GetLineItemAvailableInventory forecasts impression availability for a
	// line item. A nil count means the provider could not produce a forecast.
	GetLineItemAvailableInventory(ctx context.Context, item *LineItem, useStart, preserveID bool) (*int64, error)

	GetCreative(ctx context.Context, id int64) (*Creative, error)
	GetCreatives(ctx context.Context, opts FilterOptions) ([]*Creative, error)
	GetLineItemCreatives(ctx context.Context, item *LineItem) ([]*Creative, error)

	// GetLineItemReport returns delivery rows for whole calendar days in the
	// network timezone. start == end selects that entire day.
	GetLineItemReport(ctx context.Context, start, end time.Time, columns []ReportMetric) ([]ReportRow, error)

	GetCustomTargets(ctx context.Context, keyName, valueName string) ([]*CustomTarget, error)
	CreateCustomTarget(ctx context.Context, key, value string) (*CustomTarget, error)

	// GetTargetables returns one page of the flat hierarchy listing for typ.
	// A page shorter than limit ends the listing.
	GetTargetables(ctx context.Context, typ TargetType, limit, offset int) ([]Targetable, error)

	UpdateLineItems(ctx context.Context, items []*LineItem) error
}
