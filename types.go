// types.go
// --------
// Entity records returned by ad-server providers, plus the enumerations used
// across the gateway (provider identifiers, report metrics, tree target
// types) and the passthrough filter options for list operations.
//
// The gateway never reshapes these records beyond arrangement (e.g. attaching
// line items to their campaign); field semantics belong to the provider.
package adbridge

import "time"

// ProviderID selects which ad-server backend and account tier a gateway talks
// to. Immutable once the gateway is constructed.
type ProviderID string

const (
	AdManagerPremium       ProviderID = "ad_manager_premium"
	AdManagerSmallBusiness ProviderID = "ad_manager_small_business"
)

// ReportMetric is a report column understood by the provider's reporting
// service.
type ReportMetric string

const (
	MetricAdImpressions ReportMetric = "AD_SERVER_IMPRESSIONS"
	MetricClicks        ReportMetric = "AD_SERVER_CLICKS"
	MetricCTR           ReportMetric = "AD_SERVER_CTR"
)

// TargetType names an entity hierarchy the tree builder can assemble. The set
// is fixed at build time.
type TargetType string

const (
	TargetTypeAdUnit               TargetType = "AD_UNIT"
	TargetTypePlacement            TargetType = "PLACEMENT"
	TargetTypeCustomTargetingValue TargetType = "CUSTOM_TARGETING_VALUE"
)

// Advertiser is a company record on the provider's network.
type Advertiser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Campaign groups line items under one advertiser. LineItems is only
// populated when the caller asks for it explicitly.
type Campaign struct {
	ID           int64       `json:"id"`
	AdvertiserID int64       `json:"advertiserId"`
	Name         string      `json:"name"`
	Status       string      `json:"status,omitempty"`
	StartDate    time.Time   `json:"startDate,omitempty"`
	EndDate      time.Time   `json:"endDate,omitempty"`
	LineItems    []*LineItem `json:"lineItems,omitempty"`
}

// Targeting carries the inventory and custom criteria attached to a line
// item. The provider validates its contents; the gateway passes it through.
type Targeting struct {
	AdUnitIDs    []int64             `json:"adUnitIds,omitempty"`
	PlacementIDs []int64             `json:"placementIds,omitempty"`
	Custom       map[string][]string `json:"custom,omitempty"`
}

// LineItem is a deliverable unit of a campaign. Type, CostType, EndDate and
// Targeting must be set for availability forecasting; the provider rejects
// forecasts missing them.
type LineItem struct {
	ID         int64      `json:"id"`
	CampaignID int64      `json:"campaignId"`
	Name       string     `json:"name"`
	Type       string     `json:"type,omitempty"`
	CostType   string     `json:"costType,omitempty"`
	Status     string     `json:"status,omitempty"`
	StartDate  time.Time  `json:"startDate,omitempty"`
	EndDate    time.Time  `json:"endDate,omitempty"`
	Targeting  *Targeting `json:"targeting,omitempty"`
}

// Creative is an ad asset record.
type Creative struct {
	ID           int64  `json:"id"`
	AdvertiserID int64  `json:"advertiserId"`
	Name         string `json:"name"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	PreviewURL   string `json:"previewUrl,omitempty"`
}

// CustomTarget is one key or value in the provider's custom targeting
// taxonomy. A value's ParentID references its key.
type CustomTarget struct {
	ID          int64  `json:"id"`
	ParentID    int64  `json:"parentId,omitempty"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	MatchType   string `json:"matchType,omitempty"`
}

// Targetable is the flat hierarchy record the tree builder links into a
// NodeTree. ParentID zero marks a natural root.
type Targetable struct {
	ID       int64      `json:"id"`
	ParentID int64      `json:"parentId,omitempty"`
	Name     string     `json:"name"`
	Type     TargetType `json:"type"`
}

// ReportRow is one row of a line item delivery report. Values is keyed by the
// requested columns.
type ReportRow struct {
	LineItemID int64                  `json:"lineItemId"`
	Date       time.Time              `json:"date"`
	Values     map[ReportMetric]int64 `json:"values"`
}

// FilterOptions narrows list operations. Order, Limit and Offset map onto the
// provider's query language; Filters entries are passed through verbatim as
// provider-specific key/value criteria.
type FilterOptions struct {
	Order   string
	Limit   int
	Offset  int
	Filters map[string]interface{}
}
