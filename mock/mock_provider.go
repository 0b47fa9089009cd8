// mock/mock_provider.go
// ---------------------
// A scripted adbridge.Provider double for tests and local development. Fields
// control what each operation returns; counters and Last* fields record what
// the gateway forwarded. Not safe for concurrent use, mirroring the contract
// of real provider sessions.
package mock

import (
	"context"
	"time"

	"github.com/openadtools/adbridge"
)

// LineItemResponse scripts one GetLineItem call.
type LineItemResponse struct {
	Item *adbridge.LineItem
	Err  error
}

type Provider struct {
	NetworkTimezone *time.Location // defaults to UTC
	TimezoneErr     error

	Advertisers       []adbridge.Advertiser
	Campaigns         map[int64]*adbridge.Campaign
	CampaignLineItems map[int64][]*adbridge.LineItem
	LineItems         map[int64]*adbridge.LineItem
	Creatives         map[int64]*adbridge.Creative
	LineItemCreatives map[int64][]*adbridge.Creative
	CustomTargets     []*adbridge.CustomTarget
	Targetables       map[adbridge.TargetType][]adbridge.Targetable
	ReportRows        []adbridge.ReportRow
	ForecastUnits     *int64

	// LineItemResponses is consumed one entry per GetLineItem call before
	// falling back to the LineItems map. Lets tests script failure runs.
	LineItemResponses []LineItemResponse

	// Delay is applied at the top of every call, for timeout tests.
	Delay time.Duration

	Calls          map[string]int
	UpdatedBatches [][]*adbridge.LineItem
	CreatedTargets []*adbridge.CustomTarget

	LastFilter      adbridge.FilterOptions
	LastUseStart    bool
	LastPreserveID  bool
	LastReportStart time.Time
	LastReportEnd   time.Time
	LastColumns     []adbridge.ReportMetric
	LastKeyName     string
	LastValueName   string
}

func (m *Provider) record(op string) {
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[op]++
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
}

func (m *Provider) GetNetworkTimezone(ctx context.Context) (*time.Location, error) {
	m.record("GetNetworkTimezone")
	if m.TimezoneErr != nil {
		return nil, m.TimezoneErr
	}
	if m.NetworkTimezone == nil {
		return time.UTC, nil
	}
	return m.NetworkTimezone, nil
}

func (m *Provider) GetAdvertisers(ctx context.Context) ([]adbridge.Advertiser, error) {
	m.record("GetAdvertisers")
	return m.Advertisers, nil
}

func (m *Provider) GetCampaign(ctx context.Context, id int64) (*adbridge.Campaign, error) {
	m.record("GetCampaign")
	return m.Campaigns[id], nil
}

func (m *Provider) GetCampaigns(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.Campaign, error) {
	m.record("GetCampaigns")
	m.LastFilter = opts
	campaigns := make([]*adbridge.Campaign, 0, len(m.Campaigns))
	for _, c := range m.Campaigns {
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

func (m *Provider) GetCampaignLineItems(ctx context.Context, campaign *adbridge.Campaign) ([]*adbridge.LineItem, error) {
	m.record("GetCampaignLineItems")
	return m.CampaignLineItems[campaign.ID], nil
}

func (m *Provider) GetLineItem(ctx context.Context, id int64) (*adbridge.LineItem, error) {
	m.record("GetLineItem")
	if len(m.LineItemResponses) > 0 {
		next := m.LineItemResponses[0]
		m.LineItemResponses = m.LineItemResponses[1:]
		return next.Item, next.Err
	}
	return m.LineItems[id], nil
}

func (m *Provider) GetLineItems(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.LineItem, error) {
	m.record("GetLineItems")
	m.LastFilter = opts
	items := make([]*adbridge.LineItem, 0, len(m.LineItems))
	for _, li := range m.LineItems {
		items = append(items, li)
	}
	return items, nil
}

func (m *Provider) GetLineItemAvailableInventory(ctx context.Context, item *adbridge.LineItem, useStart, preserveID bool) (*int64, error) {
	m.record("GetLineItemAvailableInventory")
	m.LastUseStart = useStart
	m.LastPreserveID = preserveID
	return m.ForecastUnits, nil
}

func (m *Provider) GetCreative(ctx context.Context, id int64) (*adbridge.Creative, error) {
	m.record("GetCreative")
	return m.Creatives[id], nil
}

func (m *Provider) GetCreatives(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.Creative, error) {
	m.record("GetCreatives")
	m.LastFilter = opts
	creatives := make([]*adbridge.Creative, 0, len(m.Creatives))
	for _, c := range m.Creatives {
		creatives = append(creatives, c)
	}
	return creatives, nil
}

func (m *Provider) GetLineItemCreatives(ctx context.Context, item *adbridge.LineItem) ([]*adbridge.Creative, error) {
	m.record("GetLineItemCreatives")
	return m.LineItemCreatives[item.ID], nil
}

func (m *Provider) GetLineItemReport(ctx context.Context, start, end time.Time, columns []adbridge.ReportMetric) ([]adbridge.ReportRow, error) {
	m.record("GetLineItemReport")
	m.LastReportStart = start
	m.LastReportEnd = end
	m.LastColumns = columns
	return m.ReportRows, nil
}

func (m *Provider) GetCustomTargets(ctx context.Context, keyName, valueName string) ([]*adbridge.CustomTarget, error) {
	m.record("GetCustomTargets")
	m.LastKeyName = keyName
	m.LastValueName = valueName
	return m.CustomTargets, nil
}

func (m *Provider) CreateCustomTarget(ctx context.Context, key, value string) (*adbridge.CustomTarget, error) {
	m.record("CreateCustomTarget")
	created := &adbridge.CustomTarget{
		ID:   int64(len(m.CreatedTargets) + 1),
		Name: value,
	}
	m.CreatedTargets = append(m.CreatedTargets, created)
	return created, nil
}

func (m *Provider) GetTargetables(ctx context.Context, typ adbridge.TargetType, limit, offset int) ([]adbridge.Targetable, error) {
	m.record("GetTargetables")
	listing := m.Targetables[typ]
	if offset >= len(listing) {
		return nil, nil
	}
	end := offset + limit
	if end > len(listing) {
		end = len(listing)
	}
	return listing[offset:end], nil
}

func (m *Provider) UpdateLineItems(ctx context.Context, items []*adbridge.LineItem) error {
	m.record("UpdateLineItems")
	m.UpdatedBatches = append(m.UpdatedBatches, items)
	return nil
}

var _ adbridge.Provider = (*Provider)(nil)
