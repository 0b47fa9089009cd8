// adapters/gam_adapter.go
// -----------------------
// Ad Manager implementation of the adbridge.Provider contract. One instance
// holds one authenticated session (an oauth2-wrapped http.Client minted from
// the service account) and is exclusively owned by its Gateway.
//
// Connectivity failures, 429s and 5xx responses come back as
// *adbridge.TransientNetworkError; 4xx responses are permanent failures of
// the request itself and are never tagged transient.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/openadtools/adbridge"
	"github.com/openadtools/adbridge/internal"
	"github.com/openadtools/adbridge/utils"
)

const (
	defaultEndpoint   = "https://admanager.googleapis.com"
	defaultAPIVersion = "v1"
	adManagerScope    = "https://www.googleapis.com/auth/dfp"
)

type AdManagerProvider struct {
	providerID adbridge.ProviderID
	cfg        *AdManagerConfig
	httpClient *http.Client
	baseURL    string

	// Network timezone, memoized after the first fetch. The provider
	// instance is single-owner, so no lock.
	timezone *time.Location
}

// NewAdManagerProvider authenticates a session for the given account tier.
func NewAdManagerProvider(id adbridge.ProviderID, cfg adbridge.Config) (adbridge.Provider, error) {
	amc, ok := cfg.(*AdManagerConfig)
	if !ok {
		return nil, fmt.Errorf("unexpected configuration type %T for provider %q", cfg, id)
	}

	key, err := amc.privateKey()
	if err != nil {
		return nil, err
	}
	source, err := utils.ServiceAccountTokenSource(&utils.ServiceAccountConfig{
		ClientEmail: amc.ClientEmail,
		PrivateKey:  key,
		TokenURL:    amc.TokenURL,
		Scopes:      []string{adManagerScope},
	})
	if err != nil {
		return nil, err
	}

	endpoint := amc.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	version := amc.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}

	return &AdManagerProvider{
		providerID: id,
		cfg:        amc,
		httpClient: oauth2.NewClient(context.Background(), source),
		baseURL:    endpoint + "/" + version + "/networks/" + amc.NetworkCode,
	}, nil
}

// do executes one request against the session and decodes the JSON response
// into out. Error classification for the retry executor happens here.
func (p *AdManagerProvider) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	fullURL := p.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", p.cfg.ApplicationName)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &adbridge.TransientNetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &adbridge.TransientNetworkError{Op: op, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &adbridge.TransientNetworkError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(data))}
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s failed: status %d, body: %s", op, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: failed to parse response: %w", op, err)
		}
	}
	return nil
}

func (p *AdManagerProvider) GetNetworkTimezone(ctx context.Context) (*time.Location, error) {
	var network struct {
		TimeZone string `json:"timeZone"`
	}
	if err := p.do(ctx, "GetNetworkTimezone", "GET", "", nil, nil, &network); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(network.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("network reports unusable timezone %q: %w", network.TimeZone, err)
	}
	p.timezone = loc
	return loc, nil
}

// networkTimezone returns the memoized network timezone, fetching it once if
// needed. Report date alignment depends on it.
func (p *AdManagerProvider) networkTimezone(ctx context.Context) (*time.Location, error) {
	if p.timezone != nil {
		return p.timezone, nil
	}
	return p.GetNetworkTimezone(ctx)
}

func (p *AdManagerProvider) GetAdvertisers(ctx context.Context) ([]adbridge.Advertiser, error) {
	var page struct {
		Results []adbridge.Advertiser `json:"results"`
	}
	params := statementParams(adbridge.FilterOptions{
		Filters: map[string]interface{}{"type": "ADVERTISER"},
	})
	if err := p.do(ctx, "GetAdvertisers", "GET", "/companies", params, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (p *AdManagerProvider) GetCampaign(ctx context.Context, id int64) (*adbridge.Campaign, error) {
	var campaign adbridge.Campaign
	if err := p.do(ctx, "GetCampaign", "GET", "/orders/"+strconv.FormatInt(id, 10), nil, nil, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (p *AdManagerProvider) GetCampaigns(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.Campaign, error) {
	var page struct {
		Results []*adbridge.Campaign `json:"results"`
	}
	if err := p.do(ctx, "GetCampaigns", "GET", "/orders", statementParams(opts), nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (p *AdManagerProvider) GetCampaignLineItems(ctx context.Context, campaign *adbridge.Campaign) ([]*adbridge.LineItem, error) {
	return p.GetLineItems(ctx, adbridge.FilterOptions{
		Filters: map[string]interface{}{"orderId": campaign.ID},
	})
}

func (p *AdManagerProvider) GetLineItem(ctx context.Context, id int64) (*adbridge.LineItem, error) {
	var item adbridge.LineItem
	if err := p.do(ctx, "GetLineItem", "GET", "/lineItems/"+strconv.FormatInt(id, 10), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (p *AdManagerProvider) GetLineItems(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.LineItem, error) {
	var page struct {
		Results []*adbridge.LineItem `json:"results"`
	}
	if err := p.do(ctx, "GetLineItems", "GET", "/lineItems", statementParams(opts), nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (p *AdManagerProvider) GetLineItemAvailableInventory(ctx context.Context, item *adbridge.LineItem, useStart, preserveID bool) (*int64, error) {
	body := struct {
		LineItem   *adbridge.LineItem `json:"lineItem"`
		UseStart   bool               `json:"useStart"`
		PreserveID bool               `json:"preserveId"`
	}{LineItem: item, UseStart: useStart, PreserveID: preserveID}

	var forecast struct {
		AvailableUnits *int64 `json:"availableUnits"`
	}
	if err := p.do(ctx, "GetLineItemAvailableInventory", "POST", "/forecasts:availability", nil, body, &forecast); err != nil {
		return nil, err
	}
	// A response without availableUnits means the provider produced no
	// forecast; nil is the sentinel callers check for.
	return forecast.AvailableUnits, nil
}

func (p *AdManagerProvider) GetCreative(ctx context.Context, id int64) (*adbridge.Creative, error) {
	var creative adbridge.Creative
	if err := p.do(ctx, "GetCreative", "GET", "/creatives/"+strconv.FormatInt(id, 10), nil, nil, &creative); err != nil {
		return nil, err
	}
	return &creative, nil
}

func (p *AdManagerProvider) GetCreatives(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.Creative, error) {
	var page struct {
		Results []*adbridge.Creative `json:"results"`
	}
	if err := p.do(ctx, "GetCreatives", "GET", "/creatives", statementParams(opts), nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (p *AdManagerProvider) GetLineItemCreatives(ctx context.Context, item *adbridge.LineItem) ([]*adbridge.Creative, error) {
	var page struct {
		Results []*adbridge.Creative `json:"results"`
	}
	path := "/lineItems/" + strconv.FormatInt(item.ID, 10) + "/creatives"
	if err := p.do(ctx, "GetLineItemCreatives", "GET", path, nil, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// reportRow is the wire shape of one report row; dates arrive as calendar-day
// strings in the network timezone.
type reportRow struct {
	LineItemID int64            `json:"lineItemId"`
	Date       string           `json:"date"`
	Values     map[string]int64 `json:"values"`
}

func (p *AdManagerProvider) GetLineItemReport(ctx context.Context, start, end time.Time, columns []adbridge.ReportMetric) ([]adbridge.ReportRow, error) {
	tz, err := p.networkTimezone(ctx)
	if err != nil {
		return nil, err
	}

	// The report service accepts whole calendar days only; start == end
	// selects the entire day.
	body := struct {
		StartDate string                  `json:"startDate"`
		EndDate   string                  `json:"endDate"`
		Columns   []adbridge.ReportMetric `json:"columns"`
	}{
		StartDate: internal.FormatDate(start, tz),
		EndDate:   internal.FormatDate(end, tz),
		Columns:   columns,
	}

	var report struct {
		Rows []reportRow `json:"rows"`
	}
	if err := p.do(ctx, "GetLineItemReport", "POST", "/reports:run", nil, body, &report); err != nil {
		return nil, err
	}

	rows := make([]adbridge.ReportRow, 0, len(report.Rows))
	for _, r := range report.Rows {
		day, err := time.ParseInLocation("2006-01-02", r.Date, tz)
		if err != nil {
			return nil, fmt.Errorf("GetLineItemReport: failed to parse row date %q: %w", r.Date, err)
		}
		values := make(map[adbridge.ReportMetric]int64, len(r.Values))
		for k, v := range r.Values {
			values[adbridge.ReportMetric(k)] = v
		}
		rows = append(rows, adbridge.ReportRow{LineItemID: r.LineItemID, Date: day, Values: values})
	}
	return rows, nil
}

func (p *AdManagerProvider) GetCustomTargets(ctx context.Context, keyName, valueName string) ([]*adbridge.CustomTarget, error) {
	var page struct {
		Results []*adbridge.CustomTarget `json:"results"`
	}
	params := statementParams(adbridge.FilterOptions{
		Filters: map[string]interface{}{"keyName": keyName, "name": valueName},
	})
	if err := p.do(ctx, "GetCustomTargets", "GET", "/customTargetingValues", params, nil, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (p *AdManagerProvider) CreateCustomTarget(ctx context.Context, key, value string) (*adbridge.CustomTarget, error) {
	body := struct {
		KeyName string `json:"keyName"`
		Name    string `json:"name"`
	}{KeyName: key, Name: value}

	var created adbridge.CustomTarget
	if err := p.do(ctx, "CreateCustomTarget", "POST", "/customTargetingValues", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// targetablePaths maps tree target types onto their listing endpoints.
var targetablePaths = map[adbridge.TargetType]string{
	adbridge.TargetTypeAdUnit:               "/adUnits",
	adbridge.TargetTypePlacement:            "/placements",
	adbridge.TargetTypeCustomTargetingValue: "/customTargetingValues",
}

func (p *AdManagerProvider) GetTargetables(ctx context.Context, typ adbridge.TargetType, limit, offset int) ([]adbridge.Targetable, error) {
	path, ok := targetablePaths[typ]
	if !ok {
		return nil, fmt.Errorf("no listing endpoint for target type %q", typ)
	}

	var page struct {
		Results []struct {
			ID       int64  `json:"id"`
			ParentID int64  `json:"parentId"`
			Name     string `json:"name"`
		} `json:"results"`
	}
	params := statementParams(adbridge.FilterOptions{Limit: limit, Offset: offset})
	if err := p.do(ctx, "GetTargetables", "GET", path, params, nil, &page); err != nil {
		return nil, err
	}

	targetables := make([]adbridge.Targetable, 0, len(page.Results))
	for _, r := range page.Results {
		targetables = append(targetables, adbridge.Targetable{
			ID:       r.ID,
			ParentID: r.ParentID,
			Name:     r.Name,
			Type:     typ,
		})
	}
	return targetables, nil
}

func (p *AdManagerProvider) UpdateLineItems(ctx context.Context, items []*adbridge.LineItem) error {
	body := struct {
		LineItems []*adbridge.LineItem `json:"lineItems"`
	}{LineItems: items}
	return p.do(ctx, "UpdateLineItems", "POST", "/lineItems:batchUpdate", nil, body, nil)
}
