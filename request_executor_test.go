package adbridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openadtools/adbridge"
	"github.com/openadtools/adbridge/mock"
)

func transientErr() error {
	return &adbridge.TransientNetworkError{Op: "GetLineItem", Err: errors.New("connection reset")}
}

func TestGetLineItemSucceedsFirstAttempt(t *testing.T) {
	item := &adbridge.LineItem{ID: 42, Name: "takeover"}
	provider := &mock.Provider{LineItems: map[int64]*adbridge.LineItem{42: item}}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetLineItem(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, item, got)
	assert.Equal(t, 1, provider.Calls["GetLineItem"])
}

func TestGetLineItemRetriesTransientErrors(t *testing.T) {
	item := &adbridge.LineItem{ID: 42}
	provider := &mock.Provider{
		LineItemResponses: []mock.LineItemResponse{
			{Err: transientErr()},
			{Err: transientErr()},
			{Item: item},
		},
	}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetLineItem(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, item, got)
	assert.Equal(t, 3, provider.Calls["GetLineItem"])
}

func TestGetLineItemExhaustsRetryBudget(t *testing.T) {
	provider := &mock.Provider{
		LineItemResponses: []mock.LineItemResponse{
			{Err: transientErr()},
			{Err: transientErr()},
			{Err: transientErr()},
			{Item: &adbridge.LineItem{ID: 42}}, // never reached
		},
	}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetLineItem(context.Background(), 42)
	assert.Nil(t, got)
	var exhausted *adbridge.RequestExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, int64(42), exhausted.ID)
	assert.Equal(t, adbridge.MaxRequestAttempts, exhausted.Attempts)
	assert.Equal(t, adbridge.MaxRequestAttempts, provider.Calls["GetLineItem"])
}

func TestGetLineItemDoesNotRetryFatalErrors(t *testing.T) {
	fatal := errors.New("line item not found")
	provider := &mock.Provider{
		LineItemResponses: []mock.LineItemResponse{{Err: fatal}},
	}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetLineItem(context.Background(), 42)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, provider.Calls["GetLineItem"])
}

func TestGetLineItemRetriesEmptyResponses(t *testing.T) {
	item := &adbridge.LineItem{ID: 42}
	provider := &mock.Provider{
		LineItemResponses: []mock.LineItemResponse{
			{}, // empty body, no error
			{Item: item},
		},
	}
	gateway := newTestGateway(t, provider)

	got, err := gateway.GetLineItem(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, item, got)
	assert.Equal(t, 2, provider.Calls["GetLineItem"])
}

func TestGetLineItemHonorsAttemptOverride(t *testing.T) {
	provider := &mock.Provider{
		LineItemResponses: []mock.LineItemResponse{
			{Err: transientErr()},
			{Err: transientErr()},
			{Err: transientErr()},
			{Err: transientErr()},
			{Err: transientErr()},
		},
	}
	gateway := newTestGateway(t, provider, adbridge.WithMaxRequestAttempts(5))

	_, err := gateway.GetLineItem(context.Background(), 42)
	var exhausted *adbridge.RequestExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 5, exhausted.Attempts)
	assert.Equal(t, 5, provider.Calls["GetLineItem"])
}

func TestOtherReadsAreNotRetried(t *testing.T) {
	// GetLineItems shares the transient failure risk but is deliberately
	// outside the retry scope.
	provider := &failingListProvider{}
	gateway := newTestGateway(t, provider)

	_, err := gateway.GetLineItems(context.Background(), adbridge.FilterOptions{})
	assert.True(t, adbridge.IsTransient(err))
	assert.Equal(t, 1, provider.listCalls)
}

// failingListProvider wraps the mock to fail every GetLineItems call.
type failingListProvider struct {
	mock.Provider
	listCalls int
}

func (f *failingListProvider) GetLineItems(ctx context.Context, opts adbridge.FilterOptions) ([]*adbridge.LineItem, error) {
	f.listCalls++
	return nil, &adbridge.TransientNetworkError{Op: "GetLineItems", Err: errors.New("connection reset")}
}
