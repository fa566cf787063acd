package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-price-sentinel/internal/campaign"
	"solana-price-sentinel/internal/domain"
	"solana-price-sentinel/internal/pricefeed"
	"solana-price-sentinel/internal/storage/memory"
)

// Valid mainnet addresses used as fixtures.
const (
	testMint = "So11111111111111111111111111111111111111112"
	testPool = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"
)

func testServer(t *testing.T, feed pricefeed.Feed) (*Server, *campaign.Store) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	store := campaign.NewStore(feed, logger)
	srv := NewServer(Options{
		Campaigns: store,
		History:   memory.NewTriggerHistoryStore(),
		Wallets:   memory.NewWalletStore(),
		Ticks:     memory.NewPriceTickStore(),
		Logger:    logger,
	})
	return srv, store
}

func fixedFeed(price float64) pricefeed.Feed {
	return pricefeed.FeedFunc(func(_ context.Context, _ string) (*pricefeed.Quote, error) {
		return &pricefeed.Quote{PriceSOL: price, FetchedAt: 1}, nil
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStartCampaignEndpoint(t *testing.T) {
	srv, _ := testServer(t, fixedFeed(1.5))
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/campaigns", map[string]string{
		"token_mint":   testMint,
		"pool_address": testPool,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var c domain.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, testMint, c.TokenMint)
	assert.Equal(t, 1.5, c.BaselinePrice)
	assert.Equal(t, domain.CampaignStatusActive, c.Status)

	// The new campaign shows up in the active list.
	rec = doJSON(t, h, http.MethodGet, "/api/campaigns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []*domain.Campaign
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestStartCampaignPriceUnavailable(t *testing.T) {
	feed := pricefeed.FeedFunc(func(_ context.Context, _ string) (*pricefeed.Quote, error) {
		return nil, pricefeed.ErrUnavailable
	})
	srv, _ := testServer(t, feed)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/campaigns", map[string]string{
		"token_mint":   testMint,
		"pool_address": testPool,
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStartCampaignInvalidAddress(t *testing.T) {
	srv, _ := testServer(t, fixedFeed(1.0))

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/campaigns", map[string]string{
		"token_mint":   "nope",
		"pool_address": testPool,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCampaignNotFound(t *testing.T) {
	srv, _ := testServer(t, fixedFeed(1.0))

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/campaigns/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStopAndResetEndpoints(t *testing.T) {
	srv, store := testServer(t, fixedFeed(1.0))
	h := srv.Handler()

	c, err := store.StartCampaign(context.Background(), testMint, testPool)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/api/campaigns/"+c.ID+"/stop", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.CampaignStatusStopped, store.GetCampaign(c.ID).Status)

	rec = doJSON(t, h, http.MethodPost, "/api/campaigns/missing/stop", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Reset of an unknown campaign is a no-op, not an error.
	rec = doJSON(t, h, http.MethodPost, "/api/campaigns/missing/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAlertEndpoints(t *testing.T) {
	srv, store := testServer(t, fixedFeed(1.0))
	h := srv.Handler()

	c, err := store.StartCampaign(context.Background(), testMint, testPool)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/api/campaigns/"+c.ID+"/alerts", map[string]any{
		"target":     50,
		"direction":  "above",
		"price_type": "percentage",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var alert domain.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alert))
	assert.Equal(t, domain.DirectionAbove, alert.Direction)
	require.Len(t, alert.Actions, 1)
	assert.Equal(t, domain.ActionKindNotification, alert.Actions[0].Kind)

	// Unknown campaign surfaces as 404.
	rec = doJSON(t, h, http.MethodPost, "/api/campaigns/missing/alerts", map[string]any{
		"target":     50,
		"direction":  "above",
		"price_type": "percentage",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bad direction surfaces as 400.
	rec = doJSON(t, h, http.MethodPost, "/api/campaigns/"+c.ID+"/alerts", map[string]any{
		"target":     50,
		"direction":  "sideways",
		"price_type": "percentage",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Update actions, then delete.
	rec = doJSON(t, h, http.MethodPut, "/api/alerts/"+alert.ID+"/actions", map[string]any{
		"actions": []map[string]any{
			{"kind": "discord", "discord": map[string]string{"webhook_url": "https://example.com/hook"}},
		},
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/campaigns/"+c.ID+"/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []*domain.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.ActionKindDiscord, alerts[0].Actions[0].Kind)

	rec = doJSON(t, h, http.MethodDelete, "/api/alerts/"+alert.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/api/alerts/"+alert.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	srv, _ := testServer(t, fixedFeed(1.0))
	h := srv.Handler()

	require.NoError(t, srv.history.Append(context.Background(), &domain.TriggerRecord{
		TriggerID:  "t1",
		CampaignID: "c1",
		AlertID:    "a1",
		TokenMint:  testMint,
		PriceSOL:   1.6,
		FiredAt:    1000,
	}))

	rec := doJSON(t, h, http.MethodGet, "/api/campaigns/c1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []*domain.TriggerRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)

	rec = doJSON(t, h, http.MethodGet, "/api/history/recent?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/history/recent?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletEndpoints(t *testing.T) {
	srv, _ := testServer(t, fixedFeed(1.0))
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/wallets", map[string]string{
		"wallet_id":     "w1",
		"address":       "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
		"owner_user_id": "u1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/wallets", map[string]string{
		"wallet_id": "w1",
		"address":   "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/wallets/w1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wallet domain.Wallet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wallet))
	assert.Equal(t, "u1", wallet.OwnerUserID)

	rec = doJSON(t, h, http.MethodGet, "/api/wallets/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateWalletRejectsOffCurveAddress(t *testing.T) {
	srv, _ := testServer(t, fixedFeed(1.0))
	h := srv.Handler()

	// The Raydium AMM authority is a program-derived address; no keypair
	// exists for it, so it can never sign a trade.
	rec := doJSON(t, h, http.MethodPost, "/api/wallets", map[string]string{
		"wallet_id":     "w-pda",
		"address":       "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1",
		"owner_user_id": "u1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/wallets/w-pda", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndStatus(t *testing.T) {
	srv, store := testServer(t, fixedFeed(1.0))
	h := srv.Handler()

	_, err := store.StartCampaign(context.Background(), testMint, testPool)
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, float64(1), status["active_campaigns"])
}
