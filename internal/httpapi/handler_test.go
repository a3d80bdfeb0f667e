package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/nft_layer/internal/deploy"
	"github.com/R3E-Network/nft_layer/internal/events"
	"github.com/R3E-Network/nft_layer/internal/nft"
	"github.com/R3E-Network/nft_layer/internal/storage/memory"
	"github.com/R3E-Network/nft_layer/pkg/logger"
	"github.com/R3E-Network/nft_layer/pkg/testutil"
)

type fixture struct {
	handler  http.Handler
	proxy    *nft.Proxy
	deployer nft.Address
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	ctx := context.Background()
	log := events.NewRingBuffer(64)
	m := deploy.NewManager(memory.New(), nil, deploy.WithLogger(logger.NewNop()), deploy.WithEvents(log))

	deployer := testutil.Account(1)
	p, err := m.DeployProxy(ctx, deployer, deploy.Request{BaseURI: "ipfs://abc/", RoyaltyPercentage: 10, Salt: "api"})
	require.NoError(t, err)
	_, err = p.OwnerMint(ctx, deployer)
	require.NoError(t, err)

	opts.Logger = logger.NewNop()
	opts.Events = log
	return fixture{handler: NewHandler(m, opts), proxy: p, deployer: deployer}
}

func (f fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (f fixture) contractPath(suffix string) string {
	return "/contracts/" + nft.FormatAddress(f.proxy.Address()) + suffix
}

func TestHealth(t *testing.T) {
	f := newFixture(t, Options{})
	rec, body := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestContractInfo(t *testing.T) {
	f := newFixture(t, Options{})
	rec, body := f.get(t, f.contractPath(""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SampleNFTUpgradable", body["name"])
	assert.Equal(t, "SNFTU", body["symbol"])
	assert.Equal(t, "v1", body["implementation"])
	assert.Equal(t, nft.FormatAddress(f.deployer), body["owner"])
	assert.Equal(t, float64(1), body["total_supply"])
	assert.Equal(t, float64(10), body["max_supply"])
	assert.Equal(t, "10000000000000000", body["mint_price"])
	assert.Equal(t, "0.01", body["mint_price_native"])
	assert.Equal(t, "ipfs://abc/", body["base_uri"])
}

func TestTokenRoutes(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.get(t, f.contractPath("/tokens/1/uri"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ipfs://abc/1.json", body["uri"])

	rec, body = f.get(t, f.contractPath("/tokens/1/owner"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, nft.FormatAddress(f.deployer), body["owner"])

	rec, body = f.get(t, f.contractPath("/tokens/23/uri"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nonexistent_token", body["reason"])

	rec, _ = f.get(t, f.contractPath("/tokens/2/owner"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoyaltyRoute(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.get(t, f.contractPath("/royalty?tokenId=1&salePrice=10000"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1000", body["amount"])
	assert.Equal(t, nft.FormatAddress(f.deployer), body["receiver"])

	rec, body = f.get(t, f.contractPath("/royalty?tokenId=23&salePrice=123"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12", body["amount"])

	rec, _ = f.get(t, f.contractPath("/royalty?tokenId=1&salePrice=-4"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = f.get(t, f.contractPath("/royalty?tokenId=1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = f.get(t, f.contractPath("/royalty?salePrice=1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBalanceRoute(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.get(t, f.contractPath("/balances/"+nft.FormatAddress(f.deployer)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["balance"])

	rec, body = f.get(t, f.contractPath("/balances/"+nft.FormatAddress(testutil.Account(7))))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["balance"])

	rec, _ = f.get(t, f.contractPath("/balances/garbage"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownContract(t *testing.T) {
	f := newFixture(t, Options{})

	rec, body := f.get(t, "/contracts/"+nft.FormatAddress(testutil.Account(99)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["reason"])

	rec, _ = f.get(t, "/contracts/not-an-address")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndEvents(t *testing.T) {
	f := newFixture(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []deploy.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, nft.FormatAddress(f.proxy.Address()), list[0].Address)

	req = httptest.NewRequest(http.MethodGet, f.contractPath("/events?limit=2"), nil)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var evs []events.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evs))
	require.Len(t, evs, 2)
	assert.Equal(t, events.EventTransfer, evs[0].Type)

	rec, _ = f.get(t, f.contractPath("/events?limit=zero"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedValuesAreBadRequest(t *testing.T) {
	f := newFixture(t, Options{})

	for _, path := range []string{
		"/tokens/99999999999999999999/uri",
		"/royalty?salePrice=1",
		"/royalty?tokenId=x&salePrice=1",
		"/events?limit=zero",
		"/events?limit=0",
	} {
		rec, body := f.get(t, f.contractPath(path))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "bad_request", body["reason"], path)
	}

	rec, body := f.get(t, f.contractPath("/royalty?tokenId=1&salePrice=-4"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", body["reason"])
}

func TestRateLimited(t *testing.T) {
	f := newFixture(t, Options{RateLimit: 1, Burst: 1})

	rec, _ := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, body := f.get(t, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", body["reason"])
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, Options{})
	f.get(t, f.contractPath("/tokens/1/uri"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nft_layer_issuance_queries_total")
}
