package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ezshop-backend/internal/cart"
	products "github.com/angelmondragon/ezshop-backend/internal/products"
	"github.com/angelmondragon/ezshop-backend/internal/reviews"
	pkgAuth "github.com/angelmondragon/ezshop-backend/pkg/auth"
	"github.com/angelmondragon/ezshop-backend/pkg/config"
	"github.com/angelmondragon/ezshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/ezshop-backend/pkg/enums"
	"github.com/angelmondragon/ezshop-backend/pkg/metrics"
)

type testServer struct {
	handler http.Handler
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		App:       config.AppConfig{Env: "dev"},
		JWT:       config.JWTConfig{Secret: "router-secret", Issuer: "ezshop", ExpirationMinutes: 30},
		RateLimit: config.RateLimitConfig{CartWindow: time.Minute, CartLimit: 100},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	client := dbtest.Open(t, "router")
	registry := prometheus.NewRegistry()

	productRepo := products.NewRepository(client.DB())
	productSvc, err := products.NewService(productRepo, client, time.Now)
	require.NoError(t, err)

	store, err := cart.NewStore(client, productRepo, cart.NewRepository(client.DB()), time.Now)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(store, metrics.NewCartMetrics(registry))
	require.NoError(t, err)

	reviewSvc, err := reviews.NewService(reviews.ServiceParams{
		ReviewRepo:  reviews.NewRepository(client.DB()),
		ProductRepo: productRepo,
	})
	require.NoError(t, err)

	handler := NewRouter(cfg, nil, client, nil, registry, Services{
		Cart:     cartSvc,
		Products: productSvc,
		Reviews:  reviewSvc,
	})
	return &testServer{handler: handler, cfg: cfg}
}

func (s *testServer) token(t *testing.T, username string, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{Username: username, Role: role})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
}

func TestHealthRoutesAreOpen(t *testing.T) {
	srv := newTestServer(t)

	live := srv.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, live.Code)

	ready := srv.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"redis":"disabled"`)
}

func TestAPIRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/v1/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRoleGroups(t *testing.T) {
	srv := newTestServer(t)
	customer := srv.token(t, "alice", enums.RoleCustomer)
	manager := srv.token(t, "mario", enums.RoleManager)
	admin := srv.token(t, "root", enums.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"customer cannot register arrivals", http.MethodPost, "/api/v1/products", customer, http.StatusForbidden},
		{"manager has no cart", http.MethodGet, "/api/v1/cart", manager, http.StatusForbidden},
		{"manager cannot purge carts", http.MethodDelete, "/api/v1/cart", manager, http.StatusForbidden},
		{"customer cannot list all carts", http.MethodGet, "/api/v1/cart/all", customer, http.StatusForbidden},
		{"admin lists all carts", http.MethodGet, "/api/v1/cart/all", admin, http.StatusOK},
		{"customer reads available products", http.MethodGet, "/api/v1/products/available", customer, http.StatusOK},
		{"customer cannot list full catalog", http.MethodGet, "/api/v1/products", customer, http.StatusForbidden},
	}
	for _, tt := range tests {
		resp := srv.do(t, tt.method, tt.path, tt.token, "")
		assert.Equal(t, tt.want, resp.Code, tt.name)
	}
}

func TestPurchaseFlow(t *testing.T) {
	srv := newTestServer(t)
	customer := srv.token(t, "alice", enums.RoleCustomer)
	manager := srv.token(t, "mario", enums.RoleManager)

	created := srv.do(t, http.MethodPost, "/api/v1/products", manager,
		`{"model":"iPhone13","category":"Smartphone","quantity":2,"sellingPrice":"799.99"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	empty := srv.do(t, http.MethodGet, "/api/v1/cart", customer, "")
	require.Equal(t, http.StatusOK, empty.Code)
	var current struct {
		Customer string `json:"customer"`
		Paid     bool   `json:"paid"`
		Total    string `json:"total"`
		Products []struct {
			Model    string `json:"model"`
			Quantity int    `json:"quantity"`
		} `json:"products"`
	}
	decodeData(t, empty, &current)
	assert.Equal(t, "alice", current.Customer)
	assert.Empty(t, current.Products)

	for i := 0; i < 2; i++ {
		added := srv.do(t, http.MethodPost, "/api/v1/cart", customer, `{"model":"iPhone13"}`)
		require.Equal(t, http.StatusOK, added.Code, added.Body.String())
	}
	soldOut := srv.do(t, http.MethodPost, "/api/v1/cart", customer, `{"model":"iPhone13"}`)
	assert.Equal(t, http.StatusConflict, soldOut.Code)
	assert.Contains(t, soldOut.Body.String(), "EMPTY_STOCK")

	stock := srv.do(t, http.MethodGet, "/api/v1/products/iPhone13", customer, "")
	require.Equal(t, http.StatusOK, stock.Code)
	assert.Contains(t, stock.Body.String(), `"quantity":0`)

	paid := srv.do(t, http.MethodPatch, "/api/v1/cart", customer, "")
	require.Equal(t, http.StatusOK, paid.Code, paid.Body.String())
	decodeData(t, paid, &current)
	assert.True(t, current.Paid)
	assert.Equal(t, "1599.98", current.Total)
	require.Len(t, current.Products, 1)
	assert.Equal(t, 2, current.Products[0].Quantity)

	again := srv.do(t, http.MethodPatch, "/api/v1/cart", customer, "")
	assert.Equal(t, http.StatusNotFound, again.Code)

	history := srv.do(t, http.MethodGet, "/api/v1/cart/history", customer, "")
	require.Equal(t, http.StatusOK, history.Code)
	var past []json.RawMessage
	decodeData(t, history, &past)
	assert.Len(t, past, 1)
}

func TestReviewRoutes(t *testing.T) {
	srv := newTestServer(t)
	customer := srv.token(t, "alice", enums.RoleCustomer)
	manager := srv.token(t, "mario", enums.RoleManager)

	created := srv.do(t, http.MethodPost, "/api/v1/products", manager,
		`{"model":"Pixel8","category":"Smartphone","quantity":1,"sellingPrice":499}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	added := srv.do(t, http.MethodPost, "/api/v1/reviews/Pixel8", customer, `{"score":4,"comment":"nice"}`)
	require.Equal(t, http.StatusOK, added.Code, added.Body.String())

	duplicate := srv.do(t, http.MethodPost, "/api/v1/reviews/Pixel8", customer, `{"score":2,"comment":"changed my mind"}`)
	assert.Equal(t, http.StatusConflict, duplicate.Code)

	list := srv.do(t, http.MethodGet, "/api/v1/reviews/Pixel8", manager, "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"user":"alice"`)

	purge := srv.do(t, http.MethodDelete, "/api/v1/reviews/Pixel8/all", manager, "")
	assert.Equal(t, http.StatusOK, purge.Code)
}

func TestMetricsEndpointExposesRoutePatterns(t *testing.T) {
	srv := newTestServer(t)
	customer := srv.token(t, "alice", enums.RoleCustomer)

	srv.do(t, http.MethodGet, "/api/v1/products/unknown-model", customer, "")

	resp := srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `route="/api/v1/products/{model}"`)
	assert.NotContains(t, resp.Body.String(), "unknown-model")
}
