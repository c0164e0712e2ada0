package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fullstack/catalog-sync/internal/catalog"
	"github.com/fullstack/catalog-sync/internal/store/memory"
	"github.com/fullstack/catalog-sync/internal/syncer"
)

type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeRunner struct {
	summary syncer.Summary
	err     error
	calls   int
}

func (f *fakeRunner) RunCycle(context.Context) (syncer.Summary, error) {
	f.calls++
	return f.summary, f.err
}

func newTestServer(t *testing.T, runner CycleRunner) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New(&tickingClock{t: time.Unix(1700000000, 0).UTC()})
	return NewServer(st, runner, Options{}), st
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func seedProducts(t *testing.T, st *memory.Store, n int) []catalog.Product {
	t.Helper()
	out := make([]catalog.Product, 0, n)
	for i := 0; i < n; i++ {
		price := float64(10 + i)
		p, err := st.Save(context.Background(), catalog.Product{
			Title:       fmt.Sprintf("Product %d", i+1),
			ProductType: "Leggings",
			Price:       &price,
			Available:   true,
		})
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, s, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogCarriesRequestID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	st := memory.New(&tickingClock{t: time.Unix(1700000000, 0).UTC()})
	s := NewServer(st, nil, Options{Logger: zap.New(core)})

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	got, _ := entries[0].ContextMap()["request_id"].(string)
	require.NotEmpty(t, got)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), got)
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/v1/products", map[string]any{
		"title":        "Seamless Leggings",
		"product_type": "Leggings",
		"price":        "49.99",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotZero(t, got.ID)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 49.99, *got.Price, 0.0001)
	assert.True(t, got.Available, "availability defaults to true")
}

func TestCreateProductRejectsMissingTitle(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/v1/products", map[string]any{"price": "10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductExplicitlyUnavailable(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/v1/products", map[string]any{
		"title":     "Sold Out Hoodie",
		"available": "false",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Available)
}

func TestGetProduct(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seeded := seedProducts(t, st, 1)

	rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/v1/products/%d", seeded[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, seeded[0].Title, got.Title)

	rec = doJSON(t, s, http.MethodGet, "/v1/products/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/v1/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductPreservesAvailabilityWhenAbsent(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seeded := seedProducts(t, st, 1)

	rec := doJSON(t, s, http.MethodPut, fmt.Sprintf("/v1/products/%d", seeded[0].ID), map[string]any{
		"title": "Renamed",
		"price": "12.50",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.Available, "availability untouched without an explicit flag")

	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/v1/products/%d", seeded[0].ID), map[string]any{
		"title":     "Renamed",
		"available": "false",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.False(t, got.Available)
}

func TestUpdateProductNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPut, "/v1/products/42", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seeded := seedProducts(t, st, 1)

	rec := doJSON(t, s, http.MethodDelete, fmt.Sprintf("/v1/products/%d", seeded[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/v1/products/%d", seeded[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsNewestFirst(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seedProducts(t, st, 3)

	rec := doJSON(t, s, http.MethodGet, "/v1/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Product 3", got[0].Title)
	assert.Equal(t, "Product 1", got[2].Title)
}

func TestClearProducts(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seedProducts(t, st, 2)

	rec := doJSON(t, s, http.MethodDelete, "/v1/products", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seedProducts(t, st, 5) // prices 10..14

	rec := doJSON(t, s, http.MethodGet, "/v1/products/search?min_price=11&max_price=13", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3, "price range is inclusive on both ends")

	rec = doJSON(t, s, http.MethodGet, "/v1/products/search?q=product&available=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 5)
}

func TestSearchProductsRejectsMalformedParameters(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	for _, path := range []string{
		"/v1/products/search?min_price=cheap",
		"/v1/products/search?max_price=12x",
		"/v1/products/search?available=yes",
		"/v1/products/search?min_price=20&max_price=10",
	} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestListProductTypes(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	_, err := st.Save(context.Background(), catalog.Product{Title: "a", ProductType: "Bras"})
	require.NoError(t, err)
	_, err = st.Save(context.Background(), catalog.Product{Title: "b", ProductType: "Leggings"})
	require.NoError(t, err)
	_, err = st.Save(context.Background(), catalog.Product{Title: "c"})
	require.NoError(t, err)

	rec := doJSON(t, s, http.MethodGet, "/v1/products/types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"Bras", "Leggings"}, got)
}

func TestCountProducts(t *testing.T) {
	t.Parallel()

	s, st := newTestServer(t, nil)
	seedProducts(t, st, 4)

	rec := doJSON(t, s, http.MethodGet, "/v1/products/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 4}`, rec.Body.String())
}

func TestTriggerSync(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{summary: syncer.Summary{Fetched: 50, Saved: 50}}
	s, _ := newTestServer(t, runner)

	rec := doJSON(t, s, http.MethodPost, "/v1/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, runner.calls)

	var got syncer.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 50, got.Saved)
}

func TestTriggerSyncFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("upstream timed out")}
	s, _ := newTestServer(t, runner)

	rec := doJSON(t, s, http.MethodPost, "/v1/sync", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestTriggerSyncWithoutRunner(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/v1/sync", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
