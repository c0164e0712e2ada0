package httpjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "products": [
    {
      "id": 1,
      "title": "Seamless Tights",
      "handle": "seamless-tights",
      "product_type": "Tights",
      "body_html": "<p>Soft</p>",
      "variants": [
        {"id": 11, "title": "S", "price": "49.90", "sku": "ST-S", "available": true,
         "featured_image": {"id": 7, "src": "https://cdn.example.com/t.jpg"}}
      ]
    },
    {"id": 2, "title": "Gift Card", "variants": []}
  ]
}`

func TestFetchProductsDecodesPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	f, err := New(Config{URL: srv.URL})
	require.NoError(t, err)

	products, err := f.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Seamless Tights", products[0].Title)
	require.Len(t, products[0].Variants, 1)
	assert.Equal(t, "49.90", products[0].Variants[0].Price)
	require.NotNil(t, products[0].Variants[0].FeaturedImage)
	assert.Equal(t, "https://cdn.example.com/t.jpg", products[0].Variants[0].FeaturedImage.Src)
	assert.Empty(t, products[1].Variants)
}

func TestFetchProductsRawReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	f, err := New(Config{URL: srv.URL})
	require.NoError(t, err)

	products, body, err := f.FetchProductsRaw(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.JSONEq(t, `{"products":[]}`, string(body))
}

func TestFetchProductsRejectsNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	f, err := New(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = f.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestFetchProductsRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"products": [`))
	}))
	defer srv.Close()

	f, err := New(Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = f.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog payload")
}

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
}
