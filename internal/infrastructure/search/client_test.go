package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cartscout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend wraps an httptest server in a Backend descriptor reusing a
// real parse function.
func testBackend(name string, server *httptest.Server, parse func([]byte) ([]domain.Product, error)) Backend {
	b := Backend{
		Name:  name,
		URL:   server.URL,
		Host:  name + ".p.rapidapi.com",
		Parse: parse,
	}
	b.Params = DefaultBackends()[0].Params
	return b
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", 10*time.Second)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Len(t, client.backends, 3)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("test-api-key", time.Second)

	result, err := client.Search(context.Background(), "")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSearch_MissingCredential(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := NewClientWithBackends("", time.Second, []Backend{
		testBackend("real-time-product-search", server, parseRealTimeSearch),
	})

	result, err := client.Search(context.Background(), "wireless headphones")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, 0, calls, "no HTTP call should be made without a credential")
}

func TestSearch_FirstBackendWins(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("X-RapidAPI-Key"))
		assert.NotEmpty(t, r.Header.Get("X-RapidAPI-Host"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"product_title":"Sony WH-1000XM5","product_rating":4.7,` +
			`"product_photos":[{"link":"https://img.example.net/xm5.jpg"}],` +
			`"product_description":"Flagship noise canceling headphones.",` +
			`"offer":{"price":"$348.00","offer_page_url":"https://www.amazon.com/dp/B09XS7JWHH"}}]}`))
	}))
	defer first.Close()

	secondCalls := 0
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondCalls++
	}))
	defer second.Close()

	client := NewClientWithBackends("test-api-key", time.Second, []Backend{
		testBackend("real-time-product-search", first, parseRealTimeSearch),
		testBackend("amazon-product-reviews-keywords", second, parseAmazonSearch),
	})

	result, err := client.Search(context.Background(), "noise canceling headphones")

	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "real-time-product-search", result.Source)
	assert.Equal(t, "Sony WH-1000XM5", result.Products[0].Title)
	assert.Equal(t, "$348.00", result.Products[0].Price)
	assert.Equal(t, "4.7", result.Products[0].Rating)
	assert.Equal(t, 0, secondCalls, "second backend must not be tried after a usable first result")
}

func TestSearch_FallsThroughFailedBackends(t *testing.T) {
	// First two backends fail with 500 and 503, third returns one valid
	// record. The result must carry the third backend's identifier.
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer second.Close()

	third := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"name":"ASUS VivoBook 15 Laptop","price":"$599.99",` +
			`"rating":"4.3","image":"","link":"https://example-shop.com/asus-vivobook",` +
			`"description":"15.6 inch laptop"}]}`))
	}))
	defer third.Close()

	client := NewClientWithBackends("test-api-key", time.Second, []Backend{
		testBackend("real-time-product-search", first, parseRealTimeSearch),
		testBackend("amazon-product-reviews-keywords", second, parseAmazonSearch),
		testBackend("shopping-product-search", third, parseShoppingSearch),
	})

	result, err := client.Search(context.Background(), "gaming laptop under $1000")

	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "shopping-product-search", result.Source)
	assert.Equal(t, "ASUS VivoBook 15 Laptop", result.Products[0].Title)
	assert.Equal(t, "$599.99", result.Products[0].Price)
	assert.Empty(t, result.Note)
}

func TestSearch_EmptyResultsFallThrough(t *testing.T) {
	// A 200 with zero valid products is as unusable as a failure.
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer empty.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"title":"Logitech MX Master 3S",` +
			`"price":{"current_price":99.99},"reviews":{"rating":4.8},` +
			`"image":"","url":"https://www.amazon.com/dp/B09HM94VDS","description":"Wireless mouse"}]}`))
	}))
	defer second.Close()

	client := NewClientWithBackends("test-api-key", time.Second, []Backend{
		testBackend("real-time-product-search", empty, parseRealTimeSearch),
		testBackend("amazon-product-reviews-keywords", second, parseAmazonSearch),
	})

	result, err := client.Search(context.Background(), "wireless mouse")

	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "amazon-product-reviews-keywords", result.Source)
	assert.Equal(t, "$99.99", result.Products[0].Price)
}

func TestSearch_AllBackendsExhausted_Fallback(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	client := NewClientWithBackends("test-api-key", time.Second, []Backend{
		testBackend("real-time-product-search", down, parseRealTimeSearch),
		testBackend("shopping-product-search", down, parseShoppingSearch),
	})

	result, err := client.Search(context.Background(), "Wireless Headphones under $200")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.Source)
	assert.NotEmpty(t, result.Note)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "Sony WH-CH720N Wireless Noise Canceling Headphones", result.Products[0].Title)
	assert.Equal(t, "Apple AirPods (3rd Generation)", result.Products[1].Title)
	for _, p := range result.Products {
		assert.Equal(t, domain.SourceFallback, p.Source)
	}
}

func TestSearch_NetworkErrorFallback(t *testing.T) {
	// Point the backend at a closed server to force a connection error.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadBackend := testBackend("real-time-product-search", dead, parseRealTimeSearch)
	dead.Close()

	client := NewClientWithBackends("test-api-key", time.Second, []Backend{deadBackend})

	result, err := client.Search(context.Background(), "standing desk")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.Source)
	require.NotEmpty(t, result.Products)
}

func TestSearch_MalformedBodyFallsThrough(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("not json at all"))
	}))
	defer bad.Close()

	client := NewClientWithBackends("test-api-key", time.Second, []Backend{
		testBackend("real-time-product-search", bad, parseRealTimeSearch),
	})

	result, err := client.Search(context.Background(), "usb microphone")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.Source)
}
