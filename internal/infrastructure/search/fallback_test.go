package search

import (
	"strings"
	"testing"

	"github.com/cartscout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_Headphones(t *testing.T) {
	// Case-insensitive keyword match selects the canned headphones set.
	for _, query := range []string{"wireless headphones", "Bluetooth EARBUDS", "HeadPhones under $200"} {
		t.Run(query, func(t *testing.T) {
			result := Fallback(query)

			require.Len(t, result.Products, 2)
			assert.Equal(t, "Sony WH-CH720N Wireless Noise Canceling Headphones", result.Products[0].Title)
			assert.Equal(t, "$149.99", result.Products[0].Price)
			assert.Equal(t, "Apple AirPods (3rd Generation)", result.Products[1].Title)
			assert.Equal(t, domain.SourceFallback, result.Source)
			assert.NotEmpty(t, result.Note)
		})
	}
}

func TestFallback_Laptop(t *testing.T) {
	result := Fallback("gaming laptop RTX 4060")

	require.Len(t, result.Products, 1)
	assert.Equal(t, "ASUS VivoBook 15 Laptop", result.Products[0].Title)
	assert.Equal(t, "$599.99", result.Products[0].Price)
	assert.Equal(t, "4.3", result.Products[0].Rating)
}

func TestFallback_Generic(t *testing.T) {
	result := Fallback("ergonomic office chair")

	require.Len(t, result.Products, 1)
	p := result.Products[0]
	assert.Equal(t, "Popular Ergonomic Office Chair - Best Seller", p.Title)
	assert.Equal(t, "$99.99", p.Price)
	assert.True(t, p.Valid())
	assert.Equal(t, "https://www.amazon.com/s?k=ergonomic+office+chair", p.PurchaseURL)
}

func TestFallback_NeverEmpty(t *testing.T) {
	for _, query := range []string{"x", "!!!", "some very long query with many words indeed"} {
		result := Fallback(query)
		require.NotEmpty(t, result.Products, "query %q", query)
		for _, p := range result.Products {
			assert.True(t, p.Valid())
			assert.Equal(t, domain.SourceFallback, p.Source)
		}
	}
}

func TestFallbackSearchURL_SanitizesQuery(t *testing.T) {
	url := fallbackSearchURL("gaming laptop under $1,000!")

	assert.True(t, strings.HasPrefix(url, "https://www.amazon.com/s?k="))
	assert.NotContains(t, url, "$")
	assert.NotContains(t, url, ",")
	assert.NotContains(t, url, " ")
}
