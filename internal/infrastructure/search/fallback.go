package search

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cartscout/backend/internal/domain"
)

// fallbackNote explains to the user why they are seeing canned data.
const fallbackNote = "Search backends were unavailable; showing sample results. Purchase links direct to an Amazon search."

var fallbackSpecialChars = regexp.MustCompile(`[^\w\s]`)

// Fallback builds a deterministic product list for a query when every
// backend failed or returned nothing usable. It always returns at least one
// product and never fails.
func Fallback(query string) *domain.SearchResult {
	lower := strings.ToLower(query)
	searchURL := fallbackSearchURL(query)

	var products []domain.Product
	switch {
	case strings.Contains(lower, "headphones") || strings.Contains(lower, "earbuds"):
		products = []domain.Product{
			{
				Title:       "Sony WH-CH720N Wireless Noise Canceling Headphones",
				Price:       "$149.99",
				Rating:      "4.4",
				ImageURL:    "https://via.placeholder.com/300x300?text=Sony+Headphones",
				PurchaseURL: searchURL,
				Description: "Wireless over-ear headphones with active noise canceling and up to 35 hours battery life.",
				Source:      domain.SourceFallback,
			},
			{
				Title:       "Apple AirPods (3rd Generation)",
				Price:       "$179.00",
				Rating:      "4.6",
				ImageURL:    "https://via.placeholder.com/300x300?text=Apple+AirPods",
				PurchaseURL: searchURL,
				Description: "Wireless earbuds with spatial audio, MagSafe charging case, and up to 30 hours total listening time.",
				Source:      domain.SourceFallback,
			},
		}
	case strings.Contains(lower, "laptop"):
		products = []domain.Product{
			{
				Title:       "ASUS VivoBook 15 Laptop",
				Price:       "$599.99",
				Rating:      "4.3",
				ImageURL:    "https://via.placeholder.com/300x300?text=ASUS+Laptop",
				PurchaseURL: searchURL,
				Description: "15.6\" Full HD display, Intel Core i5 processor, 8GB RAM, 512GB SSD.",
				Source:      domain.SourceFallback,
			},
		}
	default:
		products = []domain.Product{
			{
				Title:       fmt.Sprintf("Popular %s - Best Seller", titleCase(query)),
				Price:       "$99.99",
				Rating:      "4.5",
				ImageURL:    "https://via.placeholder.com/300x300?text=Product+Image",
				PurchaseURL: searchURL,
				Description: fmt.Sprintf("High-quality %s with excellent reviews and fast shipping.", query),
				Source:      domain.SourceFallback,
			},
		}
	}

	return &domain.SearchResult{
		Products: products,
		Source:   domain.SourceFallback,
		Note:     fallbackNote,
	}
}

// fallbackSearchURL synthesizes an Amazon search link from the sanitized
// query text.
func fallbackSearchURL(query string) string {
	clean := fallbackSpecialChars.ReplaceAllString(query, "")
	clean = strings.Join(strings.Fields(clean), "+")
	return "https://www.amazon.com/s?k=" + clean
}

// titleCase capitalizes the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
