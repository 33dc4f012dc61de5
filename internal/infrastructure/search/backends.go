package search

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/cartscout/backend/internal/domain"
)

// maxProductsPerBackend caps how many records are taken from one backend
// response.
const maxProductsPerBackend = 8

// descriptionLimit bounds product descriptions before display.
const descriptionLimit = 200

// Backend describes one product-search endpoint: where to call it, how to
// map a query into its parameter names, and how to map its response shape
// into canonical products. Backends are tried in slice order; the first one
// that yields a valid product wins.
type Backend struct {
	Name   string
	URL    string
	Host   string
	Params func(query string) url.Values
	Parse  func(body []byte) ([]domain.Product, error)
}

// DefaultBackends returns the production backend list in priority order.
func DefaultBackends() []Backend {
	return []Backend{
		{
			Name: "real-time-product-search",
			URL:  "https://real-time-product-search.p.rapidapi.com/search",
			Host: "real-time-product-search.p.rapidapi.com",
			Params: func(query string) url.Values {
				return url.Values{
					"q":        {query},
					"country":  {"us"},
					"language": {"en"},
					"limit":    {"10"},
				}
			},
			Parse: parseRealTimeSearch,
		},
		{
			Name: "amazon-product-reviews-keywords",
			URL:  "https://amazon-product-reviews-keywords.p.rapidapi.com/product/search",
			Host: "amazon-product-reviews-keywords.p.rapidapi.com",
			Params: func(query string) url.Values {
				return url.Values{
					"keyword":  {query},
					"country":  {"US"},
					"category": {""},
				}
			},
			Parse: parseAmazonSearch,
		},
		{
			Name: "shopping-product-search",
			URL:  "https://shopping-product-search.p.rapidapi.com/api/v1/search",
			Host: "shopping-product-search.p.rapidapi.com",
			Params: func(query string) url.Values {
				return url.Values{
					"query":   {query},
					"country": {"US"},
					"limit":   {"10"},
				}
			},
			Parse: parseShoppingSearch,
		},
	}
}

// realTimeSearchResponse mirrors the real-time-product-search shape: items
// under "data", price and purchase link nested in "offer".
type realTimeSearchResponse struct {
	Data []struct {
		ProductTitle  string `json:"product_title"`
		ProductRating any    `json:"product_rating"`
		ProductPhotos []struct {
			Link string `json:"link"`
		} `json:"product_photos"`
		ProductDescription string `json:"product_description"`
		Offer              struct {
			Price        string `json:"price"`
			OfferPageURL string `json:"offer_page_url"`
		} `json:"offer"`
	} `json:"data"`
}

func parseRealTimeSearch(body []byte) ([]domain.Product, error) {
	var resp realTimeSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var products []domain.Product
	for _, item := range resp.Data {
		if len(products) >= maxProductsPerBackend {
			break
		}
		var image string
		if len(item.ProductPhotos) > 0 {
			image = item.ProductPhotos[0].Link
		}
		p := domain.Product{
			Title:       item.ProductTitle,
			Price:       priceString(item.Offer.Price),
			Rating:      ratingString(item.ProductRating),
			ImageURL:    image,
			PurchaseURL: item.Offer.OfferPageURL,
			Description: truncateDescription(item.ProductDescription),
			Source:      "real-time-product-search",
		}
		if p.Valid() {
			products = append(products, p)
		}
	}
	return products, nil
}

// amazonSearchResponse mirrors the amazon-product-reviews-keywords shape:
// items under "products", numeric price under "price.current_price",
// rating under "reviews.rating".
type amazonSearchResponse struct {
	Products []struct {
		Title string `json:"title"`
		Price struct {
			CurrentPrice any `json:"current_price"`
		} `json:"price"`
		Reviews struct {
			Rating any `json:"rating"`
		} `json:"reviews"`
		Image       string `json:"image"`
		URL         string `json:"url"`
		Description string `json:"description"`
	} `json:"products"`
}

func parseAmazonSearch(body []byte) ([]domain.Product, error) {
	var resp amazonSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var products []domain.Product
	for _, item := range resp.Products {
		if len(products) >= maxProductsPerBackend {
			break
		}
		p := domain.Product{
			Title:       item.Title,
			Price:       priceFromAny(item.Price.CurrentPrice),
			Rating:      ratingString(item.Reviews.Rating),
			ImageURL:    item.Image,
			PurchaseURL: item.URL,
			Description: truncateDescription(item.Description),
			Source:      "amazon-product-reviews-keywords",
		}
		if p.Valid() {
			products = append(products, p)
		}
	}
	return products, nil
}

// shoppingSearchResponse mirrors the shopping-product-search shape: flat
// items under "results".
type shoppingSearchResponse struct {
	Results []struct {
		Name        string `json:"name"`
		Price       string `json:"price"`
		Rating      any    `json:"rating"`
		Image       string `json:"image"`
		Link        string `json:"link"`
		Description string `json:"description"`
	} `json:"results"`
}

func parseShoppingSearch(body []byte) ([]domain.Product, error) {
	var resp shoppingSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var products []domain.Product
	for _, item := range resp.Results {
		if len(products) >= maxProductsPerBackend {
			break
		}
		p := domain.Product{
			Title:       item.Name,
			Price:       priceString(item.Price),
			Rating:      ratingString(item.Rating),
			ImageURL:    item.Image,
			PurchaseURL: item.Link,
			Description: truncateDescription(item.Description),
			Source:      "shopping-product-search",
		}
		if p.Valid() {
			products = append(products, p)
		}
	}
	return products, nil
}

// priceString normalizes a backend price string, mapping empty to the
// missing-price sentinel so validation drops the record.
func priceString(price string) string {
	price = strings.TrimSpace(price)
	if price == "" {
		return domain.PriceUnknown
	}
	return price
}

// priceFromAny handles backends that report price as either a string or a
// bare number.
func priceFromAny(v any) string {
	switch p := v.(type) {
	case string:
		return priceString(p)
	case float64:
		if p <= 0 {
			return domain.PriceUnknown
		}
		return fmt.Sprintf("$%.2f", p)
	default:
		return domain.PriceUnknown
	}
}

// ratingString normalizes a rating that may arrive as a string, a number,
// or not at all.
func ratingString(v any) string {
	switch r := v.(type) {
	case string:
		r = strings.TrimSpace(r)
		if r == "" || r == domain.PriceUnknown {
			return domain.RatingUnknown
		}
		return r
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", r), "0"), ".")
	default:
		return domain.RatingUnknown
	}
}

// truncateDescription bounds a description and marks the cut with an
// ellipsis. The cut lands on a rune boundary so multibyte text stays
// valid UTF-8.
func truncateDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	if len(desc) <= descriptionLimit {
		return desc
	}
	runes := []rune(desc)
	if len(runes) <= descriptionLimit {
		return desc
	}
	return string(runes[:descriptionLimit]) + "..."
}
