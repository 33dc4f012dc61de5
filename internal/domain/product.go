package domain

// RatingUnknown is the rating placeholder used when a backend or the model
// did not report one.
const RatingUnknown = "not available"

// PriceUnknown is the sentinel some backends return for a missing price.
// A product carrying it is dropped during normalization.
const PriceUnknown = "N/A"

// SourceFallback tags products produced by the synthetic fallback catalog
// instead of a live search backend.
const SourceFallback = "fallback"

// Product is the canonical unit of output. Every backend response shape is
// normalized into this struct before anything downstream sees it.
type Product struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	ImageURL    string `json:"image_url,omitempty"`
	PurchaseURL string `json:"purchase_url,omitempty"`
	ASIN        string `json:"asin,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Valid reports whether the product survives normalization: a non-empty
// title and a usable price.
func (p Product) Valid() bool {
	return p.Title != "" && p.Price != "" && p.Price != PriceUnknown
}

// SearchResult is the outcome of one retrieval pass: the products from the
// first backend that produced anything usable, or the synthetic fallback.
type SearchResult struct {
	Products []Product `json:"products"`
	Source   string    `json:"source"`
	Note     string    `json:"note,omitempty"`
}

// SearchRequest is the inbound payload for a shopping search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}
