package domain

import "time"

// Pipeline stage identifiers, in execution order.
const (
	StageResearch       = "research"
	StageAnalysis       = "analysis"
	StageRecommendation = "recommendation"
	StagePurchase       = "purchase"
)

// Recommendation is one entry from the recommendation stage.
type Recommendation struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// BestChoice is the single product the purchase stage settled on.
type BestChoice struct {
	Title       string `json:"title"`
	Price       string `json:"price,omitempty"`
	Rating      string `json:"rating,omitempty"`
	PurchaseURL string `json:"purchase_url,omitempty"`
}

// StageOutput holds the normalized output of one pipeline stage. When the
// stage text could not be parsed, Err carries the reason and Data the
// error-shaped result; Raw preserves the original model text for display.
type StageOutput struct {
	Stage string         `json:"stage"`
	Data  map[string]any `json:"data"`
	Err   string         `json:"error,omitempty"`
	Raw   string         `json:"raw,omitempty"`
}

// ShoppingResult is the assembled response for one user query after the
// retrieval pass and all four generation stages.
type ShoppingResult struct {
	Query           string           `json:"query"`
	Products        []Product        `json:"products"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	BestChoice      *BestChoice      `json:"best_choice,omitempty"`
	NextSteps       []string         `json:"next_steps,omitempty"`
	Source          string           `json:"source"`
	Note            string           `json:"note,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
	CachedAt        time.Time        `json:"cachedAt,omitempty"`
}
