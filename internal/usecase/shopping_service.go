package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cartscout/backend/internal/domain"
)

// Package-level compiled regex patterns for cache-key normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// Alias tables for model-output field drift. Centralized here so every
// consumer reads through the same list.
var (
	titleAliases       = []string{"title", "Title", "name", "product_title"}
	priceAliases       = []string{"price", "Price"}
	ratingAliases      = []string{"rating", "Rating"}
	imageAliases       = []string{"image_url", "Image URL", "image"}
	purchaseURLAliases = []string{"buy_url", "purchase_url", "Purchase URL", "url"}
	idAliases          = []string{"asin", "product_id", "id"}
	descriptionAliases = []string{"description", "Brief description", "Description"}
	reasonAliases      = []string{"reason", "reasoning", "explanation"}
)

// ShoppingServiceConfig holds configuration for the shopping service
type ShoppingServiceConfig struct {
	CacheTTL time.Duration
	Models   PipelineModels
}

// ShoppingService answers one shopping query: check the cache, retrieve
// products, run the four generation stages, and assemble the result the
// presentation layer renders.
type ShoppingService struct {
	cache    domain.CacheRepository
	searcher domain.ProductSearcher
	pipeline *Pipeline
	cacheTTL time.Duration
}

// NewShoppingService creates a shopping service with dependencies
func NewShoppingService(
	cache domain.CacheRepository,
	searcher domain.ProductSearcher,
	llm domain.CompletionClient,
	config ShoppingServiceConfig,
) *ShoppingService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 1 * time.Hour
	}

	return &ShoppingService{
		cache:    cache,
		searcher: searcher,
		pipeline: NewPipeline(llm, config.Models),
		cacheTTL: cacheTTL,
	}
}

// Search runs one full query/response cycle.
// Flow: check cache -> retrieve products -> run pipeline -> assemble -> cache
func (s *ShoppingService) Search(ctx context.Context, query string) (*domain.ShoppingResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := s.generateCacheKey(query)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		log.Printf("[SHOPPING] cache hit for %q", query)
		// The cache hands every hit the same pointer; copy before stamping
		// the source so concurrent requests never write to a shared result.
		result := *cached
		result.Source = "cache"
		return &result, nil
	}

	searchResult, err := s.searcher.Search(ctx, query)
	if err != nil {
		// Missing credential is the one hard, user-visible condition.
		return nil, err
	}

	pipelineOutput, err := s.pipeline.Run(ctx, query, searchResult.Products)
	if err != nil {
		return nil, fmt.Errorf("pipeline failed: %w", err)
	}

	result := s.assembleResult(query, searchResult, pipelineOutput)

	if len(result.Products) == 0 {
		return nil, domain.ErrNoProducts
	}

	// Fallback data is a degraded answer; do not pin it for the TTL window.
	if searchResult.Source != domain.SourceFallback {
		if err := s.setInCache(ctx, cacheKey, result); err != nil {
			log.Printf("[SHOPPING] cache set failed for %q: %v", query, err)
		}
	}

	return result, nil
}

// assembleResult merges the retrieval pass and the stage outputs into the
// displayable result. The research stage's product list is preferred when
// it parsed into valid products (the model may have enriched descriptions);
// otherwise the retriever's list stands.
func (s *ShoppingService) assembleResult(
	query string,
	searchResult *domain.SearchResult,
	pipelineOutput *PipelineOutput,
) *domain.ShoppingResult {
	products := productsFromStage(pipelineOutput.Stage(domain.StageResearch), searchResult.Source)
	if len(products) == 0 {
		products = searchResult.Products
	}

	for i := range products {
		products[i].PurchaseURL = ResolveProductLink(products[i])
		if products[i].ASIN == "" {
			products[i].ASIN = ExtractASIN(products[i].PurchaseURL)
		}
		if products[i].Rating == "" {
			products[i].Rating = domain.RatingUnknown
		}
	}

	return &domain.ShoppingResult{
		Query:           query,
		Products:        products,
		Recommendations: recommendationsFromStage(pipelineOutput.Stage(domain.StageRecommendation)),
		BestChoice:      bestChoiceFromStage(pipelineOutput.Stage(domain.StagePurchase)),
		NextSteps:       nextStepsFromStage(pipelineOutput.Stage(domain.StagePurchase)),
		Source:          searchResult.Source,
		Note:            searchResult.Note,
		Warnings:        pipelineOutput.Warnings,
	}
}

// productsFromStage re-validates the research stage's product list into
// canonical products. Invalid records are dropped, not patched.
func productsFromStage(stage map[string]any, source string) []domain.Product {
	var products []domain.Product
	for _, item := range LookupList(stage, "products") {
		p := domain.Product{
			Title:       Lookup(item, titleAliases...),
			Price:       Lookup(item, priceAliases...),
			Rating:      Lookup(item, ratingAliases...),
			ImageURL:    Lookup(item, imageAliases...),
			PurchaseURL: Lookup(item, purchaseURLAliases...),
			ASIN:        Lookup(item, idAliases...),
			Description: Lookup(item, descriptionAliases...),
			Source:      source,
		}
		if p.Rating == "" {
			p.Rating = domain.RatingUnknown
		}
		if p.Valid() {
			products = append(products, p)
		}
	}
	return products
}

func recommendationsFromStage(stage map[string]any) []domain.Recommendation {
	var recommendations []domain.Recommendation
	for _, item := range LookupList(stage, "recommendations") {
		rec := domain.Recommendation{
			Title:  Lookup(item, titleAliases...),
			Reason: Lookup(item, reasonAliases...),
		}
		if rec.Title != "" {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}

func bestChoiceFromStage(stage map[string]any) *domain.BestChoice {
	obj, ok := LookupMap(stage, "best_purchase_option", "best_choice")
	if !ok {
		return nil
	}

	choice := &domain.BestChoice{
		Title:       Lookup(obj, titleAliases...),
		Price:       Lookup(obj, priceAliases...),
		Rating:      Lookup(obj, ratingAliases...),
		PurchaseURL: Lookup(obj, purchaseURLAliases...),
	}
	if choice.Title == "" {
		return nil
	}
	if !ValidateURL(choice.PurchaseURL) {
		choice.PurchaseURL = SpecificSearchURL(choice.Title, choice.Price)
	}
	return choice
}

// nextStepsFromStage tolerates the purchase stage emitting next steps as a
// list, a map of step name to text, or a single string.
func nextStepsFromStage(stage map[string]any) []string {
	v, ok := LookupValue(stage, "next_steps_for_purchase", "next_steps")
	if !ok {
		return nil
	}

	switch steps := v.(type) {
	case []any:
		var result []string
		for _, step := range steps {
			if s := coerceString(step); s != "" {
				result = append(result, s)
			}
		}
		return result
	case map[string]any:
		// Map iteration order is random; sort keys so the step list is
		// stable across requests.
		keys := make([]string, 0, len(steps))
		for k := range steps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var result []string
		for _, k := range keys {
			if s := coerceString(steps[k]); s != "" {
				result = append(result, s)
			}
		}
		return result
	case string:
		if steps == "" {
			return nil
		}
		return []string{steps}
	default:
		return nil
	}
}

// generateCacheKey creates a normalized cache key from the query.
// Format: "shopping:{normalized_query}"
func (s *ShoppingService) generateCacheKey(query string) string {
	return "shopping:" + normalizeForCacheKey(query)
}

// normalizeForCacheKey lowercases, strips special characters, and collapses
// whitespace so trivially different queries share a cache entry.
func normalizeForCacheKey(q string) string {
	result := strings.ToLower(q)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

func (s *ShoppingService) getFromCache(ctx context.Context, key string) (*domain.ShoppingResult, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	result, ok := value.(*domain.ShoppingResult)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return result, nil
}

func (s *ShoppingService) setInCache(ctx context.Context, key string, result *domain.ShoppingResult) error {
	result.CachedAt = time.Now()
	return s.cache.Set(ctx, key, result, s.cacheTTL)
}
