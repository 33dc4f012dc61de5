package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductSearcher defines the interface for the multi-backend product
// retrieval layer.
type ProductSearcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// CompletionClient defines the interface for the hosted LLM completion
// service. The model is chosen per pipeline stage.
type CompletionClient interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}
