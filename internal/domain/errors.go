package domain

import "errors"

var (
	// ErrMissingCredential is returned when the product-search API key is
	// not configured. Distinct from "no products found": no HTTP call is
	// attempted and the user sees a configuration message.
	ErrMissingCredential = errors.New("product search API key not configured")

	// ErrNoProducts is returned when retrieval and fallback combined yield
	// an empty product list.
	ErrNoProducts = errors.New("no products found")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrSearchAPIFailure is returned when a search backend request fails.
	ErrSearchAPIFailure = errors.New("product search API request failed")

	// ErrCompletionFailure is returned when the LLM completion call fails.
	ErrCompletionFailure = errors.New("completion request failed")
)
