// Package llm wraps the hosted completion service behind the
// domain.CompletionClient interface. Groq exposes an OpenAI-compatible API,
// so the official OpenAI client is pointed at its base URL.
package llm

import (
	"context"
	"fmt"
	"log"

	"github.com/cartscout/backend/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	api   *openai.Client
	debug bool
}

// NewClient creates a completion client for the given credential and base
// URL.
func NewClient(apiKey, baseURL string) *Client {
	// No automatic retries; a failed completion degrades its pipeline
	// stage instead.
	api := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	)
	return &Client{api: &api}
}

// SetDebug toggles per-call logging of prompt and response sizes.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Complete runs one chat completion with a system and user message and
// returns the raw response text. Callers are expected to run the result
// through the response normalizer; no shape guarantee is made here.
func (c *Client) Complete(ctx context.Context, model, system, user string) (string, error) {
	if c.debug {
		log.Printf("[LLM] model=%s system=%dB user=%dB", model, len(system), len(user))
	}

	res, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model: openai.ChatModel(model),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCompletionFailure, err)
	}

	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: response contained no choices", domain.ErrCompletionFailure)
	}

	text := res.Choices[0].Message.Content
	if c.debug {
		log.Printf("[LLM] model=%s response=%dB", model, len(text))
	}
	return text, nil
}
