package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cartscout/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCompletionClient scripts one response per call, in order.
type MockCompletionClient struct {
	responses []string
	errs      []error
	calls     int
	models    []string
	prompts   []string
}

func (m *MockCompletionClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	idx := m.calls
	m.calls++
	m.models = append(m.models, model)
	m.prompts = append(m.prompts, user)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return "{}", nil
}

func testModels() PipelineModels {
	return PipelineModels{
		Research:       "llama-3.3-70b-versatile",
		Analysis:       "llama-3.1-8b-instant",
		Recommendation: "llama-3.3-70b-versatile",
		Purchase:       "llama-3.1-8b-instant",
	}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{Title: "Sony WH-CH720N", Price: "$149.99", Rating: "4.4", Source: "real-time-product-search"},
	}
}

func TestPipeline_RunsFourStagesInOrder(t *testing.T) {
	mock := &MockCompletionClient{
		responses: []string{
			`{"products": [{"title": "Sony WH-CH720N", "price": "$149.99"}]}`,
			`{"ranked_products": [{"title": "Sony WH-CH720N", "rank": 1}]}`,
			`{"recommendations": [{"title": "Sony WH-CH720N", "reason": "best value"}]}`,
			`{"best_purchase_option": {"title": "Sony WH-CH720N", "price": "$149.99"}}`,
		},
	}

	pipeline := NewPipeline(mock, testModels())

	output, err := pipeline.Run(context.Background(), "wireless headphones", testProducts())

	require.NoError(t, err)
	assert.Equal(t, 4, mock.calls)
	require.Len(t, output.Stages, 4)
	assert.Equal(t, domain.StageResearch, output.Stages[0].Stage)
	assert.Equal(t, domain.StageAnalysis, output.Stages[1].Stage)
	assert.Equal(t, domain.StageRecommendation, output.Stages[2].Stage)
	assert.Equal(t, domain.StagePurchase, output.Stages[3].Stage)
	assert.Empty(t, output.Warnings)

	// Stage models come from configuration.
	assert.Equal(t, []string{
		"llama-3.3-70b-versatile", "llama-3.1-8b-instant",
		"llama-3.3-70b-versatile", "llama-3.1-8b-instant",
	}, mock.models)
}

func TestPipeline_ThreadsPriorStageOutput(t *testing.T) {
	mock := &MockCompletionClient{
		responses: []string{
			`{"products": [{"title": "Marker Product A1B2"}]}`,
			`{"analysis": "ranked"}`,
			`{"recommendations": []}`,
			`{"best_purchase_option": {}}`,
		},
	}

	pipeline := NewPipeline(mock, testModels())

	_, err := pipeline.Run(context.Background(), "test query", testProducts())

	require.NoError(t, err)
	require.Len(t, mock.prompts, 4)
	// Stage 1 sees the retriever's products.
	assert.Contains(t, mock.prompts[0], "Sony WH-CH720N")
	// Stage 2 sees stage 1's normalized output.
	assert.Contains(t, mock.prompts[1], "Marker Product A1B2")
	// Stage 3 sees stage 2's output.
	assert.Contains(t, mock.prompts[2], "ranked")
	// Every prompt carries the user query.
	for i, prompt := range mock.prompts {
		assert.Contains(t, prompt, "test query", "stage %d", i+1)
	}
}

func TestPipeline_UnparseableStageDegrades(t *testing.T) {
	mock := &MockCompletionClient{
		responses: []string{
			`{"products": [{"title": "Widget Q9"}]}`,
			`I'm sorry, I can't produce JSON right now.`,
			`{"recommendations": [{"title": "Widget Q9", "reasoning": "only option"}]}`,
			`{"best_purchase_option": {"title": "Widget Q9"}}`,
		},
	}

	pipeline := NewPipeline(mock, testModels())

	output, err := pipeline.Run(context.Background(), "widget", testProducts())

	require.NoError(t, err)
	assert.Equal(t, 4, mock.calls, "a failed stage must not stop the pipeline")
	require.Len(t, output.Warnings, 1)
	assert.Contains(t, output.Warnings[0], "analysis stage")

	// The analysis stage keeps the raw text for diagnostics.
	assert.NotEmpty(t, output.Stages[1].Err)
	assert.Contains(t, output.Stages[1].Raw, "can't produce JSON")

	// Stage 3 was fed stage 1's output, not the broken stage 2 text.
	assert.Contains(t, mock.prompts[2], "Widget Q9")
}

func TestPipeline_CompletionErrorDegrades(t *testing.T) {
	mock := &MockCompletionClient{
		responses: []string{"", `{"a":1}`, `{"b":2}`, `{"c":3}`},
		errs:      []error{errors.New("upstream 500"), nil, nil, nil},
	}

	pipeline := NewPipeline(mock, testModels())

	output, err := pipeline.Run(context.Background(), "anything", testProducts())

	require.NoError(t, err)
	require.Len(t, output.Stages, 4)
	assert.Equal(t, "completion failed", output.Stages[0].Err)
	require.NotEmpty(t, output.Warnings)
	assert.Contains(t, output.Warnings[0], "research stage")
}

func TestPipeline_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipeline := NewPipeline(&MockCompletionClient{}, testModels())

	output, err := pipeline.Run(ctx, "anything", testProducts())

	assert.Nil(t, output)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineOutput_Stage(t *testing.T) {
	output := &PipelineOutput{
		Stages: []domain.StageOutput{
			{Stage: domain.StageResearch, Data: map[string]any{"products": []any{}}},
		},
	}

	assert.NotNil(t, output.Stage(domain.StageResearch)["products"])
	assert.Empty(t, output.Stage(domain.StagePurchase))
}

func TestPipeline_PromptsRequestJSON(t *testing.T) {
	mock := &MockCompletionClient{}
	pipeline := NewPipeline(mock, testModels())

	_, err := pipeline.Run(context.Background(), "q", testProducts())

	require.NoError(t, err)
	for i, prompt := range mock.prompts {
		assert.True(t, strings.Contains(prompt, "JSON"), "stage %d prompt should ask for JSON", i+1)
	}
}
