package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/cartscout/backend/internal/domain"
)

// PipelineModels assigns a completion model to each stage.
type PipelineModels struct {
	Research       string
	Analysis       string
	Recommendation string
	Purchase       string
}

// Pipeline runs the four generation stages strictly in order, threading
// each stage's normalized output into the next stage's prompt. A stage
// whose completion fails or whose output cannot be parsed degrades to an
// error-shaped result and the pipeline continues; consumers read all stage
// data through permissive lookups.
type Pipeline struct {
	llm    domain.CompletionClient
	models PipelineModels
}

// PipelineOutput collects the per-stage results in execution order.
type PipelineOutput struct {
	Stages   []domain.StageOutput
	Warnings []string
}

// Stage returns the named stage's normalized data, or an empty map.
func (o *PipelineOutput) Stage(name string) map[string]any {
	for _, s := range o.Stages {
		if s.Stage == name {
			return s.Data
		}
	}
	return map[string]any{}
}

// NewPipeline creates a pipeline over a completion client.
func NewPipeline(llm domain.CompletionClient, models PipelineModels) *Pipeline {
	return &Pipeline{
		llm:    llm,
		models: models,
	}
}

type stageSpec struct {
	name   string
	model  string
	role   string
	prompt func(query, context string) string
}

// Run executes research, analysis, recommendation, and purchase for the
// query, seeding the research stage with the retriever's product list.
func (p *Pipeline) Run(ctx context.Context, query string, products []domain.Product) (*PipelineOutput, error) {
	seed, err := json.Marshal(map[string]any{"products": products})
	if err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}

	stages := []stageSpec{
		{domain.StageResearch, p.models.Research, researchRole, researchPrompt},
		{domain.StageAnalysis, p.models.Analysis, analysisRole, analysisPrompt},
		{domain.StageRecommendation, p.models.Recommendation, recommendationRole, recommendationPrompt},
		{domain.StagePurchase, p.models.Purchase, purchaseRole, purchasePrompt},
	}

	output := &PipelineOutput{}
	carry := string(seed)

	for _, stage := range stages {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result := p.runStage(ctx, stage, query, carry)
		output.Stages = append(output.Stages, result)

		if result.Err != "" {
			output.Warnings = append(output.Warnings,
				fmt.Sprintf("%s stage: %s", result.Stage, result.Err))
			// Keep threading the previous accumulator so later stages still
			// see real data.
			continue
		}

		serialized, err := json.Marshal(result.Data)
		if err != nil {
			output.Warnings = append(output.Warnings,
				fmt.Sprintf("%s stage: could not serialize output", result.Stage))
			continue
		}
		carry = string(serialized)
	}

	return output, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage stageSpec, query, carry string) domain.StageOutput {
	text, err := p.llm.Complete(ctx, stage.model, stage.role, stage.prompt(query, carry))
	if err != nil {
		log.Printf("[PIPELINE] %s completion failed: %v", stage.name, err)
		return domain.StageOutput{
			Stage: stage.name,
			Data:  map[string]any{},
			Err:   "completion failed",
		}
	}

	data := NormalizeResponse(text)
	if IsErrorShaped(data) {
		log.Printf("[PIPELINE] %s output not parseable (%d bytes)", stage.name, len(text))
		return domain.StageOutput{
			Stage: stage.name,
			Data:  data,
			Err:   Lookup(data, "error"),
			Raw:   text,
		}
	}

	return domain.StageOutput{
		Stage: stage.name,
		Data:  data,
	}
}
