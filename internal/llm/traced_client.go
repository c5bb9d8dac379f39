package llm

import (
	"context"
	"time"

	"healthpage/internal/cost"
	"healthpage/internal/logger"
)

// TracedGenerator wraps a Generator and logs latency and estimated token usage per call.
type TracedGenerator struct {
	next  Generator
	model string
}

// NewTracedGenerator wraps next. model only labels the log lines.
func NewTracedGenerator(next Generator, model string) *TracedGenerator {
	return &TracedGenerator{next: next, model: model}
}

// Generate calls the wrapped generator and records the call.
func (tg *TracedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	startTime := time.Now()
	result, err := tg.next.Generate(ctx, prompt)
	latencyMs := time.Since(startTime).Milliseconds()

	if err != nil {
		logger.Error("Generation failed", err,
			"model", tg.model, "latency_ms", latencyMs, "prompt_tokens", cost.EstimateTokenCount(prompt))
		return result, err
	}

	est := cost.EstimateCall(tg.model, prompt, result)
	logger.Info("Generation completed",
		"model", tg.model,
		"latency_ms", latencyMs,
		"prompt_tokens", est.InputTokens,
		"completion_tokens", est.OutputTokens,
		"estimated_cost_usd", est.Cost,
		"response_chars", len(result))
	return result, nil
}
