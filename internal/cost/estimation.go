package cost

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Pricing represents the list price of a generation model
type Pricing struct {
	Model                 string
	InputCostPer1MTokens  float64 // Cost per 1M input tokens in USD
	OutputCostPer1MTokens float64 // Cost per 1M output tokens in USD
}

// PricingTable contains Gemini list prices. Models not listed, including local
// ollama models, are treated as free.
var PricingTable = map[string]Pricing{
	"gemini-flash-lite-latest": {
		Model:                 "gemini-flash-lite-latest",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
	},
	"gemini-2.5-flash-lite": {
		Model:                 "gemini-2.5-flash-lite",
		InputCostPer1MTokens:  0.10,
		OutputCostPer1MTokens: 0.40,
	},
	"gemini-flash-latest": {
		Model:                 "gemini-flash-latest",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
	},
	"gemini-2.5-flash": {
		Model:                 "gemini-2.5-flash",
		InputCostPer1MTokens:  0.30,
		OutputCostPer1MTokens: 2.50,
	},
	"gemini-2.5-pro": {
		Model:                 "gemini-2.5-pro",
		InputCostPer1MTokens:  1.25,
		OutputCostPer1MTokens: 10.00,
	},
}

// EstimateTokenCount provides a rough estimation of token count for text
// This is a simplified approximation: typically 1 token ≈ 0.75 words ≈ 4 characters
func EstimateTokenCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	charCount := utf8.RuneCountInString(text)

	// Markup-heavy output tokenizes denser than prose, so divide by 3.5 rather than 4
	return int(math.Ceil(float64(charCount) / 3.5))
}

// Estimate is the estimated usage of one generation call
type Estimate struct {
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64 // USD, zero for unpriced models
	Priced       bool
}

// EstimateCall estimates tokens and cost for a prompt and its completion.
func EstimateCall(model, prompt, completion string) Estimate {
	est := Estimate{
		Model:        model,
		InputTokens:  EstimateTokenCount(prompt),
		OutputTokens: EstimateTokenCount(completion),
	}

	pricing, ok := PricingTable[model]
	if !ok {
		return est
	}
	est.Priced = true
	est.Cost = float64(est.InputTokens)*pricing.InputCostPer1MTokens/1000000 +
		float64(est.OutputTokens)*pricing.OutputCostPer1MTokens/1000000
	return est
}

// TotalTokens returns input plus output tokens
func (e Estimate) TotalTokens() int {
	return e.InputTokens + e.OutputTokens
}
