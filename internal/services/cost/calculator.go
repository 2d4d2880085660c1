package cost

import (
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/models"
)

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// EstimateCost prices tokens at the model's catalogue rate.
func (c *Calculator) EstimateCost(model catalog.ModelConfig, tokens int) float64 {
	if tokens <= 0 || model.CostPer1kTokens <= 0 {
		return 0
	}
	return float64(tokens) / 1000 * model.CostPer1kTokens
}

// Cost returns what an enhancement cost. A cost reported by the provider
// wins; otherwise the reported token total is priced, and when the provider
// reported nothing the estimated token count is used.
func (c *Calculator) Cost(model catalog.ModelConfig, usage *models.TokenUsage, estimatedTokens int) float64 {
	if usage != nil {
		if usage.CostUSD > 0 {
			return usage.CostUSD
		}
		if usage.TotalTokens > 0 {
			return c.EstimateCost(model, usage.TotalTokens)
		}
	}
	return c.EstimateCost(model, estimatedTokens)
}
