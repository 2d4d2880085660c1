package models

// TokenUsage is the usage block reported by a model provider at the end of a stream.
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd,omitempty"`
	Model        string  `json:"model,omitempty"`
}

// UsageStats are the cumulative counters shown on the stats screen.
type UsageStats struct {
	PromptsEnhanced          int            `json:"prompts_enhanced"`
	TokensUsed               int            `json:"tokens_used"`
	TotalCharacters          int            `json:"total_characters"`
	AverageEnhancementTimeMs float64        `json:"average_enhancement_time_ms"`
	FavoriteModel            string         `json:"favorite_model"`
	FavoriteTechnique        string         `json:"favorite_technique"`
	UsagePercentage          float64        `json:"usage_percentage"`
	MonthlyLimit             int            `json:"monthly_limit"`
	ModelCounts              map[string]int `json:"model_counts,omitempty"`
	TechniqueCounts          map[string]int `json:"technique_counts,omitempty"`
}
