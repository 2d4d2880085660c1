package catalog

var builtinModels = []ModelConfig{
	{
		ID:              "deepseek/deepseek-chat-v3-0324",
		Name:            "DeepSeek v3",
		Provider:        "DeepSeek",
		MaxTokens:       128000,
		CostPer1kTokens: 0.00,
		Description:     "Advanced reasoning with zero cost",
	},
	{
		ID:              "google/gemini-2.5-pro",
		Name:            "Gemini 2.5 Pro",
		Provider:        "Google",
		MaxTokens:       1000000,
		CostPer1kTokens: 0.0075,
		Description:     "Premium performance at accessible pricing",
	},
	{
		ID:              "anthropic/claude-opus-4.1",
		Name:            "Claude Opus 4.1",
		Provider:        "Anthropic",
		MaxTokens:       200000,
		CostPer1kTokens: 0.015,
		Description:     "Ultimate analytical precision for complex tasks",
	},
	{
		ID:              "google/gemini-2.5-flash",
		Name:            "Gemini 2.5 Flash",
		Provider:        "Google",
		MaxTokens:       1000000,
		CostPer1kTokens: 0.002,
		Description:     "Lightning-fast responses without compromising quality",
	},
	{
		ID:              "anthropic/claude-sonnet-4",
		Name:            "Claude Sonnet 4",
		Provider:        "Anthropic",
		MaxTokens:       200000,
		CostPer1kTokens: 0.003,
		Description:     "Exceptional context handling for extensive prompts",
	},
}
