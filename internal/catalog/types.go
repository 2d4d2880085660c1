// Package catalog holds the static set of models, enhancement techniques and
// output formats a user can pick from.
package catalog

// ModelConfig describes a model reachable through the routing API.
type ModelConfig struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	Provider        string  `json:"provider" yaml:"provider"`
	MaxTokens       int     `json:"max_tokens" yaml:"max_tokens"`
	CostPer1kTokens float64 `json:"cost_per_1k_tokens" yaml:"cost_per_1k_tokens"`
	Description     string  `json:"description" yaml:"description"`
}

// EnhancementTechnique is a prompting strategy with its system prompt.
type EnhancementTechnique struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
	Icon         string `json:"icon" yaml:"icon"`
}

// OutputFormat is the structural shape the model response should take.
type OutputFormat struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Template    string `json:"template" yaml:"template"`
}

const (
	DefaultModelID     = "deepseek/deepseek-chat-v3-0324"
	DefaultTechniqueID = "chain-of-thought"
	DefaultFormatID    = "text"
)
