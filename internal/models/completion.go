package models

// CompletionRequest is what the controller sends to a model-routing collaborator.
type CompletionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`

	// Parts is set when the prompt was composed locally. Remote providers
	// ignore it.
	Parts *PromptParts `json:"-"`
}

// PromptParts names the selections a composed prompt was built from.
type PromptParts struct {
	Content        string
	TechniqueID    string
	TechniqueName  string
	FormatName     string
	FormatTemplate string
}

// StreamEvent is one item of a completion stream. Exactly one of Delta,
// Usage or Err is meaningful per event.
type StreamEvent struct {
	Delta string
	Usage *TokenUsage
	Err   error
}
