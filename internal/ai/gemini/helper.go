package gemini

import (
	"strings"

	"github.com/thomas-vilte/promptforge/internal/models"
	"google.golang.org/genai"
)

const routePrefix = "google/"

// modelName turns a routing id such as "google/gemini-2.5-pro" into the
// name the Gemini API expects.
func modelName(id string) string {
	return strings.TrimPrefix(id, routePrefix)
}

// Supports reports whether the model id can be served by the Gemini API.
func Supports(id string) bool {
	return strings.HasPrefix(id, routePrefix+"gemini-")
}

func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// extractText joins the text parts of a streamed response, skipping thoughts.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// generateConfig enables thinking for the models that support it.
func generateConfig(model string, temperature float64) *genai.GenerateContentConfig {
	t := float32(temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &t,
	}

	if strings.HasPrefix(model, "gemini-3") {
		cfg.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingLevel:   genai.ThinkingLevelHigh,
		}
	}

	return cfg
}
