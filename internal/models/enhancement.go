package models

import (
	"time"

	"github.com/thomas-vilte/promptforge/internal/catalog"
)

// EnhancementRequest is built per submission and never persisted.
type EnhancementRequest struct {
	Content            string
	Model              catalog.ModelConfig
	Technique          catalog.EnhancementTechnique
	OutputFormat       catalog.OutputFormat
	CustomInstructions string
}

// EnhancementResult is produced once per completed enhancement.
type EnhancementResult struct {
	EnhancedText   string        `json:"enhanced_text"`
	OriginalLength int           `json:"original_length"`
	EnhancedLength int           `json:"enhanced_length"`
	ModelName      string        `json:"model_name"`
	TechniqueName  string        `json:"technique_name"`
	CompletedAt    time.Time     `json:"completed_at"`
	TokensUsed     *int          `json:"tokens_used,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// HistoryEntry is a completed enhancement as stored in the local history log.
type HistoryEntry struct {
	ID             string `json:"id"`
	OriginalPrompt string `json:"original_prompt"`
	ModelID        string `json:"model_id"`
	TechniqueID    string `json:"technique_id"`
	OutputFormatID string `json:"output_format_id"`
	EnhancementResult
}

// User is the signed-in user as reported by the identity collaborator.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
