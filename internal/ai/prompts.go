package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thomas-vilte/promptforge/internal/catalog"
)

const (
	originalPromptHeader = "Original prompt to enhance:"
	formatHeader         = "Output format instructions:"
	customHeader         = "Additional instructions:"
	closingDirective     = "Please provide the enhanced version following all guidelines above, using the %s output format."
)

// Compose builds the text sent to the model. Sections are joined by a blank
// line in a fixed order: technique system prompt, the quoted user prompt, the
// format template, optional custom instructions and the closing directive.
// Nothing is escaped.
func Compose(content string, technique catalog.EnhancementTechnique, format catalog.OutputFormat, customInstructions string) string {
	var b strings.Builder

	b.WriteString(technique.SystemPrompt)
	b.WriteString("\n\n")

	b.WriteString(originalPromptHeader)
	b.WriteString("\n\"")
	b.WriteString(content)
	b.WriteString("\"\n\n")

	b.WriteString(formatHeader)
	b.WriteString("\n")
	b.WriteString(format.Template)
	b.WriteString("\n\n")

	if custom := strings.TrimSpace(customInstructions); custom != "" {
		b.WriteString(customHeader)
		b.WriteString("\n")
		b.WriteString(customInstructions)
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf(closingDirective, format.Name))

	return b.String()
}

// EstimateTokens approximates the token count as ceil(chars/4).
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
