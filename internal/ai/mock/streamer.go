// Package mock simulates a model offline. It streams a canned enhancement
// built from the request's selections in small chunks.
package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/thomas-vilte/promptforge/internal/ai"
	"github.com/thomas-vilte/promptforge/internal/catalog"
	"github.com/thomas-vilte/promptforge/internal/models"
	"github.com/thomas-vilte/promptforge/internal/ports"
	"github.com/thomas-vilte/promptforge/internal/regex"
)

const DefaultDelay = 50 * time.Millisecond

var _ ports.CompletionStreamer = (*Streamer)(nil)

var (
	roles = []string{
		"consultant", "analyst", "researcher", "strategist", "advisor",
		"specialist", "practitioner", "professional", "expert", "guide",
	}
	domains = []string{
		"this field",
		"the subject matter",
		"relevant methodologies",
		"industry best practices",
		"current trends and developments",
	}
)

type Streamer struct {
	delay time.Duration
}

// NewStreamer returns a mock that waits delay between chunks.
func NewStreamer(delay time.Duration) *Streamer {
	return &Streamer{delay: delay}
}

func (s *Streamer) StreamCompletion(ctx context.Context, req models.CompletionRequest) (<-chan models.StreamEvent, error) {
	parts := req.Parts
	if parts == nil {
		p := PartsFromPrompt(req.Prompt)
		parts = &p
	}
	content := Render(*parts)
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		var ticker <-chan time.Time
		if s.delay > 0 {
			t := time.NewTicker(s.delay)
			defer t.Stop()
			ticker = t.C
		}

		runes := []rune(content)
		for i, n := 0, 0; i < len(runes); n++ {
			if ticker != nil {
				select {
				case <-ctx.Done():
					return
				case <-ticker:
				}
			}

			end := i + chunkSize(n)
			if end > len(runes) {
				end = len(runes)
			}

			select {
			case events <- models.StreamEvent{Delta: string(runes[i:end])}:
			case <-ctx.Done():
				return
			}
			i = end
		}

		inTokens := ai.EstimateTokens(req.Prompt)
		outTokens := ai.EstimateTokens(content)
		select {
		case events <- models.StreamEvent{Usage: &models.TokenUsage{
			InputTokens:  inTokens,
			OutputTokens: outTokens,
			TotalTokens:  inTokens + outTokens,
			Model:        req.Model,
		}}:
		case <-ctx.Done():
		}
	}()

	return events, nil
}

// chunkSize cycles between 5 and 15 characters.
func chunkSize(n int) int {
	return 5 + (n*7)%11
}

// PartsFromPrompt recovers the selections from a prompt composed elsewhere,
// as proxied requests carry only the text. Unknown techniques and formats
// fall back to the catalog defaults.
func PartsFromPrompt(prompt string) models.PromptParts {
	reg := catalog.NewRegistry()
	technique, _ := reg.Technique(catalog.DefaultTechniqueID)
	format, _ := reg.Format(catalog.DefaultFormatID)

	for _, t := range reg.Techniques() {
		if strings.HasPrefix(prompt, t.SystemPrompt) {
			technique = t
			break
		}
	}
	for _, f := range reg.Formats() {
		if strings.Contains(prompt, "Output format instructions:\n"+f.Template+"\n") {
			format = f
			break
		}
	}

	content := prompt
	if m := regex.OriginalPrompt.FindStringSubmatch(prompt); m != nil {
		content = m[1]
	}

	return models.PromptParts{
		Content:        content,
		TechniqueID:    technique.ID,
		TechniqueName:  technique.Name,
		FormatName:     format.Name,
		FormatTemplate: format.Template,
	}
}

// Render builds the simulated enhancement. The same parts always render the
// same text.
func Render(p models.PromptParts) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(p.Content + "\x00" + p.TechniqueID + "\x00" + p.FormatName))
	seed := int(h.Sum32())

	return fmt.Sprintf(`# Enhanced Prompt using %[1]s

## Analysis
I've analyzed your original prompt and identified several areas for improvement using the %[1]s technique.

## Original Prompt
%[2]s

## Enhanced Version

You are an expert %[3]s with extensive experience in %[4]s.

%[5]s

### Expected Output Format
%[7]s

### Quality Criteria
- Be specific and actionable
- Provide detailed explanations
- Use professional language
- Include relevant examples where appropriate
- Ensure completeness and accuracy

### Context & Constraints
- Consider multiple perspectives
- Address potential edge cases
- Maintain focus on the core objective
- Provide step-by-step guidance when needed

Please proceed with your analysis and provide a comprehensive response following the above guidelines.

---
*Enhanced using %[1]s technique with %[6]s output format*`,
		p.TechniqueName, p.Content, roles[seed%len(roles)], domains[seed%len(domains)],
		pattern(p.TechniqueID, p.TechniqueName, p.Content), p.FormatName, p.FormatTemplate)
}

func pattern(id, name, prompt string) string {
	switch id {
	case "chain-of-thought":
		return fmt.Sprintf(`Let me approach this step by step:

Step 1: First, I'll analyze the core requirements
Step 2: Then, I'll identify the key components needed
Step 3: Next, I'll structure the information logically
Step 4: Finally, I'll provide a comprehensive response

For the following task: "%s"`, prompt)
	case "few-shot":
		return fmt.Sprintf(`Here are some examples to guide your response:

Example 1: [Similar scenario] -> [Approach] -> [Outcome]
Example 2: [Different context] -> [Method] -> [Result]
Example 3: [Edge case] -> [Solution] -> [Benefits]

Now, for your specific task: "%s"`, prompt)
	case "role-based":
		return fmt.Sprintf(`As a domain expert, I bring the following perspective and methodology:

- Professional background in relevant areas
- Knowledge of industry standards and best practices
- Experience with similar challenges and solutions
- Understanding of current trends and future directions

For your request: "%s"`, prompt)
	case "zero-shot":
		return fmt.Sprintf(`I will provide a direct, comprehensive response to your request.

Task: %s

I will ensure my response is:`, prompt)
	default:
		return fmt.Sprintf(`Applying %s technique to enhance your prompt:

Original request: "%s"

Enhanced approach:`, name, prompt)
	}
}
