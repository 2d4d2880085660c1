package workspace

import (
	"strings"

	"github.com/thomas-vilte/promptforge/internal/catalog"
	domainErrors "github.com/thomas-vilte/promptforge/internal/errors"
	"github.com/thomas-vilte/promptforge/internal/models"
)

// Defaults is the selection a session starts with.
type Defaults struct {
	ModelID     string
	TechniqueID string
	FormatID    string
}

// BuiltinDefaults are the catalogue defaults.
var BuiltinDefaults = Defaults{
	ModelID:     catalog.DefaultModelID,
	TechniqueID: catalog.DefaultTechniqueID,
	FormatID:    catalog.DefaultFormatID,
}

// State holds the current selections of one session. Setters replace one
// field and do not validate against each other.
type State struct {
	InputPrompt         string
	SelectedModelID     string
	SelectedTechniqueID string
	SelectedFormatID    string

	defaults Defaults
}

func New(d Defaults) *State {
	if d.ModelID == "" {
		d.ModelID = BuiltinDefaults.ModelID
	}
	if d.TechniqueID == "" {
		d.TechniqueID = BuiltinDefaults.TechniqueID
	}
	if d.FormatID == "" {
		d.FormatID = BuiltinDefaults.FormatID
	}
	s := &State{defaults: d}
	s.ResetToDefaults()
	return s
}

func (s *State) SetInputPrompt(v string) { s.InputPrompt = v }
func (s *State) SetModel(id string)      { s.SelectedModelID = id }
func (s *State) SetTechnique(id string)  { s.SelectedTechniqueID = id }
func (s *State) SetFormat(id string)     { s.SelectedFormatID = id }

// ResetToDefaults restores the initial selection and clears the input.
func (s *State) ResetToDefaults() {
	s.InputPrompt = ""
	s.SelectedModelID = s.defaults.ModelID
	s.SelectedTechniqueID = s.defaults.TechniqueID
	s.SelectedFormatID = s.defaults.FormatID
}

// BuildRequest resolves the selected ids against reg.
func (s *State) BuildRequest(reg *catalog.Registry, customInstructions string) (models.EnhancementRequest, error) {
	if strings.TrimSpace(s.InputPrompt) == "" {
		return models.EnhancementRequest{}, domainErrors.ErrEmptyPrompt
	}

	model, ok := reg.Model(s.SelectedModelID)
	if !ok {
		return models.EnhancementRequest{}, domainErrors.ErrInvalidConfiguration.WithContext("model", s.SelectedModelID)
	}
	technique, ok := reg.Technique(s.SelectedTechniqueID)
	if !ok {
		return models.EnhancementRequest{}, domainErrors.ErrInvalidConfiguration.WithContext("technique", s.SelectedTechniqueID)
	}
	format, ok := reg.Format(s.SelectedFormatID)
	if !ok {
		return models.EnhancementRequest{}, domainErrors.ErrInvalidConfiguration.WithContext("format", s.SelectedFormatID)
	}

	return models.EnhancementRequest{
		Content:            s.InputPrompt,
		Model:              model,
		Technique:          technique,
		OutputFormat:       format,
		CustomInstructions: customInstructions,
	}, nil
}
