package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry indexes the catalog by id. The zero value is not usable, build
// one with NewRegistry.
type Registry struct {
	mu         sync.RWMutex
	models     map[string]ModelConfig
	techniques map[string]EnhancementTechnique
	formats    map[string]OutputFormat
}

// Overlay is the YAML document accepted by LoadOverlay.
type Overlay struct {
	Models     []ModelConfig          `yaml:"models"`
	Techniques []EnhancementTechnique `yaml:"techniques"`
	Formats    []OutputFormat         `yaml:"formats"`
}

func NewRegistry() *Registry {
	r := &Registry{
		models:     make(map[string]ModelConfig, len(builtinModels)),
		techniques: make(map[string]EnhancementTechnique, len(builtinTechniques)),
		formats:    make(map[string]OutputFormat, len(builtinFormats)),
	}
	for _, m := range builtinModels {
		r.models[m.ID] = m
	}
	for _, t := range builtinTechniques {
		r.techniques[t.ID] = t
	}
	for _, f := range builtinFormats {
		r.formats[f.ID] = f
	}
	return r
}

func (r *Registry) Model(id string) (ModelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	return m, ok
}

func (r *Registry) Technique(id string) (EnhancementTechnique, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.techniques[id]
	return t, ok
}

func (r *Registry) Format(id string) (OutputFormat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[id]
	return f, ok
}

// Models returns every model sorted by id.
func (r *Registry) Models() []ModelConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModelConfig, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Techniques() []EnhancementTechnique {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EnhancementTechnique, 0, len(r.techniques))
	for _, t := range r.techniques {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) Formats() []OutputFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]OutputFormat, 0, len(r.formats))
	for _, f := range r.formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadOverlay reads a YAML file with extra models, techniques and formats.
// Nothing is added when any entry is invalid or reuses an existing id.
func (r *Registry) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading catalog overlay: %w", err)
	}

	var ov Overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("error parsing catalog overlay: %w", err)
	}

	return r.Apply(ov)
}

// Apply merges an overlay into the registry atomically.
func (r *Registry) Apply(ov Overlay) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	for _, m := range ov.Models {
		if m.ID == "" || m.Name == "" {
			return fmt.Errorf("overlay model needs an id and a name")
		}
		if _, exists := r.models[m.ID]; exists || seen["model:"+m.ID] {
			return fmt.Errorf("model %q already exists", m.ID)
		}
		seen["model:"+m.ID] = true
	}
	for _, t := range ov.Techniques {
		if t.ID == "" || t.Name == "" || t.SystemPrompt == "" {
			return fmt.Errorf("overlay technique needs an id, a name and a system prompt")
		}
		if _, exists := r.techniques[t.ID]; exists || seen["technique:"+t.ID] {
			return fmt.Errorf("technique %q already exists", t.ID)
		}
		seen["technique:"+t.ID] = true
	}
	for _, f := range ov.Formats {
		if f.ID == "" || f.Name == "" || f.Template == "" {
			return fmt.Errorf("overlay format needs an id, a name and a template")
		}
		if _, exists := r.formats[f.ID]; exists || seen["format:"+f.ID] {
			return fmt.Errorf("format %q already exists", f.ID)
		}
		seen["format:"+f.ID] = true
	}

	for _, m := range ov.Models {
		r.models[m.ID] = m
	}
	for _, t := range ov.Techniques {
		r.techniques[t.ID] = t
	}
	for _, f := range ov.Formats {
		r.formats[f.ID] = f
	}
	return nil
}
