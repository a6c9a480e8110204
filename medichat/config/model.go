// medichat/config/model.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModelName       = "gpt-5-chat-latest"
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.9
	DefaultMaxOutputTokens = 400
	DefaultMaxHistory      = 10

	DefaultPersona = "You are a strictly health-focused AI assistant. " +
		"You must only answer questions related to health, fitness, nutrition, " +
		"diseases, medications, medical advice, anatomy, physiology, or wellbeing. " +
		"If the user asks anything outside health, politely decline. " +
		"Never provide instructions that could cause harm. " +
		"If a question requires urgent medical attention, instruct the user to see a doctor immediately. " +
		"Format all responses as clean plain text with no markdown or special characters."
)

// ModelSettings are fixed for the process lifetime once loaded.
type ModelSettings struct {
	Name            string  `yaml:"name"`
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
	MaxHistory      int     `yaml:"max_history"`
	Persona         string  `yaml:"persona"`
}

func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		Name:            DefaultModelName,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		MaxOutputTokens: DefaultMaxOutputTokens,
		MaxHistory:      DefaultMaxHistory,
		Persona:         DefaultPersona,
	}
}

// LoadModelSettings overlays the YAML file at path on the defaults.
// An empty path returns the defaults unchanged.
func LoadModelSettings(path string) (ModelSettings, error) {
	settings := DefaultModelSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read model config: %w", err)
	}

	var file struct {
		Model modelOverride `yaml:"model"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return settings, fmt.Errorf("parse model config %s: %w", path, err)
	}
	if err := file.Model.apply(&settings); err != nil {
		return DefaultModelSettings(), fmt.Errorf("model config %s: %w", path, err)
	}
	return settings, nil
}

// modelOverride uses pointers so an explicit zero (temperature: 0) is kept.
type modelOverride struct {
	Name            *string  `yaml:"name"`
	Temperature     *float32 `yaml:"temperature"`
	TopP            *float32 `yaml:"top_p"`
	MaxOutputTokens *int32   `yaml:"max_output_tokens"`
	MaxHistory      *int     `yaml:"max_history"`
	Persona         *string  `yaml:"persona"`
}

func (o modelOverride) apply(s *ModelSettings) error {
	if o.Name != nil && *o.Name != "" {
		s.Name = *o.Name
	}
	if o.Temperature != nil {
		if *o.Temperature < 0 || *o.Temperature > 2 {
			return fmt.Errorf("temperature %v out of range [0, 2]", *o.Temperature)
		}
		s.Temperature = *o.Temperature
	}
	if o.TopP != nil {
		if *o.TopP < 0 || *o.TopP > 1 {
			return fmt.Errorf("top_p %v out of range [0, 1]", *o.TopP)
		}
		s.TopP = *o.TopP
	}
	if o.MaxOutputTokens != nil {
		if *o.MaxOutputTokens < 1 {
			return fmt.Errorf("max_output_tokens must be positive, got %d", *o.MaxOutputTokens)
		}
		s.MaxOutputTokens = *o.MaxOutputTokens
	}
	if o.MaxHistory != nil {
		if *o.MaxHistory < 1 {
			return fmt.Errorf("max_history must be positive, got %d", *o.MaxHistory)
		}
		s.MaxHistory = *o.MaxHistory
	}
	if o.Persona != nil && *o.Persona != "" {
		s.Persona = *o.Persona
	}
	return nil
}
