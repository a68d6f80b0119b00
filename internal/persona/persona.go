// ============================================================================
// VoiceDesk - Terminal Voice Assistant Client
// ============================================================================
//
// Package:     persona
// Description: Voice personas and supported languages
// Created:     2026-08-28
// License:     MIT
// ============================================================================

package persona

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Persona is a voice personality the backend can speak with
type Persona struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	Emoji       string `yaml:"emoji"`
	Greeting    string `yaml:"greeting"`
}

// DefaultPersonaKey is used when no persona is selected
const DefaultPersonaKey = "girl"

// builtinPersonas mirrors the personalities the backend ships with
var builtinPersonas = []Persona{
	{
		Key:         "nobita",
		Name:        "Nobita",
		DisplayName: "😴 Nobita",
		Description: "Tired Student Who Needs Doraemon's Help",
		Emoji:       "😴",
		Greeting:    "Ugh... I'm so tired... Doraemon, where are you? I need help with everything! But I guess I can try to help you too...",
	},
	{
		Key:         "shinchan",
		Name:        "Shinchan",
		DisplayName: "🤪 Shinchan",
		Description: "Mischievous Kid with Funny Attitude",
		Emoji:       "🤪",
		Greeting:    "Hiya! I'm Shinchan! *does butt dance* Want to play? I know lots of funny jokes and dances! Hehe!",
	},
	{
		Key:         "girl",
		Name:        "Friendly Girl",
		DisplayName: "👧 Girl",
		Description: "Sweet and Helpful Voice",
		Emoji:       "👧",
		Greeting:    "Hi there! I'm so happy to meet you! I'm here to help with anything you need. What would you like to know today?",
	},
}

// Language is a translation target the backend supports
type Language struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// supportedLanguages mirrors the backend's translator table
var supportedLanguages = []Language{
	{"english", "en"},
	{"japanese", "ja"},
	{"spanish", "es"},
	{"french", "fr"},
	{"german", "de"},
	{"italian", "it"},
	{"portuguese", "pt"},
	{"russian", "ru"},
	{"chinese", "zh"},
	{"korean", "ko"},
	{"hindi", "hi"},
	{"arabic", "ar"},
}

// Registry holds the personas and languages available to the UI
type Registry struct {
	personas  []Persona
	languages []Language
}

// NewRegistry returns a registry with the built-in definitions
func NewRegistry() *Registry {
	return &Registry{
		personas:  append([]Persona(nil), builtinPersonas...),
		languages: append([]Language(nil), supportedLanguages...),
	}
}

// overrideFile is the YAML shape of a personas override file
type overrideFile struct {
	Personas  []Persona  `yaml:"personas"`
	Languages []Language `yaml:"languages"`
}

// LoadFile merges a YAML override file into the registry. Personas
// with a known key replace the built-in one, new keys are appended.
// A non-empty languages list replaces the table entirely.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read personas file: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse personas file: %w", err)
	}

	for _, p := range file.Personas {
		if p.Key == "" {
			return fmt.Errorf("persona without a key in %s", path)
		}
		replaced := false
		for i := range r.personas {
			if r.personas[i].Key == p.Key {
				r.personas[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			r.personas = append(r.personas, p)
		}
	}

	if len(file.Languages) > 0 {
		r.languages = file.Languages
	}
	return nil
}

// Personas returns all personas in definition order
func (r *Registry) Personas() []Persona {
	return r.personas
}

// Get returns the persona for key, falling back to the default
func (r *Registry) Get(key string) Persona {
	for _, p := range r.personas {
		if p.Key == key {
			return p
		}
	}
	for _, p := range r.personas {
		if p.Key == DefaultPersonaKey {
			return p
		}
	}
	return r.personas[0]
}

// Languages returns the supported languages in definition order
func (r *Registry) Languages() []Language {
	return r.languages
}

// IsSupported reports whether name is a supported language
func (r *Registry) IsSupported(name string) bool {
	for _, l := range r.languages {
		if l.Name == name {
			return true
		}
	}
	return false
}

// LanguageNames returns the sorted language names for display
func (r *Registry) LanguageNames() []string {
	names := make([]string, len(r.languages))
	for i, l := range r.languages {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}
