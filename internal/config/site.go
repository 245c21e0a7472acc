package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPersona is the system prompt used when a request supplies none.
const DefaultPersona = `You are the KIUL virtual assistant. You help visitors of the institute's website learn about its leadership programmes, research, publications, events and how to get in touch.
Answer concisely and warmly. If you are unsure, say so and suggest contacting the institute directly.
If a visitor expresses thoughts of self-harm or suicide, respond with empathy, encourage them to reach out to someone they trust, and urge them to contact local emergency services or a crisis line immediately.`

// DefaultCrisisMessage is shown to terminal users when escalation triggers.
const DefaultCrisisMessage = "It sounds like you may be going through a very difficult time. You are not alone. Please contact local emergency services or a crisis line now, or reach out to someone you trust."

// Category is one on-disk publication folder.
type Category struct {
	Slug  string `yaml:"slug"`
	Label string `yaml:"label"`
	// Dir is relative to PUBLICATIONS_DIR; defaults to Slug.
	Dir string `yaml:"dir"`
}

// Site holds content settings loaded from the site YAML file.
type Site struct {
	Persona           string     `yaml:"persona"`
	Categories        []Category `yaml:"categories"`
	EscalationPhrases []string   `yaml:"escalation_phrases"`
	CrisisMessage     string     `yaml:"crisis_message"`
}

// DefaultCategories are the publication folders searched when none are configured.
func DefaultCategories() []Category {
	return []Category{
		{Slug: "books", Label: "Books"},
		{Slug: "journals", Label: "Journals"},
		{Slug: "research-papers", Label: "Research Papers"},
		{Slug: "policy-briefs", Label: "Policy Briefs"},
		{Slug: "reports", Label: "Reports"},
	}
}

// DefaultSite returns the built-in site settings.
func DefaultSite() *Site {
	s := &Site{}
	s.applyDefaults()
	return s
}

// LoadSite reads the site YAML file at path. An empty path yields DefaultSite.
func LoadSite(path string) (*Site, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSite(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("site config %s: %w", path, err)
	}
	s.applyDefaults()
	return &s, nil
}

func (s *Site) validate() error {
	seen := make(map[string]bool)
	for i, c := range s.Categories {
		slug := strings.TrimSpace(c.Slug)
		if slug == "" {
			return fmt.Errorf("categories[%d].slug is required", i)
		}
		if strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
			return fmt.Errorf("categories[%d].slug %q must be a single path segment", i, slug)
		}
		if seen[slug] {
			return fmt.Errorf("duplicate category slug %q", slug)
		}
		seen[slug] = true
	}
	return nil
}

func (s *Site) applyDefaults() {
	if strings.TrimSpace(s.Persona) == "" {
		s.Persona = DefaultPersona
	}
	if strings.TrimSpace(s.CrisisMessage) == "" {
		s.CrisisMessage = DefaultCrisisMessage
	}
	if len(s.Categories) == 0 {
		s.Categories = DefaultCategories()
	}
	for i := range s.Categories {
		c := &s.Categories[i]
		c.Slug = strings.TrimSpace(c.Slug)
		if c.Dir == "" {
			c.Dir = c.Slug
		}
		if c.Label == "" {
			c.Label = c.Slug
		}
	}
}
