package prompt

import (
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CountryProfile shapes how a letter addresses one country's legislators.
type CountryProfile struct {
	TargetTitle string `yaml:"target_title"`
	Role        string `yaml:"role"`
	Language    string `yaml:"language"`
	Salutation  string `yaml:"salutation"`
}

type Topic struct {
	Keywords    []string `yaml:"keywords"`
	Instruction string   `yaml:"instruction"`
}

// Catalogue is the static letter configuration embedded in the binary.
type Catalogue struct {
	Context        string                    `yaml:"context"`
	Politeness     string                    `yaml:"politeness"`
	DefaultCountry CountryProfile            `yaml:"default_country"`
	Countries      map[string]CountryProfile `yaml:"countries"`
	Topics         []Topic                   `yaml:"topics"`
}

var (
	catalogueOnce sync.Once
	catalogue     *Catalogue
	catalogueErr  error
)

// LoadCatalogue parses the embedded catalogue once per process.
func LoadCatalogue() (*Catalogue, error) {
	catalogueOnce.Do(func() {
		data, err := templateFS.ReadFile("templates/catalogue.yaml")
		if err != nil {
			catalogueErr = fmt.Errorf("load letter catalogue: %w", err)
			return
		}
		catalogue, catalogueErr = ParseCatalogue(data)
	})
	return catalogue, catalogueErr
}

func ParseCatalogue(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse letter catalogue: %w", err)
	}
	return &c, nil
}

// Country returns the profile for code, with unset fields taken from the
// default profile.
func (c *Catalogue) Country(code string) CountryProfile {
	p := c.Countries[strings.ToUpper(code)]
	def := c.DefaultCountry
	if p.TargetTitle == "" {
		p.TargetTitle = def.TargetTitle
	}
	if p.Role == "" {
		p.Role = def.Role
	}
	if p.Language == "" {
		p.Language = def.Language
	}
	if p.Salutation == "" {
		p.Salutation = def.Salutation
	}
	return p
}

// TopicInstruction returns the instruction of the first topic with a keyword
// contained in topic, or "".
func (c *Catalogue) TopicInstruction(topic string) string {
	for _, t := range c.Topics {
		for _, kw := range t.Keywords {
			if strings.Contains(topic, kw) {
				return t.Instruction
			}
		}
	}
	return ""
}
