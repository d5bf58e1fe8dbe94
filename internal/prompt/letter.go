package prompt

import (
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
)

type LetterPromptData struct {
	Role             string
	TargetTitle      string
	RepName          string
	City             string
	Language         string
	Salutation       string
	Politeness       string
	Context          string
	Topic            string
	TopicInstruction string
	Tone             string
	UserName         string
	UserAddress      string
	UserPhone        string
}

// BuildLetterPrompt renders the drafting prompt for req.
func BuildLetterPrompt(req domain.LetterRequest) (string, error) {
	c, err := LoadCatalogue()
	if err != nil {
		return "", err
	}
	profile := c.Country(string(req.Country))

	city := strings.TrimSpace(req.UserCity)
	if city == "" {
		city = "the country"
	}

	return DefaultPromptBuilder().Render(TemplateLetter, LetterPromptData{
		Role:             profile.Role,
		TargetTitle:      profile.TargetTitle,
		RepName:          strings.TrimSpace(req.RepName),
		City:             city,
		Language:         profile.Language,
		Salutation:       profile.Salutation,
		Politeness:       c.Politeness,
		Context:          strings.TrimSpace(c.Context),
		Topic:            strings.TrimSpace(req.Topic),
		TopicInstruction: c.TopicInstruction(req.Topic),
		Tone:             strings.TrimSpace(req.Tone),
		UserName:         strings.TrimSpace(req.UserName),
		UserAddress:      strings.TrimSpace(req.UserAddress),
		UserPhone:        strings.TrimSpace(req.UserPhone),
	})
}
