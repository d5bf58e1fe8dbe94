package prompt

import (
	"testing"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogueCountryFallsBackToDefault(t *testing.T) {
	c, err := LoadCatalogue()
	require.NoError(t, err)

	us := c.Country("us")
	assert.Equal(t, "Representative/Senator", us.TargetTitle)
	assert.Equal(t, c.DefaultCountry.Language, us.Language)

	fr := c.Country("FR")
	assert.Contains(t, fr.Language, "French")

	unknown := c.Country("CA")
	assert.Equal(t, "MP", unknown.TargetTitle)
}

func TestTopicInstructionFirstMatchWins(t *testing.T) {
	c, err := LoadCatalogue()
	require.NoError(t, err)

	assert.Contains(t, c.TopicInstruction("Sanction the IRGC"), "Revolutionary Guard")
	assert.Contains(t, c.TopicInstruction("Free All Political Prisoners"), "political prisoners")
	assert.Empty(t, c.TopicInstruction("Local zoning"))
}

func TestBuildLetterPrompt(t *testing.T) {
	out, err := BuildLetterPrompt(domain.LetterRequest{
		RepName:     "Anna Svensson",
		Country:     domain.CountrySE,
		Topic:       "Expel the Diplomats",
		Tone:        "firm",
		UserName:    "Erik",
		UserAddress: "Storgatan 1",
		UserPhone:   "070-123",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "Riksdagsledamot Anna Svensson from a constituent in the country")
	assert.Contains(t, out, "Swedish")
	assert.Contains(t, out, "expel the regime's diplomats")
	assert.Contains(t, out, "Requested tone: firm.")
	assert.Contains(t, out, "Phone: 070-123")
}

func TestParseCatalogueRejectsBadYAML(t *testing.T) {
	_, err := ParseCatalogue([]byte("countries: [unclosed"))
	require.Error(t, err)
}
