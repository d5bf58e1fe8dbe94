package geo

import (
	"context"
	"testing"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFranceDepartment(t *testing.T) {
	tests := []struct {
		postal string
		want   string
	}{
		{"75001", "75"},
		{"20090", "2A"},
		{"20199", "2A"},
		{"20200", "2B"},
		{"20300", "2B"},
		{"97400", "974"},
		{"97100", "971"},
		{"01000", "01"},
		{" 69 001 ", "69"},
	}
	for _, tt := range tests {
		t.Run(tt.postal, func(t *testing.T) {
			got, err := FranceDepartment(tt.postal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFranceDepartmentRejectsMalformed(t *testing.T) {
	for _, postal := range []string{"7500", "750011", "ABCDE"} {
		_, err := FranceDepartment(postal)
		require.Error(t, err, postal)
		assert.Equal(t, errors.ReasonInvalidFormat, errors.ReasonOf(err))
		assert.Equal(t, 400, errors.StatusOf(err))
	}
}

func TestNormalizeDepartment(t *testing.T) {
	assert.Equal(t, "1", NormalizeDepartment("01"))
	assert.Equal(t, "1", NormalizeDepartment("1"))
	assert.Equal(t, "2A", NormalizeDepartment("2a"))
	assert.Equal(t, "974", NormalizeDepartment("974"))
}

func TestSwedenElectoralDistrict(t *testing.T) {
	got, err := SwedenElectoralDistrict("11453")
	require.NoError(t, err)
	assert.Equal(t, "Stockholms kommun", got)

	got, err = SwedenElectoralDistrict("411 04")
	require.NoError(t, err)
	assert.Equal(t, "Göteborgs kommun", got)
}

func TestSwedenUnmappedPrefix(t *testing.T) {
	_, err := SwedenElectoralDistrict("99999")
	require.Error(t, err)
	assert.Equal(t, errors.ReasonUnmappedPostalPrefix, errors.ReasonOf(err))
	assert.True(t, errors.IsNotFound(err))
}

func TestAustraliaState(t *testing.T) {
	tests := map[string]string{
		"2600": "ACT",
		"2639": "ACT",
		"0200": "ACT",
		"2640": "NSW",
		"2000": "NSW",
		"3000": "Victoria",
		"8001": "Victoria",
		"4000": "Queensland",
		"5000": "SA",
		"6000": "WA",
		"7000": "Tasmania",
		"0800": "NT",
	}
	for postcode, want := range tests {
		t.Run(postcode, func(t *testing.T) {
			got, err := AustraliaState(postcode)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestAustraliaStateUnmapped(t *testing.T) {
	_, err := AustraliaState("0100")
	require.Error(t, err)
	assert.Equal(t, errors.ReasonUnmappedPostcode, errors.ReasonOf(err))

	_, err = AustraliaState("260")
	assert.Equal(t, errors.ReasonInvalidFormat, errors.ReasonOf(err))
}

func TestValidateCanadianPostal(t *testing.T) {
	clean, err := ValidateCanadianPostal("k1a 0a6")
	require.NoError(t, err)
	assert.Equal(t, "K1A0A6", clean)

	_, err = ValidateCanadianPostal("1234567")
	require.Error(t, err)
	assert.Equal(t, errors.ReasonInvalidFormat, errors.ReasonOf(err))
}

func TestValidMemberState(t *testing.T) {
	assert.True(t, ValidMemberState("de"))
	assert.True(t, ValidMemberState("SE"))
	assert.False(t, ValidMemberState("UK"))
	assert.False(t, ValidMemberState(""))
	assert.Len(t, euMemberStates, 27)
}

func TestEUCountryCode(t *testing.T) {
	assert.Equal(t, "CZ", EUCountryCode("Czechia"))
	assert.Equal(t, "CZ", EUCountryCode("Czech Republic"))
	assert.Equal(t, "", EUCountryCode("Norway"))
}

func TestNormalizeLocality(t *testing.T) {
	assert.Equal(t, "München", NormalizeLocality("München, Landeshauptstadt"))
	assert.Equal(t, "Hamburg", NormalizeLocality("Hamburg, Freie und Hansestadt"))
	assert.Equal(t, "Frankfurt am Main", NormalizeLocality(" Frankfurt am Main "))
	assert.Equal(t, "Frankfurt", FirstToken("Frankfurt am Main"))
}

func TestStaticResolvers(t *testing.T) {
	resolvers := NewStaticResolvers()
	ctx := context.Background()

	unit, err := resolvers.Resolve(ctx, domain.Locator{Country: domain.CountryFR, Postal: "20090"})
	require.NoError(t, err)
	assert.Equal(t, "2A", unit.Code)

	unit, err = resolvers.Resolve(ctx, domain.Locator{Country: domain.CountryEU, MemberState: "ie"})
	require.NoError(t, err)
	assert.Equal(t, "IE", unit.Code)

	_, err = resolvers.Resolve(ctx, domain.Locator{Country: domain.CountryEU, MemberState: "XX"})
	assert.Equal(t, errors.ReasonInvalidMemberState, errors.ReasonOf(err))

	_, err = resolvers.Resolve(ctx, domain.Locator{Country: domain.CountrySE})
	assert.Equal(t, errors.ReasonMissingField, errors.ReasonOf(err))

	_, err = resolvers.Resolve(ctx, domain.Locator{Country: domain.CountryUS, Street: "1 Main St"})
	assert.Equal(t, errors.ReasonUnsupportedCountry, errors.ReasonOf(err))
}
