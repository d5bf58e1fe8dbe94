package domain

import "strings"

// Country is one of the supported lookup jurisdictions.
type Country string

const (
	CountryCA Country = "CA"
	CountryUS Country = "US"
	CountryUK Country = "UK"
	CountryDE Country = "DE"
	CountryFR Country = "FR"
	CountrySE Country = "SE"
	CountryAU Country = "AU"
	CountryEU Country = "EU"
)

var supportedCountries = []Country{
	CountryCA, CountryUS, CountryUK, CountryDE, CountryFR, CountrySE, CountryAU, CountryEU,
}

// ParseCountry accepts a case-insensitive code; "GB" is treated as UK.
func ParseCountry(code string) (Country, bool) {
	c := Country(strings.ToUpper(strings.TrimSpace(code)))
	if c == "GB" {
		c = CountryUK
	}
	for _, s := range supportedCountries {
		if s == c {
			return c, true
		}
	}
	return "", false
}

// RepType is the coarse role tag.
type RepType string

const (
	RepTypeSenator RepType = "sen"
	RepTypeHouse   RepType = "rep"
	RepTypeMP      RepType = "mp"
	RepTypeMEP     RepType = "mep"
)

// Representative is the normalized record every adapter produces. Email and
// Photo are always present as strings, empty when unknown.
type Representative struct {
	Name             string  `json:"name"`
	District         string  `json:"district"`
	Email            string  `json:"email"`
	Photo            string  `json:"photo"`
	Country          Country `json:"country"`
	Title            string  `json:"title"`
	Type             RepType `json:"type"`
	Phone            string  `json:"phone,omitempty"`
	ContactForm      string  `json:"contactForm,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	BioguideID       string  `json:"bioguideId,omitempty"`
	Committee        string  `json:"committee,omitempty"`
	Party            string  `json:"party,omitempty"`
	MemberState      string  `json:"memberState,omitempty"`
}

// Valid reports whether the record satisfies the minimum contract returned
// to callers.
func (r Representative) Valid() bool {
	return strings.TrimSpace(r.Name) != "" &&
		strings.TrimSpace(r.District) != "" &&
		r.Country != ""
}
