package geo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/repfinder-go/internal/util"
	"github.com/kapu/repfinder-go/pkg/errors"
)

var (
	canadianPostalPattern = regexp.MustCompile(`^[A-Z]\d[A-Z]\d[A-Z]\d$`)
	fiveDigitPattern      = regexp.MustCompile(`^\d{5}$`)
	fourDigitPattern      = regexp.MustCompile(`^\d{4}$`)
)

// ValidateCanadianPostal upper-cases and strips spaces, then checks the
// A1A1A1 shape.
func ValidateCanadianPostal(postal string) (string, error) {
	clean := strings.ToUpper(util.StripSpaces(postal))
	if !canadianPostalPattern.MatchString(clean) {
		return "", errors.NewValidationError("Invalid Canadian postal code format", errors.ReasonInvalidFormat, "postal", postal)
	}
	return clean, nil
}

// FranceDepartment derives the department code from a 5-digit postal code.
// Corsica splits at 20200 into 2A and 2B; overseas codes keep three digits.
func FranceDepartment(postal string) (string, error) {
	clean := util.StripSpaces(postal)
	if !fiveDigitPattern.MatchString(clean) {
		return "", errors.NewValidationError("Invalid French postal code format", errors.ReasonInvalidFormat, "postal", postal)
	}

	switch {
	case strings.HasPrefix(clean, "20"):
		n, _ := strconv.Atoi(clean)
		if n < 20200 {
			return "2A", nil
		}
		return "2B", nil
	case strings.HasPrefix(clean, "97"):
		return clean[:3], nil
	}
	return clean[:2], nil
}

// NormalizeDepartment makes department codes from postal codes and from the
// deputies dataset comparable ("01" and "1" are the same department).
func NormalizeDepartment(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, err := strconv.Atoi(code); err != nil {
		return code
	}
	trimmed := strings.TrimLeft(code, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// SwedenElectoralDistrict maps a 5-digit postal code to its valkrets.
func SwedenElectoralDistrict(postal string) (string, error) {
	clean := util.StripSpaces(postal)
	if !fiveDigitPattern.MatchString(clean) {
		return "", errors.NewValidationError("Invalid Swedish postal code format", errors.ReasonInvalidFormat, "postal", postal)
	}
	valkrets, ok := swedenValkrets[clean[:2]]
	if !ok {
		return "", errors.NewNotFoundError("Could not determine electoral district from postal code", errors.ReasonUnmappedPostalPrefix, map[string]any{
			"prefix": clean[:2],
		})
	}
	return valkrets, nil
}

// AustraliaState maps a 4-digit postcode to its state label.
func AustraliaState(postcode string) (string, error) {
	clean := strings.TrimSpace(postcode)
	if !fourDigitPattern.MatchString(clean) {
		return "", errors.NewValidationError("Invalid Australian postcode format", errors.ReasonInvalidFormat, "postal", postcode)
	}
	n, _ := strconv.Atoi(clean)
	for _, s := range australiaStates {
		for _, r := range s.ranges {
			if n >= r.lo && n <= r.hi {
				return s.state, nil
			}
		}
	}
	return "", errors.NewNotFoundError("Could not determine state from postcode", errors.ReasonUnmappedPostcode, map[string]any{
		"postcode": clean,
	})
}

// ValidMemberState reports whether code is one of the 27 EU member states.
func ValidMemberState(code string) bool {
	return euMemberStates[strings.ToUpper(strings.TrimSpace(code))]
}

// NormalizeLocality drops the municipality-type suffix after the first comma
// ("München, Landeshauptstadt" becomes "München").
func NormalizeLocality(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// FirstToken returns the first space-delimited word of name.
func FirstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CleanUKPostcode upper-cases and removes all whitespace.
func CleanUKPostcode(postcode string) string {
	return strings.ToUpper(util.StripSpaces(postcode))
}
