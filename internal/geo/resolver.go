package geo

import (
	"context"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/pkg/errors"
)

// Resolver turns a country-specific locator into the administrative unit a
// directory adapter can look up.
type Resolver interface {
	Resolve(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error)

func (f ResolverFunc) Resolve(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	return f(ctx, loc)
}

// Registry dispatches to the resolver registered for the locator's country.
type Registry map[domain.Country]Resolver

func (r Registry) Resolve(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	resolver, ok := r[loc.Country]
	if !ok {
		return domain.AdminUnit{}, errors.NewValidationError("Unsupported country", errors.ReasonUnsupportedCountry, "country", string(loc.Country))
	}
	return resolver.Resolve(ctx, loc)
}

func requirePostal(loc domain.Locator) (string, error) {
	postal := strings.TrimSpace(loc.Postal)
	if postal == "" {
		return "", errors.NewValidationError("Missing postal parameter", errors.ReasonMissingField, "postal", nil)
	}
	return postal, nil
}

// NewStaticResolvers returns the resolvers that need no network access.
func NewStaticResolvers() Registry {
	return Registry{
		domain.CountryCA: ResolverFunc(resolveCanada),
		domain.CountryFR: ResolverFunc(resolveFrance),
		domain.CountrySE: ResolverFunc(resolveSweden),
		domain.CountryAU: ResolverFunc(resolveAustralia),
		domain.CountryEU: ResolverFunc(resolveMemberState),
	}
}

func resolveCanada(_ context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	postal, err := requirePostal(loc)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	clean, err := ValidateCanadianPostal(postal)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	return domain.AdminUnit{Country: domain.CountryCA, Kind: domain.UnitPostalArea, Code: clean, Postal: clean}, nil
}

func resolveFrance(_ context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	postal, err := requirePostal(loc)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	dept, err := FranceDepartment(postal)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	return domain.AdminUnit{Country: domain.CountryFR, Kind: domain.UnitDepartment, Code: dept, Postal: postal}, nil
}

func resolveSweden(_ context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	postal, err := requirePostal(loc)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	valkrets, err := SwedenElectoralDistrict(postal)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	return domain.AdminUnit{Country: domain.CountrySE, Kind: domain.UnitElectoralDistrict, Name: valkrets, Postal: postal}, nil
}

func resolveAustralia(_ context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	postal, err := requirePostal(loc)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	state, err := AustraliaState(postal)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	return domain.AdminUnit{Country: domain.CountryAU, Kind: domain.UnitState, Code: state, Name: state, Postal: postal}, nil
}

func resolveMemberState(_ context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	code := strings.ToUpper(strings.TrimSpace(loc.MemberState))
	if code == "" {
		return domain.AdminUnit{}, errors.NewValidationError("Missing memberState parameter", errors.ReasonMissingField, "memberState", nil)
	}
	if !ValidMemberState(code) {
		return domain.AdminUnit{}, errors.NewValidationError("Invalid EU member state code", errors.ReasonInvalidMemberState, "memberState", loc.MemberState)
	}
	return domain.AdminUnit{Country: domain.CountryEU, Kind: domain.UnitMemberState, Code: code}, nil
}
