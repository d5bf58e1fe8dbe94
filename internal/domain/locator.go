package domain

// Locator is what a caller supplies to find representatives. Which fields
// matter depends on Country: US uses the street address parts, EU uses
// MemberState, every other country uses Postal.
type Locator struct {
	Country     Country
	Postal      string
	Street      string
	City        string
	State       string
	MemberState string
}

// UnitKind names the administrative subdivision a resolver produced.
type UnitKind string

const (
	UnitCongressionalDistrict UnitKind = "congressional_district"
	UnitConstituency          UnitKind = "constituency"
	UnitPostalArea            UnitKind = "postal_area"
	UnitLocality              UnitKind = "locality"
	UnitDepartment            UnitKind = "department"
	UnitElectoralDistrict     UnitKind = "electoral_district"
	UnitState                 UnitKind = "state"
	UnitMemberState           UnitKind = "member_state"
)

// AdminUnit is the resolver output and the directory adapter input.
//
// Code carries the machine key (department code, ISO code, state code) and
// Name the human label (constituency, locality, electoral district, state).
// Postal keeps the cleaned locator for adapters that still query by postcode.
// Subdivisions lists the matched constituencies when a unit spans several
// (German localities); Code is then the legislative period id.
type AdminUnit struct {
	Country          Country
	Kind             UnitKind
	Code             string
	Name             string
	District         string
	Postal           string
	FormattedAddress string
	Subdivisions     []Subdivision
}

type Subdivision struct {
	ID    string
	Label string
}
