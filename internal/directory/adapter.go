package directory

import (
	"context"

	"github.com/kapu/repfinder-go/internal/domain"
)

// Adapter maps a resolved administrative unit to the legislators who
// represent it. Adapters keep no state between calls.
type Adapter interface {
	Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error)
}

// Registry holds one adapter per country.
type Registry map[domain.Country]Adapter

// RepsReader is the read side of the dataset store used by cache-backed
// adapters.
type RepsReader interface {
	Reps(ctx context.Context, ds domain.Dataset) ([]domain.CachedRep, error)
}

// CommitteeSource yields a committee map that is fresh enough for filtering,
// rebuilding it when necessary.
type CommitteeSource interface {
	EnsureCommittees(ctx context.Context) (domain.CommitteeMap, error)
}

const (
	titleSenator        = "Senator"
	titleRepresentative = "Representative"
	titleMP             = "Member of Parliament"
	titleMdB            = "MdB"
	titleDepute         = "Député(e)"
	titleRiksdag        = "Riksdagsledamot"
	titleMEP            = "Member of European Parliament"
)
