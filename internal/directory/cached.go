package directory

import (
	"context"
	"math/rand"
	"strings"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/geo"
	"github.com/kapu/repfinder-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
)

// FranceAdapter serves deputies from the cached Assemblée nationale list.
type FranceAdapter struct {
	store RepsReader
}

func NewFranceAdapter(store RepsReader) *FranceAdapter {
	return &FranceAdapter{store: store}
}

func (a *FranceAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	all, err := a.store.Reps(ctx, domain.DatasetFrance)
	if err != nil {
		return nil, err
	}

	dept := geo.NormalizeDepartment(unit.Code)
	var out []domain.Representative
	for _, d := range all {
		if geo.NormalizeDepartment(d.DeptCode) != dept {
			continue
		}
		out = append(out, domain.Representative{
			Name:     d.Name,
			District: d.District,
			Email:    d.Email,
			Photo:    d.Photo,
			Country:  domain.CountryFR,
			Title:    titleDepute,
			Type:     domain.RepTypeMP,
			Party:    d.Party,
		})
	}
	if len(out) == 0 {
		return nil, errors.NewNotFoundError("No deputies found for department "+unit.Code, errors.ReasonNoMatchFound, map[string]any{
			"department": unit.Code,
		})
	}
	return out, nil
}

// SwedenAdapter serves Riksdag members from the cached person list.
type SwedenAdapter struct {
	store RepsReader
}

func NewSwedenAdapter(store RepsReader) *SwedenAdapter {
	return &SwedenAdapter{store: store}
}

func (a *SwedenAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	all, err := a.store.Reps(ctx, domain.DatasetSweden)
	if err != nil {
		return nil, err
	}

	var out []domain.Representative
	for _, mp := range all {
		if mp.Valkrets != unit.Name {
			continue
		}
		out = append(out, domain.Representative{
			Name:     mp.Name,
			District: mp.District,
			Email:    mp.Email,
			Photo:    mp.Photo,
			Country:  domain.CountrySE,
			Title:    titleRiksdag,
			Type:     domain.RepTypeMP,
			Party:    mp.Party,
		})
	}
	if len(out) == 0 {
		return nil, errors.NewNotFoundError("No MPs found for "+unit.Name, errors.ReasonNoMatchFound, map[string]any{
			"valkrets": unit.Name,
		})
	}
	return out, nil
}

// EUAdapter serves MEPs of a member state who sit on one of the tracked
// committees. More than limit matches are shuffled and truncated so that no
// single request reaches every qualifying MEP.
type EUAdapter struct {
	store       RepsReader
	committees  CommitteeSource
	europarlURL string
	limit       int
	shuffle     func(n int, swap func(i, j int))
}

func NewEUAdapter(store RepsReader, committees CommitteeSource, europarlURL string) *EUAdapter {
	return &EUAdapter{
		store:       store,
		committees:  committees,
		europarlURL: strings.TrimRight(europarlURL, "/"),
		limit:       constants.LookupLimits.EUContacts,
		shuffle:     rand.Shuffle,
	}
}

func (a *EUAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	var (
		meps       []domain.CachedRep
		committees domain.CommitteeMap
	)

	p := pool.New().WithErrors().WithContext(ctx).WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		meps, err = a.store.Reps(ctx, domain.DatasetEUMeps)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		committees, err = a.committees.EnsureCommittees(ctx)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	filtered := FilterMEPs(meps, committees, unit.Code)
	if len(filtered) > a.limit {
		a.shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})
		filtered = filtered[:a.limit]
	}

	if len(filtered) == 0 {
		return nil, errors.NewNotFoundError("No MEPs found for "+unit.Code+" in AFET, DROI, or Iran Delegation committees", errors.ReasonNoMatchFound, map[string]any{
			"memberState": unit.Code,
		})
	}

	out := make([]domain.Representative, 0, len(filtered))
	for _, mep := range filtered {
		out = append(out, domain.Representative{
			Name:        mep.Name,
			District:    mep.District,
			Email:       mep.Email,
			Photo:       mep.Photo,
			Country:     domain.CountryEU,
			Title:       titleMEP,
			Type:        domain.RepTypeMEP,
			Party:       mep.PoliticalGroup,
			MemberState: mep.MemberState,
			Committee:   committees.Label(mep.MepID),
			ContactForm: a.europarlURL + "/meps/en/" + mep.MepID,
		})
	}
	return out, nil
}

// FilterMEPs keeps MEPs of memberState that appear in the committee map,
// one entry per MEP id.
func FilterMEPs(meps []domain.CachedRep, committees domain.CommitteeMap, memberState string) []domain.CachedRep {
	memberState = strings.ToUpper(memberState)
	seen := make(map[string]bool)
	var out []domain.CachedRep
	for _, mep := range meps {
		if mep.MemberState != memberState || mep.MepID == "" || seen[mep.MepID] {
			continue
		}
		if len(committees[mep.MepID]) == 0 {
			continue
		}
		seen[mep.MepID] = true
		out = append(out, mep)
	}
	return out
}
