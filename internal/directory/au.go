package directory

import (
	"context"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/origin"
	"github.com/kapu/repfinder-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// HouseSource is the live OpenAustralia lookup used for per-postcode House
// members; *origin.OpenAustralia satisfies it.
type HouseSource interface {
	Configured() bool
	Representatives(ctx context.Context, postcode string) ([]origin.OpenAustraliaMember, error)
	CachedRep(m origin.OpenAustraliaMember, repType domain.RepType, district, state string) domain.CachedRep
	ContactURL(repType domain.RepType, personID string) string
}

// AustraliaAdapter combines House members for the postcode, fetched live,
// with the cached senators of the postcode's state. A failed live call
// degrades to senators only.
type AustraliaAdapter struct {
	store  RepsReader
	house  HouseSource
	logger *zap.Logger
}

func NewAustraliaAdapter(store RepsReader, house HouseSource, logger *zap.Logger) *AustraliaAdapter {
	return &AustraliaAdapter{store: store, house: house, logger: logger}
}

func (a *AustraliaAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	var cachedHouse, senators, live []domain.CachedRep

	p := pool.New().WithErrors().WithContext(ctx).WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		cachedHouse, err = a.store.Reps(ctx, domain.DatasetAustraliaHouse)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		senators, err = a.store.Reps(ctx, domain.DatasetAustraliaSenators)
		return err
	})
	p.Go(func(ctx context.Context) error {
		live = a.liveHouse(ctx, unit.Postal)
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	byPerson := make(map[string]domain.CachedRep, len(cachedHouse))
	for _, mp := range cachedHouse {
		if mp.PersonID != "" {
			byPerson[mp.PersonID] = mp
		}
	}

	var out []domain.Representative
	for _, mp := range live {
		if cached, ok := byPerson[mp.PersonID]; ok {
			if mp.Party == "" {
				mp.Party = cached.Party
			}
			if mp.Phone == "" {
				mp.Phone = cached.Phone
			}
		}
		out = append(out, a.representative(mp, domain.RepTypeMP, titleMP))
	}

	for _, s := range senators {
		if s.State != unit.Code {
			continue
		}
		out = append(out, a.representative(s, domain.RepTypeSenator, titleSenator))
	}

	if len(out) == 0 {
		return nil, errors.NewNotFoundError("No representatives found for this postcode", errors.ReasonNoMatchFound, map[string]any{
			"postcode": unit.Postal,
			"state":    unit.Code,
		})
	}
	return out, nil
}

func (a *AustraliaAdapter) liveHouse(ctx context.Context, postcode string) []domain.CachedRep {
	if a.house == nil || !a.house.Configured() {
		a.logger.Warn("OpenAustralia API key is missing, returning senators only")
		return nil
	}

	lctx, cancel := context.WithTimeout(ctx, constants.Timeouts.LiveHouse)
	defer cancel()

	members, err := a.house.Representatives(lctx, postcode)
	if err != nil {
		a.logger.Warn("Failed to fetch House MPs for postcode",
			zap.String("postcode", postcode),
			zap.Error(err))
		return nil
	}

	reps := make([]domain.CachedRep, 0, len(members))
	for _, m := range members {
		reps = append(reps, a.house.CachedRep(m, domain.RepTypeMP, m.Constituency, ""))
	}
	return reps
}

func (a *AustraliaAdapter) representative(r domain.CachedRep, repType domain.RepType, title string) domain.Representative {
	rep := domain.Representative{
		Name:     r.Name,
		District: r.District,
		Email:    r.Email,
		Photo:    r.Photo,
		Country:  domain.CountryAU,
		Title:    title,
		Type:     repType,
		Phone:    r.Phone,
		Party:    r.Party,
	}
	if a.house != nil {
		rep.ContactForm = a.house.ContactURL(repType, r.PersonID)
	}
	return rep
}
