package origin

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"go.uber.org/zap"
)

type nosDeputesList struct {
	Deputes []struct {
		Depute nosDepute `json:"depute"`
	} `json:"deputes"`
}

type nosDepute struct {
	Nom       string     `json:"nom"`
	NomCirco  string     `json:"nom_circo"`
	NumCirco  flexString `json:"num_circo"`
	NumDeptmt flexString `json:"num_deptmt"`
	Email     string     `json:"email"`
	Emails    []struct {
		Email string `json:"email"`
	} `json:"emails"`
	IDAN        flexString `json:"id_an"`
	GroupeSigle string     `json:"groupe_sigle"`
}

// FranceFetcher downloads the deputies list from NosDéputés, preferring the
// in-mandate listing and falling back to the full one.
type FranceFetcher struct {
	client   upstream.Requester
	baseURL  string
	photoURL string
	logger   *zap.Logger
}

func NewFranceFetcher(client upstream.Requester, baseURL, photoURL string, logger *zap.Logger) *FranceFetcher {
	return &FranceFetcher{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		photoURL: strings.TrimRight(photoURL, "/"),
		logger:   logger,
	}
}

func (f *FranceFetcher) Fetch(ctx context.Context) ([]domain.CachedRep, error) {
	var list nosDeputesList
	if err := f.client.GetJSON(ctx, "nosdeputes", f.baseURL+"/deputes/enmandat/json", &list); err != nil {
		f.logger.Warn("In-mandate deputies listing failed, falling back to full listing", zap.Error(err))
	}

	if len(list.Deputes) == 0 {
		list = nosDeputesList{}
		if err := f.client.GetJSON(ctx, "nosdeputes", f.baseURL+"/deputes/json", &list); err != nil {
			return nil, fmt.Errorf("could not fetch French deputy data: %w", err)
		}
	}
	if len(list.Deputes) == 0 {
		return nil, fmt.Errorf("could not fetch French deputy data: empty listing")
	}

	reps := make([]domain.CachedRep, 0, len(list.Deputes))
	for _, item := range list.Deputes {
		d := item.Depute
		rep := domain.CachedRep{
			Name:     d.Nom,
			District: fmt.Sprintf("%s (%s)", d.NomCirco, d.NumCirco),
			Email:    deputeEmail(d),
			Type:     domain.RepTypeMP,
			Party:    d.GroupeSigle,
			DeptCode: d.NumDeptmt.String(),
		}
		if id := d.IDAN.String(); id != "" {
			rep.Photo = f.photoURL + "/" + id + "/image"
		}
		reps = append(reps, rep)
	}
	return reps, nil
}

// deputeEmail prefers the explicit address, then an assemblee-nationale.fr
// entry, then the first listed address.
func deputeEmail(d nosDepute) string {
	if d.Email != "" {
		return d.Email
	}
	for _, e := range d.Emails {
		if strings.Contains(e.Email, "assemblee-nationale.fr") {
			return e.Email
		}
	}
	if len(d.Emails) > 0 {
		return d.Emails[0].Email
	}
	return ""
}
