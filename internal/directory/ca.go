package directory

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/pkg/errors"
)

type representRecord struct {
	Name          string `json:"name"`
	DistrictName  string `json:"district_name"`
	Email         string `json:"email"`
	PhotoURL      string `json:"photo_url"`
	PartyName     string `json:"party_name"`
	ElectedOffice string `json:"elected_office"`
}

type representPostcode struct {
	Centroid    []representRecord `json:"representatives_centroid"`
	Concordance []representRecord `json:"representatives_concordance"`
}

// RepresentAdapter looks up the federal MP for a Canadian postal code.
type RepresentAdapter struct {
	client  upstream.Requester
	baseURL string
}

func NewRepresentAdapter(client upstream.Requester, baseURL string) *RepresentAdapter {
	return &RepresentAdapter{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *RepresentAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	var resp representPostcode
	rawURL := a.baseURL + "/postcodes/" + url.PathEscape(unit.Postal) + "/"
	if err := a.client.GetJSON(ctx, "represent", rawURL, &resp); err != nil {
		if errors.OriginStatusOf(err) == http.StatusNotFound {
			return nil, errors.NewNotFoundError("Location not found.", errors.ReasonUnknownPostalCode, map[string]any{
				"postal": unit.Postal,
			})
		}
		return nil, err
	}

	mp, ok := findMP(resp.Centroid)
	if !ok {
		mp, ok = findMP(resp.Concordance)
	}
	if !ok {
		return nil, errors.NewNotFoundError("No MP found.", errors.ReasonNoSittingMember, map[string]any{
			"postal": unit.Postal,
		})
	}

	return []domain.Representative{{
		Name:     mp.Name,
		District: mp.DistrictName,
		Email:    mp.Email,
		Photo:    mp.PhotoURL,
		Country:  domain.CountryCA,
		Title:    titleMP,
		Type:     domain.RepTypeMP,
		Party:    mp.PartyName,
	}}, nil
}

func findMP(records []representRecord) (representRecord, bool) {
	for _, r := range records {
		if r.ElectedOffice == "MP" {
			return r, true
		}
	}
	return representRecord{}, false
}
