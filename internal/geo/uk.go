package geo

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/pkg/errors"
)

type postcodeResponse struct {
	Result *struct {
		ParliamentaryConstituency string `json:"parliamentary_constituency"`
	} `json:"result"`
}

// PostcodesResolver maps a UK postcode to its parliamentary constituency.
type PostcodesResolver struct {
	client  upstream.Requester
	baseURL string
}

func NewPostcodesResolver(client upstream.Requester, baseURL string) *PostcodesResolver {
	return &PostcodesResolver{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *PostcodesResolver) Resolve(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	postal, err := requirePostal(loc)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	clean := CleanUKPostcode(postal)

	var resp postcodeResponse
	if err := r.client.GetJSON(ctx, "postcodes", r.baseURL+"/postcodes/"+url.PathEscape(clean), &resp); err != nil {
		switch errors.OriginStatusOf(err) {
		case http.StatusNotFound, http.StatusBadRequest:
			return domain.AdminUnit{}, invalidPostcode(postal)
		}
		return domain.AdminUnit{}, err
	}
	if resp.Result == nil || strings.TrimSpace(resp.Result.ParliamentaryConstituency) == "" {
		return domain.AdminUnit{}, invalidPostcode(postal)
	}

	return domain.AdminUnit{
		Country: domain.CountryUK,
		Kind:    domain.UnitConstituency,
		Name:    resp.Result.ParliamentaryConstituency,
		Postal:  clean,
	}, nil
}

func invalidPostcode(postal string) error {
	return errors.NewValidationError("Invalid UK Postcode.", errors.ReasonInvalidPostcode, "postal", postal)
}
