package geo

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/internal/util"
	"github.com/kapu/repfinder-go/pkg/errors"
)

type geocodioResponse struct {
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		AddressComponents struct {
			State string `json:"state"`
		} `json:"address_components"`
		Fields struct {
			CongressionalDistricts []struct {
				DistrictNumber int `json:"district_number"`
			} `json:"congressional_districts"`
		} `json:"fields"`
	} `json:"results"`
}

// GeocodioResolver geocodes a US street address to state and congressional
// district.
type GeocodioResolver struct {
	client  upstream.Requester
	baseURL string
	apiKey  string
}

func NewGeocodioResolver(client upstream.Requester, baseURL, apiKey string) *GeocodioResolver {
	return &GeocodioResolver{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// USAddress joins the locator parts into one geocodable line.
func USAddress(loc domain.Locator) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.Street, loc.City, loc.State + " " + loc.Postal} {
		if p = util.CompactSpaces(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (r *GeocodioResolver) Resolve(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	address := USAddress(loc)
	if address == "" {
		return domain.AdminUnit{}, errors.NewValidationError("Missing address", errors.ReasonMissingField, "address", nil)
	}
	if r.apiKey == "" {
		return domain.AdminUnit{}, errors.NewUpstreamError("Geocoding provider is not configured", "geocodio", 0, nil)
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("fields", "cd")
	q.Set("api_key", r.apiKey)

	var resp geocodioResponse
	if err := r.client.GetJSON(ctx, "geocodio", r.baseURL+"/geocode?"+q.Encode(), &resp); err != nil {
		if errors.OriginStatusOf(err) == http.StatusUnprocessableEntity {
			return domain.AdminUnit{}, addressNotFound(address)
		}
		return domain.AdminUnit{}, err
	}
	if len(resp.Results) == 0 {
		return domain.AdminUnit{}, addressNotFound(address)
	}

	result := resp.Results[0]
	if len(result.Fields.CongressionalDistricts) == 0 || result.AddressComponents.State == "" {
		return domain.AdminUnit{}, errors.NewNotFoundError("No congressional district found for this address", errors.ReasonNoElectoralDistrict, map[string]any{
			"address": address,
		})
	}

	district := result.Fields.CongressionalDistricts[0].DistrictNumber
	return domain.AdminUnit{
		Country:          domain.CountryUS,
		Kind:             domain.UnitCongressionalDistrict,
		Code:             result.AddressComponents.State,
		District:         strconv.Itoa(district),
		FormattedAddress: result.FormattedAddress,
	}, nil
}

func addressNotFound(address string) error {
	return errors.NewNotFoundError("Address not found. Please check spelling.", errors.ReasonAddressNotFound, map[string]any{
		"address": address,
	})
}
