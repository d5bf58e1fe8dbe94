package geo

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/pkg/errors"
	"go.uber.org/zap"
)

type openPLZLocality struct {
	Name         string `json:"name"`
	Municipality *struct {
		Name string `json:"name"`
	} `json:"municipality"`
}

type awPeriod struct {
	ID              int    `json:"id"`
	Label           string `json:"label"`
	StartDatePeriod string `json:"start_date_period"`
	ElectionDate    string `json:"election_date"`
}

type awConstituency struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// BundestagResolver maps a German postal code to the Bundestag constituencies
// of its municipality in the current legislative period.
type BundestagResolver struct {
	client      upstream.Requester
	openPLZURL  string
	awURL       string
	logger      *zap.Logger
	fallbackPID int
}

func NewBundestagResolver(client upstream.Requester, openPLZURL, awURL string, logger *zap.Logger) *BundestagResolver {
	return &BundestagResolver{
		client:      client,
		openPLZURL:  strings.TrimRight(openPLZURL, "/"),
		awURL:       strings.TrimRight(awURL, "/"),
		logger:      logger,
		fallbackPID: constants.LookupLimits.GermanFallbackPeriod,
	}
}

func (r *BundestagResolver) Resolve(ctx context.Context, loc domain.Locator) (domain.AdminUnit, error) {
	postal, err := requirePostal(loc)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	postal = strings.ReplaceAll(postal, " ", "")
	if !fiveDigitPattern.MatchString(postal) {
		return domain.AdminUnit{}, errors.NewValidationError("Invalid German postal code format", errors.ReasonInvalidFormat, "postal", loc.Postal)
	}

	locality, err := r.locality(ctx, postal)
	if err != nil {
		return domain.AdminUnit{}, err
	}

	periodID := r.currentPeriod(ctx)
	periodLabel := r.periodLabel(ctx, periodID)

	constituencies, err := r.constituencies(ctx, locality, periodLabel)
	if err != nil {
		return domain.AdminUnit{}, err
	}
	if len(constituencies) == 0 {
		if first := FirstToken(locality); first != "" && first != locality {
			r.logger.Debug("No constituency for locality, retrying with first token",
				zap.String("locality", locality),
				zap.String("token", first),
			)
			constituencies, err = r.constituencies(ctx, first, periodLabel)
			if err != nil {
				return domain.AdminUnit{}, err
			}
		}
	}
	if len(constituencies) == 0 {
		return domain.AdminUnit{}, errors.NewNotFoundError("No electoral districts found for "+locality, errors.ReasonNoElectoralDistrict, map[string]any{
			"locality": locality,
		})
	}

	subs := make([]domain.Subdivision, 0, len(constituencies))
	for _, c := range constituencies {
		subs = append(subs, domain.Subdivision{ID: strconv.Itoa(c.ID), Label: c.Label})
	}

	return domain.AdminUnit{
		Country:      domain.CountryDE,
		Kind:         domain.UnitLocality,
		Code:         strconv.Itoa(periodID),
		Name:         locality,
		Postal:       postal,
		Subdivisions: subs,
	}, nil
}

func (r *BundestagResolver) locality(ctx context.Context, postal string) (string, error) {
	var localities []openPLZLocality
	err := r.client.GetJSON(ctx, "openplz", r.openPLZURL+"/de/Localities?postalCode="+url.QueryEscape(postal), &localities)
	if err != nil && errors.OriginStatusOf(err) != http.StatusNotFound {
		return "", err
	}

	name := ""
	if len(localities) > 0 {
		name = localities[0].Name
		if m := localities[0].Municipality; m != nil && m.Name != "" {
			name = m.Name
		}
	}
	name = NormalizeLocality(name)
	if name == "" {
		return "", errors.NewNotFoundError("Invalid German postal code.", errors.ReasonUnknownPostalCode, map[string]any{
			"postal": postal,
		})
	}
	return name, nil
}

// currentPeriod picks the most recent Bundestag legislature, falling back to
// a known period id when the lookup fails.
func (r *BundestagResolver) currentPeriod(ctx context.Context) int {
	var resp struct {
		Data []awPeriod `json:"data"`
	}
	err := r.client.GetJSON(ctx, "abgeordnetenwatch", r.awURL+"/parliament-periods?parliament=5&type=legislature", &resp)
	if err != nil || len(resp.Data) == 0 {
		r.logger.Warn("Could not fetch latest parliament period, using fallback",
			zap.Int("period_id", r.fallbackPID),
			zap.Error(err),
		)
		return r.fallbackPID
	}

	periods := resp.Data
	sort.SliceStable(periods, func(i, j int) bool {
		return periodStart(periods[i]) > periodStart(periods[j])
	})
	return periods[0].ID
}

func periodStart(p awPeriod) string {
	for _, d := range []string{p.StartDatePeriod, p.ElectionDate} {
		if d != "" {
			return d
		}
	}
	return "2000-01-01"
}

func (r *BundestagResolver) periodLabel(ctx context.Context, periodID int) string {
	var resp struct {
		Data struct {
			Label string `json:"label"`
		} `json:"data"`
	}
	if err := r.client.GetJSON(ctx, "abgeordnetenwatch", r.awURL+"/parliament-periods/"+strconv.Itoa(periodID), &resp); err != nil {
		r.logger.Warn("Could not fetch period label, using all constituencies", zap.Error(err))
		return ""
	}
	return resp.Data.Label
}

func (r *BundestagResolver) constituencies(ctx context.Context, name, periodLabel string) ([]awConstituency, error) {
	q := url.Values{}
	q.Set("label[cn]", name)

	var resp struct {
		Data []awConstituency `json:"data"`
	}
	if err := r.client.GetJSON(ctx, "abgeordnetenwatch", r.awURL+"/constituencies?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	if periodLabel == "" {
		return resp.Data, nil
	}
	matched := make([]awConstituency, 0, len(resp.Data))
	for _, c := range resp.Data {
		if strings.Contains(c.Label, periodLabel) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}
