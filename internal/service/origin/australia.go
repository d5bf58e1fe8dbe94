package origin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/geo"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/internal/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// OpenAustraliaMember is one record of getRepresentatives or getSenators.
type OpenAustraliaMember struct {
	PersonID     flexString `json:"person_id"`
	FullName     string     `json:"full_name"`
	Name         string     `json:"name"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Constituency string     `json:"constituency"`
	Party        string     `json:"party"`
	Phone        string     `json:"phone"`
	Image        string     `json:"image"`
}

// OpenAustralia talks to the OpenAustralia API for both the sync job and the
// live per-postcode House lookup.
type OpenAustralia struct {
	client  upstream.Requester
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

func NewOpenAustralia(client upstream.Requester, baseURL, apiKey string, logger *zap.Logger) *OpenAustralia {
	return &OpenAustralia{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		logger:  logger,
	}
}

func (o *OpenAustralia) Configured() bool {
	return o.apiKey != ""
}

// Representatives returns House members, all of them when postcode is empty.
func (o *OpenAustralia) Representatives(ctx context.Context, postcode string) ([]OpenAustraliaMember, error) {
	if !o.Configured() {
		return nil, fmt.Errorf("OpenAustralia API key is missing")
	}
	q := url.Values{}
	q.Set("key", o.apiKey)
	if postcode != "" {
		q.Set("postcode", postcode)
	}
	q.Set("output", "js")

	var members []OpenAustraliaMember
	if err := o.client.GetJSON(ctx, "openaustralia", o.baseURL+"/api/getRepresentatives?"+q.Encode(), &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (o *OpenAustralia) Senators(ctx context.Context, state string) ([]OpenAustraliaMember, error) {
	if !o.Configured() {
		return nil, fmt.Errorf("OpenAustralia API key is missing")
	}
	q := url.Values{}
	q.Set("key", o.apiKey)
	q.Set("state", state)
	q.Set("output", "js")

	var members []OpenAustraliaMember
	if err := o.client.GetJSON(ctx, "openaustralia", o.baseURL+"/api/getSenators?"+q.Encode(), &members); err != nil {
		return nil, err
	}
	return members, nil
}

// FetchHouse downloads every sitting House member.
func (o *OpenAustralia) FetchHouse(ctx context.Context) ([]domain.CachedRep, error) {
	members, err := o.Representatives(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("could not fetch Australian House representatives: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("could not fetch Australian House representatives: empty list")
	}

	reps := make([]domain.CachedRep, 0, len(members))
	for _, m := range members {
		reps = append(reps, o.CachedRep(m, domain.RepTypeMP, m.Constituency, ""))
	}
	return reps, nil
}

// FetchSenators walks every state concurrently. A failing state is logged and
// skipped; only an entirely empty result is an error.
func (o *OpenAustralia) FetchSenators(ctx context.Context) ([]domain.CachedRep, error) {
	if !o.Configured() {
		return nil, fmt.Errorf("OpenAustralia API key is missing")
	}

	perState := make([][]domain.CachedRep, len(geo.AustraliaStateCodes))
	p := pool.New().WithMaxGoroutines(4)
	for idx, state := range geo.AustraliaStateCodes {
		idx, state := idx, state
		p.Go(func() {
			sctx, cancel := context.WithTimeout(ctx, constants.Timeouts.SyncState)
			defer cancel()

			members, err := o.Senators(sctx, state.Code)
			if err != nil {
				o.logger.Warn("Failed to fetch senators for state", zap.String("state", state.Code), zap.Error(err))
				return
			}
			reps := make([]domain.CachedRep, 0, len(members))
			for _, m := range members {
				reps = append(reps, o.CachedRep(m, domain.RepTypeSenator, state.Label, state.Label))
			}
			perState[idx] = reps
		})
	}
	p.Wait()

	var all []domain.CachedRep
	for _, reps := range perState {
		all = append(all, reps...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("could not fetch Australian senators")
	}
	return all, nil
}

// CachedRep normalizes an OpenAustralia record. state is set for senators.
func (o *OpenAustralia) CachedRep(m OpenAustraliaMember, repType domain.RepType, district, state string) domain.CachedRep {
	return domain.CachedRep{
		Name:     util.FirstNonEmpty(m.FullName, m.Name),
		District: district,
		Email:    AustraliaEmail(m.FirstName, m.LastName),
		Photo:    o.absolute(m.Image),
		Type:     repType,
		Party:    m.Party,
		Phone:    m.Phone,
		PersonID: m.PersonID.String(),
		State:    state,
	}
}

// ContactURL is the member's OpenAustralia profile page.
func (o *OpenAustralia) ContactURL(repType domain.RepType, personID string) string {
	if personID == "" {
		return ""
	}
	section := "mp"
	if repType == domain.RepTypeSenator {
		section = "senator"
	}
	return o.baseURL + "/" + section + "/?p=" + url.QueryEscape(personID)
}

func (o *OpenAustralia) absolute(image string) string {
	if strings.HasPrefix(image, "/") {
		return o.baseURL + image
	}
	return image
}

// AustraliaEmail builds first.last@aph.gov.au from the letters of each name.
func AustraliaEmail(first, last string) string {
	return util.DottedEmail(util.KeepLetters(first, false), util.KeepLetters(last, false), "aph.gov.au")
}
