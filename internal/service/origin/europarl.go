package origin

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/geo"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/internal/util"
	"go.uber.org/zap"
)

type europarlMEPList struct {
	XMLName xml.Name      `xml:"meps"`
	MEPs    []europarlMEP `xml:"mep"`
}

type europarlMEP struct {
	FullName               string `xml:"fullName"`
	Country                string `xml:"country"`
	PoliticalGroup         string `xml:"politicalGroup"`
	ID                     string `xml:"id"`
	NationalPoliticalGroup string `xml:"nationalPoliticalGroup"`
}

// EuroparlFetcher downloads the full MEP list as XML.
type EuroparlFetcher struct {
	client  upstream.Requester
	baseURL string
	logger  *zap.Logger
}

func NewEuroparlFetcher(client upstream.Requester, baseURL string, logger *zap.Logger) *EuroparlFetcher {
	return &EuroparlFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (f *EuroparlFetcher) Fetch(ctx context.Context) ([]domain.CachedRep, error) {
	body, err := f.client.Get(ctx, "europarl", f.baseURL+"/meps/en/full-list/xml")
	if err != nil {
		return nil, fmt.Errorf("could not fetch EU MEP data: %w", err)
	}
	return f.parse(body)
}

func (f *EuroparlFetcher) parse(body []byte) ([]domain.CachedRep, error) {
	var list europarlMEPList
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&list); err != nil {
		return nil, fmt.Errorf("could not decode EU MEP data: %w", err)
	}
	if len(list.MEPs) == 0 {
		return nil, fmt.Errorf("no MEP data found in XML response")
	}

	reps := make([]domain.CachedRep, 0, len(list.MEPs))
	skipped := 0
	for _, m := range list.MEPs {
		name := strings.TrimSpace(m.FullName)
		id := strings.TrimSpace(m.ID)
		if name == "" || id == "" {
			skipped++
			continue
		}
		country := strings.TrimSpace(m.Country)
		reps = append(reps, domain.CachedRep{
			Name:           name,
			District:       country,
			Email:          MEPEmail(name),
			Photo:          f.baseURL + "/mepphoto/" + id + ".jpg",
			Type:           domain.RepTypeMEP,
			MemberState:    geo.EUCountryCode(country),
			PoliticalGroup: strings.TrimSpace(m.PoliticalGroup),
			NationalParty:  strings.TrimSpace(m.NationalPoliticalGroup),
			MepID:          id,
		})
	}
	if skipped > 0 {
		f.logger.Debug("Skipped MEP entries without name or id", zap.Int("skipped", skipped))
	}
	return reps, nil
}

// MEPEmail guesses first.last@europarl.europa.eu. The Parliament prints
// surnames in capitals ("Mika AALTOLA"), so capitalised tokens form the last
// name and the rest the first name, each hyphen-joined. The result is a
// heuristic and may not be a deliverable address.
func MEPEmail(fullName string) string {
	var first, last []string
	for _, part := range strings.Fields(fullName) {
		if isSurnameToken(part) {
			last = append(last, part)
		} else {
			first = append(first, part)
		}
	}
	clean := func(parts []string) string {
		return util.KeepLetters(util.StripDiacritics(strings.Join(parts, "-")), true)
	}
	return util.DottedEmail(clean(first), clean(last), "europarl.europa.eu")
}

func isSurnameToken(s string) bool {
	if len([]rune(s)) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
