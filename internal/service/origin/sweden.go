package origin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"go.uber.org/zap"
)

const (
	servingMemberStatus = "Tjänstgörande riksdagsledamot"
	officialEmailCode   = "Officiell e-postadress"
)

type riksdagenPersonList struct {
	Personlista struct {
		Person json.RawMessage `json:"person"`
	} `json:"personlista"`
}

type riksdagenPerson struct {
	Tilltalsnamn  string `json:"tilltalsnamn"`
	Efternamn     string `json:"efternamn"`
	Valkrets      string `json:"valkrets"`
	Status        string `json:"status"`
	Parti         string `json:"parti"`
	BildURL192    string `json:"bild_url_192"`
	Personuppgift *struct {
		Uppgift json.RawMessage `json:"uppgift"`
	} `json:"personuppgift"`
}

type riksdagenUppgift struct {
	Kod     string          `json:"kod"`
	Uppgift json.RawMessage `json:"uppgift"`
}

// SwedenFetcher downloads serving Riksdag members.
type SwedenFetcher struct {
	client  upstream.Requester
	baseURL string
	logger  *zap.Logger
}

func NewSwedenFetcher(client upstream.Requester, baseURL string, logger *zap.Logger) *SwedenFetcher {
	return &SwedenFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (f *SwedenFetcher) Fetch(ctx context.Context) ([]domain.CachedRep, error) {
	var list riksdagenPersonList
	if err := f.client.GetJSON(ctx, "riksdagen", f.baseURL+"/personlista/?utformat=json&rdlstatus=tjg", &list); err != nil {
		return nil, fmt.Errorf("could not fetch Swedish MP data: %w", err)
	}

	persons, err := oneOrMany[riksdagenPerson](list.Personlista.Person)
	if err != nil {
		return nil, fmt.Errorf("could not decode Swedish MP data: %w", err)
	}
	if len(persons) == 0 {
		return nil, fmt.Errorf("could not fetch Swedish MP data: empty person list")
	}

	reps := make([]domain.CachedRep, 0, len(persons))
	for _, p := range persons {
		if p.Status != servingMemberStatus {
			continue
		}
		reps = append(reps, domain.CachedRep{
			Name:     strings.TrimSpace(p.Tilltalsnamn + " " + p.Efternamn),
			District: p.Valkrets,
			Email:    f.officialEmail(p),
			Photo:    p.BildURL192,
			Type:     domain.RepTypeMP,
			Party:    p.Parti,
			Valkrets: p.Valkrets,
		})
	}
	return reps, nil
}

// officialEmail reads the "Officiell e-postadress" record, whose value may be
// a string or a list, and restores the obfuscated at-sign.
func (f *SwedenFetcher) officialEmail(p riksdagenPerson) string {
	if p.Personuppgift == nil {
		return ""
	}
	records, err := oneOrMany[riksdagenUppgift](p.Personuppgift.Uppgift)
	if err != nil {
		f.logger.Debug("Unreadable personuppgift", zap.String("name", p.Efternamn), zap.Error(err))
		return ""
	}
	for _, r := range records {
		if r.Kod != officialEmailCode {
			continue
		}
		values, err := oneOrMany[string](r.Uppgift)
		if err != nil || len(values) == 0 {
			return ""
		}
		return strings.Replace(values[0], "[på]", "@", 1)
	}
	return ""
}
