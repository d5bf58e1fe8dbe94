package directory

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/kapu/repfinder-go/internal/constants"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/internal/util"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type awMandate struct {
	Politician struct {
		Label                string `json:"label"`
		APIURL               string `json:"api_url"`
		AbgeordnetenwatchURL string `json:"abgeordnetenwatch_url"`
	} `json:"politician"`
}

type awPolitician struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	QIDWikidata string `json:"qid_wikidata"`
}

type wikidataClaims struct {
	Claims struct {
		P18 []struct {
			Mainsnak struct {
				Datavalue struct {
					Value string `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
		} `json:"P18"`
	} `json:"claims"`
}

// BundestagAdapter fetches mandate holders for the constituencies resolved
// for a German locality. Emails follow the first.last@bundestag.de pattern;
// photos come from the Wikidata image claim when one exists.
type BundestagAdapter struct {
	client            upstream.Requester
	awURL             string
	wikidataURL       string
	uploadURL         string
	logger            *zap.Logger
	maxConstituencies int
}

func NewBundestagAdapter(client upstream.Requester, awURL, wikidataURL, uploadURL string, logger *zap.Logger) *BundestagAdapter {
	return &BundestagAdapter{
		client:            client,
		awURL:             strings.TrimRight(awURL, "/"),
		wikidataURL:       wikidataURL,
		uploadURL:         strings.TrimRight(uploadURL, "/"),
		logger:            logger,
		maxConstituencies: constants.LookupLimits.GermanConstituencies,
	}
}

func (a *BundestagAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	targets := unit.Subdivisions
	if len(targets) > a.maxConstituencies {
		targets = targets[:a.maxConstituencies]
	}

	perConstituency := make([][]domain.Representative, len(targets))
	p := pool.New().WithErrors().WithContext(ctx).WithFirstError()
	for idx, c := range targets {
		idx, c := idx, c
		p.Go(func(ctx context.Context) error {
			reps, err := a.mandates(ctx, unit.Code, c)
			if err != nil {
				return err
			}
			perConstituency[idx] = reps
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []domain.Representative
	for _, reps := range perConstituency {
		for _, rep := range reps {
			if seen[rep.Name] {
				continue
			}
			seen[rep.Name] = true
			out = append(out, rep)
		}
	}
	return out, nil
}

func (a *BundestagAdapter) mandates(ctx context.Context, periodID string, c domain.Subdivision) ([]domain.Representative, error) {
	q := url.Values{}
	q.Set("parliament_period", periodID)
	q.Set("constituency", c.ID)

	var resp struct {
		Data []awMandate `json:"data"`
	}
	if err := a.client.GetJSON(ctx, "abgeordnetenwatch", a.awURL+"/candidacies-mandates?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	reps := make([]domain.Representative, len(resp.Data))
	p := pool.New()
	for idx, m := range resp.Data {
		idx, m := idx, m
		p.Go(func() {
			reps[idx] = a.representative(ctx, m, c.Label)
		})
	}
	p.Wait()
	return reps, nil
}

// representative never fails: detail and photo errors leave the
// corresponding fields empty.
func (a *BundestagAdapter) representative(ctx context.Context, m awMandate, district string) domain.Representative {
	rep := domain.Representative{
		Name:        m.Politician.Label,
		District:    district,
		Country:     domain.CountryDE,
		Title:       titleMdB,
		Type:        domain.RepTypeMP,
		ContactForm: m.Politician.AbgeordnetenwatchURL,
	}
	if m.Politician.APIURL == "" {
		return rep
	}

	dctx, cancel := context.WithTimeout(ctx, constants.Timeouts.Detail)
	defer cancel()

	var detail struct {
		Data awPolitician `json:"data"`
	}
	if err := a.client.GetJSON(dctx, "abgeordnetenwatch", m.Politician.APIURL, &detail); err != nil {
		a.logger.Warn("Could not fetch politician details",
			zap.String("politician", m.Politician.Label),
			zap.Error(err),
		)
		return rep
	}

	rep.Email = util.DottedEmail(
		util.GermanEmailPart(detail.Data.FirstName),
		util.GermanEmailPart(detail.Data.LastName),
		"bundestag.de",
	)
	if detail.Data.QIDWikidata != "" {
		rep.Photo = a.photo(dctx, detail.Data.QIDWikidata, m.Politician.Label)
	}
	return rep
}

func (a *BundestagAdapter) photo(ctx context.Context, qid, label string) string {
	q := url.Values{}
	q.Set("action", "wbgetclaims")
	q.Set("property", "P18")
	q.Set("entity", qid)
	q.Set("format", "json")

	var claims wikidataClaims
	if err := a.client.GetJSON(ctx, "wikidata", a.wikidataURL+"?"+q.Encode(), &claims); err != nil {
		a.logger.Warn("Could not fetch Wikidata photo", zap.String("politician", label), zap.Error(err))
		return ""
	}
	if len(claims.Claims.P18) == 0 {
		return ""
	}
	return CommonsImageURL(a.uploadURL, claims.Claims.P18[0].Mainsnak.Datavalue.Value)
}

// CommonsImageURL builds the Wikimedia Commons upload path for a file name:
// the directory levels are the first one and two hex digits of the MD5 of
// the underscored name.
func CommonsImageURL(uploadURL, filename string) string {
	if filename == "" {
		return ""
	}
	name := strings.ReplaceAll(filename, " ", "_")
	sum := md5.Sum([]byte(name))
	h := hex.EncodeToString(sum[:])
	return uploadURL + "/" + h[:1] + "/" + h[:2] + "/" + url.PathEscape(name)
}
