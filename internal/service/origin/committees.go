package origin

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var mepLinkPattern = regexp.MustCompile(`meps/en/(\d+)`)

type committeePage struct {
	code string
	path string
}

var committeePages = []committeePage{
	{domain.CommitteeAFET, "/committees/en/afet/home/members"},
	{domain.CommitteeDROI, "/committees/en/droi/home/members"},
	{domain.CommitteeDIR, "/delegations/en/d-ir/members"},
}

// CommitteeScraper builds the MEP committee map from the public member pages
// of AFET, DROI and the Iran delegation.
type CommitteeScraper struct {
	client  upstream.Requester
	baseURL string
	logger  *zap.Logger
}

func NewCommitteeScraper(client upstream.Requester, baseURL string, logger *zap.Logger) *CommitteeScraper {
	return &CommitteeScraper{client: client, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Fetch scrapes all pages concurrently. A page that fails contributes no
// members; the caller decides whether the resulting map is usable.
func (s *CommitteeScraper) Fetch(ctx context.Context) (domain.CommitteeMap, error) {
	ids := make([][]string, len(committeePages))

	p := pool.New()
	for idx, page := range committeePages {
		idx, page := idx, page
		p.Go(func() {
			ids[idx] = s.memberIDs(ctx, page)
		})
	}
	p.Wait()

	committees := make(domain.CommitteeMap)
	for idx, page := range committeePages {
		for _, id := range ids[idx] {
			committees.Add(id, page.code)
		}
	}

	s.logger.Info("Committee members scraped",
		zap.Int("afet", len(ids[0])),
		zap.Int("droi", len(ids[1])),
		zap.Int("d_ir", len(ids[2])),
		zap.Int("unique", len(committees)))

	return committees, nil
}

func (s *CommitteeScraper) memberIDs(ctx context.Context, page committeePage) []string {
	body, err := s.client.Get(ctx, "europarl", s.baseURL+page.path)
	if err != nil {
		s.logger.Warn("Failed to fetch committee members",
			zap.String("committee", page.code),
			zap.Error(err))
		return nil
	}
	return ExtractMEPIDs(body)
}

// ExtractMEPIDs returns the distinct MEP ids linked from an HTML page, in
// order of first appearance. Anchors are read first; when the markup yields
// none, the raw body is scanned.
func ExtractMEPIDs(body []byte) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if m := mepLinkPattern.FindStringSubmatch(href); m != nil {
				add(m[1])
			}
		})
	}
	if len(ids) > 0 {
		return ids
	}

	for _, m := range mepLinkPattern.FindAllSubmatch(body, -1) {
		add(string(m[1]))
	}
	return ids
}
