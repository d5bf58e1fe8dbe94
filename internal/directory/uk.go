package directory

import (
	"context"
	"net/url"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/pkg/errors"
)

type constituencySearch struct {
	Items []struct {
		Value struct {
			CurrentRepresentation *struct {
				Member struct {
					Value *struct {
						NameDisplayAs string `json:"nameDisplayAs"`
						ThumbnailURL  string `json:"thumbnailUrl"`
						LatestParty   struct {
							Name string `json:"name"`
						} `json:"latestParty"`
					} `json:"value"`
				} `json:"member"`
			} `json:"currentRepresentation"`
		} `json:"value"`
	} `json:"items"`
}

// CommonsAdapter finds the sitting MP for a constituency through the
// Parliament members API.
type CommonsAdapter struct {
	client  upstream.Requester
	baseURL string
}

func NewCommonsAdapter(client upstream.Requester, baseURL string) *CommonsAdapter {
	return &CommonsAdapter{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (a *CommonsAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	var resp constituencySearch
	rawURL := a.baseURL + "/Location/Constituency/Search?searchText=" + url.QueryEscape(unit.Name)
	if err := a.client.GetJSON(ctx, "parliament-members", rawURL, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 || resp.Items[0].Value.CurrentRepresentation == nil ||
		resp.Items[0].Value.CurrentRepresentation.Member.Value == nil {
		return nil, errors.NewNotFoundError("No sitting MP found.", errors.ReasonNoSittingMember, map[string]any{
			"constituency": unit.Name,
		})
	}

	member := resp.Items[0].Value.CurrentRepresentation.Member.Value
	return []domain.Representative{{
		Name:     member.NameDisplayAs,
		District: unit.Name,
		Email:    "",
		Photo:    member.ThumbnailURL,
		Country:  domain.CountryUK,
		Title:    titleMP,
		Type:     domain.RepTypeMP,
		Party:    member.LatestParty.Name,
	}}, nil
}
