package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/kapu/repfinder-go/pkg/errors"
)

type legislator struct {
	ID struct {
		Bioguide string `json:"bioguide"`
	} `json:"id"`
	Name struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	Terms []legislatorTerm `json:"terms"`
}

type legislatorTerm struct {
	Type        string `json:"type"`
	State       string `json:"state"`
	District    int    `json:"district"`
	Party       string `json:"party"`
	Phone       string `json:"phone"`
	ContactForm string `json:"contact_form"`
}

// CongressAdapter filters the current-legislators bulk file down to a
// state's senators and its district's representative.
type CongressAdapter struct {
	client         upstream.Requester
	legislatorsURL string
	photoURL       string
}

func NewCongressAdapter(client upstream.Requester, legislatorsURL, photoURL string) *CongressAdapter {
	return &CongressAdapter{
		client:         client,
		legislatorsURL: legislatorsURL,
		photoURL:       strings.TrimRight(photoURL, "/"),
	}
}

func (a *CongressAdapter) Lookup(ctx context.Context, unit domain.AdminUnit) ([]domain.Representative, error) {
	district, err := strconv.Atoi(unit.District)
	if err != nil {
		return nil, errors.NewValidationError("Invalid congressional district", errors.ReasonInvalidFormat, "district", unit.District)
	}

	var all []legislator
	if err := a.client.GetJSON(ctx, "congress-legislators", a.legislatorsURL, &all); err != nil {
		return nil, err
	}

	var senators, house []domain.Representative
	for _, p := range all {
		if len(p.Terms) == 0 {
			continue
		}
		term := p.Terms[len(p.Terms)-1]
		if term.State != unit.Code {
			continue
		}
		switch {
		case term.Type == "sen":
			senators = append(senators, a.toRepresentative(p, term, domain.RepTypeSenator, unit.FormattedAddress))
		case term.Type == "rep" && term.District == district && len(house) == 0:
			house = append(house, a.toRepresentative(p, term, domain.RepTypeHouse, unit.FormattedAddress))
		}
	}

	return append(senators, house...), nil
}

func (a *CongressAdapter) toRepresentative(p legislator, term legislatorTerm, repType domain.RepType, address string) domain.Representative {
	rep := domain.Representative{
		Name:             strings.TrimSpace(p.Name.First + " " + p.Name.Last),
		Email:            "",
		Country:          domain.CountryUS,
		Type:             repType,
		Party:            term.Party,
		Phone:            term.Phone,
		ContactForm:      term.ContactForm,
		FormattedAddress: address,
		BioguideID:       p.ID.Bioguide,
	}
	if p.ID.Bioguide != "" {
		rep.Photo = fmt.Sprintf("%s/%s.jpg", a.photoURL, p.ID.Bioguide)
	}
	if repType == domain.RepTypeSenator {
		rep.Title = titleSenator
		rep.District = term.State + " (Senator)"
	} else {
		rep.Title = titleRepresentative
		rep.District = fmt.Sprintf("%s-%d", term.State, term.District)
	}
	return rep
}
