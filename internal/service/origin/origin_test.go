package origin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kapu/repfinder-go/internal/domain"
	"github.com/kapu/repfinder-go/internal/service/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient() *upstream.Client {
	return upstream.NewClient(nil, zap.NewNop(), upstream.WithRetry(1, 0, 0))
}

func TestFranceFetcherFallsBackToFullListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/deputes/enmandat/json":
			w.Write([]byte(`{"deputes":[]}`))
		case "/deputes/json":
			w.Write([]byte(`{"deputes":[{"depute":{
				"nom":"Jean Dupont","nom_circo":"Paris","num_circo":3,"num_deptmt":"75",
				"emails":[{"email":"jd@example.fr"},{"email":"jean.dupont@assemblee-nationale.fr"}],
				"id_an":"PA1234","groupe_sigle":"REN"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	reps, err := NewFranceFetcher(testClient(), srv.URL, "https://photos.test/dyn", zap.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "Paris (3)", reps[0].District)
	assert.Equal(t, "jean.dupont@assemblee-nationale.fr", reps[0].Email)
	assert.Equal(t, "75", reps[0].DeptCode)
	assert.Equal(t, "https://photos.test/dyn/PA1234/image", reps[0].Photo)
	assert.Equal(t, "REN", reps[0].Party)
}

func TestFranceFetcherEmptyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"deputes":[]}`))
	}))
	defer srv.Close()

	_, err := NewFranceFetcher(testClient(), srv.URL, "", zap.NewNop()).Fetch(context.Background())
	require.Error(t, err)
}

func TestSwedenFetcherFiltersServingMembers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/personlista/", r.URL.Path)
		assert.Equal(t, "tjg", r.URL.Query().Get("rdlstatus"))
		w.Write([]byte(`{"personlista":{"person":[
			{"tilltalsnamn":"Anna","efternamn":"Svensson","valkrets":"Stockholms kommun",
			 "status":"Tjänstgörande riksdagsledamot","parti":"S","bild_url_192":"https://img/a.jpg",
			 "personuppgift":{"uppgift":[
			   {"kod":"Webbsida","uppgift":["https://example.se"]},
			   {"kod":"Officiell e-postadress","uppgift":["anna.svensson[på]riksdagen.se"]}]}},
			{"tilltalsnamn":"Per","efternamn":"Ersatt","valkrets":"Skåne läns västra",
			 "status":"Ledig","parti":"M"},
			{"tilltalsnamn":"Eva","efternamn":"Ek","valkrets":"Gotlands län",
			 "status":"Tjänstgörande riksdagsledamot","parti":"C",
			 "personuppgift":{"uppgift":{"kod":"Officiell e-postadress","uppgift":"eva.ek[på]riksdagen.se"}}}
		]}}`))
	}))
	defer srv.Close()

	reps, err := NewSwedenFetcher(testClient(), srv.URL, zap.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, reps, 2)

	assert.Equal(t, "Anna Svensson", reps[0].Name)
	assert.Equal(t, "anna.svensson@riksdagen.se", reps[0].Email)
	assert.Equal(t, "Stockholms kommun", reps[0].Valkrets)
	assert.Equal(t, "eva.ek@riksdagen.se", reps[1].Email)
}

func TestOpenAustraliaFetchHouse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/getRepresentatives", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		w.Write([]byte(`[{"person_id":10001,"full_name":"Anthony Albanese","first_name":"Anthony",
			"last_name":"Albanese","constituency":"Grayndler","party":"Australian Labor Party",
			"phone":"(02) 9564 3588","image":"/images/mpsL/10001.jpg"}]`))
	}))
	defer srv.Close()

	oa := NewOpenAustralia(testClient(), srv.URL, "secret", zap.NewNop())
	reps, err := oa.FetchHouse(context.Background())
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "anthony.albanese@aph.gov.au", reps[0].Email)
	assert.Equal(t, srv.URL+"/images/mpsL/10001.jpg", reps[0].Photo)
	assert.Equal(t, "10001", reps[0].PersonID)
	assert.Equal(t, "Grayndler", reps[0].District)
	assert.Equal(t, "(02) 9564 3588", reps[0].Phone)
}

func TestOpenAustraliaFetchSenatorsSkipsFailingStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("state") {
		case "Victoria":
			w.Write([]byte(`[{"person_id":"2","name":"Jane Hume","first_name":"Jane","last_name":"Hume"}]`))
		case "ACT":
			w.Write([]byte(`[{"person_id":"3","full_name":"Katy Gallagher","first_name":"Katy","last_name":"Gallagher"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	oa := NewOpenAustralia(testClient(), srv.URL, "secret", zap.NewNop())
	reps, err := oa.FetchSenators(context.Background())
	require.NoError(t, err)
	require.Len(t, reps, 2)
	for _, r := range reps {
		assert.Equal(t, domain.RepTypeSenator, r.Type)
		assert.Equal(t, r.District, r.State)
	}
}

func TestOpenAustraliaWithoutKey(t *testing.T) {
	oa := NewOpenAustralia(testClient(), "http://unused", "", zap.NewNop())
	assert.False(t, oa.Configured())
	_, err := oa.FetchHouse(context.Background())
	require.Error(t, err)
	_, err = oa.FetchSenators(context.Background())
	require.Error(t, err)
}

func TestOpenAustraliaContactURL(t *testing.T) {
	oa := NewOpenAustralia(testClient(), "https://oa.test/", "k", zap.NewNop())
	assert.Equal(t, "https://oa.test/mp/?p=10001", oa.ContactURL(domain.RepTypeMP, "10001"))
	assert.Equal(t, "https://oa.test/senator/?p=3", oa.ContactURL(domain.RepTypeSenator, "3"))
	assert.Empty(t, oa.ContactURL(domain.RepTypeMP, ""))
}

func TestEuroparlFetcherParsesXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meps/en/full-list/xml", r.URL.Path)
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<meps>
  <mep><fullName>Mika AALTOLA</fullName><country>Finland</country>
    <politicalGroup>Group of the European People's Party</politicalGroup>
    <id>256810</id><nationalPoliticalGroup>Kansallinen Kokoomus</nationalPoliticalGroup></mep>
  <mep><fullName></fullName><country>France</country><id>1</id></mep>
  <mep><fullName>José Manuel FERNANDES</fullName><country>Portugal</country><id>96899</id></mep>
</meps>`))
	}))
	defer srv.Close()

	reps, err := NewEuroparlFetcher(testClient(), srv.URL, zap.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, reps, 2)

	assert.Equal(t, "FI", reps[0].MemberState)
	assert.Equal(t, "Finland", reps[0].District)
	assert.Equal(t, "mika.aaltola@europarl.europa.eu", reps[0].Email)
	assert.Equal(t, srv.URL+"/mepphoto/256810.jpg", reps[0].Photo)
	assert.Equal(t, "256810", reps[0].MepID)
	assert.Equal(t, "PT", reps[1].MemberState)
}

func TestMEPEmail(t *testing.T) {
	assert.Equal(t, "jose-manuel.fernandes@europarl.europa.eu", MEPEmail("José Manuel FERNANDES"))
	assert.Equal(t, "ursula.von-der-leyen@europarl.europa.eu", MEPEmail("Ursula VON DER LEYEN"))
	assert.Empty(t, MEPEmail("Madonna"))
}

func TestExtractMEPIDs(t *testing.T) {
	html := []byte(`<html><body>
		<a href="https://www.europarl.europa.eu/meps/en/124806">A</a>
		<a href="/meps/en/197400/SOMEONE/home">B</a>
		<a href="/meps/en/124806">dup</a>
	</body></html>`)
	assert.Equal(t, []string{"124806", "197400"}, ExtractMEPIDs(html))

	raw := []byte(`{"link":"meps/en/55"} data-url="meps/en/66"`)
	assert.Equal(t, []string{"55", "66"}, ExtractMEPIDs(raw))
}

func TestCommitteeScraperToleratesFailedPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case strings.Contains(r.URL.Path, "/afet/"):
			w.Write([]byte(`<a href="/meps/en/1">x</a><a href="/meps/en/2">y</a>`))
		case strings.Contains(r.URL.Path, "/droi/"):
			w.WriteHeader(http.StatusNotFound)
		case strings.Contains(r.URL.Path, "/d-ir/"):
			w.Write([]byte(`<a href="/meps/en/2">y</a>`))
		}
	}))
	defer srv.Close()

	committees, err := NewCommitteeScraper(testClient(), srv.URL, zap.NewNop()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"AFET"}, committees["1"])
	assert.Equal(t, []string{"AFET", "D-IR"}, committees["2"])
}
