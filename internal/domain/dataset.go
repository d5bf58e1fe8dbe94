package domain

import "strings"

// Dataset identifies one cached origin dataset.
type Dataset string

const (
	DatasetFrance             Dataset = "france"
	DatasetSweden             Dataset = "sweden"
	DatasetAustraliaHouse     Dataset = "australiaHouse"
	DatasetAustraliaSenators  Dataset = "australiaSenators"
	DatasetEUMeps             Dataset = "euMeps"
	DatasetEUCommitteeMembers Dataset = "euCommitteeMembers"
)

// AllDatasets is the sync order used when no subset is requested.
var AllDatasets = []Dataset{
	DatasetFrance,
	DatasetSweden,
	DatasetAustraliaHouse,
	DatasetAustraliaSenators,
	DatasetEUMeps,
	DatasetEUCommitteeMembers,
}

func ParseDataset(name string) (Dataset, bool) {
	for _, ds := range AllDatasets {
		if strings.EqualFold(string(ds), strings.TrimSpace(name)) {
			return ds, true
		}
	}
	return "", false
}

// CachedRep is a provider record already shaped like a Representative, plus
// the tags the query path filters on.
type CachedRep struct {
	Name     string  `json:"name"`
	District string  `json:"district"`
	Email    string  `json:"email"`
	Photo    string  `json:"photo"`
	Type     RepType `json:"type,omitempty"`
	Phone    string  `json:"phone,omitempty"`
	Party    string  `json:"party,omitempty"`
	PersonID string  `json:"personId,omitempty"`

	DeptCode string `json:"deptCode,omitempty"` // France
	Valkrets string `json:"valkrets,omitempty"` // Sweden
	State    string `json:"state,omitempty"`    // Australia senators

	MemberState    string `json:"memberState,omitempty"` // EU
	PoliticalGroup string `json:"politicalGroup,omitempty"`
	NationalParty  string `json:"nationalParty,omitempty"`
	MepID          string `json:"mepId,omitempty"`
}

// Committee codes tracked for EU filtering.
const (
	CommitteeAFET = "AFET"
	CommitteeDROI = "DROI"
	CommitteeDIR  = "D-IR"
)

// CommitteeMap associates an MEP id with the committees it sits on.
type CommitteeMap map[string][]string

// Add records id as a member of committee, ignoring duplicates.
func (m CommitteeMap) Add(id, committee string) {
	for _, c := range m[id] {
		if c == committee {
			return
		}
	}
	m[id] = append(m[id], committee)
}

// Label returns the committees of id joined for display, or "".
func (m CommitteeMap) Label(id string) string {
	return strings.Join(m[id], ", ")
}

