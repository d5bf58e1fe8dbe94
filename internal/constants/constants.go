package constants

import "time"

var CacheTTL = struct {
	Dataset    time.Duration
	RetryAfter time.Duration
}{
	Dataset:    60 * 24 * time.Hour, // datasets and committee map share one retention window
	RetryAfter: 5 * time.Minute,
}

var CacheKeys = struct {
	FranceDeputies     string
	SwedenMPs          string
	AustraliaHouse     string
	AustraliaSenators  string
	EUMeps             string
	EUCommitteeMembers string
	LastSync           string
}{
	FranceDeputies:     "reps:france:deputies",
	SwedenMPs:          "reps:sweden:mps",
	AustraliaHouse:     "reps:australia:house",
	AustraliaSenators:  "reps:australia:senators",
	EUMeps:             "reps:eu:meps",
	EUCommitteeMembers: "reps:eu:committee_members",
	LastSync:           "reps:last_sync",
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var Timeouts = struct {
	Lookup     time.Duration
	LookupSlow time.Duration
	Detail     time.Duration
	Sync       time.Duration
	SyncXML    time.Duration
	SyncState  time.Duration
	LiveHouse  time.Duration
	SyncRunCap time.Duration
}{
	Lookup:     10 * time.Second,
	LookupSlow: 30 * time.Second, // Germany chains several origin calls
	Detail:     10 * time.Second,
	Sync:       30 * time.Second,
	SyncXML:    60 * time.Second,
	SyncState:  15 * time.Second,
	LiveHouse:  10 * time.Second,
	SyncRunCap: 5 * time.Minute,
}

var LookupLimits = struct {
	GermanConstituencies int
	GermanFallbackPeriod int
	EUContacts           int
	CommitteeMinEntries  int
}{
	GermanConstituencies: 5,
	GermanFallbackPeriod: 161, // 21st Bundestag
	EUContacts:           10,
	CommitteeMinEntries:  50,
}

var APIConfig = struct {
	GeocodioURL          string
	USLegislatorsURL     string
	USPhotoURL           string
	PostcodesURL         string
	UKMembersURL         string
	RepresentURL         string
	OpenPLZURL           string
	AbgeordnetenwatchURL string
	WikidataURL          string
	WikimediaUploadURL   string
	NosDeputesURL        string
	AssembleePhotoURL    string
	RiksdagenURL         string
	OpenAustraliaURL     string
	EuroparlURL          string
	UserAgent            string
}{
	GeocodioURL:          "https://api.geocod.io/v1.7",
	USLegislatorsURL:     "https://unitedstates.github.io/congress-legislators/legislators-current.json",
	USPhotoURL:           "https://unitedstates.github.io/images/congress/225x275",
	PostcodesURL:         "https://api.postcodes.io",
	UKMembersURL:         "https://members-api.parliament.uk/api",
	RepresentURL:         "https://represent.opennorth.ca",
	OpenPLZURL:           "https://openplzapi.org",
	AbgeordnetenwatchURL: "https://www.abgeordnetenwatch.de/api/v2",
	WikidataURL:          "https://www.wikidata.org/w/api.php",
	WikimediaUploadURL:   "https://upload.wikimedia.org/wikipedia/commons",
	NosDeputesURL:        "https://www.nosdeputes.fr",
	AssembleePhotoURL:    "https://www.assemblee-nationale.fr/dyn/deputes",
	RiksdagenURL:         "https://data.riksdagen.se",
	OpenAustraliaURL:     "https://www.openaustralia.org.au",
	EuroparlURL:          "https://www.europarl.europa.eu",
	UserAgent:            "Mozilla/5.0 (compatible; RepFinder/1.0)",
}

var AIConfig = struct {
	DefaultGeminiModel string
	DefaultOpenAIModel string
	GenerateTimeout    time.Duration
}{
	DefaultGeminiModel: "gemini-2.5-flash-lite",
	DefaultOpenAIModel: "gpt-5-mini",
	GenerateTimeout:    45 * time.Second,
}
