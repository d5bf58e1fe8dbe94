package geo

// swedenValkrets maps the first two digits of a Swedish postal code to the
// Riksdag electoral district (valkrets).
var swedenValkrets = map[string]string{
	"10": "Stockholms kommun", "11": "Stockholms kommun", "12": "Stockholms kommun",
	"13": "Stockholms län", "14": "Stockholms län", "15": "Stockholms län",
	"16": "Stockholms län", "17": "Stockholms län", "18": "Stockholms län", "19": "Stockholms län",

	"74": "Uppsala län", "75": "Uppsala län", "76": "Uppsala län",

	"61": "Södermanlands län", "63": "Södermanlands län", "64": "Södermanlands län",

	"58": "Östergötlands län", "59": "Östergötlands län", "60": "Östergötlands län",

	"33": "Jönköpings län", "34": "Jönköpings län", "56": "Jönköpings län",

	"35": "Kronobergs län", "36": "Kronobergs län",

	"38": "Kalmar län", "39": "Kalmar län", "57": "Kalmar län",

	"62": "Gotlands län",

	"37": "Blekinge län",

	"20": "Malmö kommun", "21": "Malmö kommun",
	"22": "Skåne läns södra", "23": "Skåne läns södra", "24": "Skåne läns södra",
	"25": "Skåne läns västra", "26": "Skåne läns västra",
	"27": "Skåne läns norra och östra", "28": "Skåne läns norra och östra", "29": "Skåne läns norra och östra",

	"30": "Hallands län", "31": "Hallands län", "32": "Hallands län",

	"40": "Göteborgs kommun", "41": "Göteborgs kommun", "42": "Göteborgs kommun",
	"43": "Västra Götalands läns västra", "44": "Västra Götalands läns västra", "45": "Västra Götalands läns västra",
	"46": "Västra Götalands läns norra", "47": "Västra Götalands läns norra",
	"50": "Västra Götalands läns östra", "51": "Västra Götalands läns östra", "52": "Västra Götalands läns östra",
	"53": "Västra Götalands läns södra", "54": "Västra Götalands läns södra",

	"65": "Värmlands län", "66": "Värmlands län", "67": "Värmlands län", "68": "Värmlands län", "69": "Värmlands län",

	"70": "Örebro län", "71": "Örebro län",

	"72": "Västmanlands län", "73": "Västmanlands län",

	"77": "Dalarnas län", "78": "Dalarnas län", "79": "Dalarnas län", "80": "Dalarnas län",

	"81": "Gävleborgs län", "82": "Gävleborgs län",

	"83": "Jämtlands län", "84": "Jämtlands län",

	"85": "Västernorrlands län", "86": "Västernorrlands län", "87": "Västernorrlands län", "88": "Västernorrlands län", "89": "Västernorrlands län",

	"90": "Västerbottens län", "91": "Västerbottens län", "92": "Västerbottens län", "93": "Västerbottens län",

	"94": "Norrbottens län", "95": "Norrbottens län", "96": "Norrbottens län", "97": "Norrbottens län", "98": "Norrbottens län",
}

type postcodeRange struct {
	lo, hi int
}

type stateRanges struct {
	state  string
	ranges []postcodeRange
}

// australiaStates is checked in order. ACT precedes NSW because 2600-2639
// sits inside the NSW block.
var australiaStates = []stateRanges{
	{"ACT", []postcodeRange{{200, 299}, {2600, 2639}}},
	{"NSW", []postcodeRange{{1000, 2599}, {2640, 2999}}},
	{"Victoria", []postcodeRange{{3000, 3999}, {8000, 8999}}},
	{"Queensland", []postcodeRange{{4000, 4999}, {9000, 9999}}},
	{"SA", []postcodeRange{{5000, 5999}}},
	{"WA", []postcodeRange{{6000, 6999}}},
	{"Tasmania", []postcodeRange{{7000, 7999}}},
	{"NT", []postcodeRange{{800, 999}}},
}

// AustraliaStateCodes are the OpenAustralia state parameters in the order
// the senators sync walks them, paired with the label used in cached records.
var AustraliaStateCodes = []struct {
	Code  string
	Label string
}{
	{"NSW", "NSW"},
	{"Victoria", "Victoria"},
	{"Queensland", "Queensland"},
	{"WA", "WA"},
	{"SA", "SA"},
	{"Tasmania", "Tasmania"},
	{"ACT", "ACT"},
	{"NT", "NT"},
}

var euMemberStates = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true, "DK": true,
	"EE": true, "FI": true, "FR": true, "DE": true, "GR": true, "HU": true, "IE": true,
	"IT": true, "LV": true, "LT": true, "LU": true, "MT": true, "NL": true, "PL": true,
	"PT": true, "RO": true, "SK": true, "SI": true, "ES": true, "SE": true,
}

// euCountryCodes maps the country names used in the Parliament's MEP list to
// ISO codes.
var euCountryCodes = map[string]string{
	"Austria": "AT", "Belgium": "BE", "Bulgaria": "BG", "Croatia": "HR",
	"Cyprus": "CY", "Czech Republic": "CZ", "Czechia": "CZ", "Denmark": "DK",
	"Estonia": "EE", "Finland": "FI", "France": "FR", "Germany": "DE",
	"Greece": "GR", "Hungary": "HU", "Ireland": "IE", "Italy": "IT",
	"Latvia": "LV", "Lithuania": "LT", "Luxembourg": "LU", "Malta": "MT",
	"Netherlands": "NL", "Poland": "PL", "Portugal": "PT", "Romania": "RO",
	"Slovakia": "SK", "Slovenia": "SI", "Spain": "ES", "Sweden": "SE",
}

// EUCountryCode returns the ISO code for a member-state name, or "".
func EUCountryCode(name string) string {
	return euCountryCodes[name]
}
