// Package locale holds the static language tables the DeLonghi Comfort
// apps ship with. The maps are populated once at init and never mutated.
package locale

import "fmt"

// CountryCode maps a Comfort app language tag to its ISO country code.
func CountryCode(language string) (string, error) {
	code, ok := countryCodes[language]
	if !ok {
		return "", fmt.Errorf("unknown language tag %q", language)
	}
	return code, nil
}

// CountryName maps a language tag to the country name shown in the app.
func CountryName(language string) (string, error) {
	name, ok := countryNames[language]
	if !ok {
		return "", fmt.Errorf("unknown language tag %q", language)
	}
	return name, nil
}

// CommsKey maps a country code to its communication-profile key, used by
// the consent screens for locale-aware marketing preferences.
func CommsKey(countryCode string) (string, error) {
	key, ok := commsKeys[countryCode]
	if !ok {
		return "", fmt.Errorf("no communication profile for country %q", countryCode)
	}
	return key, nil
}

var countryCodes = map[string]string{
	"en":     "GB",
	"pt":     "PT",
	"en-ca":  "CA",
	"fr-ca":  "CA",
	"es-mx":  "MX",
	"es-co":  "CO",
	"es-pe":  "PE",
	"en-us":  "US",
	"pt-br":  "BR",
	"es-cl":  "CL",
	"en-za":  "ZA",
	"es":     "ES",
	"fr":     "FR",
	"lu":     "LU",
	"nl":     "NL",
	"my":     "MY",
	"fr-be":  "BE",
	"nl-inf": "BE",
	"de":     "DE",
	"fr-ch":  "CH",
	"de-inf": "CH",
	"it":     "IT",
	"mt-mt":  "MT",
	"en-mt":  "MT",
	"hr":     "HR",
	"sr":     "RS",
	"sl":     "SI",
	"br":     "BG",
	"el":     "GR",
	"ro":     "RO",
	"tr":     "TR",
	"cs":     "CZ",
	"sk":     "SK",
	"hu":     "HU",
	"de-at":  "AT",
	"uk":     "UA",
	"sv":     "SE",
	"fi":     "FI",
	"no":     "NO",
	"da":     "DK",
	"pl":     "PL",
	"et-ee":  "EE",
	"lt-lt":  "LT",
	"lv-lv":  "LV",
	"en-ae":  "AE",
	"ar-ae":  "AE",
	"en-sg":  "SG",
	"en-my":  "MY",
	"en-au":  "AU",
	"en-nz":  "NZ",
	"ja":     "JP",
	"ko":     "KR",
	"en-kh":  "KH",
	"en-hk":  "HK",
	"en-bd":  "BD",
	"en-th":  "TH",
	"th":     "TH",
	"es-ar":  "AR",
	"ar-eg":  "EG",
	"en-eg":  "EG",
	"en-in":  "IN",
	"en-ir":  "IR",
	"fa":     "IR",
	"en-il":  "IL",
	"en-sa":  "SA",
	"ar-sa":  "SA",
	"en-ie":  "IE",
	"en-id":  "ID",
	"en-ph":  "PH",
	"zh-tw":  "TW",
	"en-om":  "OM",
	"en-qa":  "QA",
	"en-bh":  "BH",
	"en-kw":  "KW",
	"vi":     "VN",
}

var commsKeys = map[string]string{
	"CA": "profiledCommunicationCA",
	"MX": "profiledCommunicationMXCO",
	"CO": "profiledCommunicationMXCO",
	"US": "profiledCommunicationUS",
	"BR": "profiledCommunicationBR",
	"CL": "profiledCommunicationCL",
	"AR": "profiledCommunicationCL",
	"PE": "profiledCommunicationCL",
	"ZA": "profiledCommunicationZA",
	"PT": "profiledCommunicationPT",
	"ES": "profiledCommunicationES",
	"GB": "profiledCommunicationGB",
	"IE": "profiledCommunicationGB",
	"FR": "profiledCommunicationFR",
	"NL": "profiledCommunicationNL",
	"BE": "profiledCommunicationBE",
	"LU": "profiledCommunicationBE",
	"DE": "profiledCommunicationDE",
	"CH": "profiledCommunicationCH",
	"IT": "profiledCommunicationIT",
	"MT": "profiledCommunicationHRRSSIBG",
	"HR": "profiledCommunicationHRRSSIBG",
	"RS": "profiledCommunicationHRRSSIBG",
	"SI": "profiledCommunicationHRRSSIBG",
	"BG": "profiledCommunicationHRRSSIBG",
	"GR": "profiledCommunicationGR",
	"RO": "profiledCommunicationRO",
	"TR": "profiledCommunicationTR",
	"CZ": "profiledCommunicationCZSKHU",
	"SK": "profiledCommunicationCZSKHU",
	"HU": "profiledCommunicationCZSKHU",
	"AT": "profiledCommunicationAT",
	"UA": "profiledCommunicationUA",
	"SE": "profiledCommunicationSEFINODK",
	"FI": "profiledCommunicationSEFINODK",
	"NO": "profiledCommunicationSEFINODK",
	"DK": "profiledCommunicationSEFINODK",
	"PL": "profiledCommunicationPLEELTLV",
	"EE": "profiledCommunicationPLEELTLV",
	"LT": "profiledCommunicationPLEELTLV",
	"LV": "profiledCommunicationPLEELTLV",
	"AE": "profiledCommunicationAE",
	"EG": "profiledCommunicationAE",
	"IN": "profiledCommunicationAE",
	"IR": "profiledCommunicationAE",
	"IL": "profiledCommunicationAE",
	"SA": "profiledCommunicationAE",
	"OM": "profiledCommunicationAE",
	"QA": "profiledCommunicationAE",
	"BH": "profiledCommunicationAE",
	"KW": "profiledCommunicationAE",
	"SG": "profiledCommunicationSG",
	"MY": "profiledCommunicationMY",
	"AU": "profiledCommunicationAU",
	"NZ": "profiledCommunicationNZ",
	"JP": "profiledCommunicationJP",
	"KR": "profiledCommunicationKR",
	"KH": "profiledCommunicationHKBDKHTH",
	"HK": "profiledCommunicationHKBDKHTH",
	"BD": "profiledCommunicationHKBDKHTH",
	"TH": "profiledCommunicationHKBDKHTH",
	"ID": "profiledCommunicationHKBDKHTH",
	"PH": "profiledCommunicationHKBDKHTH",
	"TW": "profiledCommunicationHKBDKHTH",
	"VN": "profiledCommunicationHKBDKHTH",
}

var countryNames = map[string]string{
	"en":     "United Kingdom",
	"pt":     "Portugal",
	"en-ca":  "Canada",
	"fr-ca":  "Canada",
	"es-mx":  "Mexico",
	"es-co":  "Colombia",
	"es-pe":  "Peru",
	"en-us":  "United States",
	"pt-br":  "Brazil",
	"es-cl":  "Chile",
	"en-za":  "South Africa",
	"es":     "Spain",
	"fr":     "France",
	"lu":     "Luxembourg",
	"nl":     "Netherlands",
	"my":     "Malaysia",
	"fr-be":  "Belgium",
	"nl-inf": "Belgium",
	"de":     "Germany",
	"fr-ch":  "Switzerland",
	"de-inf": "Switzerland",
	"it":     "Italy",
	"mt-mt":  "Malta",
	"en-mt":  "Malta",
	"hr":     "Croatia",
	"sr":     "Serbia",
	"sl":     "Slovenia",
	"br":     "Bulgaria",
	"el":     "Greece",
	"ro":     "Romania",
	"tr":     "Turkey",
	"cs":     "Czechia",
	"sk":     "Slovakia",
	"hu":     "Hungary",
	"de-at":  "Austria",
	"uk":     "Ukraine",
	"sv":     "Sweden",
	"fi":     "Finland",
	"no":     "Norway",
	"da":     "Denmark",
	"pl":     "Poland",
	"et-ee":  "Estonia",
	"lt-lt":  "Lithuania",
	"lv-lv":  "Latvia",
	"en-ae":  "United Arab Emirates",
	"ar-ae":  "United Arab Emirates",
	"en-sg":  "Singapore",
	"en-my":  "Malaysia",
	"en-au":  "Australia",
	"en-nz":  "New Zealand",
	"ja":     "Japan",
	"ko":     "South Korea",
	"en-kh":  "Cambodia",
	"en-hk":  "Hong Kong",
	"en-bd":  "Bangladesh",
	"en-th":  "Thailand",
	"th":     "Thailand",
	"es-ar":  "Argentina",
	"ar-eg":  "Egypt",
	"en-eg":  "Egypt",
	"en-in":  "India",
	"en-ir":  "Iran",
	"fa":     "Iran",
	"en-il":  "Israel",
	"en-sa":  "Saudi Arabia",
	"ar-sa":  "Saudi Arabia",
	"en-ie":  "Ireland",
	"en-id":  "Indonesia",
	"en-ph":  "Philippines",
	"zh-tw":  "Taiwan",
	"en-om":  "Oman",
	"en-qa":  "Qatar",
	"en-bh":  "Bahrain",
	"en-kw":  "Kuwait",
	"vi":     "Vietnam",
}
