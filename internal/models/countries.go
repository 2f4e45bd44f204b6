package models

// countryNames maps ISO country codes to their display names.
var countryNames = map[string]string{
	"AT": "Austria",
	"BY": "Belarus",
	"CZ": "Czech Republic",
	"DE": "Germany",
	"ES": "Spain",
	"FR": "France",
	"GB": "United Kingdom",
	"IT": "Italy",
	"KZ": "Kazakhstan",
	"PL": "Poland",
	"RU": "Russia",
	"SK": "Slovakia",
	"UA": "Ukraine",
	"US": "United States",
}

// countriesCZ overrides display names with their Czech forms for the
// countries that appear on Czech contracts.
var countriesCZ = map[string]string{
	"AT": "Rakousko",
	"BY": "Bělorusko",
	"CZ": "Česká republika",
	"DE": "Německo",
	"ES": "Španělsko",
	"FR": "Francie",
	"GB": "Velká Británie",
	"IT": "Itálie",
	"KZ": "Kazachstán",
	"PL": "Polsko",
	"RU": "Rusko",
	"SK": "Slovensko",
	"UA": "Ukrajina",
	"US": "Spojené státy americké",
}

// CountryName returns the display name for a country code, or the code
// itself when the catalog does not know it.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

// CountryNameCZ returns the Czech display name, consulting the override
// table first and falling back to the regular display name.
func CountryNameCZ(code string) string {
	if name, ok := countriesCZ[code]; ok {
		return name
	}
	return CountryName(code)
}
