package models

// Language is an entry of the language catalog. Grammatical case forms are
// precomputed by the inflection service and stored alongside the names, so
// title generation is a column lookup rather than a runtime morphology call.
type Language struct {
	Code        string `db:"code" json:"code"`
	MachineName string `db:"machine_name" json:"machine_name"`
	Name        string `db:"name" json:"name"`
	NameRuGent  string `db:"name_ru_gent" json:"name_ru_gent"`
	EnName      string `db:"en_name" json:"en_name"`
	CzGent      string `db:"cz_gent" json:"cz_gent"`
}

// InCase returns the stored form of the language name for a grammatical
// case. Unknown cases fall back to the nominative name.
func (l *Language) InCase(grammaticalCase string) string {
	switch grammaticalCase {
	case "gent":
		return l.NameRuGent
	case "cz_gent":
		return l.CzGent
	default:
		return l.Name
	}
}
