package models

import "time"

// DemosMin is the minimum number of finished demo lessons required before
// the conversion ratio is considered meaningful.
const DemosMin = 10

// Payment methods accepted for salary profiles.
const (
	PaymentUnistream = "unistream"
	PaymentPayPal    = "paypal"
	PaymentAccount   = "account"
	PaymentCash      = "cash"
)

// Teacher represents a staff member who delivers lessons.
type Teacher struct {
	ID string `db:"id" json:"id"`
	EmployeeCore
	LanguageCode    string `db:"language_code" json:"language_code"`
	Russian         bool   `db:"russian" json:"russian"`
	Native          bool   `db:"native" json:"native"`
	LanguageSupport bool   `db:"language_support" json:"language_support"`

	Skype         *string `db:"skype" json:"skype,omitempty"`
	SkypePassword *string `db:"skype_password" json:"-"`

	WorkSince   *time.Time `db:"work_since" json:"work_since,omitempty"`
	ContractEnd *time.Time `db:"contract_end" json:"contract_end,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// AdditionalLanguageCodes is loaded from the teacher_languages join table.
	AdditionalLanguageCodes []string `db:"-" json:"additional_language_codes,omitempty"`
}

// AllLanguagesCodes returns the union of the primary language code and all
// additional language codes. Never empty: the primary language is required.
func (t *Teacher) AllLanguagesCodes() []string {
	seen := map[string]struct{}{t.LanguageCode: {}}
	codes := []string{t.LanguageCode}
	for _, code := range t.AdditionalLanguageCodes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// InterfaceLanguage overrides the employee default: teachers on the Russian
// market work in the Russian interface, everyone else in English.
func (t *Teacher) InterfaceLanguage() string {
	if t.Russian {
		return "ru"
	}
	return "en"
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search       string
	Active       *bool
	LanguageCode string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// BasicMaterial is a coursebook file offered to Russian-market teachers,
// addressed by a signed download URL.
type BasicMaterial struct {
	Code string `json:"code"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TeacherMetrics bundles the cached demo-lesson aggregates.
type TeacherMetrics struct {
	FinishedDemoLessons int     `json:"finished_demo_lessons"`
	PaidAfterDemo       int     `json:"paid_after_demo"`
	Conversion          float64 `json:"conversion"`
}
