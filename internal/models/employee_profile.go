package models

import "time"

// EmployeeProfile is a secondary per-user profile kept apart from the
// teacher/manager records, used for administrative staff.
type EmployeeProfile struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	AdditionalInfo *string   `db:"additional_info" json:"additional_info,omitempty"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Position       *string   `db:"position" json:"position,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SalaryProfile holds payout settings, keyed one-to-one with a user.
type SalaryProfile struct {
	ID                     string    `db:"id" json:"id"`
	UserID                 string    `db:"user_id" json:"user_id"`
	Currency               string    `db:"currency" json:"currency"`
	Rate                   float64   `db:"rate" json:"rate"`
	Salary                 float64   `db:"salary" json:"salary"`
	PreferablePM           *string   `db:"preferable_pm" json:"preferable_pm,omitempty"`
	WorkDurationUpperBound *int      `db:"work_duration_upper_bound" json:"work_duration_upper_bound,omitempty"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
}

// DefaultCurrency is assumed when a teacher has no salary profile yet.
const DefaultCurrency = "EUR"

// SalaryTerms is the view of a salary profile exposed on teacher records.
// Missing profiles surface as defaults, not as errors.
type SalaryTerms struct {
	SalaryProfileID        *string `json:"salary_profile_id,omitempty"`
	Currency               string  `json:"currency"`
	Rate                   float64 `json:"rate"`
	Salary                 float64 `json:"salary"`
	PreferablePM           *string `json:"preferable_pm,omitempty"`
	WorkDurationUpperBound *int    `json:"work_duration_upper_bound,omitempty"`
}
