package models

import "time"

// EmployeeCore holds the profile fields shared by every staff record.
// Teacher and Manager rows embed it instead of inheriting from a base table.
type EmployeeCore struct {
	UserID         string  `db:"user_id" json:"user_id"`
	Description    *string `db:"description" json:"description,omitempty"`
	Position       *string `db:"position" json:"position,omitempty"`
	ContractName   string  `db:"contract_name" json:"contract_name,omitempty"`
	PassportNumber string  `db:"passport_number" json:"passport_number,omitempty"`
	Address        string  `db:"address" json:"address,omitempty"`
	PostalCode     string  `db:"postal_code" json:"postal_code,omitempty"`
	City           string  `db:"city" json:"city,omitempty"`
	AddressCZ      string  `db:"address_cz" json:"address_cz,omitempty"`
	CityCZ         string  `db:"city_cz" json:"city_cz,omitempty"`
}

// InterfaceLanguage is the locale staff members see the portal in.
func (EmployeeCore) InterfaceLanguage() string {
	return "ru"
}

// Manager is an employee record with no extra fields. It exists so that
// managers occupy their own table, separate from teachers.
type Manager struct {
	ID string `db:"id" json:"id"`
	EmployeeCore
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
