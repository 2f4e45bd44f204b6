package models

import "time"

// HelpdeskGroup is granted to every teacher during onboarding.
const HelpdeskGroup = "Helpdesk support"

// UnusablePassword is stored when a blocked account must never log in again.
// The prefix can never appear in a real password hash.
const UnusablePassword = "!"

// User is the account record staff profiles link to. Accounts are created
// by the registration flow; this module reads them and flips the two fields
// the blocking workflow owns.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Phone         *string   `db:"phone" json:"phone,omitempty"`
	Country       string    `db:"country" json:"country"`
	ImagePath     *string   `db:"image_path" json:"-"`
	HelpdeskLabel *string   `db:"helpdesk_label" json:"helpdesk_label,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// FullLabel is the first name with the helpdesk label in parentheses when
// the account carries one.
func (u *User) FullLabel() string {
	if u.HelpdeskLabel != nil && *u.HelpdeskLabel != "" {
		return u.FirstName + " (" + *u.HelpdeskLabel + ")"
	}
	return u.FirstName
}

// Group is a named permission group.
type Group struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
