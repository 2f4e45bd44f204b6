package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

// EmployeeProfileRepository manages the secondary per-user profile records.
type EmployeeProfileRepository struct {
	db *sqlx.DB
}

// NewEmployeeProfileRepository constructs an EmployeeProfileRepository.
func NewEmployeeProfileRepository(db *sqlx.DB) *EmployeeProfileRepository {
	return &EmployeeProfileRepository{db: db}
}

// Get returns the profile linked to a user, or nil when none exists.
// A missing profile is not an error.
func (r *EmployeeProfileRepository) Get(ctx context.Context, userID string) (*models.EmployeeProfile, error) {
	const query = `SELECT id, user_id, additional_info, description, position, created_at, updated_at
		FROM employee_profiles WHERE user_id = $1`
	var profile models.EmployeeProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load employee profile: %w", err)
	}
	return &profile, nil
}
