package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

// SalaryProfileRepository reads payout settings. Profiles are created by
// teacher onboarding and managed by the expenses module.
type SalaryProfileRepository struct {
	db *sqlx.DB
}

// NewSalaryProfileRepository constructs a SalaryProfileRepository.
func NewSalaryProfileRepository(db *sqlx.DB) *SalaryProfileRepository {
	return &SalaryProfileRepository{db: db}
}

// GetByUserID fetches the salary profile for a user. Returns sql.ErrNoRows
// when the user has none; callers translate that into defaults.
func (r *SalaryProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.SalaryProfile, error) {
	const query = `SELECT id, user_id, currency, rate, salary, preferable_pm, work_duration_upper_bound, created_at
		FROM salary_profiles WHERE user_id = $1`
	var profile models.SalaryProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}
