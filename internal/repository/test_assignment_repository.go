package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

// TestAssignmentRepository reads onboarding test assignments. Writes happen
// inside the onboarding transaction.
type TestAssignmentRepository struct {
	db *sqlx.DB
}

// NewTestAssignmentRepository constructs a TestAssignmentRepository.
func NewTestAssignmentRepository(db *sqlx.DB) *TestAssignmentRepository {
	return &TestAssignmentRepository{db: db}
}

// ListByUser returns the user's test assignments ordered by due date.
func (r *TestAssignmentRepository) ListByUser(ctx context.Context, userID string) ([]models.TestAssignment, error) {
	const query = `SELECT id, user_id, asset, due_date FROM test_assignments
		WHERE user_id = $1 ORDER BY due_date, asset`
	var assignments []models.TestAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, userID); err != nil {
		return nil, fmt.Errorf("list test assignments: %w", err)
	}
	return assignments, nil
}
