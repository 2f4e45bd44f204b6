package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

const userColumns = `id, email, first_name, last_name, phone, country, image_path, helpdesk_label,
	is_active, password_hash, created_at, updated_at`

// UserRepository reads the account records staff profiles link to.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// IsInGroup reports whether the user belongs to the named group.
func (r *UserRepository) IsInGroup(ctx context.Context, userID, group string) (bool, error) {
	const query = `SELECT 1 FROM user_group_members m JOIN user_groups g ON g.id = m.group_id
		WHERE m.user_id = $1 AND g.name = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, userID, group); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return true, nil
}
