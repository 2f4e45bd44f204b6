package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

const managerColumns = `m.id, m.user_id, m.description, m.position, m.contract_name, m.passport_number,
	m.address, m.postal_code, m.city, m.address_cz, m.city_cz, m.created_at, m.updated_at`

// ManagerRepository manages persistence for managers.
type ManagerRepository struct {
	db *sqlx.DB
}

// NewManagerRepository constructs a ManagerRepository.
func NewManagerRepository(db *sqlx.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

// List returns managers, optionally restricted to active user accounts,
// ordered by the linked user's first name.
func (r *ManagerRepository) List(ctx context.Context, activeOnly bool) ([]models.Manager, error) {
	base := "FROM managers m JOIN users u ON u.id = m.user_id"
	var conditions []string
	if activeOnly {
		conditions = append(conditions, "u.is_active = TRUE")
	}
	query := fmt.Sprintf("SELECT %s %s", managerColumns, base)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY u.first_name"

	var managers []models.Manager
	if err := r.db.SelectContext(ctx, &managers, query); err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	return managers, nil
}

// FindByID fetches a manager by ID.
func (r *ManagerRepository) FindByID(ctx context.Context, id string) (*models.Manager, error) {
	query := fmt.Sprintf("SELECT %s FROM managers m WHERE m.id = $1", managerColumns)
	var manager models.Manager
	if err := r.db.GetContext(ctx, &manager, query, id); err != nil {
		return nil, err
	}
	return &manager, nil
}
