package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

const languageColumns = `code, machine_name, name, name_ru_gent, en_name, cz_gent`

// LanguageRepository reads the language catalog.
type LanguageRepository struct {
	db *sqlx.DB
}

// NewLanguageRepository constructs a LanguageRepository.
func NewLanguageRepository(db *sqlx.DB) *LanguageRepository {
	return &LanguageRepository{db: db}
}

// FindByCode fetches a single catalog entry.
func (r *LanguageRepository) FindByCode(ctx context.Context, code string) (*models.Language, error) {
	query := fmt.Sprintf("SELECT %s FROM languages WHERE code = $1", languageColumns)
	var language models.Language
	if err := r.db.GetContext(ctx, &language, query, code); err != nil {
		return nil, err
	}
	return &language, nil
}

// ListByCodes fetches catalog entries for the given codes, ordered by code
// so generated titles come out stable.
func (r *LanguageRepository) ListByCodes(ctx context.Context, codes []string) ([]models.Language, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf("SELECT %s FROM languages WHERE code IN (?) ORDER BY code", languageColumns), codes)
	if err != nil {
		return nil, fmt.Errorf("build languages query: %w", err)
	}
	query = r.db.Rebind(query)
	var languages []models.Language
	if err := r.db.SelectContext(ctx, &languages, query, args...); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return languages, nil
}
