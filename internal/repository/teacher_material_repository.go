package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

// TeacherMaterialRepository manages uploaded material records.
type TeacherMaterialRepository struct {
	db *sqlx.DB
}

// NewTeacherMaterialRepository constructs a TeacherMaterialRepository.
func NewTeacherMaterialRepository(db *sqlx.DB) *TeacherMaterialRepository {
	return &TeacherMaterialRepository{db: db}
}

// List returns materials for a language, filtered by the audience flags.
func (r *TeacherMaterialRepository) List(ctx context.Context, languageCode string, russian, native bool) ([]models.TeacherMaterial, error) {
	const query = `SELECT id, language_code, file_path, russian, native, created_at
		FROM teacher_materials
		WHERE language_code = $1 AND russian = $2 AND native = $3
		ORDER BY created_at`
	var materials []models.TeacherMaterial
	if err := r.db.SelectContext(ctx, &materials, query, languageCode, russian, native); err != nil {
		return nil, fmt.Errorf("list teacher materials: %w", err)
	}
	return materials, nil
}

// FindByID fetches a material record.
func (r *TeacherMaterialRepository) FindByID(ctx context.Context, id string) (*models.TeacherMaterial, error) {
	const query = `SELECT id, language_code, file_path, russian, native, created_at
		FROM teacher_materials WHERE id = $1`
	var material models.TeacherMaterial
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// Create inserts a new material record.
func (r *TeacherMaterialRepository) Create(ctx context.Context, material *models.TeacherMaterial) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teacher_materials (id, language_code, file_path, russian, native, created_at)
		VALUES (:id, :language_code, :file_path, :russian, :native, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create teacher material: %w", err)
	}
	return nil
}
