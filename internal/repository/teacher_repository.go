package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/linguaportal/staff-api/internal/models"
)

const teacherColumns = `t.id, t.user_id, t.description, t.position, t.contract_name, t.passport_number,
	t.address, t.postal_code, t.city, t.address_cz, t.city_cz,
	t.language_code, t.russian, t.native, t.language_support,
	t.skype, t.skype_password, t.work_since, t.contract_end, t.created_at, t.updated_at`

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers matching filters along with total count. Activity is
// a property of the linked user account, so the users table is always joined.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers t JOIN users u ON u.id = t.user_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(u.first_name) LIKE $%d OR LOWER(u.last_name) LIKE $%d OR LOWER(u.email) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.LanguageCode != "" {
		conditions = append(conditions, fmt.Sprintf("(t.language_code = $%d OR EXISTS (SELECT 1 FROM teacher_languages tl WHERE tl.teacher_id = t.id AND tl.language_code = $%d))", len(args)+1, len(args)+1))
		args = append(args, filter.LanguageCode)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "first_name"
	}
	allowedSorts := map[string]string{
		"first_name": "u.first_name",
		"created_at": "t.created_at",
		"work_since": "t.work_since",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "u.first_name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", teacherColumns, base, column, order, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	return teachers, total, nil
}

// FindByID fetches a teacher and its additional language codes.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t WHERE t.id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	if err := r.loadAdditionalLanguages(ctx, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUserID fetches the teacher linked to a user account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers t WHERE t.user_id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	if err := r.loadAdditionalLanguages(ctx, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *TeacherRepository) loadAdditionalLanguages(ctx context.Context, teacher *models.Teacher) error {
	const query = `SELECT language_code FROM teacher_languages WHERE teacher_id = $1 ORDER BY language_code`
	if err := r.db.SelectContext(ctx, &teacher.AdditionalLanguageCodes, query, teacher.ID); err != nil {
		return fmt.Errorf("load additional languages: %w", err)
	}
	return nil
}

// Update modifies an existing teacher's profile fields.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET description = :description, position = :position,
		contract_name = :contract_name, passport_number = :passport_number,
		address = :address, postal_code = :postal_code, city = :city,
		address_cz = :address_cz, city_cz = :city_cz,
		language_code = :language_code, russian = :russian, native = :native,
		language_support = :language_support, skype = :skype, skype_password = :skype_password,
		work_since = :work_since, contract_end = :contract_end, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// OnboardParams carries everything the onboarding transaction writes.
type OnboardParams struct {
	Teacher                 *models.Teacher
	AdditionalLanguageCodes []string
	AssignTests             bool
	TestAssets              []string
	TestDueDate             time.Time
}

// Onboard creates a teacher with its dependent records in one transaction:
// the teacher row, its additional languages, a default salary profile,
// helpdesk group membership, and onboarding test assignments. Any failure
// rolls the whole unit back.
func (r *TeacherRepository) Onboard(ctx context.Context, params OnboardParams) (err error) {
	teacher := params.Teacher
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin onboarding transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertTeacher = `INSERT INTO teachers (id, user_id, description, position, contract_name, passport_number,
		address, postal_code, city, address_cz, city_cz,
		language_code, russian, native, language_support,
		skype, skype_password, work_since, contract_end, created_at, updated_at)
		VALUES (:id, :user_id, :description, :position, :contract_name, :passport_number,
		:address, :postal_code, :city, :address_cz, :city_cz,
		:language_code, :russian, :native, :language_support,
		:skype, :skype_password, :work_since, :contract_end, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertTeacher, teacher); err != nil {
		return fmt.Errorf("insert teacher: %w", err)
	}

	for _, code := range params.AdditionalLanguageCodes {
		const insertLanguage = `INSERT INTO teacher_languages (teacher_id, language_code) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err = tx.ExecContext(ctx, insertLanguage, teacher.ID, code); err != nil {
			return fmt.Errorf("attach additional language: %w", err)
		}
	}

	const insertSalaryProfile = `INSERT INTO salary_profiles (id, user_id, currency, rate, salary, created_at)
		VALUES ($1, $2, $3, 0, 0, $4)`
	if _, err = tx.ExecContext(ctx, insertSalaryProfile, uuid.NewString(), teacher.UserID, models.DefaultCurrency, now); err != nil {
		return fmt.Errorf("create salary profile: %w", err)
	}

	if err = r.grantGroup(ctx, tx, teacher.UserID, models.HelpdeskGroup); err != nil {
		return err
	}

	if params.AssignTests {
		for _, asset := range params.TestAssets {
			const insertTest = `INSERT INTO test_assignments (id, user_id, asset, due_date) VALUES ($1, $2, $3, $4)`
			if _, err = tx.ExecContext(ctx, insertTest, uuid.NewString(), teacher.UserID, asset, params.TestDueDate); err != nil {
				return fmt.Errorf("assign onboarding test: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit onboarding: %w", err)
	}
	teacher.AdditionalLanguageCodes = params.AdditionalLanguageCodes
	return nil
}

// grantGroup ensures the named group exists and the user is a member.
func (r *TeacherRepository) grantGroup(ctx context.Context, tx *sqlx.Tx, userID, name string) error {
	const insertGroup = `INSERT INTO user_groups (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`
	if _, err := tx.ExecContext(ctx, insertGroup, uuid.NewString(), name); err != nil {
		return fmt.Errorf("ensure group: %w", err)
	}
	var groupID string
	if err := tx.GetContext(ctx, &groupID, `SELECT id FROM user_groups WHERE name = $1`, name); err != nil {
		return fmt.Errorf("load group: %w", err)
	}
	const insertMember = `INSERT INTO user_group_members (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := tx.ExecContext(ctx, insertMember, userID, groupID); err != nil {
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// Block disables the teacher's availability, deactivates the linked user and
// invalidates its credentials, all in one transaction. Safe to call twice:
// every statement is idempotent.
func (r *TeacherRepository) Block(ctx context.Context, teacherID, userID string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin block transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE availability_templates SET available = FALSE WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("disable availability templates: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `UPDATE availability_slots SET available = FALSE WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("disable availability slots: %w", err)
	}
	const deactivateUser = `UPDATE users SET is_active = FALSE, password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deactivateUser, userID, models.UnusablePassword, now); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit block: %w", err)
	}
	return nil
}

// IsActive reports whether the teacher's linked user account is active.
func (r *TeacherRepository) IsActive(ctx context.Context, teacherID string) (bool, error) {
	const query = `SELECT u.is_active FROM teachers t JOIN users u ON u.id = t.user_id WHERE t.id = $1`
	var active bool
	if err := r.db.GetContext(ctx, &active, query, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher active: %w", err)
	}
	return active, nil
}
