package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	"github.com/linguaportal/staff-api/internal/repository"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
	"github.com/linguaportal/staff-api/pkg/events"
	"github.com/linguaportal/staff-api/pkg/mailer"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
	Update(ctx context.Context, teacher *models.Teacher) error
	Onboard(ctx context.Context, params repository.OnboardParams) error
	Block(ctx context.Context, teacherID, userID string) error
	IsActive(ctx context.Context, teacherID string) (bool, error)
}

type teacherUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	IsInGroup(ctx context.Context, userID, group string) (bool, error)
}

type languageRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Language, error)
	ListByCodes(ctx context.Context, codes []string) ([]models.Language, error)
}

type teacherLessonRepository interface {
	HasUnfinished(ctx context.Context, teacherID string) (bool, error)
	StudentLanguages(ctx context.Context, teacherID, studentID string) ([]string, error)
}

type salaryProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.SalaryProfile, error)
}

type testAssignmentRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.TestAssignment, error)
}

// TeacherService handles teacher profiles, onboarding and blocking.
type TeacherService struct {
	repo      teacherRepository
	users     teacherUserRepository
	languages languageRepository
	lessons   teacherLessonRepository
	salaries  salaryProfileRepository
	tests     testAssignmentRepository
	mailer    mailer.Mailer
	bus       *events.Bus
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs the service.
func NewTeacherService(
	repo teacherRepository,
	users teacherUserRepository,
	languages languageRepository,
	lessons teacherLessonRepository,
	salaries salaryProfileRepository,
	tests testAssignmentRepository,
	mail mailer.Mailer,
	bus *events.Bus,
	validate *validator.Validate,
	logger *zap.Logger,
) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{
		repo:      repo,
		users:     users,
		languages: languages,
		lessons:   lessons,
		salaries:  salaries,
		tests:     tests,
		mailer:    mail,
		bus:       bus,
		validator: validate,
		logger:    logger,
	}
}

// OnboardTeacherRequest describes the onboarding payload. The user account
// must already exist; onboarding attaches the teacher profile to it.
type OnboardTeacherRequest struct {
	UserID                  string     `json:"user_id" validate:"required,uuid"`
	LanguageCode            string     `json:"language_code" validate:"required"`
	AdditionalLanguageCodes []string   `json:"additional_language_codes"`
	Russian                 bool       `json:"russian"`
	Native                  bool       `json:"native"`
	LanguageSupport         bool       `json:"language_support"`
	Description             *string    `json:"description"`
	ContractName            string     `json:"contract_name"`
	PassportNumber          string     `json:"passport_number"`
	Address                 string     `json:"address"`
	PostalCode              string     `json:"postal_code"`
	City                    string     `json:"city"`
	AddressCZ               string     `json:"address_cz"`
	CityCZ                  string     `json:"city_cz"`
	Skype                   *string    `json:"skype"`
	SkypePassword           *string    `json:"skype_password"`
	WorkSince               *time.Time `json:"work_since"`
	ContractEnd             *time.Time `json:"contract_end"`

	// InitialPassword is echoed in the greeting email only; accounts are
	// credentialed by the registration flow.
	InitialPassword string `json:"initial_password"`
	SkipGreeting    bool   `json:"skip_greeting"`
}

// Onboard creates the teacher profile together with its salary profile,
// helpdesk group membership and, for the Russian market, onboarding tests.
// The greeting email goes out after the transaction commits.
func (s *TeacherService) Onboard(ctx context.Context, req OnboardTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid onboarding payload")
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if existing, err := s.repo.FindByUserID(ctx, req.UserID); err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing teacher")
	} else if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already has a teacher profile")
	}
	if _, err := s.languages.FindByCode(ctx, req.LanguageCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown language code")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load language")
	}

	teacher := &models.Teacher{
		EmployeeCore: models.EmployeeCore{
			UserID:         req.UserID,
			Description:    req.Description,
			ContractName:   req.ContractName,
			PassportNumber: req.PassportNumber,
			Address:        req.Address,
			PostalCode:     req.PostalCode,
			City:           req.City,
			AddressCZ:      req.AddressCZ,
			CityCZ:         req.CityCZ,
		},
		LanguageCode:    req.LanguageCode,
		Russian:         req.Russian,
		Native:          req.Native,
		LanguageSupport: req.LanguageSupport,
		Skype:           req.Skype,
		SkypePassword:   req.SkypePassword,
		WorkSince:       req.WorkSince,
		ContractEnd:     req.ContractEnd,
	}
	teacher.AdditionalLanguageCodes = dedupe(req.AdditionalLanguageCodes, req.LanguageCode)

	position, err := s.GeneratePosition(ctx, teacher)
	if err != nil {
		return nil, err
	}
	teacher.Position = &position

	params := repository.OnboardParams{
		Teacher:                 teacher,
		AdditionalLanguageCodes: teacher.AdditionalLanguageCodes,
	}
	if req.Russian {
		params.AssignTests = true
		params.TestAssets = []string{models.TestAssetWebinar1, models.TestAssetWebinar2}
		params.TestDueDate = time.Now().UTC().AddDate(0, 1, 0)
	}
	if err := s.repo.Onboard(ctx, params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to onboard teacher")
	}

	if !req.SkipGreeting {
		s.sendGreeting(ctx, user, req.InitialPassword, teacher.Native)
	}

	s.logger.Info("teacher onboarded",
		zap.String("teacher_id", teacher.ID),
		zap.String("user_id", teacher.UserID),
		zap.String("language_code", teacher.LanguageCode))
	return teacher, nil
}

func (s *TeacherService) sendGreeting(ctx context.Context, user *models.User, password string, native bool) {
	if s.mailer == nil {
		return
	}
	body, err := mailer.RenderGreeting(mailer.GreetingData{
		Name:     user.FirstName,
		Email:    user.Email,
		Password: password,
		Native:   native,
	})
	if err != nil {
		s.logger.Error("failed to render greeting email", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	if err := s.mailer.SendHTML(ctx, user.Email, mailer.GreetingSubject, body); err != nil {
		s.logger.Error("failed to send greeting email", zap.String("user_id", user.ID), zap.Error(err))
	}
}

// List returns teachers matching the filter with pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// TeacherDetail is a teacher together with the display fields derived from
// the linked account.
type TeacherDetail struct {
	models.Teacher
	FullLabel         string `json:"full_label,omitempty"`
	InterfaceLanguage string `json:"interface_language"`
	HelpdeskAccess    bool   `json:"helpdesk_access"`
}

// Detail returns a teacher enriched with the account-derived fields. A
// missing user account leaves them at their defaults.
func (s *TeacherService) Detail(ctx context.Context, id string) (*TeacherDetail, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &TeacherDetail{
		Teacher:           *teacher,
		InterfaceLanguage: teacher.InterfaceLanguage(),
	}
	user, err := s.users.FindByID(ctx, teacher.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return detail, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	detail.FullLabel = user.FullLabel()
	access, err := s.users.IsInGroup(ctx, teacher.UserID, models.HelpdeskGroup)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check helpdesk access")
	}
	detail.HelpdeskAccess = access
	return detail, nil
}

// GetByUserID returns the teacher profile attached to a user account.
func (s *TeacherService) GetByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// GeneratePosition builds the localized job title from the teacher's
// languages: the genitive language names joined with commas, the word for
// "language" pluralized when there is more than one, and a native-speaker
// suffix when applicable.
func (s *TeacherService) GeneratePosition(ctx context.Context, teacher *models.Teacher) (string, error) {
	languages, err := s.languages.ListByCodes(ctx, teacher.AllLanguagesCodes())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load languages")
	}
	if len(languages) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "teacher has no known languages")
	}
	names := make([]string, 0, len(languages))
	for i := range languages {
		names = append(names, languages[i].InCase("gent"))
	}
	joined := strings.Join(names, ", ")
	word := "языка"
	if strings.Contains(joined, ", ") {
		word = "языков"
	}
	position := "Преподаватель " + joined + " " + word
	if teacher.Native {
		position += ", носитель"
	}
	return position, nil
}

// LanguageForStudent picks a language shared by the teacher and the student.
// When they share several, any one of them is returned; when they share
// none, the teacher's primary language wins.
func (s *TeacherService) LanguageForStudent(ctx context.Context, teacher *models.Teacher, studentID string) (string, error) {
	languages, err := s.languages.ListByCodes(ctx, teacher.AllLanguagesCodes())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load languages")
	}
	taught := make(map[string]struct{}, len(languages))
	primary := ""
	for i := range languages {
		taught[languages[i].MachineName] = struct{}{}
		if languages[i].Code == teacher.LanguageCode {
			primary = languages[i].MachineName
		}
	}

	studied, err := s.lessons.StudentLanguages(ctx, teacher.ID, studentID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student languages")
	}
	shared := make(map[string]struct{})
	for _, name := range studied {
		if _, ok := taught[name]; ok {
			shared[name] = struct{}{}
		}
	}
	for name := range shared {
		return name, nil
	}
	return primary, nil
}

// HasUnfinishedLessons reports whether the teacher still has lessons to run.
func (s *TeacherService) HasUnfinishedLessons(ctx context.Context, teacherID string) (bool, error) {
	has, err := s.lessons.HasUnfinished(ctx, teacherID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check unfinished lessons")
	}
	return has, nil
}

// Block disables the teacher: availability is withdrawn, the account is
// deactivated and its credentials invalidated, then a blocked event goes
// out to subscribers. Calling Block on an already blocked teacher is a
// no-op that still publishes the event.
func (s *TeacherService) Block(ctx context.Context, teacherID string) error {
	teacher, err := s.Get(ctx, teacherID)
	if err != nil {
		return err
	}
	if err := s.repo.Block(ctx, teacher.ID, teacher.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to block teacher")
	}
	s.logger.Info("teacher blocked", zap.String("teacher_id", teacher.ID), zap.String("user_id", teacher.UserID))
	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.TeacherBlocked, Payload: teacher})
	}
	return nil
}

// IsBlocked reports whether the teacher's account has been deactivated.
func (s *TeacherService) IsBlocked(ctx context.Context, teacherID string) (bool, error) {
	active, err := s.repo.IsActive(ctx, teacherID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher state")
	}
	return !active, nil
}

// SalaryTerms returns the teacher's payout settings. Teachers without a
// salary profile get the defaults instead of an error.
func (s *TeacherService) SalaryTerms(ctx context.Context, teacher *models.Teacher) (*models.SalaryTerms, error) {
	profile, err := s.salaries.GetByUserID(ctx, teacher.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.SalaryTerms{Currency: models.DefaultCurrency}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load salary profile")
	}
	return &models.SalaryTerms{
		SalaryProfileID:        &profile.ID,
		Currency:               profile.Currency,
		Rate:                   profile.Rate,
		Salary:                 profile.Salary,
		PreferablePM:           profile.PreferablePM,
		WorkDurationUpperBound: profile.WorkDurationUpperBound,
	}, nil
}

// TestAssignments lists the onboarding tests assigned to the teacher's
// account.
func (s *TeacherService) TestAssignments(ctx context.Context, teacher *models.Teacher) ([]models.TestAssignment, error) {
	if s.tests == nil {
		return []models.TestAssignment{}, nil
	}
	assignments, err := s.tests.ListByUser(ctx, teacher.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list test assignments")
	}
	return assignments, nil
}

// Update persists profile changes and regenerates the position when the
// language set changed.
func (s *TeacherService) Update(ctx context.Context, teacher *models.Teacher) error {
	position, err := s.GeneratePosition(ctx, teacher)
	if err != nil {
		return err
	}
	teacher.Position = &position
	if err := s.repo.Update(ctx, teacher); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return nil
}

// dedupe drops duplicates and the primary code from the additional list.
func dedupe(codes []string, primary string) []string {
	seen := map[string]struct{}{primary: {}}
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
