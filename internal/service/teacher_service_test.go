package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	"github.com/linguaportal/staff-api/internal/repository"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
	"github.com/linguaportal/staff-api/pkg/events"
	"github.com/linguaportal/staff-api/pkg/mailer"
)

type mockTeacherRepo struct {
	items        map[string]*models.Teacher
	byUser       map[string]*models.Teacher
	listResult   []models.Teacher
	listTotal    int
	listErr      error
	onboarded    []repository.OnboardParams
	onboardErr   error
	blocked      [][2]string
	activeStates map[string]bool
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := m.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if teacher, ok := m.byUser[userID]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Onboard(ctx context.Context, params repository.OnboardParams) error {
	if m.onboardErr != nil {
		return m.onboardErr
	}
	if params.Teacher.ID == "" {
		params.Teacher.ID = "teacher-1"
	}
	m.onboarded = append(m.onboarded, params)
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	if m.byUser == nil {
		m.byUser = make(map[string]*models.Teacher)
	}
	cp := *params.Teacher
	m.items[cp.ID] = &cp
	m.byUser[cp.UserID] = &cp
	return nil
}

func (m *mockTeacherRepo) Block(ctx context.Context, teacherID, userID string) error {
	m.blocked = append(m.blocked, [2]string{teacherID, userID})
	if m.activeStates == nil {
		m.activeStates = make(map[string]bool)
	}
	m.activeStates[teacherID] = false
	return nil
}

func (m *mockTeacherRepo) IsActive(ctx context.Context, teacherID string) (bool, error) {
	active, ok := m.activeStates[teacherID]
	if !ok {
		return true, nil
	}
	return active, nil
}

type mockUserRepo struct {
	users  map[string]*models.User
	groups map[string][]string
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) IsInGroup(ctx context.Context, userID, group string) (bool, error) {
	for _, name := range m.groups[userID] {
		if name == group {
			return true, nil
		}
	}
	return false, nil
}

type mockLanguageRepo struct {
	languages map[string]models.Language
}

func (m *mockLanguageRepo) FindByCode(ctx context.Context, code string) (*models.Language, error) {
	if lang, ok := m.languages[code]; ok {
		return &lang, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockLanguageRepo) ListByCodes(ctx context.Context, codes []string) ([]models.Language, error) {
	result := make([]models.Language, 0, len(codes))
	for _, code := range codes {
		if lang, ok := m.languages[code]; ok {
			result = append(result, lang)
		}
	}
	return result, nil
}

type mockLessonRepo struct {
	unfinished       bool
	studentLanguages []string
}

func (m *mockLessonRepo) HasUnfinished(ctx context.Context, teacherID string) (bool, error) {
	return m.unfinished, nil
}

func (m *mockLessonRepo) StudentLanguages(ctx context.Context, teacherID, studentID string) ([]string, error) {
	return m.studentLanguages, nil
}

type mockSalaryRepo struct {
	profiles map[string]*models.SalaryProfile
}

func (m *mockSalaryRepo) GetByUserID(ctx context.Context, userID string) (*models.SalaryProfile, error) {
	if profile, ok := m.profiles[userID]; ok {
		cp := *profile
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *mockMailer) SendHTML(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func testLanguages() map[string]models.Language {
	return map[string]models.Language{
		"en": {Code: "en", MachineName: "english", Name: "Английский", NameRuGent: "английского", EnName: "English", CzGent: "anglického"},
		"de": {Code: "de", MachineName: "german", Name: "Немецкий", NameRuGent: "немецкого", EnName: "German", CzGent: "německého"},
	}
}

func newTeacherServiceForTest(repo *mockTeacherRepo, users *mockUserRepo, lessons *mockLessonRepo, salaries *mockSalaryRepo, mail mailer.Mailer, bus *events.Bus) *TeacherService {
	return NewTeacherService(
		repo,
		users,
		&mockLanguageRepo{languages: testLanguages()},
		lessons,
		salaries,
		nil,
		mail,
		bus,
		nil,
		zap.NewNop(),
	)
}

func TestOnboardRussianTeacher(t *testing.T) {
	repo := &mockTeacherRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"11111111-1111-1111-1111-111111111111": {
			ID:        "11111111-1111-1111-1111-111111111111",
			Email:     "anna@example.com",
			FirstName: "Anna",
			LastName:  "Nowak",
		},
	}}
	mail := &mockMailer{}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, mail, nil)

	teacher, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:          "11111111-1111-1111-1111-111111111111",
		LanguageCode:    "en",
		Russian:         true,
		Native:          false,
		InitialPassword: "secret123",
	})
	require.NoError(t, err)
	require.NotNil(t, teacher)

	require.NotNil(t, teacher.Position)
	assert.Equal(t, "Преподаватель английского языка", *teacher.Position)

	require.Len(t, repo.onboarded, 1)
	params := repo.onboarded[0]
	assert.True(t, params.AssignTests)
	assert.Equal(t, []string{models.TestAssetWebinar1, models.TestAssetWebinar2}, params.TestAssets)

	wantDue := time.Now().UTC().AddDate(0, 1, 0)
	assert.WithinDuration(t, wantDue, params.TestDueDate, time.Minute)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "anna@example.com", mail.sent[0].to)
	assert.Equal(t, mailer.GreetingSubject, mail.sent[0].subject)
	assert.Contains(t, mail.sent[0].body, "Anna")
	assert.Contains(t, mail.sent[0].body, "secret123")
}

func TestOnboardNativeTeacherPosition(t *testing.T) {
	repo := &mockTeacherRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"22222222-2222-2222-2222-222222222222": {ID: "22222222-2222-2222-2222-222222222222", Email: "t@example.com", FirstName: "Tom"},
	}}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	teacher, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       "22222222-2222-2222-2222-222222222222",
		LanguageCode: "en",
		Native:       true,
		SkipGreeting: true,
	})
	require.NoError(t, err)
	require.NotNil(t, teacher.Position)
	assert.Equal(t, "Преподаватель английского языка, носитель", *teacher.Position)
}

func TestOnboardMultipleLanguagesPluralizesPosition(t *testing.T) {
	repo := &mockTeacherRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"33333333-3333-3333-3333-333333333333": {ID: "33333333-3333-3333-3333-333333333333", Email: "m@example.com", FirstName: "Marta"},
	}}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	teacher, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:                  "33333333-3333-3333-3333-333333333333",
		LanguageCode:            "en",
		AdditionalLanguageCodes: []string{"de"},
		SkipGreeting:            true,
	})
	require.NoError(t, err)
	require.NotNil(t, teacher.Position)
	assert.Equal(t, "Преподаватель английского, немецкого языков", *teacher.Position)
}

func TestOnboardSkipsTestsOutsideRussianMarket(t *testing.T) {
	repo := &mockTeacherRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"44444444-4444-4444-4444-444444444444": {ID: "44444444-4444-4444-4444-444444444444", Email: "n@example.com", FirstName: "Nils"},
	}}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	_, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       "44444444-4444-4444-4444-444444444444",
		LanguageCode: "de",
		Russian:      false,
		SkipGreeting: true,
	})
	require.NoError(t, err)
	require.Len(t, repo.onboarded, 1)
	assert.False(t, repo.onboarded[0].AssignTests)
	assert.Empty(t, repo.onboarded[0].TestAssets)
}

func TestOnboardSuppressedGreeting(t *testing.T) {
	repo := &mockTeacherRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"55555555-5555-5555-5555-555555555555": {ID: "55555555-5555-5555-5555-555555555555", Email: "q@example.com", FirstName: "Queenie"},
	}}
	mail := &mockMailer{}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, mail, nil)

	_, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       "55555555-5555-5555-5555-555555555555",
		LanguageCode: "en",
		SkipGreeting: true,
	})
	require.NoError(t, err)
	assert.Empty(t, mail.sent)
}

func TestOnboardRejectsDuplicateProfile(t *testing.T) {
	existing := &models.Teacher{ID: "teacher-1"}
	existing.UserID = "66666666-6666-6666-6666-666666666666"
	repo := &mockTeacherRepo{byUser: map[string]*models.Teacher{existing.UserID: existing}}
	users := &mockUserRepo{users: map[string]*models.User{
		existing.UserID: {ID: existing.UserID, Email: "d@example.com", FirstName: "Dana"},
	}}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	_, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       existing.UserID,
		LanguageCode: "en",
		SkipGreeting: true,
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestOnboardUnknownUser(t *testing.T) {
	svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	_, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       "77777777-7777-7777-7777-777777777777",
		LanguageCode: "en",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestOnboardRejectsUnknownLanguage(t *testing.T) {
	users := &mockUserRepo{users: map[string]*models.User{
		"99999999-9999-9999-9999-999999999999": {ID: "99999999-9999-9999-9999-999999999999", Email: "u@example.com", FirstName: "Uli"},
	}}
	svc := newTeacherServiceForTest(&mockTeacherRepo{}, users, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	_, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       "99999999-9999-9999-9999-999999999999",
		LanguageCode: "xx",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestOnboardMailerFailureDoesNotFailOnboarding(t *testing.T) {
	repo := &mockTeacherRepo{}
	users := &mockUserRepo{users: map[string]*models.User{
		"88888888-8888-8888-8888-888888888888": {ID: "88888888-8888-8888-8888-888888888888", Email: "f@example.com", FirstName: "Finn"},
	}}
	mail := &mockMailer{err: errors.New("smtp down")}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, mail, nil)

	teacher, err := svc.Onboard(context.Background(), OnboardTeacherRequest{
		UserID:       "88888888-8888-8888-8888-888888888888",
		LanguageCode: "en",
	})
	require.NoError(t, err)
	assert.NotNil(t, teacher)
}

func TestLanguageForStudent(t *testing.T) {
	teacher := &models.Teacher{ID: "teacher-1", LanguageCode: "en"}
	teacher.AdditionalLanguageCodes = []string{"de"}

	t.Run("shared language wins", func(t *testing.T) {
		lessons := &mockLessonRepo{studentLanguages: []string{"german"}}
		svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, lessons, &mockSalaryRepo{}, &mockMailer{}, nil)

		got, err := svc.LanguageForStudent(context.Background(), teacher, "student-1")
		require.NoError(t, err)
		assert.Equal(t, "german", got)
	})

	t.Run("no shared language falls back to primary", func(t *testing.T) {
		lessons := &mockLessonRepo{studentLanguages: []string{"spanish"}}
		svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, lessons, &mockSalaryRepo{}, &mockMailer{}, nil)

		got, err := svc.LanguageForStudent(context.Background(), teacher, "student-1")
		require.NoError(t, err)
		assert.Equal(t, "english", got)
	})

	t.Run("several shared languages returns one of them", func(t *testing.T) {
		lessons := &mockLessonRepo{studentLanguages: []string{"english", "german"}}
		svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, lessons, &mockSalaryRepo{}, &mockMailer{}, nil)

		got, err := svc.LanguageForStudent(context.Background(), teacher, "student-1")
		require.NoError(t, err)
		assert.Contains(t, []string{"english", "german"}, got)
	})
}

func TestBlockPublishesEvent(t *testing.T) {
	teacher := &models.Teacher{ID: "teacher-1"}
	teacher.UserID = "user-1"
	repo := &mockTeacherRepo{items: map[string]*models.Teacher{teacher.ID: teacher}}
	bus := events.NewBus(zap.NewNop())

	var received []*models.Teacher
	bus.Subscribe(events.TeacherBlocked, func(event events.Event) error {
		received = append(received, event.Payload.(*models.Teacher))
		return nil
	})

	svc := newTeacherServiceForTest(repo, &mockUserRepo{}, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, bus)

	require.NoError(t, svc.Block(context.Background(), "teacher-1"))
	require.Len(t, repo.blocked, 1)
	assert.Equal(t, [2]string{"teacher-1", "user-1"}, repo.blocked[0])
	require.Len(t, received, 1)
	assert.Equal(t, "teacher-1", received[0].ID)

	blocked, err := svc.IsBlocked(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.True(t, blocked)

	// Blocking twice is harmless and still notifies subscribers.
	require.NoError(t, svc.Block(context.Background(), "teacher-1"))
	assert.Len(t, repo.blocked, 2)
	assert.Len(t, received, 2)
}

func TestTeacherDetail(t *testing.T) {
	label := "Anna N."
	repo := &mockTeacherRepo{items: map[string]*models.Teacher{
		"teacher-1": {ID: "teacher-1", EmployeeCore: models.EmployeeCore{UserID: "user-1"}, LanguageCode: "en", Russian: true},
		"teacher-2": {ID: "teacher-2", EmployeeCore: models.EmployeeCore{UserID: "user-2"}, LanguageCode: "de"},
	}}
	users := &mockUserRepo{
		users: map[string]*models.User{
			"user-1": {ID: "user-1", FirstName: "Anna", HelpdeskLabel: &label},
		},
		groups: map[string][]string{"user-1": {models.HelpdeskGroup}},
	}
	svc := newTeacherServiceForTest(repo, users, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	detail, err := svc.Detail(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "Anna (Anna N.)", detail.FullLabel)
	assert.Equal(t, "ru", detail.InterfaceLanguage)
	assert.True(t, detail.HelpdeskAccess)

	detail, err = svc.Detail(context.Background(), "teacher-2")
	require.NoError(t, err)
	assert.Empty(t, detail.FullLabel)
	assert.Equal(t, "en", detail.InterfaceLanguage)
	assert.False(t, detail.HelpdeskAccess)
}

func TestSalaryTerms(t *testing.T) {
	teacher := &models.Teacher{ID: "teacher-1"}
	teacher.UserID = "user-1"

	t.Run("defaults without profile", func(t *testing.T) {
		svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

		terms, err := svc.SalaryTerms(context.Background(), teacher)
		require.NoError(t, err)
		assert.Nil(t, terms.SalaryProfileID)
		assert.Equal(t, models.DefaultCurrency, terms.Currency)
		assert.Zero(t, terms.Rate)
		assert.Zero(t, terms.Salary)
		assert.Nil(t, terms.PreferablePM)
	})

	t.Run("profile values", func(t *testing.T) {
		pm := models.PaymentPayPal
		salaries := &mockSalaryRepo{profiles: map[string]*models.SalaryProfile{
			"user-1": {ID: "sp-1", UserID: "user-1", Currency: "USD", Rate: 12.5, Salary: 900, PreferablePM: &pm},
		}}
		svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, &mockLessonRepo{}, salaries, &mockMailer{}, nil)

		terms, err := svc.SalaryTerms(context.Background(), teacher)
		require.NoError(t, err)
		require.NotNil(t, terms.SalaryProfileID)
		assert.Equal(t, "sp-1", *terms.SalaryProfileID)
		assert.Equal(t, "USD", terms.Currency)
		assert.Equal(t, 12.5, terms.Rate)
		assert.Equal(t, 900.0, terms.Salary)
		require.NotNil(t, terms.PreferablePM)
		assert.Equal(t, models.PaymentPayPal, *terms.PreferablePM)
	})
}

func TestHasUnfinishedLessons(t *testing.T) {
	svc := newTeacherServiceForTest(&mockTeacherRepo{}, &mockUserRepo{}, &mockLessonRepo{unfinished: true}, &mockSalaryRepo{}, &mockMailer{}, nil)

	has, err := svc.HasUnfinishedLessons(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestListClampsPagination(t *testing.T) {
	repo := &mockTeacherRepo{listResult: []models.Teacher{{ID: "teacher-1"}}, listTotal: 1}
	svc := newTeacherServiceForTest(repo, &mockUserRepo{}, &mockLessonRepo{}, &mockSalaryRepo{}, &mockMailer{}, nil)

	rows, pagination, err := svc.List(context.Background(), models.TeacherFilter{Page: 0, PageSize: -5})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)
}
