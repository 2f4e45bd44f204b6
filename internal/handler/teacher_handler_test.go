package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/linguaportal/staff-api/internal/middleware"
	"github.com/linguaportal/staff-api/internal/models"
	"github.com/linguaportal/staff-api/internal/repository"
	"github.com/linguaportal/staff-api/internal/service"
	"github.com/linguaportal/staff-api/pkg/events"
	"github.com/linguaportal/staff-api/pkg/export"
	"github.com/linguaportal/staff-api/pkg/storage"
)

type stubTeacherRepo struct {
	teachers map[string]*models.Teacher
	byUser   map[string]*models.Teacher
	blocked  int
}

func (s *stubTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	result := []models.Teacher{}
	for _, teacher := range s.teachers {
		result = append(result, *teacher)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (s *stubTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := s.teachers[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubTeacherRepo) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	if teacher, ok := s.byUser[userID]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error { return nil }

func (s *stubTeacherRepo) Onboard(ctx context.Context, params repository.OnboardParams) error {
	params.Teacher.ID = "new-teacher"
	if s.teachers == nil {
		s.teachers = map[string]*models.Teacher{}
	}
	cp := *params.Teacher
	s.teachers[cp.ID] = &cp
	return nil
}

func (s *stubTeacherRepo) Block(ctx context.Context, teacherID, userID string) error {
	s.blocked++
	return nil
}

func (s *stubTeacherRepo) IsActive(ctx context.Context, teacherID string) (bool, error) {
	return s.blocked == 0, nil
}

type stubUserRepo struct {
	users map[string]*models.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) IsInGroup(ctx context.Context, userID, group string) (bool, error) {
	_, ok := s.users[userID]
	return ok && group == models.HelpdeskGroup, nil
}

type stubLanguageRepo struct{}

func (stubLanguageRepo) FindByCode(ctx context.Context, code string) (*models.Language, error) {
	return &models.Language{Code: code, MachineName: "english", NameRuGent: "английского", EnName: "English"}, nil
}

func (stubLanguageRepo) ListByCodes(ctx context.Context, codes []string) ([]models.Language, error) {
	result := make([]models.Language, 0, len(codes))
	for _, code := range codes {
		result = append(result, models.Language{Code: code, MachineName: "english", NameRuGent: "английского", EnName: "English", CzGent: "anglického"})
	}
	return result, nil
}

type stubLessonRepo struct {
	demos int
	paid  int
}

func (s *stubLessonRepo) HasUnfinished(ctx context.Context, teacherID string) (bool, error) {
	return false, nil
}

func (s *stubLessonRepo) StudentLanguages(ctx context.Context, teacherID, studentID string) ([]string, error) {
	return []string{"english"}, nil
}

func (s *stubLessonRepo) CountFinishedDemos(ctx context.Context, teacherID string) (int, error) {
	return s.demos, nil
}

func (s *stubLessonRepo) CountPaidAfterDemo(ctx context.Context, teacherID string) (int, error) {
	return s.paid, nil
}

type stubSalaryRepo struct{}

func (stubSalaryRepo) GetByUserID(ctx context.Context, userID string) (*models.SalaryProfile, error) {
	return nil, sql.ErrNoRows
}

type stubMaterialRepo struct{}

func (stubMaterialRepo) List(ctx context.Context, languageCode string, russian, native bool) ([]models.TeacherMaterial, error) {
	return []models.TeacherMaterial{}, nil
}

func (stubMaterialRepo) FindByID(ctx context.Context, id string) (*models.TeacherMaterial, error) {
	return nil, sql.ErrNoRows
}

func (stubMaterialRepo) Create(ctx context.Context, material *models.TeacherMaterial) error {
	return nil
}

type stubStorage struct {
	files map[string]struct{}
}

func (s *stubStorage) Exists(filename string) bool {
	_, ok := s.files[filename]
	return ok
}

func (s *stubStorage) ListMatching(dir string, pattern *regexp.Regexp) ([]string, error) {
	return nil, nil
}

func (s *stubStorage) Open(filename string) (io.ReadCloser, int64, error) {
	if _, ok := s.files[filename]; !ok {
		return nil, 0, os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader("%PDF")), 4, nil
}

func buildTestRouter(t *testing.T) (*gin.Engine, *stubTeacherRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	teacher := &models.Teacher{ID: "teacher-1", LanguageCode: "en", Russian: true}
	teacher.UserID = "user-1"
	repo := &stubTeacherRepo{
		teachers: map[string]*models.Teacher{teacher.ID: teacher},
		byUser:   map[string]*models.Teacher{teacher.UserID: teacher},
	}
	users := &stubUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "t@example.com", FirstName: "Anna", LastName: "Nowak", Country: "PL"},
		"00000000-0000-0000-0000-000000000002": {ID: "00000000-0000-0000-0000-000000000002", Email: "n@example.com", FirstName: "Nina"},
	}}
	lessons := &stubLessonRepo{demos: 10, paid: 3}
	logr := zap.NewNop()

	cacheService := service.NewCacheService(nil, nil, time.Hour, logr, false)
	teacherService := service.NewTeacherService(repo, users, stubLanguageRepo{}, lessons, stubSalaryRepo{}, nil, nil, events.NewBus(logr), nil, logr)
	metricsService := service.NewTeacherMetricsService(lessons, cacheService, logr)
	materialsService := service.NewMaterialsService(stubMaterialRepo{}, &stubStorage{}, storage.NewMaterialSigner("secret"), "http://localhost", logr)
	contractService := service.NewContractService(users, stubLanguageRepo{}, export.NewPDFExporter(), logr)

	teacherHandler := NewTeacherHandler(teacherService, metricsService, materialsService, contractService)

	r := gin.New()
	r.Use(internalmiddleware.Metrics(nil))
	teachers := r.Group("/teachers")
	{
		teachers.GET("", teacherHandler.List)
		teachers.POST("", teacherHandler.Onboard)
		teachers.GET("/:id", teacherHandler.Get)
		teachers.POST("/:id/block", teacherHandler.Block)
		teachers.GET("/:id/metrics", teacherHandler.Metrics)
		teachers.GET("/:id/salary-terms", teacherHandler.SalaryTerms)
		teachers.GET("/:id/basic-materials", teacherHandler.BasicMaterials)
		teachers.GET("/:id/contract", teacherHandler.ContractSheet)
	}
	return r, repo
}

func performRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestTeacherRoutes(t *testing.T) {
	router, repo := buildTestRouter(t)

	t.Run("list", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"teacher-1"`)
	})

	t.Run("get found", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers/teacher-1", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"interface_language":"ru"`)
		require.Contains(t, resp.Body.String(), `"helpdesk_access":true`)
	})

	t.Run("get missing", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers/nope", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers/teacher-1/metrics", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)

		var envelope struct {
			Data models.TeacherMetrics `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Equal(t, 10, envelope.Data.FinishedDemoLessons)
		require.Equal(t, 3, envelope.Data.PaidAfterDemo)
		require.Equal(t, 0.3, envelope.Data.Conversion)
	})

	t.Run("salary terms default to EUR", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers/teacher-1/salary-terms", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"currency":"EUR"`)
	})

	t.Run("basic materials empty without files", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers/teacher-1/basic-materials", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.NotContains(t, resp.Body.String(), `"error"`)

		var envelope struct {
			Data []models.BasicMaterial `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Empty(t, envelope.Data)
	})

	t.Run("contract pdf", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/teachers/teacher-1/contract", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	})

	t.Run("block", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/teachers/teacher-1/block", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNoContent, resp.Code)
		require.Equal(t, 1, repo.blocked)
	})

	t.Run("onboard validation error", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/teachers", bytes.NewBufferString(`{"language_code":"en"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("onboard unknown user", func(t *testing.T) {
		payload := `{"user_id":"00000000-0000-0000-0000-000000000099","language_code":"en","skip_greeting":true}`
		req, _ := http.NewRequest(http.MethodPost, "/teachers", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("onboard success", func(t *testing.T) {
		payload := `{"user_id":"00000000-0000-0000-0000-000000000002","language_code":"en","skip_greeting":true}`
		req, _ := http.NewRequest(http.MethodPost, "/teachers", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), "Преподаватель английского языка")
	})
}
