package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
	"github.com/linguaportal/staff-api/pkg/storage"
)

// basicMaterialPattern matches coursebook module files: module1.pdf,
// module2_theory.pdf and so on.
var basicMaterialPattern = regexp.MustCompile(`^module\d+(_theory)?\.pdf$`)

type materialRepository interface {
	List(ctx context.Context, languageCode string, russian, native bool) ([]models.TeacherMaterial, error)
	FindByID(ctx context.Context, id string) (*models.TeacherMaterial, error)
	Create(ctx context.Context, material *models.TeacherMaterial) error
}

type materialStorage interface {
	Exists(filename string) bool
	ListMatching(dir string, pattern *regexp.Regexp) ([]string, error)
	Open(filename string) (io.ReadCloser, int64, error)
}

// MaterialsService resolves teaching materials: coursebook templates on
// disk for the Russian market, and uploaded per-language attachments.
type MaterialsService struct {
	repo    materialRepository
	storage materialStorage
	signer  *storage.MaterialSigner
	baseURL string
	logger  *zap.Logger
}

// NewMaterialsService constructs the service. baseURL is the public origin
// used to build download links.
func NewMaterialsService(repo materialRepository, store materialStorage, signer *storage.MaterialSigner, baseURL string, logger *zap.Logger) *MaterialsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialsService{
		repo:    repo,
		storage: store,
		signer:  signer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// BasicMaterials scans the coursebook template directories for every
// language the teacher teaches and returns each module file with a signed
// download URL. The signature binds the requesting user, the filename and
// the directory code; it does not expire. Teachers outside the Russian
// market get an empty result regardless of what is on disk.
func (s *MaterialsService) BasicMaterials(ctx context.Context, teacher *models.Teacher) ([]models.BasicMaterial, error) {
	if !teacher.Russian {
		return []models.BasicMaterial{}, nil
	}
	result := []models.BasicMaterial{}
	for _, langCode := range teacher.AllLanguagesCodes() {
		upper := strings.ToUpper(langCode)
		for _, code := range []string{upper + "-BASIC-S", upper + "-BASIC-N"} {
			files, err := s.storage.ListMatching(code, basicMaterialPattern)
			if err != nil {
				s.logger.Warn("failed to scan material directory", zap.String("code", code), zap.Error(err))
				continue
			}
			for _, file := range files {
				sign, err := s.signer.Generate(teacher.UserID, file, code)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign material url")
				}
				result = append(result, models.BasicMaterial{
					Code: code,
					Name: file,
					URL:  fmt.Sprintf("%s/api/v1/materials/ru/%s/%s?sign=%s", s.baseURL, code, file, sign),
				})
			}
		}
	}
	return result, nil
}

// OpenBasicMaterial validates a signed download token against the requested
// file and returns a reader over its content plus the content length. The
// code directory and the filename must both match what was signed.
func (s *MaterialsService) OpenBasicMaterial(code, filename, sign string) (io.ReadCloser, int64, error) {
	userID, signedFile, signedCode, err := s.signer.Parse(sign)
	if err != nil {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	if signedFile != filename || signedCode != code {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	if !basicMaterialPattern.MatchString(filename) {
		return nil, 0, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}
	content, size, err := s.storage.Open(path.Join(code, filename))
	if err != nil {
		return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "material not found")
	}
	s.logger.Debug("material download authorized",
		zap.String("user_id", userID),
		zap.String("code", code),
		zap.String("file", filename))
	return content, size, nil
}

// MaterialView is a teacher material with its resolved display name.
type MaterialView struct {
	models.TeacherMaterial
	Name string `json:"name"`
}

// ListForTeacher returns the uploaded materials matching the teacher's
// language and market flags. Names fall back to a placeholder when the
// stored file is gone.
func (s *MaterialsService) ListForTeacher(ctx context.Context, teacher *models.Teacher) ([]MaterialView, error) {
	materials, err := s.repo.List(ctx, teacher.LanguageCode, teacher.Russian, teacher.Native)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	views := make([]MaterialView, 0, len(materials))
	for i := range materials {
		views = append(views, s.view(materials[i]))
	}
	return views, nil
}

// Get returns one material with its resolved display name.
func (s *MaterialsService) Get(ctx context.Context, id string) (*MaterialView, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	view := s.view(*material)
	return &view, nil
}

// Create registers an uploaded material file.
func (s *MaterialsService) Create(ctx context.Context, material *models.TeacherMaterial) error {
	if err := s.repo.Create(ctx, material); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create material")
	}
	return nil
}

func (s *MaterialsService) view(material models.TeacherMaterial) MaterialView {
	exists := s.storage.Exists(material.FilePath)
	return MaterialView{TeacherMaterial: material, Name: material.DisplayName(exists)}
}
