package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
	"github.com/linguaportal/staff-api/pkg/export"
)

// ContractService assembles contract paperwork fields for teachers. Contract
// documents spell out taught languages in English and, for the Czech legal
// entity, in the Czech genitive form.
type ContractService struct {
	users     teacherUserRepository
	languages languageRepository
	exporter  *export.PDFExporter
	logger    *zap.Logger
}

// NewContractService constructs the service.
func NewContractService(users teacherUserRepository, languages languageRepository, exporter *export.PDFExporter, logger *zap.Logger) *ContractService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{users: users, languages: languages, exporter: exporter, logger: logger}
}

// ContractLanguages joins the English names of everything the teacher
// teaches.
func (s *ContractService) ContractLanguages(ctx context.Context, teacher *models.Teacher) (string, error) {
	languages, err := s.languages.ListByCodes(ctx, teacher.AllLanguagesCodes())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load languages")
	}
	names := make([]string, 0, len(languages))
	for i := range languages {
		names = append(names, languages[i].EnName)
	}
	return strings.Join(names, ", "), nil
}

// ContractLanguagesCZ joins the Czech genitive forms for the Czech contract.
func (s *ContractService) ContractLanguagesCZ(ctx context.Context, teacher *models.Teacher) (string, error) {
	languages, err := s.languages.ListByCodes(ctx, teacher.AllLanguagesCodes())
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load languages")
	}
	names := make([]string, 0, len(languages))
	for i := range languages {
		names = append(names, languages[i].InCase("cz_gent"))
	}
	return strings.Join(names, ", "), nil
}

// RenderSheet produces the contract cover page PDF for a teacher.
func (s *ContractService) RenderSheet(ctx context.Context, teacher *models.Teacher) ([]byte, error) {
	user, err := s.users.FindByID(ctx, teacher.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	languages, err := s.ContractLanguages(ctx, teacher)
	if err != nil {
		return nil, err
	}
	sheet := export.ContractSheet{
		FullName:       user.FullName(),
		ContractName:   teacher.ContractName,
		PassportNumber: teacher.PassportNumber,
		Address:        teacher.Address,
		City:           teacher.City,
		PostalCode:     teacher.PostalCode,
		Country:        models.CountryName(user.Country),
		Languages:      languages,
		WorkSince:      formatContractDate(teacher.WorkSince),
		ContractEnd:    formatContractDate(teacher.ContractEnd),
	}
	if sheet.ContractName == "" {
		sheet.ContractName = user.FullName()
	}
	data, err := s.exporter.Render(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render contract sheet")
	}
	return data, nil
}

func formatContractDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02.01.2006")
}
