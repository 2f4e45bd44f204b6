package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	"github.com/linguaportal/staff-api/pkg/export"
)

func newContractServiceForTest(users *mockUserRepo) *ContractService {
	return NewContractService(users, &mockLanguageRepo{languages: testLanguages()}, export.NewPDFExporter(), zap.NewNop())
}

func TestContractLanguages(t *testing.T) {
	svc := newContractServiceForTest(&mockUserRepo{})

	teacher := &models.Teacher{LanguageCode: "en"}
	teacher.AdditionalLanguageCodes = []string{"de"}

	en, err := svc.ContractLanguages(context.Background(), teacher)
	require.NoError(t, err)
	assert.Equal(t, "English, German", en)

	cz, err := svc.ContractLanguagesCZ(context.Background(), teacher)
	require.NoError(t, err)
	assert.Equal(t, "anglického, německého", cz)
}

func TestRenderContractSheet(t *testing.T) {
	users := &mockUserRepo{users: map[string]*models.User{
		"user-1": {ID: "user-1", FirstName: "Anna", LastName: "Nowak", Country: "PL"},
	}}
	svc := newContractServiceForTest(users)

	workSince := time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC)
	teacher := &models.Teacher{ID: "teacher-1", LanguageCode: "en", WorkSince: &workSince}
	teacher.UserID = "user-1"
	teacher.PassportNumber = "AB1234567"

	data, err := svc.RenderSheet(context.Background(), teacher)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
