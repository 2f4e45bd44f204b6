package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
)

type managerRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Manager, error)
	FindByID(ctx context.Context, id string) (*models.Manager, error)
}

type employeeProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.EmployeeProfile, error)
}

// Thumbnailer produces resized image variants. The actual resizing runs in
// an external media service.
type Thumbnailer interface {
	Thumbnail(path string, width, height int) (string, error)
}

// EmployeeService serves the shared employee surface: managers, secondary
// employee profiles and the user-derived display fields.
type EmployeeService struct {
	managers    managerRepository
	profiles    employeeProfileRepository
	users       teacherUserRepository
	thumbnailer Thumbnailer
	logger      *zap.Logger
}

// NewEmployeeService constructs the service.
func NewEmployeeService(managers managerRepository, profiles employeeProfileRepository, users teacherUserRepository, thumbnailer Thumbnailer, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		managers:    managers,
		profiles:    profiles,
		users:       users,
		thumbnailer: thumbnailer,
		logger:      logger,
	}
}

// Managers lists manager records, active accounts only when activeOnly is
// set, ordered by first name.
func (s *EmployeeService) Managers(ctx context.Context, activeOnly bool) ([]models.Manager, error) {
	managers, err := s.managers.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list managers")
	}
	return managers, nil
}

// Manager returns one manager by id.
func (s *EmployeeService) Manager(ctx context.Context, id string) (*models.Manager, error) {
	manager, err := s.managers.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "manager not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manager")
	}
	return manager, nil
}

// ManagerView is a manager together with the display fields derived from
// the linked account.
type ManagerView struct {
	models.Manager
	FullName          string `json:"full_name,omitempty"`
	FullLabel         string `json:"full_label,omitempty"`
	Photo             string `json:"photo,omitempty"`
	InterfaceLanguage string `json:"interface_language"`
}

// ManagerDetail returns one manager enriched with the account-derived
// fields. A missing user account leaves them at their defaults.
func (s *EmployeeService) ManagerDetail(ctx context.Context, id string) (*ManagerView, error) {
	manager, err := s.Manager(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &ManagerView{
		Manager:           *manager,
		InterfaceLanguage: manager.InterfaceLanguage(),
	}
	user, err := s.users.FindByID(ctx, manager.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return view, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	view.FullName = user.FullName()
	view.FullLabel = user.FullLabel()
	view.Photo = s.Photo(user)
	return view, nil
}

// Profile returns the secondary employee profile for a user, or nil when
// the user has none. Absence is a normal state, not an error.
func (s *EmployeeService) Profile(ctx context.Context, userID string) (*models.EmployeeProfile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee profile")
	}
	return profile, nil
}

// Photo returns a 250x250 center-cropped thumbnail URL of the user's image,
// or empty when the user has no image.
func (s *EmployeeService) Photo(user *models.User) string {
	if user == nil || user.ImagePath == nil || *user.ImagePath == "" {
		return ""
	}
	if s.thumbnailer == nil {
		return *user.ImagePath
	}
	thumb, err := s.thumbnailer.Thumbnail(*user.ImagePath, 250, 250)
	if err != nil {
		s.logger.Warn("failed to thumbnail user image", zap.String("user_id", user.ID), zap.Error(err))
		return ""
	}
	return thumb
}

// ProfilePhoto returns the raw profile image for users that have an
// employee profile, or empty otherwise.
func (s *EmployeeService) ProfilePhoto(ctx context.Context, userID string) (string, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.ImagePath == nil {
		return "", nil
	}
	return *user.ImagePath, nil
}

// CountryName resolves the user's country display name.
func (s *EmployeeService) CountryName(user *models.User) string {
	return models.CountryName(user.Country)
}

// CountryNameCZ resolves the Czech spelling, falling back to the default
// display name for countries without one.
func (s *EmployeeService) CountryNameCZ(user *models.User) string {
	return models.CountryNameCZ(user.Country)
}
