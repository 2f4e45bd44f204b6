package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/linguaportal/staff-api/internal/models"
	appErrors "github.com/linguaportal/staff-api/pkg/errors"
)

// Cache key prefixes for the demo-lesson aggregates.
const (
	cacheKeyFinishedDemo  = "FINISHED_DEMO__"
	cacheKeyPaidAfterDemo = "PAID_AFTER_DEMO__"
)

type metricsLessonRepository interface {
	CountFinishedDemos(ctx context.Context, teacherID string) (int, error)
	CountPaidAfterDemo(ctx context.Context, teacherID string) (int, error)
}

// TeacherMetricsService computes demo-lesson aggregates and the conversion
// ratio derived from them. The counts are expensive scans over the lessons
// table, so they are cached with a fixed TTL and never invalidated early.
type TeacherMetricsService struct {
	lessons metricsLessonRepository
	cache   *CacheService
	logger  *zap.Logger
}

// NewTeacherMetricsService constructs the service.
func NewTeacherMetricsService(lessons metricsLessonRepository, cache *CacheService, logger *zap.Logger) *TeacherMetricsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherMetricsService{lessons: lessons, cache: cache, logger: logger}
}

// FinishedDemoLessons returns how many demo lessons the teacher finished.
func (s *TeacherMetricsService) FinishedDemoLessons(ctx context.Context, teacherID string) (int, error) {
	return s.cachedCount(ctx, cacheKeyFinishedDemo+teacherID, teacherID, s.lessons.CountFinishedDemos)
}

// PaidAfterDemo returns how many of the teacher's demo students went on to
// buy a course.
func (s *TeacherMetricsService) PaidAfterDemo(ctx context.Context, teacherID string) (int, error) {
	return s.cachedCount(ctx, cacheKeyPaidAfterDemo+teacherID, teacherID, s.lessons.CountPaidAfterDemo)
}

func (s *TeacherMetricsService) cachedCount(ctx context.Context, key, teacherID string, compute func(context.Context, string) (int, error)) (int, error) {
	var cached int
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	count, err := compute(ctx, teacherID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count demo lessons")
	}
	if err := s.cache.Set(ctx, key, count, s.cache.DefaultTTL()); err != nil {
		s.logger.Warn("failed to cache demo aggregate", zap.String("key", key), zap.Error(err))
	}
	return count, nil
}

// Conversion is the share of demo students who paid. Below the minimum
// sample size the ratio is not meaningful and reads as a perfect score.
func (s *TeacherMetricsService) Conversion(ctx context.Context, teacherID string) (float64, error) {
	demos, err := s.FinishedDemoLessons(ctx, teacherID)
	if err != nil {
		return 0, err
	}
	if demos < models.DemosMin {
		return 1.0, nil
	}
	paid, err := s.PaidAfterDemo(ctx, teacherID)
	if err != nil {
		return 0, err
	}
	return conversionRatio(paid, demos), nil
}

// conversionRatio rounds paid/demos to two decimals. Ties round to the even
// digit, so 2 paid over 16 demos reads 0.12.
func conversionRatio(paid, demos int) float64 {
	return math.RoundToEven(float64(paid)/float64(demos)*100) / 100
}

// Metrics bundles all aggregates for a teacher.
func (s *TeacherMetricsService) Metrics(ctx context.Context, teacherID string) (*models.TeacherMetrics, error) {
	demos, err := s.FinishedDemoLessons(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	paid, err := s.PaidAfterDemo(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	conversion := 1.0
	if demos >= models.DemosMin {
		conversion = conversionRatio(paid, demos)
	}
	return &models.TeacherMetrics{
		FinishedDemoLessons: demos,
		PaidAfterDemo:       paid,
		Conversion:          conversion,
	}, nil
}
