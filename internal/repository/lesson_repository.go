package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LessonRepository provides the read-only lesson and purchase queries the
// teacher metrics and language lookups are built on. The tables belong to
// the courses module.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// HasUnfinished reports whether the teacher has any lesson not yet finished.
func (r *LessonRepository) HasUnfinished(ctx context.Context, teacherID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM lessons WHERE teacher_id = $1 AND finished = FALSE)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, teacherID); err != nil {
		return false, fmt.Errorf("check unfinished lessons: %w", err)
	}
	return exists, nil
}

// CountFinishedDemos counts the teacher's finished demo lessons.
func (r *LessonRepository) CountFinishedDemos(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lessons
		WHERE teacher_id = $1 AND finished = TRUE AND course_code IN ('DEMO', 'NATIVE-DEMO')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count finished demos: %w", err)
	}
	return count, nil
}

// CountPaidAfterDemo counts finished demo lessons whose student went on to
// buy a non-demo course no earlier than the demo started.
func (r *LessonRepository) CountPaidAfterDemo(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM lessons l
		WHERE l.teacher_id = $1 AND l.finished = TRUE AND l.course_code IN ('DEMO', 'NATIVE-DEMO')
		AND EXISTS (
			SELECT 1 FROM student_courses sc
			WHERE sc.student_id = l.student_id
			AND sc.created_at >= l.started_at
			AND sc.course_code NOT IN ('DEMO', 'NATIVE-DEMO')
		)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count paid after demo: %w", err)
	}
	return count, nil
}

// StudentLanguages returns the distinct languages a student has taken
// lessons in with this teacher.
func (r *LessonRepository) StudentLanguages(ctx context.Context, teacherID, studentID string) ([]string, error) {
	const query = `SELECT DISTINCT language_machine_name FROM lessons
		WHERE teacher_id = $1 AND student_id = $2`
	var languages []string
	if err := r.db.SelectContext(ctx, &languages, query, teacherID, studentID); err != nil {
		return nil, fmt.Errorf("list student languages: %w", err)
	}
	return languages, nil
}
