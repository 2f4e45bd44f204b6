package models

import "time"

// Course codes marking free trial lessons.
const (
	CourseDemo       = "DEMO"
	CourseNativeDemo = "NATIVE-DEMO"
)

// Lesson is a single teacher lesson, read from the courses module.
type Lesson struct {
	ID                  string    `db:"id" json:"id"`
	TeacherID           string    `db:"teacher_id" json:"teacher_id"`
	StudentID           string    `db:"student_id" json:"student_id"`
	CourseCode          string    `db:"course_code" json:"course_code"`
	LanguageMachineName string    `db:"language_machine_name" json:"language_machine_name"`
	StartedAt           time.Time `db:"started_at" json:"started_at"`
	Finished            bool      `db:"finished" json:"finished"`
}

// TestAssignment is an onboarding test with a due date.
type TestAssignment struct {
	ID      string    `db:"id" json:"id"`
	UserID  string    `db:"user_id" json:"user_id"`
	Asset   string    `db:"asset" json:"asset"`
	DueDate time.Time `db:"due_date" json:"due_date"`
}

// Onboarding test assets assigned to Russian-market teachers.
const (
	TestAssetWebinar1 = "webinar1"
	TestAssetWebinar2 = "webinar2"
)
