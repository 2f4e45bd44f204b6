package models

import (
	"path/filepath"
	"time"
)

// MaterialNameMissing is shown when a material's file has vanished from
// storage.
const MaterialNameMissing = "-- file not found --"

// TeacherMaterial ties an uploaded file to a language and audience flags.
type TeacherMaterial struct {
	ID           string    `db:"id" json:"id"`
	LanguageCode string    `db:"language_code" json:"language_code"`
	FilePath     string    `db:"file_path" json:"-"`
	Russian      bool      `db:"russian" json:"russian"`
	Native       bool      `db:"native" json:"native"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DisplayName is the base name of the stored file. The exists check is the
// caller's: pass false when the storage backend no longer has the file and
// the placeholder is returned instead.
func (m *TeacherMaterial) DisplayName(exists bool) string {
	if !exists {
		return MaterialNameMissing
	}
	return filepath.Base(m.FilePath)
}
