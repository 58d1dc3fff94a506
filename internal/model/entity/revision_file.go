package entity

import (
	"time"
)

// RevisionFile is a versioned binary attachment of a revision. Version
// numbers grow monotonically per (revision, file type); at most one file per
// type carries the primary flag. Rows are never deleted, only superseded.
type RevisionFile struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	RevisionID   string    `json:"revision_id" gorm:"size:32;not null;index"`
	FileType     string    `json:"file_type" gorm:"size:8;not null"`
	StoragePath  string    `json:"storage_path" gorm:"size:512;not null"`
	OriginalName string    `json:"original_name" gorm:"size:256;not null"`
	Version      int       `json:"version" gorm:"not null;default:1"`
	IsPrimary    bool      `json:"is_primary" gorm:"not null;default:false"`
	Size         int64     `json:"size" gorm:"not null;default:0"`
	MimeType     string    `json:"mime_type" gorm:"size:128"`
	UploadedBy   string    `json:"uploaded_by" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`

	Revision *Revision `json:"revision,omitempty" gorm:"foreignKey:RevisionID"`
}

func (RevisionFile) TableName() string {
	return "revision_files"
}

// Revision file type constants
const (
	FileTypePDF   = "pdf"
	FileTypeIDF   = "idf"
	FileTypeDWG   = "dwg"
	FileTypeOther = "other"
)
