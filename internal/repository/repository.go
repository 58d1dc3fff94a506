package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// generateID 32-char id from a uuid
func generateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

// NewID exposes id generation to the service layer.
func NewID() string {
	return generateID()
}

// Repositories groups every repository of the engineering module.
type Repositories struct {
	Project      *ProjectRepository
	Isometric    *IsometricRepository
	Revision     *RevisionRepository
	Structure    *StructureRepository
	Impact       *ImpactRepository
	RevisionFile *RevisionFileRepository
}

// NewRepositories wires every repository onto one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:      NewProjectRepository(db),
		Isometric:    NewIsometricRepository(db),
		Revision:     NewRevisionRepository(db),
		Structure:    NewStructureRepository(db),
		Impact:       NewImpactRepository(db),
		RevisionFile: NewRevisionFileRepository(db),
	}
}
