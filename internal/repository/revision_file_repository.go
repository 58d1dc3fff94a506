package repository

import (
	"context"
	"errors"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"gorm.io/gorm"
)

// RevisionFileRepository stores versioned binary attachment rows.
type RevisionFileRepository struct {
	db *gorm.DB
}

// NewRevisionFileRepository creates a revision file repository.
func NewRevisionFileRepository(db *gorm.DB) *RevisionFileRepository {
	return &RevisionFileRepository{db: db}
}

// Create inserts one file row.
func (r *RevisionFileRepository) Create(ctx context.Context, file *entity.RevisionFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindByID looks a file row up by id.
func (r *RevisionFileRepository) FindByID(ctx context.Context, id string) (*entity.RevisionFile, error) {
	var file entity.RevisionFile
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// ListByRevision returns every file row of one revision, newest version of
// each type first.
func (r *RevisionFileRepository) ListByRevision(ctx context.Context, revisionID string) ([]entity.RevisionFile, error) {
	var files []entity.RevisionFile
	err := r.db.WithContext(ctx).
		Where("revision_id = ?", revisionID).
		Order("file_type ASC, version DESC").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MaxVersion returns the current highest version for a (revision, file type)
// pair, 0 when no file of that type exists yet.
func (r *RevisionFileRepository) MaxVersion(ctx context.Context, revisionID, fileType string) (int, error) {
	var maxVersion int
	err := r.db.WithContext(ctx).
		Model(&entity.RevisionFile{}).
		Select("COALESCE(MAX(version), 0)").
		Where("revision_id = ? AND file_type = ?", revisionID, fileType).
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion, nil
}

// ClearPrimary drops the primary flag from every file of the pair. The "at
// most one primary per type" rule is enforced here, not by a constraint.
func (r *RevisionFileRepository) ClearPrimary(ctx context.Context, revisionID, fileType string) error {
	return r.db.WithContext(ctx).
		Model(&entity.RevisionFile{}).
		Where("revision_id = ? AND file_type = ? AND is_primary = ?", revisionID, fileType, true).
		Update("is_primary", false).Error
}
