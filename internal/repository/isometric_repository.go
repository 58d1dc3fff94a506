package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"gorm.io/gorm"
)

// IsometricRepository stores the document side of the revision hierarchy.
type IsometricRepository struct {
	db *gorm.DB
}

// NewIsometricRepository creates an isometric repository.
func NewIsometricRepository(db *gorm.DB) *IsometricRepository {
	return &IsometricRepository{db: db}
}

// FindByID looks an isometric up by id.
func (r *IsometricRepository) FindByID(ctx context.Context, id string) (*entity.Isometric, error) {
	var iso entity.Isometric
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&iso).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &iso, nil
}

// FindByProjectAndCode looks an isometric up by its natural key.
func (r *IsometricRepository) FindByProjectAndCode(ctx context.Context, projectID, code string) (*entity.Isometric, error) {
	var iso entity.Isometric
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND code = ?", projectID, code).
		First(&iso).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &iso, nil
}

// FindByProjectAndCodes fetches every isometric of the project whose code is
// in codes. One query: the bulk importer depends on this not degrading into
// a per-row lookup.
func (r *IsometricRepository) FindByProjectAndCodes(ctx context.Context, projectID string, codes []string) ([]entity.Isometric, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var isos []entity.Isometric
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND code IN ?", projectID, codes).
		Find(&isos).Error
	if err != nil {
		return nil, err
	}
	return isos, nil
}

// ListByProject returns the project's isometrics ordered by code.
func (r *IsometricRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Isometric, error) {
	var isos []entity.Isometric
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("code ASC").
		Find(&isos).Error
	if err != nil {
		return nil, err
	}
	return isos, nil
}

// Create inserts one isometric.
func (r *IsometricRepository) Create(ctx context.Context, iso *entity.Isometric) error {
	return r.db.WithContext(ctx).Create(iso).Error
}

// CreateBatch inserts several isometrics, bounded per statement.
func (r *IsometricRepository) CreateBatch(ctx context.Context, isos []entity.Isometric) error {
	if len(isos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&isos, RevisionInsertChunkSize).Error
}

// UpdateCurrentRevision repoints the isometric at its current revision.
func (r *IsometricRepository) UpdateCurrentRevision(ctx context.Context, id, revisionID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Isometric{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"current_revision_id": revisionID,
			"updated_at":          time.Now(),
		}).Error
}
