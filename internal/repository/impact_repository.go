package repository

import (
	"context"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"gorm.io/gorm"
)

// ImpactRepository appends and reads revision impact records. Impacts are
// write-once: there is no update or delete path.
type ImpactRepository struct {
	db *gorm.DB
}

// NewImpactRepository creates an impact repository.
func NewImpactRepository(db *gorm.DB) *ImpactRepository {
	return &ImpactRepository{db: db}
}

// CreateBatch appends impact records in one insert.
func (r *ImpactRepository) CreateBatch(ctx context.Context, impacts []entity.RevisionImpact) error {
	if len(impacts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&impacts).Error
}

// ListByRevision returns the impacts recorded against one revision.
func (r *ImpactRepository) ListByRevision(ctx context.Context, revisionID string) ([]entity.RevisionImpact, error) {
	var impacts []entity.RevisionImpact
	err := r.db.WithContext(ctx).
		Where("revision_id = ?", revisionID).
		Order("created_at ASC").
		Find(&impacts).Error
	if err != nil {
		return nil, err
	}
	return impacts, nil
}

// ListByIsometric returns the full impact history of an isometric across all
// of its revisions.
func (r *ImpactRepository) ListByIsometric(ctx context.Context, isometricID string) ([]entity.RevisionImpact, error) {
	var impacts []entity.RevisionImpact
	err := r.db.WithContext(ctx).
		Joins("JOIN revisions ON revisions.id = revision_impacts.revision_id").
		Where("revisions.isometric_id = ?", isometricID).
		Order("revision_impacts.created_at ASC").
		Find(&impacts).Error
	if err != nil {
		return nil, err
	}
	return impacts, nil
}
