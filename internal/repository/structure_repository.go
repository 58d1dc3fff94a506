package repository

import (
	"context"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"gorm.io/gorm"
)

// StructureRepository stores the structural children of a revision: spools,
// joints and bill-of-materials lines.
type StructureRepository struct {
	db *gorm.DB
}

// NewStructureRepository creates a structure repository.
func NewStructureRepository(db *gorm.DB) *StructureRepository {
	return &StructureRepository{db: db}
}

// ListSpoolsByRevision returns the spools of one revision.
func (r *StructureRepository) ListSpoolsByRevision(ctx context.Context, revisionID string) ([]entity.Spool, error) {
	var spools []entity.Spool
	err := r.db.WithContext(ctx).
		Where("revision_id = ?", revisionID).
		Order("name ASC").
		Find(&spools).Error
	if err != nil {
		return nil, err
	}
	return spools, nil
}

// ListJointsByRevision returns the joints of one revision.
func (r *StructureRepository) ListJointsByRevision(ctx context.Context, revisionID string) ([]entity.Joint, error) {
	var joints []entity.Joint
	err := r.db.WithContext(ctx).
		Where("revision_id = ?", revisionID).
		Order("tag ASC").
		Find(&joints).Error
	if err != nil {
		return nil, err
	}
	return joints, nil
}

// ListMaterialsByRevision returns the BOM lines of one revision.
func (r *StructureRepository) ListMaterialsByRevision(ctx context.Context, revisionID string) ([]entity.MaterialItem, error) {
	var materials []entity.MaterialItem
	err := r.db.WithContext(ctx).
		Where("revision_id = ?", revisionID).
		Order("item_code ASC").
		Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}

// CreateSpools batch-inserts spools.
func (r *StructureRepository) CreateSpools(ctx context.Context, spools []entity.Spool) error {
	if len(spools) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&spools, RevisionInsertChunkSize).Error
}

// CreateJoints batch-inserts joints.
func (r *StructureRepository) CreateJoints(ctx context.Context, joints []entity.Joint) error {
	if len(joints) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&joints, RevisionInsertChunkSize).Error
}

// CreateMaterials batch-inserts BOM lines.
func (r *StructureRepository) CreateMaterials(ctx context.Context, materials []entity.MaterialItem) error {
	if len(materials) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&materials, RevisionInsertChunkSize).Error
}
