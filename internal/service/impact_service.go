package service

import (
	"context"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
)

// ImpactService turns diff results into append-only impact records.
type ImpactService struct {
	impactRepo *repository.ImpactRepository
}

// NewImpactService creates an impact service.
func NewImpactService(impactRepo *repository.ImpactRepository) *ImpactService {
	return &ImpactService{impactRepo: impactRepo}
}

// SaveImpacts flattens the diff into impact rows tagged with the owning
// revision and appends them in one batch. An empty diff writes nothing.
// Storage errors propagate to the caller untouched.
func (s *ImpactService) SaveImpacts(ctx context.Context, revisionID string, diff *DiffResult) error {
	if diff == nil || diff.Empty() {
		return nil
	}

	now := time.Now()
	impacts := make([]entity.RevisionImpact, 0, diff.Total())

	appendImpacts := func(entries []EntityDiff, entityType, changeType string) {
		for _, e := range entries {
			impacts = append(impacts, entity.RevisionImpact{
				ID:               repository.NewID(),
				RevisionID:       revisionID,
				EntityType:       entityType,
				EntityIdentifier: e.Identifier,
				ChangeType:       changeType,
				Changes:          e.Changes,
				CreatedAt:        now,
			})
		}
	}

	appendImpacts(diff.AddedSpools, entity.ImpactEntitySpool, entity.ImpactChangeNew)
	appendImpacts(diff.RemovedSpools, entity.ImpactEntitySpool, entity.ImpactChangeDelete)
	appendImpacts(diff.ModifiedSpools, entity.ImpactEntitySpool, entity.ImpactChangeModify)
	appendImpacts(diff.AddedJoints, entity.ImpactEntityJoint, entity.ImpactChangeNew)
	appendImpacts(diff.RemovedJoints, entity.ImpactEntityJoint, entity.ImpactChangeDelete)
	appendImpacts(diff.ModifiedJoints, entity.ImpactEntityJoint, entity.ImpactChangeModify)

	return s.impactRepo.CreateBatch(ctx, impacts)
}

// ListByRevision returns the impacts of one revision.
func (s *ImpactService) ListByRevision(ctx context.Context, revisionID string) ([]entity.RevisionImpact, error) {
	return s.impactRepo.ListByRevision(ctx, revisionID)
}

// ListByIsometric returns the accumulated impact history of an isometric.
func (s *ImpactService) ListByIsometric(ctx context.Context, isometricID string) ([]entity.RevisionImpact, error) {
	return s.impactRepo.ListByIsometric(ctx, isometricID)
}
