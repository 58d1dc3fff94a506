package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"gorm.io/gorm"
)

// Query shaping limits. Lookups chunk id lists to keep predicates bounded,
// inserts chunk rows to keep payloads bounded.
const (
	RevisionFetchChunkSize  = 200
	RevisionInsertChunkSize = 100
)

// RevisionRepository stores revisions and their lifecycle state.
type RevisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a revision repository.
func NewRevisionRepository(db *gorm.DB) *RevisionRepository {
	return &RevisionRepository{db: db}
}

// FindByID looks a revision up by id.
func (r *RevisionRepository) FindByID(ctx context.Context, id string) (*entity.Revision, error) {
	var rev entity.Revision
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// FindDetail loads a revision with its spools, joints and materials.
func (r *RevisionRepository) FindDetail(ctx context.Context, id string) (*entity.Revision, error) {
	var rev entity.Revision
	err := r.db.WithContext(ctx).
		Preload("Spools").
		Preload("Joints").
		Preload("Materials").
		Where("id = ?", id).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// ListByIsometric returns every revision of one isometric, newest first.
func (r *RevisionRepository) ListByIsometric(ctx context.Context, isometricID string, withFiles bool) ([]entity.Revision, error) {
	var revs []entity.Revision
	query := r.db.WithContext(ctx).
		Where("isometric_id = ?", isometricID).
		Order("created_at DESC")
	if withFiles {
		query = query.Preload("Files")
	}
	err := query.Find(&revs).Error
	if err != nil {
		return nil, err
	}
	return revs, nil
}

// ListByIsometricIDs fetches all revisions of the given isometrics, chunking
// the id list so no single predicate exceeds RevisionFetchChunkSize ids.
func (r *RevisionRepository) ListByIsometricIDs(ctx context.Context, isometricIDs []string) ([]entity.Revision, error) {
	var all []entity.Revision
	for start := 0; start < len(isometricIDs); start += RevisionFetchChunkSize {
		end := start + RevisionFetchChunkSize
		if end > len(isometricIDs) {
			end = len(isometricIDs)
		}
		var revs []entity.Revision
		err := r.db.WithContext(ctx).
			Where("isometric_id IN ?", isometricIDs[start:end]).
			Find(&revs).Error
		if err != nil {
			return nil, err
		}
		all = append(all, revs...)
	}
	return all, nil
}

// FindLatestVigente returns the most recently created VIGENTE revision of an
// isometric. This is the current-flag point lookup, not the full ordering
// rule.
func (r *RevisionRepository) FindLatestVigente(ctx context.Context, isometricID string) (*entity.Revision, error) {
	var rev entity.Revision
	err := r.db.WithContext(ctx).
		Where("isometric_id = ? AND status = ?", isometricID, entity.RevisionStatusVigente).
		Order("created_at DESC").
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// Create inserts one revision.
func (r *RevisionRepository) Create(ctx context.Context, rev *entity.Revision) error {
	return r.db.WithContext(ctx).Create(rev).Error
}

// ChunkError reports the failure of one insert chunk.
type ChunkError struct {
	Chunk int
	Rows  int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d rows): %v", e.Chunk, e.Rows, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// CreateChunked inserts revisions in chunks of chunkSize rows. A failing
// chunk does not stop the remaining chunks; the caller gets back the rows
// that made it in plus one ChunkError per failed chunk.
func (r *RevisionRepository) CreateChunked(ctx context.Context, revs []entity.Revision, chunkSize int) ([]entity.Revision, []*ChunkError) {
	var inserted []entity.Revision
	var chunkErrs []*ChunkError
	chunk := 0
	for start := 0; start < len(revs); start += chunkSize {
		chunk++
		end := start + chunkSize
		if end > len(revs) {
			end = len(revs)
		}
		batch := revs[start:end]
		if err := r.db.WithContext(ctx).Create(&batch).Error; err != nil {
			chunkErrs = append(chunkErrs, &ChunkError{Chunk: chunk, Rows: len(batch), Err: err})
			continue
		}
		inserted = append(inserted, batch...)
	}
	return inserted, chunkErrs
}

// UpdateStatus sets the lifecycle state of one revision.
func (r *RevisionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Revision{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// UpdateStatusBatch sets the lifecycle state of several revisions at once.
func (r *RevisionRepository) UpdateStatusBatch(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Revision{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
