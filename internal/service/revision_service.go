package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/redis/go-redis/v9"
)

const registerCacheTTL = 5 * time.Minute

// RevisionService is the query and lifecycle layer over the versioned
// document hierarchy: isometric -> revisions -> {spools, joints, materials}.
type RevisionService struct {
	isoRepo       *repository.IsometricRepository
	revRepo       *repository.RevisionRepository
	structureRepo *repository.StructureRepository
	rdb           *redis.Client
}

// NewRevisionService creates a revision service.
func NewRevisionService(
	isoRepo *repository.IsometricRepository,
	revRepo *repository.RevisionRepository,
	structureRepo *repository.StructureRepository,
	rdb *redis.Client,
) *RevisionService {
	return &RevisionService{
		isoRepo:       isoRepo,
		revRepo:       revRepo,
		structureRepo: structureRepo,
		rdb:           rdb,
	}
}

// ============================================================
// Revision ordering rule
// ============================================================

// revisionCodeNumber parses a construction revision code. Letter codes are
// preliminary revisions and sort before every numeric code.
func revisionCodeNumber(code string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0, false
	}
	return n, true
}

// compareRevisions orders two revisions: alphabetic codes first
// (lexicographic), then numeric codes by value, ties by creation time.
func compareRevisions(a, b *entity.Revision) int {
	na, aNum := revisionCodeNumber(a.Code)
	nb, bNum := revisionCodeNumber(b.Code)

	switch {
	case aNum && !bNum:
		return 1
	case !aNum && bNum:
		return -1
	case aNum && bNum:
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
	default:
		if a.Code != b.Code {
			if a.Code < b.Code {
				return -1
			}
			return 1
		}
	}

	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	return 0
}

// PickCurrentRevision applies the ordering rule over every revision of one
// isometric, soft-deleted ones included, and returns the last element. Nil
// when the slice is empty.
func PickCurrentRevision(revs []entity.Revision) *entity.Revision {
	if len(revs) == 0 {
		return nil
	}
	sorted := make([]entity.Revision, len(revs))
	copy(sorted, revs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareRevisions(&sorted[i], &sorted[j]) < 0
	})
	return &sorted[len(sorted)-1]
}

// NextRevisionStatus is the state-transition table applied during recompute.
// The latest revision keeps a manual ELIMINADA, otherwise becomes VIGENTE;
// every non-latest revision becomes OBSOLETA, a previously eliminated one
// included. That last transition is intentional: a later import supersedes a
// manual deletion.
func NextRevisionStatus(current string, isLatest bool) string {
	if !isLatest {
		return entity.RevisionStatusObsoleta
	}
	if current == entity.RevisionStatusEliminada {
		return entity.RevisionStatusEliminada
	}
	return entity.RevisionStatusVigente
}

// ============================================================
// Document / revision CRUD
// ============================================================

// GetOrCreateIsometric returns the isometric with the given project+code,
// creating it when absent. Creating an existing document is not an error.
func (s *RevisionService) GetOrCreateIsometric(ctx context.Context, iso *entity.Isometric) (*entity.Isometric, error) {
	existing, err := s.isoRepo.FindByProjectAndCode(ctx, iso.ProjectID, iso.Code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find isometric: %w", err)
	}

	now := time.Now()
	iso.ID = repository.NewID()
	iso.CreatedAt = now
	iso.UpdatedAt = now
	if err := s.isoRepo.Create(ctx, iso); err != nil {
		// Lost a create race on the unique (project, code) index; the winner's
		// row is the document.
		if winner, findErr := s.isoRepo.FindByProjectAndCode(ctx, iso.ProjectID, iso.Code); findErr == nil {
			return winner, nil
		}
		return nil, fmt.Errorf("create isometric: %w", err)
	}
	return iso, nil
}

// CreateRevision inserts a revision under an isometric with an explicit
// initial lifecycle state.
func (s *RevisionService) CreateRevision(ctx context.Context, rev *entity.Revision) (*entity.Revision, error) {
	if _, err := s.isoRepo.FindByID(ctx, rev.IsometricID); err != nil {
		return nil, fmt.Errorf("find isometric: %w", err)
	}
	now := time.Now()
	rev.ID = repository.NewID()
	if rev.Status == "" {
		rev.Status = entity.RevisionStatusVigente
	}
	if rev.SpoolingStatus == "" {
		rev.SpoolingStatus = entity.SpoolingStatusPendiente
	}
	rev.CreatedAt = now
	rev.UpdatedAt = now
	if err := s.revRepo.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}
	return rev, nil
}

// GetIsometric returns one isometric by id.
func (s *RevisionService) GetIsometric(ctx context.Context, id string) (*entity.Isometric, error) {
	return s.isoRepo.FindByID(ctx, id)
}

// ListRevisions returns every revision of an isometric, optionally with its
// attached files.
func (s *RevisionService) ListRevisions(ctx context.Context, isometricID string, withFiles bool) ([]entity.Revision, error) {
	return s.revRepo.ListByIsometric(ctx, isometricID, withFiles)
}

// GetRevisionDetail returns one revision with its spools, joints and
// materials loaded.
func (s *RevisionService) GetRevisionDetail(ctx context.Context, revisionID string) (*entity.Revision, error) {
	return s.revRepo.FindDetail(ctx, revisionID)
}

// EliminateRevision soft-deletes a revision by user action.
func (s *RevisionService) EliminateRevision(ctx context.Context, revisionID string) error {
	if _, err := s.revRepo.FindByID(ctx, revisionID); err != nil {
		return fmt.Errorf("find revision: %w", err)
	}
	return s.revRepo.UpdateStatus(ctx, revisionID, entity.RevisionStatusEliminada)
}

// ============================================================
// Project register
// ============================================================

// RegisterRow is one line of the project revision register: an isometric
// paired with its current revision.
type RegisterRow struct {
	IsometricID     string `json:"isometric_id"`
	Code            string `json:"code"`
	LineNumber      string `json:"line_number"`
	Area            string `json:"area"`
	SubArea         string `json:"sub_area"`
	RevisionID      string `json:"revision_id"`
	RevisionCode    string `json:"revision_code"`
	RevisionStatus  string `json:"revision_status"`
	SpoolingStatus  string `json:"spooling_status"`
	TransmittalCode string `json:"transmittal_code"`
	TotalJoints     int    `json:"total_joints"`
	ExecutedJoints  int    `json:"executed_joints"`
	PendingJoints   int    `json:"pending_joints"`
	ClientFileCode  string `json:"client_file_code"`
	ClientRevision  string `json:"client_revision"`
}

// ListProjectRegister builds the register of every isometric in a project
// with its current revision. Results are cached per project; both importers
// invalidate the cache. The caller's context threads through to the store so
// a superseded listing can be aborted.
func (s *RevisionService) ListProjectRegister(ctx context.Context, projectID string) ([]RegisterRow, error) {
	cacheKey := registerCacheKey(projectID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var rows []RegisterRow
			if json.Unmarshal([]byte(cached), &rows) == nil {
				return rows, nil
			}
		}
	}

	isos, err := s.isoRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list isometrics: %w", err)
	}
	if len(isos) == 0 {
		return []RegisterRow{}, nil
	}

	isoIDs := make([]string, 0, len(isos))
	for _, iso := range isos {
		isoIDs = append(isoIDs, iso.ID)
	}
	revs, err := s.revRepo.ListByIsometricIDs(ctx, isoIDs)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	revsByID := make(map[string]entity.Revision, len(revs))
	for _, rev := range revs {
		revsByID[rev.ID] = rev
	}

	rows := make([]RegisterRow, 0, len(isos))
	for _, iso := range isos {
		row := RegisterRow{
			IsometricID: iso.ID,
			Code:        iso.Code,
			LineNumber:  iso.LineNumber,
			Area:        iso.Area,
			SubArea:     iso.SubArea,
		}
		if rev, ok := revsByID[iso.CurrentRevisionID]; ok {
			row.RevisionID = rev.ID
			row.RevisionCode = rev.Code
			row.RevisionStatus = rev.Status
			row.SpoolingStatus = rev.SpoolingStatus
			row.TransmittalCode = rev.TransmittalCode
			row.TotalJoints = rev.TotalJointsCount
			row.ExecutedJoints = rev.ExecutedJointsCount
			row.PendingJoints = rev.PendingJointsCount
			row.ClientFileCode = rev.ClientFileCode
			row.ClientRevision = rev.ClientRevisionCode
		}
		rows = append(rows, row)
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(rows); err == nil {
			s.rdb.Set(ctx, cacheKey, payload, registerCacheTTL)
		}
	}
	return rows, nil
}

// InvalidateRegisterCache drops the cached register of one project.
func (s *RevisionService) InvalidateRegisterCache(ctx context.Context, projectID string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, registerCacheKey(projectID))
}

func registerCacheKey(projectID string) string {
	return "register:" + projectID
}
