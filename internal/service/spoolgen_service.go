package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/xuri/excelize/v2"
)

// Destination value that marks a weld as executed in the field.
const fieldDestination = "CAMPO"

// WeldRow is one spool/weld line of a SpoolGen dataset.
type WeldRow struct {
	Tag         string `json:"tag"`
	SpoolName   string `json:"spool_name"`
	Type        string `json:"type"`
	NPS         string `json:"nps"`
	Schedule    string `json:"sch"`
	Thickness   string `json:"thk"`
	Material    string `json:"material"`
	Destination string `json:"destination"`
	Sheet       string `json:"sheet"`
}

// BoltRow is one bolted-joint line of a SpoolGen dataset.
type BoltRow struct {
	Tag       string `json:"tag"`
	SpoolName string `json:"spool_name"`
	NPS       string `json:"nps"`
	Rating    string `json:"rating"`
	BoltSize  string `json:"bolt_size"`
	Sheet     string `json:"sheet"`
}

// TakeoffRow is one material-takeoff line of a SpoolGen dataset.
type TakeoffRow struct {
	SpoolName        string  `json:"spool_name"`
	ItemCode         string  `json:"item_code"`
	Description      string  `json:"description"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	PipingClass      string  `json:"piping_class"`
	NPS              string  `json:"nps"`
	Material         string  `json:"material"`
	FabricationPlace string  `json:"fabrication_place"`
	RequiresPWHT     bool    `json:"requires_pwht"`
	RequiresPainting bool    `json:"requires_painting"`
	Sheet            string  `json:"sheet"`
}

// SpoolGenInput is the full fabrication dataset of one document+revision.
type SpoolGenInput struct {
	IsoNumber      string       `json:"iso_number"`
	RevisionNumber string       `json:"revision_number"`
	Welds          []WeldRow    `json:"welds"`
	Bolts          []BoltRow    `json:"bolts"`
	Materials      []TakeoffRow `json:"materials"`
}

// SpoolGenResult reports the orchestration outcome. Precondition failures
// come back as Success=false, never as a raised error.
type SpoolGenResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	RevisionID      string `json:"revision_id,omitempty"`
	ImpactsComputed bool   `json:"impacts_computed"`
}

// SpoolGenService ingests one document's detailed fabrication dataset:
// validates it against the active revision, diffs it against that revision's
// structure, records impacts, retires the diffed revision and persists the
// new generation under a fresh same-code revision. Unlike the announcement
// importer it stops at the first error.
type SpoolGenService struct {
	isoRepo       *repository.IsometricRepository
	revRepo       *repository.RevisionRepository
	structureRepo *repository.StructureRepository
	impactSvc     *ImpactService
	revisionSvc   *RevisionService
}

// NewSpoolGenService creates a SpoolGen orchestrator.
func NewSpoolGenService(
	isoRepo *repository.IsometricRepository,
	revRepo *repository.RevisionRepository,
	structureRepo *repository.StructureRepository,
	impactSvc *ImpactService,
	revisionSvc *RevisionService,
) *SpoolGenService {
	return &SpoolGenService{
		isoRepo:       isoRepo,
		revRepo:       revRepo,
		structureRepo: structureRepo,
		impactSvc:     impactSvc,
		revisionSvc:   revisionSvc,
	}
}

// Import runs the orchestration for one project document. Every validation
// runs before the first write; a failure during the insert phase is returned
// raw and may leave the new revision partially populated (there is no
// cross-statement transaction at the store).
func (s *SpoolGenService) Import(ctx context.Context, projectID, userID string, input *SpoolGenInput) (*SpoolGenResult, error) {
	iso, err := s.isoRepo.FindByProjectAndCode(ctx, projectID, input.IsoNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &SpoolGenResult{
				Success: false,
				Message: fmt.Sprintf("El isométrico %s no existe en el proyecto; debe anunciarse primero", input.IsoNumber),
			}, nil
		}
		return nil, fmt.Errorf("find isometric: %w", err)
	}

	current, err := s.revRepo.FindLatestVigente(ctx, iso.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &SpoolGenResult{
				Success: false,
				Message: fmt.Sprintf("El isométrico %s no tiene revisión vigente", input.IsoNumber),
			}, nil
		}
		return nil, fmt.Errorf("find current revision: %w", err)
	}

	if current.Code != input.RevisionNumber {
		return &SpoolGenResult{
			Success: false,
			Message: fmt.Sprintf("La revisión %s no coincide con la revisión vigente %s del isométrico %s",
				input.RevisionNumber, current.Code, input.IsoNumber),
		}, nil
	}

	newSpools := deriveSpools(input.Materials)
	newJoints := deriveJoints(input.Welds, input.Bolts)

	oldSpools, err := s.structureRepo.ListSpoolsByRevision(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("list spools: %w", err)
	}
	oldJoints, err := s.structureRepo.ListJointsByRevision(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("list joints: %w", err)
	}

	diff := CalculateDiff(oldSpools, newSpools, oldJoints, newJoints)

	// The new generation lives under a fresh revision with the same code;
	// the ordering rule's created_at tie-break makes it the current one.
	now := time.Now()
	newRev := &entity.Revision{
		ID:                  repository.NewID(),
		IsometricID:         iso.ID,
		Code:                current.Code,
		Status:              entity.RevisionStatusVigente,
		SpoolingStatus:      entity.SpoolingStatusSpooleado,
		SpoolingDate:        &now,
		ClientFileCode:      current.ClientFileCode,
		ClientRevisionCode:  current.ClientRevisionCode,
		TransmittalCode:     current.TransmittalCode,
		TransmittalDate:     current.TransmittalDate,
		TotalJointsCount:    len(newJoints),
		ExecutedJointsCount: current.ExecutedJointsCount,
		PendingJointsCount:  len(newJoints) - current.ExecutedJointsCount,
		CreatedBy:           userID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.revRepo.Create(ctx, newRev); err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}

	// Always recorded, even when empty: the baseline revision is guaranteed
	// to exist at this point. Recorder errors propagate untouched.
	if err := s.impactSvc.SaveImpacts(ctx, newRev.ID, diff); err != nil {
		return nil, err
	}

	if err := s.revRepo.UpdateStatus(ctx, current.ID, entity.RevisionStatusObsoleta); err != nil {
		return nil, fmt.Errorf("retire revision %s: %w", current.Code, err)
	}
	if err := s.isoRepo.UpdateCurrentRevision(ctx, iso.ID, newRev.ID); err != nil {
		return nil, fmt.Errorf("update current revision: %w", err)
	}

	for i := range newSpools {
		newSpools[i].ID = repository.NewID()
		newSpools[i].RevisionID = newRev.ID
		newSpools[i].CreatedAt = now
	}
	if err := s.structureRepo.CreateSpools(ctx, newSpools); err != nil {
		return nil, fmt.Errorf("insert spools: %w", err)
	}
	spoolIDByName := make(map[string]string, len(newSpools))
	for _, spool := range newSpools {
		spoolIDByName[spool.Name] = spool.ID
	}

	for i := range newJoints {
		newJoints[i].ID = repository.NewID()
		newJoints[i].RevisionID = newRev.ID
		newJoints[i].SpoolID = spoolIDByName[newJoints[i].SpoolID]
		newJoints[i].CreatedAt = now
	}
	if err := s.structureRepo.CreateJoints(ctx, newJoints); err != nil {
		return nil, fmt.Errorf("insert joints: %w", err)
	}

	materials := make([]entity.MaterialItem, 0, len(input.Materials))
	for _, row := range input.Materials {
		materials = append(materials, entity.MaterialItem{
			ID:          repository.NewID(),
			RevisionID:  newRev.ID,
			SpoolID:     spoolIDByName[row.SpoolName],
			ItemCode:    row.ItemCode,
			Description: row.Description,
			Quantity:    row.Quantity,
			Unit:        row.Unit,
			PipingClass: row.PipingClass,
			CreatedAt:   now,
		})
	}
	if err := s.structureRepo.CreateMaterials(ctx, materials); err != nil {
		return nil, fmt.Errorf("insert materials: %w", err)
	}

	s.revisionSvc.InvalidateRegisterCache(ctx, projectID)

	return &SpoolGenResult{
		Success:         true,
		Message:         fmt.Sprintf("SpoolGen importado para %s Rev %s", input.IsoNumber, newRev.Code),
		RevisionID:      newRev.ID,
		ImpactsComputed: true,
	}, nil
}

// deriveSpools collects the unique spool set of a takeoff dataset. The first
// row naming a spool wins for its metadata.
func deriveSpools(rows []TakeoffRow) []entity.Spool {
	var spools []entity.Spool
	seen := make(map[string]struct{})
	for _, row := range rows {
		name := strings.TrimSpace(row.SpoolName)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		spools = append(spools, entity.Spool{
			Name:             name,
			Sheet:            row.Sheet,
			PipingClass:      row.PipingClass,
			Diameter:         row.NPS,
			Material:         row.Material,
			FabricationPlace: row.FabricationPlace,
			RequiresPWHT:     row.RequiresPWHT,
			RequiresPainting: row.RequiresPainting,
		})
	}
	return spools
}

// deriveJoints turns weld and bolt rows into joints. The SpoolID field
// temporarily carries the spool name until the insert phase resolves it to a
// row id.
func deriveJoints(welds []WeldRow, bolts []BoltRow) []entity.Joint {
	joints := make([]entity.Joint, 0, len(welds)+len(bolts))
	for _, row := range welds {
		scope := entity.JointScopeShop
		if strings.EqualFold(strings.TrimSpace(row.Destination), fieldDestination) {
			scope = entity.JointScopeField
		}
		joints = append(joints, entity.Joint{
			SpoolID:   strings.TrimSpace(row.SpoolName),
			Tag:       strings.TrimSpace(row.Tag),
			Category:  entity.JointCategoryWeld,
			Type:      row.Type,
			Diameter:  row.NPS,
			Schedule:  row.Schedule,
			Thickness: row.Thickness,
			Material:  row.Material,
			Scope:     scope,
			Sheet:     row.Sheet,
		})
	}
	for _, row := range bolts {
		joints = append(joints, entity.Joint{
			SpoolID:  strings.TrimSpace(row.SpoolName),
			Tag:      strings.TrimSpace(row.Tag),
			Category: entity.JointCategoryBolt,
			Diameter: row.NPS,
			Rating:   row.Rating,
			BoltSize: row.BoltSize,
			Scope:    entity.JointScopeField,
			Sheet:    row.Sheet,
		})
	}
	return joints
}

// ============================================================
// Workbook parsing
// ============================================================

// SpoolGen workbooks carry three sheets. Known names are matched first,
// sheet order is the fallback.
var (
	weldSheetNames = []string{"SOLDADURAS", "WELDS", "UNIONES"}
	boltSheetNames = []string{"PERNOS", "BOLTS"}
	mtoSheetNames  = []string{"MTO", "MATERIALES", "MATERIALS"}
)

// ParseSpoolGenWorkbook reads a SpoolGen .xlsx into the three row
// collections.
func ParseSpoolGenWorkbook(reader io.Reader) (welds []WeldRow, bolts []BoltRow, materials []TakeoffRow, err error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 3 {
		return nil, nil, nil, fmt.Errorf("workbook needs weld, bolt and MTO sheets, got %d", len(sheets))
	}

	weldSheet := pickSheet(sheets, weldSheetNames, 0)
	boltSheet := pickSheet(sheets, boltSheetNames, 1)
	mtoSheet := pickSheet(sheets, mtoSheetNames, 2)

	weldRecords, err := sheetRecords(f, weldSheet)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, record := range weldRecords {
		welds = append(welds, WeldRow{
			Tag:         pick(record, "TAG", "UNION", "WELD"),
			SpoolName:   pick(record, "SPOOL"),
			Type:        pick(record, "TYPE", "TIPO"),
			NPS:         pick(record, "NPS", "DN"),
			Schedule:    pick(record, "SCH", "SCHEDULE"),
			Thickness:   pick(record, "THK", "ESPESOR"),
			Material:    pick(record, "MATERIAL"),
			Destination: pick(record, "DESTINO", "DESTINATION"),
			Sheet:       pick(record, "SHEET", "HOJA"),
		})
	}

	boltRecords, err := sheetRecords(f, boltSheet)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, record := range boltRecords {
		bolts = append(bolts, BoltRow{
			Tag:       pick(record, "TAG", "UNION"),
			SpoolName: pick(record, "SPOOL"),
			NPS:       pick(record, "NPS", "DN"),
			Rating:    pick(record, "RATING"),
			BoltSize:  pick(record, "BOLT SIZE", "PERNO"),
			Sheet:     pick(record, "SHEET", "HOJA"),
		})
	}

	mtoRecords, err := sheetRecords(f, mtoSheet)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, record := range mtoRecords {
		quantity, _ := strconv.ParseFloat(strings.TrimSpace(pick(record, "QTY", "CANTIDAD")), 64)
		materials = append(materials, TakeoffRow{
			SpoolName:        pick(record, "SPOOL"),
			ItemCode:         pick(record, "ITEM CODE", "CODIGO"),
			Description:      pick(record, "DESCRIPTION", "DESCRIPCION"),
			Quantity:         quantity,
			Unit:             pick(record, "UNIT", "UNIDAD"),
			PipingClass:      pick(record, "CLASS", "CLASE"),
			NPS:              pick(record, "NPS", "DN"),
			Material:         pick(record, "MATERIAL"),
			FabricationPlace: pick(record, "FABRICACION", "FABRICATION"),
			RequiresPWHT:     boolCell(pick(record, "PWHT")),
			RequiresPainting: boolCell(pick(record, "PINTURA", "PAINT")),
			Sheet:            pick(record, "SHEET", "HOJA"),
		})
	}
	return welds, bolts, materials, nil
}

func pickSheet(sheets []string, known []string, fallback int) string {
	for _, sheet := range sheets {
		for _, name := range known {
			if strings.EqualFold(strings.TrimSpace(sheet), name) {
				return sheet
			}
		}
	}
	return sheets[fallback]
}

func sheetRecords(f *excelize.File, sheet string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}
	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, label := range header {
			if i < len(row) {
				record[normalizeHeader(label)] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func pick(record map[string]string, labels ...string) string {
	for _, label := range labels {
		if value, ok := record[normalizeHeader(label)]; ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func boolCell(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SI", "SÍ", "YES", "TRUE", "X", "1":
		return true
	default:
		return false
	}
}
