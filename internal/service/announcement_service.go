package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/xuri/excelize/v2"
)

// AnnouncementRow is one normalized line of a revision announcement batch.
type AnnouncementRow struct {
	IsoNumber           string     `json:"iso_number"`
	LineNumber          string     `json:"line_number"`
	RevisionNumber      string     `json:"revision_number"`
	LineType            string     `json:"line_type"`
	Area                string     `json:"area"`
	SubArea             string     `json:"sub_area"`
	ClientFileCode      string     `json:"client_file_code"`
	ClientRevisionCode  string     `json:"client_revision_code"`
	TransmittalCode     string     `json:"transmittal_code"`
	TransmittalDate     *time.Time `json:"transmittal_date"`
	SpoolingStatus      string     `json:"spooling_status"`
	SpoolingDate        *time.Time `json:"spooling_date"`
	SpoolingSentDate    *time.Time `json:"spooling_sent_date"`
	TotalJointsCount    int        `json:"total_joints_count"`
	ExecutedJointsCount int        `json:"executed_joints_count"`
	PendingJointsCount  int        `json:"pending_joints_count"`
}

// ImportResult summarizes a bulk import run. Details carries one line per
// inserted row, skipped row and failed chunk; it is rendered to the user
// as-is.
type ImportResult struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Errors    int      `json:"errors"`
	Details   []string `json:"details"`
}

// AnnouncementService is the bulk revision announcement importer. It is
// built to run to completion despite per-chunk failures: announcement rows
// are independent of each other.
type AnnouncementService struct {
	isoRepo     *repository.IsometricRepository
	revRepo     *repository.RevisionRepository
	revisionSvc *RevisionService
}

// NewAnnouncementService creates an announcement importer.
func NewAnnouncementService(
	isoRepo *repository.IsometricRepository,
	revRepo *repository.RevisionRepository,
	revisionSvc *RevisionService,
) *AnnouncementService {
	return &AnnouncementService{
		isoRepo:     isoRepo,
		revRepo:     revRepo,
		revisionSvc: revisionSvc,
	}
}

// Import ingests a batch of announcement rows for one project: upserts
// isometrics, stages and inserts new revisions in bounded chunks, then
// recomputes the current revision of every touched isometric. Untouched
// isometrics are never rewritten.
func (s *AnnouncementService) Import(ctx context.Context, projectID, userID string, rows []AnnouncementRow) *ImportResult {
	result := &ImportResult{Details: []string{}}

	valid := make([]AnnouncementRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.IsoNumber) == "" {
			continue
		}
		valid = append(valid, row)
	}
	if len(valid) == 0 {
		result.Details = append(result.Details, "Sin filas válidas para anunciar")
		return result
	}

	// Keep first-seen order of document codes: metadata for a new isometric
	// comes from the first row that names it.
	codes := make([]string, 0, len(valid))
	firstRowByCode := make(map[string]AnnouncementRow)
	for _, row := range valid {
		if _, seen := firstRowByCode[row.IsoNumber]; !seen {
			codes = append(codes, row.IsoNumber)
			firstRowByCode[row.IsoNumber] = row
		}
	}

	existing, err := s.isoRepo.FindByProjectAndCodes(ctx, projectID, codes)
	if err != nil {
		return s.critical(result, fmt.Errorf("buscar isométricos existentes: %w", err))
	}
	isoByCode := make(map[string]entity.Isometric, len(existing))
	for _, iso := range existing {
		isoByCode[iso.Code] = iso
	}

	now := time.Now()
	var newIsos []entity.Isometric
	for _, code := range codes {
		if _, ok := isoByCode[code]; ok {
			continue
		}
		row := firstRowByCode[code]
		newIsos = append(newIsos, entity.Isometric{
			ID:         repository.NewID(),
			ProjectID:  projectID,
			Code:       code,
			LineNumber: row.LineNumber,
			LineType:   row.LineType,
			Area:       row.Area,
			SubArea:    row.SubArea,
			CreatedBy:  userID,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if err := s.isoRepo.CreateBatch(ctx, newIsos); err != nil {
		return s.critical(result, fmt.Errorf("crear isométricos: %w", err))
	}
	for _, iso := range newIsos {
		isoByCode[iso.Code] = iso
	}

	isoIDs := make([]string, 0, len(isoByCode))
	for _, iso := range isoByCode {
		isoIDs = append(isoIDs, iso.ID)
	}
	existingRevs, err := s.revRepo.ListByIsometricIDs(ctx, isoIDs)
	if err != nil {
		return s.critical(result, fmt.Errorf("buscar revisiones existentes: %w", err))
	}

	// (isometric, revision code) pairs already present, in the store or
	// earlier in this same batch.
	seen := make(map[string]struct{}, len(existingRevs))
	for _, rev := range existingRevs {
		seen[rev.IsometricID+"|"+rev.Code] = struct{}{}
	}

	var staged []entity.Revision
	for _, row := range valid {
		iso := isoByCode[row.IsoNumber]
		code := row.RevisionNumber
		if strings.TrimSpace(code) == "" {
			code = "0"
		}
		key := iso.ID + "|" + code
		if _, dup := seen[key]; dup {
			result.Skipped++
			result.Details = append(result.Details,
				fmt.Sprintf("ISO %s Rev %s: ya existe, omitida", row.IsoNumber, code))
			continue
		}
		seen[key] = struct{}{}

		spoolingStatus := row.SpoolingStatus
		if strings.TrimSpace(spoolingStatus) == "" {
			spoolingStatus = entity.SpoolingStatusPendiente
		}
		staged = append(staged, entity.Revision{
			ID:                  repository.NewID(),
			IsometricID:         iso.ID,
			Code:                code,
			Status:              entity.RevisionStatusVigente,
			SpoolingStatus:      spoolingStatus,
			SpoolingDate:        row.SpoolingDate,
			SpoolingSentDate:    row.SpoolingSentDate,
			ClientFileCode:      row.ClientFileCode,
			ClientRevisionCode:  row.ClientRevisionCode,
			TransmittalCode:     row.TransmittalCode,
			TransmittalDate:     row.TransmittalDate,
			TotalJointsCount:    row.TotalJointsCount,
			ExecutedJointsCount: row.ExecutedJointsCount,
			PendingJointsCount:  row.PendingJointsCount,
			CreatedBy:           userID,
			CreatedAt:           now,
			UpdatedAt:           now,
		})
	}

	inserted, chunkErrs := s.revRepo.CreateChunked(ctx, staged, repository.RevisionInsertChunkSize)
	result.Processed = len(inserted)
	for _, chunkErr := range chunkErrs {
		result.Errors += chunkErr.Rows
		result.Details = append(result.Details,
			fmt.Sprintf("Error al insertar bloque %d (%d filas): %v", chunkErr.Chunk, chunkErr.Rows, chunkErr.Err))
	}

	isoCodeByID := make(map[string]string, len(isoByCode))
	for code, iso := range isoByCode {
		isoCodeByID[iso.ID] = code
	}
	affected := make(map[string]struct{})
	for _, rev := range inserted {
		affected[rev.IsometricID] = struct{}{}
		result.Details = append(result.Details,
			fmt.Sprintf("ISO %s Rev %s: anunciada", isoCodeByID[rev.IsometricID], rev.Code))
	}

	if err := s.recomputeCurrent(ctx, affected); err != nil {
		return s.critical(result, fmt.Errorf("recalcular revisiones vigentes: %w", err))
	}

	s.revisionSvc.InvalidateRegisterCache(ctx, projectID)
	return result
}

// recomputeCurrent refetches every revision of the touched isometrics and
// applies the ordering rule. Status writes are only issued for revisions
// whose computed state differs from what is stored.
func (s *AnnouncementService) recomputeCurrent(ctx context.Context, affected map[string]struct{}) error {
	if len(affected) == 0 {
		return nil
	}
	ids := make([]string, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}

	revs, err := s.revRepo.ListByIsometricIDs(ctx, ids)
	if err != nil {
		return err
	}
	revsByIso := make(map[string][]entity.Revision)
	for _, rev := range revs {
		revsByIso[rev.IsometricID] = append(revsByIso[rev.IsometricID], rev)
	}

	statusChanges := make(map[string][]string)
	for _, isoID := range ids {
		isoRevs := revsByIso[isoID]
		latest := PickCurrentRevision(isoRevs)
		if latest == nil {
			continue
		}
		if err := s.isoRepo.UpdateCurrentRevision(ctx, isoID, latest.ID); err != nil {
			return err
		}
		for _, rev := range isoRevs {
			next := NextRevisionStatus(rev.Status, rev.ID == latest.ID)
			if next != rev.Status {
				statusChanges[next] = append(statusChanges[next], rev.ID)
			}
		}
	}
	for status, revIDs := range statusChanges {
		if err := s.revRepo.UpdateStatusBatch(ctx, revIDs, status); err != nil {
			return err
		}
	}
	return nil
}

// critical records a top-level failure as one detail line and hands the
// partial result back; processing for this invocation stops here.
func (s *AnnouncementService) critical(result *ImportResult, err error) *ImportResult {
	result.Errors++
	result.Details = append(result.Details, fmt.Sprintf("Error crítico: %v", err))
	return result
}

// ============================================================
// Row normalization
// ============================================================

// Canonical column names plus the client header variants seen in announced
// registers.
var announcementColumns = map[string][]string{
	"iso_number":            {"ISO_NUMBER", "ISOMETRICO", "ISOMÉTRICO", "N ISOMETRICO", "Nº ISOMETRICO", "ISO"},
	"line_number":           {"LINE_NUMBER", "LINEA", "LÍNEA", "N LINEA", "Nº LINEA"},
	"revision_number":       {"REVISION_NUMBER", "REVISION", "REVISIÓN", "REV"},
	"line_type":             {"LINE_TYPE", "TIPO LINEA", "TIPO DE LINEA", "TIPO"},
	"area":                  {"AREA", "ÁREA"},
	"sub_area":              {"SUB_AREA", "SUB AREA", "SUBAREA"},
	"client_file_code":      {"CLIENT_FILE_CODE", "ARCHIVO CLIENTE", "CODIGO ARCHIVO", "N PLANO CLIENTE"},
	"client_revision_code":  {"CLIENT_REVISION_CODE", "REV CLIENTE", "REVISION CLIENTE"},
	"transmittal_code":      {"TRANSMITTAL_CODE", "TRANSMITTAL", "TML"},
	"transmittal_date":      {"TRANSMITTAL_DATE", "FECHA TRANSMITTAL", "FECHA TML"},
	"spooling_status":       {"SPOOLING_STATUS", "ESTADO SPOOLING", "SPOOLING"},
	"spooling_date":         {"SPOOLING_DATE", "FECHA SPOOLING"},
	"spooling_sent_date":    {"SPOOLING_SENT_DATE", "FECHA ENVIO SPOOLING", "FECHA ENVÍO SPOOLING"},
	"total_joints_count":    {"TOTAL_JOINTS_COUNT", "TOTAL UNIONES", "UNIONES TOTALES"},
	"executed_joints_count": {"EXECUTED_JOINTS_COUNT", "UNIONES EJECUTADAS"},
	"pending_joints_count":  {"PENDING_JOINTS_COUNT", "UNIONES PENDIENTES"},
}

// NormalizeAnnouncementRows maps client-labeled records onto canonical rows.
// Records without a document code are dropped, not failed.
func NormalizeAnnouncementRows(records []map[string]interface{}) []AnnouncementRow {
	rows := make([]AnnouncementRow, 0, len(records))
	for _, record := range records {
		canon := canonicalizeRecord(record)
		isoNumber := stringField(canon, "iso_number")
		if isoNumber == "" {
			continue
		}
		rows = append(rows, AnnouncementRow{
			IsoNumber:           isoNumber,
			LineNumber:          stringField(canon, "line_number"),
			RevisionNumber:      stringField(canon, "revision_number"),
			LineType:            stringField(canon, "line_type"),
			Area:                stringField(canon, "area"),
			SubArea:             stringField(canon, "sub_area"),
			ClientFileCode:      stringField(canon, "client_file_code"),
			ClientRevisionCode:  stringField(canon, "client_revision_code"),
			TransmittalCode:     stringField(canon, "transmittal_code"),
			TransmittalDate:     ParseFlexibleDate(canon["transmittal_date"]),
			SpoolingStatus:      stringField(canon, "spooling_status"),
			SpoolingDate:        ParseFlexibleDate(canon["spooling_date"]),
			SpoolingSentDate:    ParseFlexibleDate(canon["spooling_sent_date"]),
			TotalJointsCount:    intField(canon, "total_joints_count"),
			ExecutedJointsCount: intField(canon, "executed_joints_count"),
			PendingJointsCount:  intField(canon, "pending_joints_count"),
		})
	}
	return rows
}

func canonicalizeRecord(record map[string]interface{}) map[string]interface{} {
	canon := make(map[string]interface{}, len(record))
	for key, value := range record {
		normalized := normalizeHeader(key)
		for field, aliases := range announcementColumns {
			for _, alias := range aliases {
				if normalized == normalizeHeader(alias) {
					canon[field] = value
				}
			}
		}
	}
	return canon
}

func normalizeHeader(h string) string {
	h = strings.ToUpper(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

func stringField(record map[string]interface{}, key string) string {
	switch v := record[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func intField(record map[string]interface{}, key string) int {
	switch v := record[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

// ParseAnnouncementWorkbook reads the first sheet of an announcement .xlsx:
// header row first, data rows after.
func ParseAnnouncementWorkbook(reader io.Reader) ([]AnnouncementRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]interface{}, len(header))
		for i, label := range header {
			if i < len(row) {
				record[label] = row[i]
			}
		}
		records = append(records, record)
	}
	return NormalizeAnnouncementRows(records), nil
}
