package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var registerExportHeaders = []string{
	"Isométrico", "Línea", "Área", "Sub Área", "Revisión", "Estado",
	"Estado Spooling", "Transmittal", "Uniones Totales", "Uniones Ejecutadas",
	"Uniones Pendientes", "Archivo Cliente", "Rev Cliente",
}

// ExportService renders a project's revision register to a workbook.
type ExportService struct {
	revisionSvc *RevisionService
}

// NewExportService creates an export service.
func NewExportService(revisionSvc *RevisionService) *ExportService {
	return &ExportService{revisionSvc: revisionSvc}
}

// ExportRegister builds the register workbook for one project and returns it
// with a suggested filename.
func (s *ExportService) ExportRegister(ctx context.Context, projectID string) (*excelize.File, string, error) {
	rows, err := s.revisionSvc.ListProjectRegister(ctx, projectID)
	if err != nil {
		return nil, "", fmt.Errorf("build register: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Registro"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range registerExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, row := range rows {
		n := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", n), row.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", n), row.LineNumber)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", n), row.Area)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", n), row.SubArea)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", n), row.RevisionCode)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", n), row.RevisionStatus)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", n), row.SpoolingStatus)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", n), row.TransmittalCode)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", n), row.TotalJoints)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", n), row.ExecutedJoints)
		f.SetCellValue(sheet, fmt.Sprintf("K%d", n), row.PendingJoints)
		f.SetCellValue(sheet, fmt.Sprintf("L%d", n), row.ClientFileCode)
		f.SetCellValue(sheet, fmt.Sprintf("M%d", n), row.ClientRevision)
	}

	return f, fmt.Sprintf("registro-revisiones-%s.xlsx", projectID), nil
}
