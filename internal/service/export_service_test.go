package service

import (
	"context"
	"testing"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/Crisvalpo/PIPING-sub001/internal/testutil"
)

func TestExportRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	revisionSvc := NewRevisionService(repos.Isometric, repos.Revision, repos.Structure, nil)
	announcementSvc := NewAnnouncementService(repos.Isometric, repos.Revision, revisionSvc)
	exportSvc := NewExportService(revisionSvc)

	project := testutil.SeedProject(t, db, "PRJ-01", "Planta Norte")
	result := announcementSvc.Import(context.Background(), project.ID, "user-1", []AnnouncementRow{
		{IsoNumber: "ISO-100", RevisionNumber: "0", LineNumber: "L-100", Area: "A1"},
	})
	if result.Errors != 0 {
		t.Fatalf("Seed import failed: %v", result.Details)
	}

	f, fileName, err := exportSvc.ExportRegister(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	defer f.Close()

	if fileName != "registro-revisiones-"+project.ID+".xlsx" {
		t.Errorf("Unexpected filename: %s", fileName)
	}

	rows, err := f.GetRows("Registro")
	if err != nil {
		t.Fatalf("Read export sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one data row, got %d", len(rows))
	}
	if rows[0][0] != "Isométrico" || rows[0][4] != "Revisión" {
		t.Errorf("Header row mismatch: %v", rows[0])
	}
	if rows[1][0] != "ISO-100" || rows[1][4] != "0" || rows[1][5] != entity.RevisionStatusVigente {
		t.Errorf("Data row mismatch: %v", rows[1])
	}
}

func TestExportRegisterEmptyProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	revisionSvc := NewRevisionService(repos.Isometric, repos.Revision, repos.Structure, nil)
	exportSvc := NewExportService(revisionSvc)

	_ = testutil.SeedProject(t, db, "PRJ-02", "Planta Sur")

	f, _, err := exportSvc.ExportRegister(context.Background(), "no-such-project")
	if err != nil {
		t.Fatalf("Empty project should still export: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Registro")
	if err != nil {
		t.Fatalf("Read export sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("Expected header only, got %d rows", len(rows))
	}
}
