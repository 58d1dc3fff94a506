package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/Crisvalpo/PIPING-sub001/internal/testutil"
	"gorm.io/gorm"
)

func setupFileTest(t *testing.T) (*gorm.DB, *RevisionFileService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewRevisionFileService(repos.RevisionFile, repos.Revision, nil, "test-bucket")
	return db, svc
}

func TestUploadRejectsUnknownRevision(t *testing.T) {
	_, svc := setupFileTest(t)

	result, err := svc.Upload(context.Background(), "missing", entity.FileTypePDF,
		"plano.pdf", "user-1", strings.NewReader("data"), 4, "application/pdf", false)
	if err != nil {
		t.Fatalf("Precondition failure should not raise: %v", err)
	}
	if result.Success {
		t.Error("Upload against a missing revision should be rejected")
	}
}

func TestUploadRejectsBadFileType(t *testing.T) {
	db, svc := setupFileTest(t)
	project := testutil.SeedProject(t, db, "PRJ-01", "Planta Norte")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	rev := testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now())

	result, err := svc.Upload(context.Background(), rev.ID, "exe",
		"tool.exe", "user-1", strings.NewReader("data"), 4, "application/octet-stream", false)
	if err != nil {
		t.Fatalf("Precondition failure should not raise: %v", err)
	}
	if result.Success {
		t.Error("Unknown file type should be rejected")
	}
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	db, svc := setupFileTest(t)
	project := testutil.SeedProject(t, db, "PRJ-02", "Planta Sur")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	rev := testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now())

	result, err := svc.Upload(context.Background(), rev.ID, entity.FileTypePDF,
		"plano.dwg", "user-1", strings.NewReader("data"), 4, "application/pdf", false)
	if err != nil {
		t.Fatalf("Precondition failure should not raise: %v", err)
	}
	if result.Success {
		t.Error("Extension mismatch should be rejected")
	}
	if !strings.Contains(result.Message, ".dwg") {
		t.Errorf("Message should name the offending extension: %s", result.Message)
	}
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		fileType string
		fileName string
		wantErr  bool
	}{
		{entity.FileTypePDF, "plano.pdf", false},
		{entity.FileTypePDF, "plano.PDF", false},
		{entity.FileTypePDF, "plano.dwg", true},
		{entity.FileTypeIDF, "modelo.idf", false},
		{entity.FileTypeDWG, "plano.dwg", false},
		{entity.FileTypeDWG, "plano.dxf", false},
		{entity.FileTypeDWG, "plano.pdf", true},
		{entity.FileTypeOther, "cualquiera.zip", false},
		{entity.FileTypeOther, "sin-extension", false},
	}

	for _, tt := range tests {
		err := validateExtension(tt.fileType, tt.fileName)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateExtension(%s, %s) error=%v, wantErr=%v",
				tt.fileType, tt.fileName, err, tt.wantErr)
		}
	}
}

func TestUploadRejectsMismatchedMimeType(t *testing.T) {
	db, svc := setupFileTest(t)
	project := testutil.SeedProject(t, db, "PRJ-05", "Planta Oeste")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	rev := testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now())

	result, err := svc.Upload(context.Background(), rev.ID, entity.FileTypePDF,
		"plano.pdf", "user-1", strings.NewReader("data"), 4, "image/png", false)
	if err != nil {
		t.Fatalf("Precondition failure should not raise: %v", err)
	}
	if result.Success {
		t.Error("MIME mismatch should be rejected")
	}
	if !strings.Contains(result.Message, "image/png") {
		t.Errorf("Message should name the offending MIME type: %s", result.Message)
	}
}

func TestValidateMimeType(t *testing.T) {
	tests := []struct {
		fileType    string
		contentType string
		wantErr     bool
	}{
		{entity.FileTypePDF, "application/pdf", false},
		{entity.FileTypePDF, "Application/PDF; charset=binary", false},
		{entity.FileTypePDF, "image/png", true},
		{entity.FileTypePDF, "", false},
		{entity.FileTypePDF, "application/octet-stream", false},
		{entity.FileTypeIDF, "text/plain", false},
		{entity.FileTypeDWG, "image/vnd.dwg", false},
		{entity.FileTypeDWG, "application/pdf", true},
		{entity.FileTypeOther, "video/mp4", false},
	}

	for _, tt := range tests {
		err := validateMimeType(tt.fileType, tt.contentType)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateMimeType(%s, %q) error=%v, wantErr=%v",
				tt.fileType, tt.contentType, err, tt.wantErr)
		}
	}
}

func TestStoragePathSanitizesName(t *testing.T) {
	path := storagePath("rev-1", entity.FileTypePDF, "../../etc/pass word!.pdf")
	if !strings.HasPrefix(path, "revisions/rev-1/pdf/") {
		t.Errorf("Path should be namespaced by revision and type: %s", path)
	}
	if strings.Contains(path, "..") || strings.Contains(path, " ") || strings.Contains(path, "!") {
		t.Errorf("Unsafe characters should be stripped: %s", path)
	}
}

func TestMaxVersionProgression(t *testing.T) {
	db, _ := setupFileTest(t)
	repos := repository.NewRepositories(db)
	project := testutil.SeedProject(t, db, "PRJ-03", "Planta Este")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	rev := testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now())

	v, err := repos.RevisionFile.MaxVersion(context.Background(), rev.ID, entity.FileTypePDF)
	if err != nil {
		t.Fatalf("MaxVersion failed: %v", err)
	}
	if v != 0 {
		t.Errorf("No files yet, expected version 0, got %d", v)
	}

	for i := 1; i <= 3; i++ {
		file := &entity.RevisionFile{
			ID:           repository.NewID(),
			RevisionID:   rev.ID,
			FileType:     entity.FileTypePDF,
			StoragePath:  "revisions/x",
			OriginalName: "plano.pdf",
			Version:      i,
			CreatedAt:    time.Now(),
		}
		if err := repos.RevisionFile.Create(context.Background(), file); err != nil {
			t.Fatalf("Create file: %v", err)
		}
	}

	v, err = repos.RevisionFile.MaxVersion(context.Background(), rev.ID, entity.FileTypePDF)
	if err != nil {
		t.Fatalf("MaxVersion failed: %v", err)
	}
	if v != 3 {
		t.Errorf("Expected max version 3, got %d", v)
	}

	// Versions are tracked per file type.
	v, _ = repos.RevisionFile.MaxVersion(context.Background(), rev.ID, entity.FileTypeDWG)
	if v != 0 {
		t.Errorf("DWG versions are independent, expected 0, got %d", v)
	}
}

func TestClearPrimaryScopedToType(t *testing.T) {
	db, _ := setupFileTest(t)
	repos := repository.NewRepositories(db)
	project := testutil.SeedProject(t, db, "PRJ-04", "Planta Oeste")
	iso := testutil.SeedIsometric(t, db, project.ID, "ISO-100")
	rev := testutil.SeedRevision(t, db, iso.ID, "0", entity.RevisionStatusVigente, time.Now())

	pdf := &entity.RevisionFile{
		ID: repository.NewID(), RevisionID: rev.ID, FileType: entity.FileTypePDF,
		StoragePath: "p", OriginalName: "a.pdf", Version: 1, IsPrimary: true, CreatedAt: time.Now(),
	}
	dwg := &entity.RevisionFile{
		ID: repository.NewID(), RevisionID: rev.ID, FileType: entity.FileTypeDWG,
		StoragePath: "d", OriginalName: "a.dwg", Version: 1, IsPrimary: true, CreatedAt: time.Now(),
	}
	for _, f := range []*entity.RevisionFile{pdf, dwg} {
		if err := repos.RevisionFile.Create(context.Background(), f); err != nil {
			t.Fatalf("Create file: %v", err)
		}
	}

	if err := repos.RevisionFile.ClearPrimary(context.Background(), rev.ID, entity.FileTypePDF); err != nil {
		t.Fatalf("ClearPrimary failed: %v", err)
	}

	var stored entity.RevisionFile
	db.First(&stored, "id = ?", pdf.ID)
	if stored.IsPrimary {
		t.Error("PDF primary flag should be cleared")
	}
	stored = entity.RevisionFile{}
	db.First(&stored, "id = ?", dwg.ID)
	if !stored.IsPrimary {
		t.Error("DWG primary flag must survive a PDF clear")
	}
}
