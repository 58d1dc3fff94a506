package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Crisvalpo/PIPING-sub001/internal/model/entity"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/minio/minio-go/v7"
)

// Signed URL lifetimes. Minio caps presigned URLs at seven days, so the
// just-uploaded link gets the maximum rather than anything longer.
const (
	listingURLExpiry = 24 * time.Hour
	singleURLExpiry  = time.Hour
	uploadURLExpiry  = 7 * 24 * time.Hour
)

// Allowed extensions per declared file type. The "other" type skips
// validation entirely.
var allowedExtensions = map[string][]string{
	entity.FileTypePDF: {".pdf"},
	entity.FileTypeIDF: {".idf"},
	entity.FileTypeDWG: {".dwg", ".dxf"},
}

// Allowed MIME types per declared file type. Empty and octet-stream pass
// because browsers fall back to them for anything they cannot sniff; the
// extension check still applies.
var allowedMimeTypes = map[string][]string{
	entity.FileTypePDF: {"application/pdf"},
	entity.FileTypeIDF: {"text/plain"},
	entity.FileTypeDWG: {"image/vnd.dwg", "image/vnd.dxf", "application/acad"},
}

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// FileUploadResult is the structured outcome of one upload attempt.
type FileUploadResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	File    *entity.RevisionFile `json:"file,omitempty"`
	URL     string               `json:"url,omitempty"`
}

// RevisionFileView is a file row paired with a freshly minted signed URL.
// URLs are never persisted.
type RevisionFileView struct {
	entity.RevisionFile
	URL string `json:"url"`
}

// RevisionFileService versions binary attachments against revisions.
type RevisionFileService struct {
	fileRepo    *repository.RevisionFileRepository
	revRepo     *repository.RevisionRepository
	minioClient *minio.Client
	bucketName  string
}

// NewRevisionFileService creates a revision file service.
func NewRevisionFileService(
	fileRepo *repository.RevisionFileRepository,
	revRepo *repository.RevisionRepository,
	minioClient *minio.Client,
	bucketName string,
) *RevisionFileService {
	return &RevisionFileService{
		fileRepo:    fileRepo,
		revRepo:     revRepo,
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// Upload stores one attachment version. The binary goes out first; if the
// row insert fails afterwards the uploaded object is deleted best-effort so
// the bucket does not accumulate orphans.
func (s *RevisionFileService) Upload(
	ctx context.Context,
	revisionID, fileType, fileName, userID string,
	reader io.Reader,
	fileSize int64,
	contentType string,
	isPrimary bool,
) (*FileUploadResult, error) {
	if _, err := s.revRepo.FindByID(ctx, revisionID); err != nil {
		return &FileUploadResult{Success: false, Message: "La revisión no existe"}, nil
	}
	if !validFileType(fileType) {
		return &FileUploadResult{
			Success: false,
			Message: fmt.Sprintf("Tipo de archivo no reconocido: %s", fileType),
		}, nil
	}
	if err := validateExtension(fileType, fileName); err != nil {
		return &FileUploadResult{Success: false, Message: err.Error()}, nil
	}
	if err := validateMimeType(fileType, contentType); err != nil {
		return &FileUploadResult{Success: false, Message: err.Error()}, nil
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("storage not configured")
	}

	objectName := storagePath(revisionID, fileType, fileName)
	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return &FileUploadResult{
			Success: false,
			Message: fmt.Sprintf("Error al subir el archivo: %v", err),
		}, nil
	}

	maxVersion, err := s.fileRepo.MaxVersion(ctx, revisionID, fileType)
	if err != nil {
		s.removeObject(ctx, objectName)
		return nil, fmt.Errorf("resolve version: %w", err)
	}

	if isPrimary {
		if err := s.fileRepo.ClearPrimary(ctx, revisionID, fileType); err != nil {
			s.removeObject(ctx, objectName)
			return nil, fmt.Errorf("clear primary flag: %w", err)
		}
	}

	file := &entity.RevisionFile{
		ID:           repository.NewID(),
		RevisionID:   revisionID,
		FileType:     fileType,
		StoragePath:  objectName,
		OriginalName: fileName,
		Version:      maxVersion + 1,
		IsPrimary:    isPrimary,
		Size:         fileSize,
		MimeType:     contentType,
		UploadedBy:   userID,
		CreatedAt:    time.Now(),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.removeObject(ctx, objectName)
		return &FileUploadResult{
			Success: false,
			Message: fmt.Sprintf("Error al registrar el archivo: %v", err),
		}, nil
	}

	signedURL, _ := s.presign(ctx, objectName, uploadURLExpiry)
	return &FileUploadResult{Success: true, Message: "Archivo subido", File: file, URL: signedURL}, nil
}

// List returns every file of a revision with fresh signed URLs.
func (s *RevisionFileService) List(ctx context.Context, revisionID string) ([]RevisionFileView, error) {
	files, err := s.fileRepo.ListByRevision(ctx, revisionID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	views := make([]RevisionFileView, 0, len(files))
	for _, file := range files {
		signedURL, _ := s.presign(ctx, file.StoragePath, listingURLExpiry)
		views = append(views, RevisionFileView{RevisionFile: file, URL: signedURL})
	}
	return views, nil
}

// Link mints a short-lived download URL for one file.
func (s *RevisionFileService) Link(ctx context.Context, fileID string) (string, error) {
	file, err := s.fileRepo.FindByID(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("find file: %w", err)
	}
	return s.presign(ctx, file.StoragePath, singleURLExpiry)
}

func (s *RevisionFileService) presign(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if s.minioClient == nil {
		return "", fmt.Errorf("storage not configured")
	}
	signed, err := s.minioClient.PresignedGetObject(ctx, s.bucketName, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectName, err)
	}
	return signed.String(), nil
}

// removeObject compensates a failed row insert. Its own failure is not
// surfaced: the orphaned object is the lesser problem.
func (s *RevisionFileService) removeObject(ctx context.Context, objectName string) {
	if s.minioClient == nil {
		return
	}
	_ = s.minioClient.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{})
}

func validFileType(fileType string) bool {
	switch fileType {
	case entity.FileTypePDF, entity.FileTypeIDF, entity.FileTypeDWG, entity.FileTypeOther:
		return true
	}
	return false
}

func validateExtension(fileType, fileName string) error {
	if fileType == entity.FileTypeOther {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range allowedExtensions[fileType] {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("extensión %s no permitida para archivos %s", ext, fileType)
}

func validateMimeType(fileType, contentType string) error {
	if fileType == entity.FileTypeOther {
		return nil
	}
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	if mime == "" || mime == "application/octet-stream" {
		return nil
	}
	for _, allowed := range allowedMimeTypes[fileType] {
		if mime == allowed {
			return nil
		}
	}
	return fmt.Errorf("tipo MIME %s no permitido para archivos %s", mime, fileType)
}

// storagePath namespaces the object by revision and type with a timestamped
// sanitized name: collision-avoidant, not content-addressed.
func storagePath(revisionID, fileType, fileName string) string {
	safe := unsafePathChars.ReplaceAllString(filepath.Base(fileName), "_")
	return fmt.Sprintf("revisions/%s/%s/%d-%s", revisionID, fileType, time.Now().UnixMilli(), safe)
}
