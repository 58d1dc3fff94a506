package service

import (
	"github.com/Crisvalpo/PIPING-sub001/internal/config"
	"github.com/Crisvalpo/PIPING-sub001/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Services groups every service of the engineering module.
type Services struct {
	Revision     *RevisionService
	Impact       *ImpactService
	Announcement *AnnouncementService
	SpoolGen     *SpoolGenService
	RevisionFile *RevisionFileService
	Export       *ExportService
}

// NewServices wires the service graph onto the repositories.
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// Continue without binary storage; uploads will report it.
			minioClient = nil
		}
	}

	revisionSvc := NewRevisionService(repos.Isometric, repos.Revision, repos.Structure, rdb)
	impactSvc := NewImpactService(repos.Impact)

	return &Services{
		Revision:     revisionSvc,
		Impact:       impactSvc,
		Announcement: NewAnnouncementService(repos.Isometric, repos.Revision, revisionSvc),
		SpoolGen:     NewSpoolGenService(repos.Isometric, repos.Revision, repos.Structure, impactSvc, revisionSvc),
		RevisionFile: NewRevisionFileService(repos.RevisionFile, repos.Revision, minioClient, cfg.MinIO.Bucket),
		Export:       NewExportService(revisionSvc),
	}
}
