package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"exam_admin_backend/internal/config"
	"exam_admin_backend/internal/model"
)

// StorageProvider persists raw blobs. The import pipeline uses it to keep the
// original payload of every run for later audit.
type StorageProvider interface {
	Save(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

func (s *LocalStorage) Save(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.basePath, objectName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(cfg *config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client: client, bucket: cfg.MinioBucket}, nil
}

func (s *MinioStorage) Save(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.bucket, objectName), nil
}

// NewStorageProvider picks the provider from configuration, defaulting to
// local disk.
func NewStorageProvider(cfg *config.StorageConfig) (StorageProvider, error) {
	if cfg.Type == "minio" {
		return NewMinioStorage(cfg)
	}
	path := cfg.LocalPath
	if path == "" {
		path = "./storage"
	}
	return NewLocalStorage(path), nil
}

type StorageService struct {
	provider StorageProvider
}

func NewStorageService(provider StorageProvider) *StorageService {
	return &StorageService{provider: provider}
}

// ArchiveImportPayload stores one import run's raw records as a dated JSON
// object under the exam's prefix.
func (s *StorageService) ArchiveImportPayload(ctx context.Context, examID uint, payload []byte) (string, error) {
	objectName := fmt.Sprintf("imports/exam_%d/%s_%s.json",
		examID,
		time.Now().UTC().Format("20060102T150405Z"),
		model.GenerateUUID()[:8])
	return s.provider.Save(ctx, objectName, payload, "application/json")
}
