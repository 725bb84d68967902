// Package storage holds the object store used for quotation attachments.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JulianAgudelo12/Servicio-de-facturaci-n/internal/config"
)

// Store is the object-store surface the service layer depends on.
type Store interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	// Remove deletes the object addressed by a previously returned URL.
	// Removing an object that is already gone is not an error.
	Remove(ctx context.Context, publicURL string) error
}

// MinioStore backs Store with a MinIO / S3-compatible bucket.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
	}, nil
}

func (s *MinioStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return s.publicBaseURL + "/" + objectName, nil
}

func (s *MinioStore) Remove(ctx context.Context, publicURL string) error {
	objectName := s.objectName(publicURL)
	if objectName == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// objectName maps a public URL back to the bucket-relative key.
func (s *MinioStore) objectName(publicURL string) string {
	if publicURL == "" {
		return ""
	}
	if strings.HasPrefix(publicURL, s.publicBaseURL+"/") {
		return strings.TrimPrefix(publicURL, s.publicBaseURL+"/")
	}
	// URL from an earlier base configuration: fall back to the path.
	u, err := url.Parse(publicURL)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/")
	if cut, ok := strings.CutPrefix(path, s.bucket+"/"); ok {
		return cut
	}
	return path
}
