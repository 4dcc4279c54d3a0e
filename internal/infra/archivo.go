package infra

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchivoConfig points the export archive at an S3-compatible bucket.
type ArchivoConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ArchivoExportaciones keeps a copy of every generated cost sheet in object
// storage, under exports/YYYY/MM/DD/.
type ArchivoExportaciones struct {
	client *minio.Client
	bucket string
}

// NewArchivoExportaciones returns nil when no endpoint is configured.
func NewArchivoExportaciones(cfg ArchivoConfig) (*ArchivoExportaciones, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &ArchivoExportaciones{client: client, bucket: cfg.Bucket}, nil
}

// NombreObjeto builds the object key for a file archived at t.
func NombreObjeto(t time.Time, nombre string) string {
	return path.Join("exports", t.Format("2006/01/02"), nombre)
}

// Guardar uploads r under exports/<date>/nombre and returns the object key.
func (a *ArchivoExportaciones) Guardar(ctx context.Context, nombre string, r io.Reader, size int64, contentType string) (string, error) {
	objectName := NombreObjeto(time.Now(), nombre)
	_, err := a.client.PutObject(ctx, a.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", objectName, err)
	}
	return objectName, nil
}
