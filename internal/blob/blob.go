// Package blob — объектное хранилище файлов отчётов.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store — минимальный контракт хранилища: залить, отдать ссылку, отдать поток.
type Store interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PresignedURL возвращает "" если публичный доступ не настроен.
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Object(ctx context.Context, key string) (io.ReadCloser, error)
}

// ObjectKey — ключ объекта: <classID>/<uuid>_<имя файла>.
// UUID исключает коллизии одинаковых имён в одном классе.
func ObjectKey(classID int64, filename string) string {
	return fmt.Sprintf("%d/%s_%s", classID, uuid.NewString(), filepath.Base(filename))
}

type Minio struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string // хост для presigned-ссылок наружу, пусто если доступа нет
}

type MinioConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	PublicEndpoint string
}

func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blob: connect: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("blob: bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("blob: make bucket: %w", err)
		}
	}

	return &Minio{client: client, bucket: cfg.Bucket, publicEndpoint: cfg.PublicEndpoint}, nil
}

func (m *Minio) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("blob: put %s: %w", key, err)
	}
	return nil
}

// PresignedURL — временная ссылка на объект. Внутренний хост хранилища
// подменяется публичным, чтобы ссылка открывалась у пользователя.
func (m *Minio) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.publicEndpoint == "" {
		return "", nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("blob: presign %s: %w", key, err)
	}
	u.Host = m.publicEndpoint
	return u.String(), nil
}

func (m *Minio) Object(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", key, err)
	}
	return obj, nil
}
