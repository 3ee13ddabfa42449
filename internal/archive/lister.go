package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"archive-remix/internal/isotime"
)

// Lister returns the object names stored under prefix in bucket.
type Lister interface {
	List(ctx context.Context, bucket, prefix string, recursive bool) ([]string, error)
}

// StorageConfig locates an S3 compatible object store.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
}

// MinioLister lists objects through the MinIO client.
type MinioLister struct {
	client *minio.Client
}

// NewMinioLister connects a lister to the store described by cfg.
func NewMinioLister(cfg StorageConfig) (*MinioLister, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &MinioLister{client: client}, nil
}

// List implements Lister.
func (l *MinioLister) List(ctx context.Context, bucket, prefix string, recursive bool) ([]string, error) {
	var names []string
	for obj := range l.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// ListChunks collects object names under "{channel}/{date}" for each date.
// With no dates the current UTC day of now is listed.
func ListChunks(ctx context.Context, l Lister, bucket, channel string, dates []string, now time.Time) ([]string, error) {
	if len(dates) == 0 {
		dates = []string{isotime.Date(now)}
	}
	var names []string
	for _, date := range dates {
		found, err := l.List(ctx, bucket, channel+"/"+date, true)
		if err != nil {
			return nil, err
		}
		names = append(names, found...)
	}
	return names, nil
}
