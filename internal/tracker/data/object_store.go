package data

import (
	"context"
	"fmt"

	"github.com/dixithak/FileInsights/internal/pkg/minio"
	"github.com/dixithak/FileInsights/internal/pkg/s3"
	"github.com/dixithak/FileInsights/internal/tracker/biz"
)

// Object store backends
const (
	ObjectStoreMinIO = "minio"
	ObjectStoreS3    = "s3"
)

// MinIOObjectStore reads tracked objects through MinIO
type MinIOObjectStore struct {
	client *minio.Client
}

var _ biz.ObjectStore = (*MinIOObjectStore)(nil)

func NewMinIOObjectStore(client *minio.Client) *MinIOObjectStore {
	return &MinIOObjectStore{client: client}
}

func (s *MinIOObjectStore) Head(ctx context.Context, bucket, key string) (*biz.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return &biz.ObjectInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

func (s *MinIOObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	return s.client.GetObjectBytes(ctx, bucket, key)
}

// S3ObjectStore reads tracked objects through the AWS SDK
type S3ObjectStore struct {
	client *s3.Client
}

var _ biz.ObjectStore = (*S3ObjectStore)(nil)

func NewS3ObjectStore(client *s3.Client) *S3ObjectStore {
	return &S3ObjectStore{client: client}
}

func (s *S3ObjectStore) Head(ctx context.Context, bucket, key string) (*biz.ObjectInfo, error) {
	info, err := s.client.HeadObject(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return &biz.ObjectInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

func (s *S3ObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	return s.client.GetObjectBytes(ctx, bucket, key)
}

// NewObjectStore picks the configured backend
func NewObjectStore(kind string, mc *minio.Client, sc *s3.Client) (biz.ObjectStore, error) {
	switch kind {
	case ObjectStoreMinIO, "":
		if mc == nil {
			return nil, fmt.Errorf("object store %q requires a minio client", ObjectStoreMinIO)
		}
		return NewMinIOObjectStore(mc), nil
	case ObjectStoreS3:
		if sc == nil {
			return nil, fmt.Errorf("object store %q requires an s3 client", ObjectStoreS3)
		}
		return NewS3ObjectStore(sc), nil
	default:
		return nil, fmt.Errorf("unknown object store %q", kind)
	}
}
