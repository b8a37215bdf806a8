package minio

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ObjectInfo is the subset of object metadata the tracker records
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// StatObject returns object metadata without reading the body
func (c *Client) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	if err := c.checkArgs("StatObject", bucket, object); err != nil {
		return ObjectInfo{}, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, WrapError("StatObject", err, bucket, object)
	}

	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// GetObjectBytes downloads the whole object into memory
func (c *Client) GetObjectBytes(ctx context.Context, bucket, object string) ([]byte, error) {
	if err := c.checkArgs("GetObject", bucket, object); err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	obj, err := c.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, WrapError("GetObject", err, bucket, object)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, WrapError("GetObject", err, bucket, object)
	}
	return data, nil
}

// PutObjectBytes uploads data as a single object
func (c *Client) PutObjectBytes(ctx context.Context, bucket, object string, data []byte, contentType string) error {
	if err := c.checkArgs("PutObject", bucket, object); err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return WrapError("PutObject", err, bucket, object)
	}

	c.logger.Debug("object uploaded",
		zap.String("bucket", bucket),
		zap.String("object", object),
		zap.Int64("size", info.Size),
	)
	return nil
}

// RemoveObject deletes a single object
func (c *Client) RemoveObject(ctx context.Context, bucket, object string) error {
	if err := c.checkArgs("RemoveObject", bucket, object); err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return WrapError("RemoveObject", err, bucket, object)
	}
	return nil
}

func (c *Client) checkArgs(op, bucket, object string) error {
	if err := c.checkClosed(); err != nil {
		return err
	}
	if bucket == "" {
		return WrapError(op, ErrInvalidBucketName, bucket, object)
	}
	if object == "" {
		return WrapError(op, ErrInvalidObjectName, bucket, object)
	}
	return nil
}
