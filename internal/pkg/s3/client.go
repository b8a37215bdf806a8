package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// ErrObjectNotFound the object or bucket does not exist
var ErrObjectNotFound = errors.New("s3: object not found")

// API subset of *s3.Client used here
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ API = (*s3.Client)(nil)

// ObjectInfo object metadata
type ObjectInfo struct {
	Size        int64
	ContentType string
	ETag        string
}

// Client S3 client
type Client struct {
	api    API
	config *Config
	logger *zap.Logger
}

// NewClient creates an S3 client. Static credentials are used when both keys
// are configured, otherwise the SDK's anonymous credentials.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
	} else {
		opts.Credentials = aws.AnonymousCredentials{}
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	logger.Info("s3 client created",
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("path_style", cfg.UsePathStyle),
	)
	return &Client{api: s3.New(opts), config: cfg, logger: logger}, nil
}

// NewFromAPI wraps an existing API implementation
func NewFromAPI(api API, cfg *Config, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, config: cfg, logger: logger}
}

func (c *Client) Config() *Config {
	return c.config
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.config.RequestTimeout)
	}
	return ctx, func() {}
}

// HeadObject returns size and content type of an object
func (c *Client) HeadObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return ObjectInfo{}, wrapError("HeadObject", bucket, key, err)
	}
	return ObjectInfo{
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		ETag:        aws.ToString(out.ETag),
	}, nil
}

// GetObjectBytes downloads the whole object
func (c *Client) GetObjectBytes(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapError("GetObject", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, wrapError("GetObject", bucket, key, err)
	}
	return data, nil
}

func wrapError(op, bucket, key string, err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("s3 %s %s/%s: %w: %v", op, bucket, key, ErrObjectNotFound, err)
	}
	return fmt.Errorf("s3 %s %s/%s: %w", op, bucket, key, err)
}

// IsNotFound reports missing objects and buckets
func IsNotFound(err error) bool {
	if errors.Is(err, ErrObjectNotFound) {
		return true
	}
	var (
		notFound  *types.NotFound
		noSuchKey *types.NoSuchKey
		noBucket  *types.NoSuchBucket
	)
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noBucket)
}
