package minio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testEndpoint        = "localhost:9000"
	testAccessKeyID     = "minioadmin"
	testSecretAccessKey = "minioadmin"
	testBucket          = "file-insights-test"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "valid",
			config: &Config{Endpoint: testEndpoint, AccessKeyID: "a", SecretAccessKey: "b"},
		},
		{
			name:    "missing endpoint",
			config:  &Config{AccessKeyID: "a", SecretAccessKey: "b"},
			wantErr: true,
		},
		{
			name:    "missing access key",
			config:  &Config{Endpoint: testEndpoint, SecretAccessKey: "b"},
			wantErr: true,
		},
		{
			name:    "missing secret",
			config:  &Config{Endpoint: testEndpoint, AccessKeyID: "a"},
			wantErr: true,
		},
		{
			name:    "bad lookup",
			config:  &Config{Endpoint: testEndpoint, AccessKeyID: "a", SecretAccessKey: "b", BucketLookup: "virtual"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Equal(t, BucketLookupAuto, cfg.BucketLookup)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestErrors(t *testing.T) {
	notFound := WrapError("StatObject", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}, "b", "k")
	assert.True(t, IsNotFound(notFound))
	assert.Contains(t, notFound.Error(), "bucket=b, object=k")

	denied := WrapError("StatObject", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}, "b", "k")
	assert.False(t, IsNotFound(denied))
	assert.True(t, IsAccessDenied(denied))

	assert.True(t, IsBucketAlreadyExists(minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}))
	assert.False(t, IsNotFound(nil))
	assert.Nil(t, WrapError("x", nil, "", ""))

	var e *Error
	require.True(t, errors.As(WrapErrorWithMessage("Ping", errors.New("refused"), "dial"), &e))
	assert.Equal(t, "minio: Ping failed: dial: refused", e.Error())
}

func TestClosedClient(t *testing.T) {
	client, err := NewClient(&Config{
		Endpoint:        testEndpoint,
		AccessKeyID:     testAccessKeyID,
		SecretAccessKey: testSecretAccessKey,
	}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, err = client.StatObject(context.Background(), testBucket, "a.csv")
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestArgumentChecks(t *testing.T) {
	client, err := NewClient(&Config{
		Endpoint:        testEndpoint,
		AccessKeyID:     testAccessKeyID,
		SecretAccessKey: testSecretAccessKey,
	}, nil)
	require.NoError(t, err)

	_, err = client.StatObject(context.Background(), "", "a.csv")
	assert.ErrorIs(t, err, ErrInvalidBucketName)

	_, err = client.GetObjectBytes(context.Background(), testBucket, "")
	assert.ErrorIs(t, err, ErrInvalidObjectName)
}

// Requires a MinIO server on localhost:9000 with default credentials.
func TestObjectRoundTrip(t *testing.T) {
	client, err := NewClient(&Config{
		Endpoint:        testEndpoint,
		AccessKeyID:     testAccessKeyID,
		SecretAccessKey: testSecretAccessKey,
		RequestTimeout:  5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("minio not available: %v", err)
	}

	require.NoError(t, client.EnsureBucket(ctx, testBucket))

	body := []byte("id,name\n1,a\n")
	require.NoError(t, client.PutObjectBytes(ctx, testBucket, "data/a.csv", body, "text/csv"))
	defer client.RemoveObject(context.Background(), testBucket, "data/a.csv")

	info, err := client.StatObject(ctx, testBucket, "data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), info.Size)
	assert.Equal(t, "text/csv", info.ContentType)

	got, err := client.GetObjectBytes(ctx, testBucket, "data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, body, got)

	_, err = client.StatObject(ctx, testBucket, "data/missing.csv")
	assert.True(t, IsNotFound(err))
}
