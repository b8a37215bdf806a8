package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	objects map[string]string
	types   map[string]string
	err     error
}

func (f *fakeAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(f.types[aws.ToString(in.Key)]),
	}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.AccessKeyID = "only-key"
	assert.Error(t, cfg.Validate())

	cfg = &Config{}
	assert.Error(t, cfg.Validate())
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(&Config{
		Region:          "eu-central-1",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", c.Config().Region)
}

func TestClient_HeadAndGet(t *testing.T) {
	api := &fakeAPI{
		objects: map[string]string{"landing/data/a.csv": "id,name\n"},
		types:   map[string]string{"data/a.csv": "text/csv"},
	}
	c := NewFromAPI(api, nil, nil)
	ctx := context.Background()

	info, err := c.HeadObject(ctx, "landing", "data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.Equal(t, "text/csv", info.ContentType)

	data, err := c.GetObjectBytes(ctx, "landing", "data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,name\n", string(data))

	_, err = c.HeadObject(ctx, "landing", "missing.csv")
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = c.GetObjectBytes(ctx, "landing", "missing.csv")
	assert.True(t, IsNotFound(err))
}

func TestClient_OtherErrors(t *testing.T) {
	c := NewFromAPI(&fakeAPI{err: errors.New("access denied")}, nil, nil)
	_, err := c.HeadObject(context.Background(), "b", "k")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "access denied")
}
