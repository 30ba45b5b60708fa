package coldstore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/nutrilog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestNew_NoBucket(t *testing.T) {
	_, err := New(context.Background(), Options{})
	require.ErrorIs(t, err, ErrNoBucket)
}

func TestNew_ConfiguresClient(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var lo config.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region}, nil
	}

	var so s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&so)
		}
		return s3.NewFromConfig(cfg)
	}

	s, err := New(context.Background(), Options{
		Bucket: "b", Prefix: "archive", Region: "eu-west-1",
		BaseEndpoint: "http://localhost:9000", AccessKey: "ak", SecretKey: "sk",
	})
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, "eu-west-1", lo.Region)
	require.NotNil(t, lo.Credentials)
	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ak", creds.AccessKeyID)
	assert.Equal(t, "sk", creds.SecretAccessKey)

	require.NotNil(t, so.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *so.BaseEndpoint)
	assert.True(t, so.UsePathStyle)
}

func TestNew_LoadConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}
	_, err := New(context.Background(), Options{Bucket: "b"})
	require.ErrorContains(t, err, "no profile")
}

func TestPut_WritesLiteJSON(t *testing.T) {
	f := &fakePutter{}
	s := newWithClient(f, "bucket", "archive")

	img := "big"
	entries := []models.Entry{
		{ID: "a", UserID: "u1", Date: "2026-03-01", Calories: 100, Image: &img, AISnapshot: json.RawMessage(`{"x":1}`)},
		{ID: "b", UserID: "u1", Date: "2026-03-01", Calories: 50},
	}
	require.NoError(t, s.Put(context.Background(), "u1", "2026-03-01", entries))

	assert.Equal(t, "bucket", *f.in.Bucket)
	assert.Equal(t, "archive/u1/2026-03-01.json", *f.in.Key)
	assert.Equal(t, "application/json", *f.in.ContentType)

	var got []models.Entry
	require.NoError(t, json.Unmarshal(f.body, &got))
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Image)
	assert.Nil(t, got[0].AISnapshot)
	assert.Equal(t, 100, got[0].Calories)
	assert.NotNil(t, entries[0].Image, "caller's slice untouched")
}

func TestPut_Error(t *testing.T) {
	s := newWithClient(&fakePutter{err: errors.New("access denied")}, "bucket", "")
	err := s.Put(context.Background(), "u1", "2026-03-01", nil)
	require.ErrorContains(t, err, "u1/2026-03-01.json")
	require.ErrorContains(t, err, "access denied")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "u/2026-01-02.json", Key("", "u", "2026-01-02"))
	assert.Equal(t, "p/q/u/2026-01-02.json", Key("p/q/", "u", "2026-01-02"))
}
