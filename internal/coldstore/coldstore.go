// Package coldstore writes a copy of swept entries to S3-compatible object
// storage before the archival engine deletes them.
package coldstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/nutrilog/internal/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

var ErrNoBucket = errors.New("coldstore: bucket not configured")

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options locate the bucket. AccessKey and SecretKey are optional; without
// them the default AWS credential chain is used. A BaseEndpoint switches to
// path-style addressing, as MinIO expects.
type Options struct {
	Bucket       string
	Prefix       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type Store struct {
	client putter
	bucket string
	prefix string
}

func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, ErrNoBucket
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("coldstore: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return newWithClient(client, opts.Bucket, opts.Prefix), nil
}

func newWithClient(c putter, bucket, prefix string) *Store {
	return &Store{client: c, bucket: bucket, prefix: prefix}
}

// Key is the object name for one user-day.
func Key(prefix, userID, date string) string {
	return path.Join(prefix, userID, date+".json")
}

// Put stores the lite projection of entries as a JSON array under
// Key(prefix, userID, date). An existing object is replaced.
func (s *Store) Put(ctx context.Context, userID, date string, entries []models.Entry) error {
	lite := make([]models.Entry, len(entries))
	for i, e := range entries {
		lite[i] = e.Lite()
	}
	body, err := json.Marshal(lite)
	if err != nil {
		return fmt.Errorf("coldstore: encode %s/%s: %w", userID, date, err)
	}

	key := Key(s.prefix, userID, date)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("coldstore: put %s: %w", key, err)
	}
	return nil
}
