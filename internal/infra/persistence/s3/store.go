// Package s3 stores the article document as a single object in an
// S3-compatible bucket (AWS S3 or MinIO). PutObject replaces the object
// atomically, so readers see either the previous or the new document.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"stockcore/pkg/domain"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "articulos.json"

var _ domain.DocumentStore = (*Store)(nil)

// Store implements domain.DocumentStore on one object of one bucket.
type Store struct {
	client *s3.Client
	bucket string
	key    string
}

// Config holds explicit construction parameters.
type Config struct {
	Region          string
	Bucket          string
	Key             string
	Endpoint        string // optional; if set enables custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string // optional
	SessionToken    string // optional
	PathStyle       bool
}

// New creates an S3 document store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewWithClient wraps an already configured client.
func NewWithClient(client *s3.Client, bucket, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, bucket: bucket, key: key}
}

func (s *Store) Driver() domain.Driver { return domain.DriverS3 }

func (s *Store) Close() error { return nil }

// Init writes an empty collection when the object does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return domain.ReadError(domain.DriverS3, fmt.Errorf("head %s: %w", s.key, err))
	}
	return s.Save(ctx, domain.Collection{})
}

func (s *Store) Load(ctx context.Context) (domain.Collection, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		return nil, domain.ReadError(domain.DriverS3, fmt.Errorf("get %s: %w", s.key, err))
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domain.ReadError(domain.DriverS3, fmt.Errorf("read %s: %w", s.key, err))
	}
	return domain.DecodeCollection(data)
}

func (s *Store) Save(ctx context.Context, c domain.Collection) error {
	data, err := domain.EncodeCollection(c)
	if err != nil {
		return domain.WriteError(domain.DriverS3, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &s.key,
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return domain.WriteError(domain.DriverS3, fmt.Errorf("put %s: %w", s.key, err))
	}
	return nil
}

// Key returns the object key holding the document.
func (s *Store) Key() string { return s.key }

type statusCoder interface {
	HTTPStatusCode() int
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	if errors.As(err, &nf) || errors.As(err, &nsk) {
		return true
	}
	var sc statusCoder
	return errors.As(err, &sc) && sc.HTTPStatusCode() == 404
}
