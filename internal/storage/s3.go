package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Scheme prefixes object-storage stream names.
const S3Scheme = "s3://"

// S3Config holds construction parameters for the S3 backend. Credentials
// fall back to the default AWS chain when AccessKeyID is empty.
type S3Config struct {
	Region          string
	Endpoint        string // optional; enables a custom endpoint (e.g. MinIO)
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Verify *S3 satisfies Provider at compile time.
var _ Provider = (*S3)(nil)

// S3 implements Provider for s3://bucket/key names.
type S3 struct {
	client *s3.Client
}

// NewS3 builds an S3 client from cfg.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3FromClient(client), nil
}

// NewS3FromClient wraps an existing client.
func NewS3FromClient(client *s3.Client) *S3 {
	return &S3{client: client}
}

// ParseS3Name splits s3://bucket/key into bucket and key.
func ParseS3Name(name string) (bucket, key string, err error) {
	if !strings.HasPrefix(name, S3Scheme) {
		return "", "", fmt.Errorf("storage: not an s3 name: %q", name)
	}
	u, err := url.Parse(name)
	if err != nil {
		return "", "", fmt.Errorf("storage: parse %q: %w", name, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("storage: s3 name needs bucket and key: %q", name)
	}
	return bucket, key, nil
}

// Open streams an object body.
func (s *S3) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Name(name)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("storage: get %s: %w", name, err)
	}
	return out.Body, nil
}

// Create buffers the report in memory and uploads it on Commit, so an
// aborted run never leaves a partial object.
func (s *S3) Create(ctx context.Context, name string) (Sink, error) {
	bucket, key, err := ParseS3Name(name)
	if err != nil {
		return nil, err
	}
	return &s3Sink{ctx: ctx, client: s.client, bucket: bucket, key: key}, nil
}

type s3Sink struct {
	ctx    context.Context
	client *s3.Client
	bucket string
	key    string
	buf    bytes.Buffer
	done   bool
}

func (s *s3Sink) Write(p []byte) (int, error) {
	if s.done {
		return 0, fmt.Errorf("storage: write to closed sink s3://%s/%s", s.bucket, s.key)
	}
	return s.buf.Write(p)
}

func (s *s3Sink) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	_, err := s.client.PutObject(s.ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(s.buf.Bytes()),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("storage: put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *s3Sink) Abort() error {
	s.done = true
	s.buf.Reset()
	return nil
}
