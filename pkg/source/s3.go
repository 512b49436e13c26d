package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 client configuration.
type S3Config struct {
	// Region is the AWS region (e.g., "us-east-1")
	Region string

	// Endpoint overrides the default S3 endpoint (for S3-compatible services)
	Endpoint string

	// UsePathStyle forces path-style addressing (for MinIO, LocalStack)
	UsePathStyle bool

	// Credentials (optional - uses default chain if not provided)
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// DownloadTimeout bounds a single object fetch.
	DownloadTimeout time.Duration
}

// DefaultS3Config returns sensible defaults for S3 configuration.
func DefaultS3Config() S3Config {
	return S3Config{
		DownloadTimeout: 5 * time.Minute,
	}
}

// S3Client fetches log objects from S3.
type S3Client struct {
	cfg    S3Config
	client *s3.Client
}

// NewS3Client creates a new S3 client.
func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	// Use explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if cfg.DownloadTimeout == 0 {
		cfg.DownloadTimeout = 5 * time.Minute
	}

	return &S3Client{
		cfg:    cfg,
		client: s3.NewFromConfig(awsCfg, s3Opts...),
	}, nil
}

// Source builds a source from an s3://bucket/key location.
func (c *S3Client) Source(raw string) (*S3Source, error) {
	bucket, key, err := ParseS3URL(raw)
	if err != nil {
		return nil, err
	}
	return &S3Source{client: c, bucket: bucket, key: key}, nil
}

// ParseS3URL splits an s3://bucket/key location.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %q", raw)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 location %q, want s3://bucket/key", raw)
	}
	return bucket, key, nil
}

// S3Source is one log object in S3.
type S3Source struct {
	client *S3Client
	bucket string
	key    string
}

func (s *S3Source) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Open fetches the object body.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.client.cfg.DownloadTimeout)

	output, err := s.client.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to get object %s/%s: %w", s.bucket, s.key, err)
	}

	// Release the timeout when the body closes
	return &cancelOnCloseReader{ReadCloser: output.Body, cancel: cancel}, nil
}

type cancelOnCloseReader struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *cancelOnCloseReader) Close() error {
	r.cancel()
	return r.ReadCloser.Close()
}
