package document

import (
	"context"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/J-81/spacemake/internal/errors"
)

// S3Config holds construction parameters for the S3 source. Zero values fall
// back to the default AWS credentials chain and region resolution.
type S3Config struct {
	Region          string
	Endpoint        string // optional; custom endpoint such as MinIO
	AccessKeyID     string // optional
	SecretAccessKey string // optional
	PathStyle       bool
}

// S3Source reads documents from S3-compatible object storage.
type S3Source struct {
	client *s3.Client
}

// NewS3Source builds an S3 client from cfg.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3SourceWithClient(client), nil
}

// NewS3SourceWithClient wraps an existing client, mostly for tests.
func NewS3SourceWithClient(client *s3.Client) *S3Source {
	return &S3Source{client: client}
}

// Open returns the body of s3://bucket/key. The caller must close it.
func (s *S3Source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", location)
	}
	return out.Body, nil
}

// ParseS3Location splits s3://bucket/key.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" {
		return "", "", errors.Wrapf(errors.ErrInvalidLocation, "%q", location)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", errors.Wrapf(errors.ErrInvalidLocation, "%q: want s3://bucket/key", location)
	}
	return u.Host, key, nil
}
