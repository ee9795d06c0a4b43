// Package storage mirrors rendered QR passes to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"qrpass/internal/config"
)

const keyPrefix = "qrcodes"

// PutObjectAPI is the part of *s3.Client the mirror uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror uploads pass images under qrcodes/<file name>.
type S3Mirror struct {
	client PutObjectAPI
	bucket string
}

// NewS3Mirror builds an S3 client from cfg. A non-empty Endpoint selects a
// MinIO-style path-style endpoint with static credentials.
func NewS3Mirror(ctx context.Context, cfg config.S3Config) (*S3Mirror, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3MirrorWithClient(client, cfg.Bucket), nil
}

// NewS3MirrorWithClient wraps an existing client.
func NewS3MirrorWithClient(client PutObjectAPI, bucket string) *S3Mirror {
	return &S3Mirror{client: client, bucket: bucket}
}

// Key returns the object key for a local pass image.
func Key(localPath string) string {
	return path.Join(keyPrefix, filepath.Base(localPath))
}

// Upload copies the file at localPath to the bucket and returns its key.
func (m *S3Mirror) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := Key(localPath)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return key, nil
}
