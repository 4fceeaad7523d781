package artifacts

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arnavsurve/smokeshot/pkg/core"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Publisher uploads run artifacts to an S3-compatible bucket.
type Publisher struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewPublisher builds a Publisher from a resolved publish configuration.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain applies.
func NewPublisher(ctx context.Context, cfg core.PublishConfig) (*Publisher, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewPublisherFromClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewPublisherFromClient wraps an existing S3 client.
func NewPublisherFromClient(client *s3.Client, bucket, prefix string) *Publisher {
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key is the object key a file is stored under for runID.
func (p *Publisher) Key(runID, localPath string) string {
	return path.Join(p.prefix, runID, filepath.Base(localPath))
}

// Publish uploads every non-empty path under prefix/runID/ and returns the s3:// URIs.
// It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, runID string, paths ...string) ([]string, error) {
	var uris []string
	for _, localPath := range paths {
		if localPath == "" {
			continue
		}

		f, err := os.Open(localPath)
		if err != nil {
			return uris, fmt.Errorf("opening artifact %q: %w", localPath, err)
		}

		key := p.Key(runID, localPath)
		contentType := mime.TypeByExtension(filepath.Ext(localPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String(contentType),
		})
		f.Close()
		if err != nil {
			return uris, fmt.Errorf("uploading %q to s3://%s/%s: %w", localPath, p.bucket, key, err)
		}

		uris = append(uris, fmt.Sprintf("s3://%s/%s", p.bucket, key))
	}
	return uris, nil
}
