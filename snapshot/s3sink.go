package snapshot

import (
	"bytes"
	"context"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mediahub/vhub/errors"
)

// S3Sink mirrors written snapshots to an S3-compatible bucket. Upload
// failures are logged by the caller, never propagated — disk write is the
// contract spec.md §4.3.8 requires; S3 is a config-selected extra
// (SPEC_FULL.md §4).
type S3Sink struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Sink loads the AWS config for bucket. Region comes from region if
// set; credentials come from accessKey/secretKey if both are set, otherwise
// from the default credential chain (environment, shared config, instance
// role) — the usual shape for talking to AWS itself rather than a
// self-hosted S3-compatible store.
func NewS3Sink(ctx context.Context, bucket, region, endpoint, prefix, accessKey, secretKey string) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.WrapFatal(err, "snapshot", "NewS3Sink", "load AWS config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
	})

	return &S3Sink{uploader: manager.NewUploader(client), bucket: bucket, prefix: prefix}, nil
}

// Upload writes data to key under the sink's bucket/prefix. Intended to be
// called from a background goroutine; logs rather than returns on failure.
func (s *S3Sink) Upload(ctx context.Context, key string, data []byte, logger *slog.Logger) {
	fullKey := key
	if s.prefix != "" {
		fullKey = s.prefix + "/" + key
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &fullKey,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		logger.Warn("s3 snapshot mirror upload failed", "key", fullKey, "error", err)
	}
}
