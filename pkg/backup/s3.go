package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/pkg/config"
)

// NewS3Client builds an S3 client from the backup configuration. Static
// credentials are used when both keys are set, otherwise the SDK's default
// chain applies. Endpoint and path-style addressing support S3-compatible
// services like MinIO.
func NewS3Client(ctx context.Context, cfg *config.S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)

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

	return s3.NewFromConfig(awsCfg, s3Opts...), nil
}

// Upload stores the snapshot file in the configured bucket and returns the
// object key.
func Upload(ctx context.Context, client *s3.Client, cfg *config.S3Config, path string) (string, error) {
	if cfg.Bucket == "" {
		return "", fmt.Errorf("backup.s3.bucket is not configured")
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer func() { _ = file.Close() }()

	key := objectKey(cfg.Prefix, filepath.Base(path))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}

	logger.Info("Snapshot uploaded", "bucket", cfg.Bucket, "key", key)
	return key, nil
}

// Download fetches a snapshot object from the configured bucket into
// destPath. Relative keys get the configured prefix prepended.
func Download(ctx context.Context, client *s3.Client, cfg *config.S3Config, key, destPath string) error {
	if cfg.Bucket == "" {
		return fmt.Errorf("backup.s3.bucket is not configured")
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(objectKey(cfg.Prefix, key)),
	})
	if err != nil {
		return fmt.Errorf("s3 get object: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	logger.Info("Snapshot downloaded", "bucket", cfg.Bucket, "key", key, "path", destPath)
	return file.Sync()
}

// objectKey joins the configured prefix and the snapshot file name. Keys
// that already carry the prefix pass through unchanged, so Download accepts
// both bare names and full keys.
func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if strings.HasPrefix(name, prefix+"/") {
		return name
	}
	return prefix + "/" + name
}
