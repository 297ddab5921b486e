// internal/services/storage_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/config"
)

// ObjectStore keeps file bytes. Keys are generated by the services and never
// taken from user input.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Locate(ctx context.Context, key string, ttl time.Duration) (*ObjectLocation, error)
}

// ObjectLocation tells the caller where to fetch an object: either a
// short-lived URL or a path on local disk.
type ObjectLocation struct {
	URL       string
	LocalPath string
	ExpiresAt time.Time
}

// StorageService stores objects in S3 when configured and falls back to a
// local directory for development.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.Storage.Driver != "s3" {
		if err := os.MkdirAll(config.Storage.LocalDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		return &StorageService{config: config}, nil
	}

	awsConfig := &aws.Config{
		Region: aws.String(config.AWS.Region),
	}
	if config.AWS.AccessKeyID != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		)
	}
	if config.AWS.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.AWS.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	// Create AWS session
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

func (s *StorageService) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	if s.s3Client != nil {
		_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.config.AWS.S3Bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(size),
		})
		if err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
		return nil
	}

	localPath, err := s.localPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if s.s3Client != nil {
		_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to delete file from S3: %w", err)
		}
		return nil
	}

	localPath, err := s.localPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Locate returns a presigned GET URL for S3 objects or the local file path.
func (s *StorageService) Locate(ctx context.Context, key string, ttl time.Duration) (*ObjectLocation, error) {
	if s.s3Client != nil {
		req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
			Bucket: aws.String(s.config.AWS.S3Bucket),
			Key:    aws.String(key),
		})
		req.SetContext(ctx)

		url, err := req.Presign(ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
		}
		return &ObjectLocation{URL: url, ExpiresAt: time.Now().Add(ttl)}, nil
	}

	localPath, err := s.localPath(key)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return &ObjectLocation{LocalPath: localPath}, nil
}

// DeleteAll removes objects, logging failures instead of stopping.
func DeleteAll(ctx context.Context, store ObjectStore, keys []string) {
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to delete stored object")
		}
	}
}

func (s *StorageService) localPath(key string) (string, error) {
	root, err := filepath.Abs(s.config.Storage.LocalDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	full := filepath.Join(root, filepath.FromSlash(path.Clean("/"+key)))
	if !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

// objectKey builds "<folder>/<yyyymmdd>_<uuid><ext>" from the original name.
func objectKey(folder, originalName string) string {
	// Generate UUID for uniqueness
	id := uuid.New()

	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 {
		ext = ""
	}

	timestamp := time.Now().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, id.String(), ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}
	return filename
}
