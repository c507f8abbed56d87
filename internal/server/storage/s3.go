// Package storage provides the media store for avatar and cover images,
// backed by an S3-compatible object storage service.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/viewtube/internal/common"
	sc "github.com/dmitrijs2005/viewtube/internal/server/config"
)

// Upload describes one inbound file to store.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// MediaStore stores and removes media objects. Implementations return the
// public URL of a stored object; Delete accepts that same URL back.
type MediaStore interface {
	Upload(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

// S3MediaStore implements MediaStore over an S3-compatible backend
// (AWS S3 or MinIO).
type S3MediaStore struct {
	client   *s3.Client
	bucket   string
	baseURL  string
	uploadTO time.Duration
}

func NewS3MediaStore(cfg *sc.Config) (*S3MediaStore, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,     // MINIO_ROOT_USER
			cfg.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3MediaStore{
		client:   client,
		bucket:   cfg.S3Bucket,
		baseURL:  strings.TrimSuffix(cfg.S3BaseEndpoint, "/"),
		uploadTO: 30 * time.Second,
	}, nil
}

func randomStorageKey(fileName string) string {
	d := time.Now()
	return fmt.Sprintf("media/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), path.Ext(fileName))
}

// Upload stores the object under a random date-partitioned key and returns
// its public URL.
func (s *S3MediaStore) Upload(ctx context.Context, upload Upload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTO)
	defer cancel()

	key := randomStorageKey(upload.FileName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        upload.Body,
		ContentType: aws.String(upload.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUpstreamUnavailable, err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key), nil
}

// Delete removes the object identified by a URL previously returned from
// Upload. URLs that do not belong to this store are rejected.
func (s *S3MediaStore) Delete(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("%s/%s/", s.baseURL, s.bucket)
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" {
		return common.ErrorValidation
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUpstreamUnavailable, err)
	}
	return nil
}
