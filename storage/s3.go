package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/stylefit/tryon-server/config"
)

// UploadResult is what Upload returns: the stable public URL served to
// clients plus the bucket path kept for later deletion.
type UploadResult struct {
	URL  string
	Path string
}

// S3Store stores image blobs in a public-read S3 bucket and hands out
// stable public URLs.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store builds an S3Store using the default AWS credential chain.
func NewS3Store(ctx context.Context, cfg *appconfig.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimSuffix(cfg.S3BaseURL, "/"),
	}, nil
}

// Upload writes data under a fresh unique key inside folder and returns
// the public URL and path.
func (s *S3Store) Upload(ctx context.Context, data []byte, folder, contentType string) (UploadResult, error) {
	ext := "jpg"
	if contentType == "image/png" {
		ext = "png"
	}
	path := fmt.Sprintf("%s/%s.%s", folder, uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("failed to upload %s: %w", path, err)
	}

	return UploadResult{URL: s.baseURL + "/" + path, Path: path}, nil
}

// Delete removes the object at path. Missing objects are not an error.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		log.Printf("Failed to delete object %s: %v", path, err)
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// URLToPath inverts Upload's URL construction. It returns "" when the URL
// does not belong to this store.
func (s *S3Store) URLToPath(url string) string {
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return ""
	}
	return strings.TrimPrefix(url, s.baseURL+"/")
}
