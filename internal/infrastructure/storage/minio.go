package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/voxcast/voxcast/errors"
	"github.com/voxcast/voxcast/pkg/config"
)

// Client wraps object storage operations for audio and feed artifacts.
type Client struct {
	client       *minio.Client
	bucket       string
	region       string
	endpoint     string
	useSSL       bool
	customDomain string
}

// NewClient creates a storage client and bootstraps the bucket
func NewClient(cfg *config.StorageConfig) (*Client, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	client := &Client{
		client:       minioClient,
		bucket:       cfg.BucketName,
		region:       cfg.Region,
		endpoint:     endpoint,
		useSSL:       cfg.UseSSL,
		customDomain: cfg.CustomDomain,
	}

	ctx := context.Background()
	if err := client.ensureBucketWithPolicy(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return client, nil
}

// ensureBucketWithPolicy ensures bucket exists and has public read policy
func (c *Client) ensureBucketWithPolicy(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	// Podcast clients fetch enclosures anonymously, so objects must be
	// publicly readable.
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/*"]
			}
		]
	}`, c.bucket)

	if err := c.client.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	return nil
}

// UploadFile uploads an object and returns its public URL
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string, metadata map[string]string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", apperrors.ErrStorageFailed("upload", err)
	}

	return c.PublicURL(objectName), nil
}

// UploadBytes uploads an in-memory payload and returns its public URL
func (c *Client) UploadBytes(ctx context.Context, objectName string, data []byte, contentType string, metadata map[string]string) (string, error) {
	return c.UploadFile(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType, metadata)
}

// DownloadFile retrieves an object's bytes
func (c *Client) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.ErrStorageFailed("download", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, apperrors.ErrStorageFailed("download", err)
	}
	return data, nil
}

// ListFiles lists object keys under a prefix
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var files []string

	objectCh := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, apperrors.ErrStorageFailed("list", object.Err)
		}
		files = append(files, object.Key)
	}

	return files, nil
}

// DeleteFile removes an object
func (c *Client) DeleteFile(ctx context.Context, objectName string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.ErrStorageFailed("delete", err)
	}
	return nil
}

// PublicURL resolves the anonymous download URL for an object. A custom
// domain wins, then the configured endpoint, then the AWS virtual-hosted
// form.
func (c *Client) PublicURL(objectName string) string {
	objectName = strings.TrimPrefix(objectName, "/")

	if c.customDomain != "" {
		domain := strings.TrimSuffix(c.customDomain, "/")
		if !strings.Contains(domain, "://") {
			domain = "https://" + domain
		}
		return fmt.Sprintf("%s/%s", domain, objectName)
	}

	if c.endpoint != "" && !strings.Contains(c.endpoint, "amazonaws.com") {
		scheme := "http"
		if c.useSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s/%s", scheme, c.endpoint, c.bucket, objectName)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, objectName)
}
