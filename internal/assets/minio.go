package assets

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig describes an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Secure    bool
}

// MinioProvider serves assets from object storage.
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioProvider connects to the bucket described by cfg.
func NewMinioProvider(cfg MinioConfig) (*MinioProvider, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioProvider{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (p *MinioProvider) key(ref string) string {
	if p.prefix == "" {
		return ref
	}
	return p.prefix + "/" + ref
}

// Open fetches the object. Missing objects yield ErrNotFound.
func (p *MinioProvider) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, p.key(ref), minio.GetObjectOptions{})
	if err != nil {
		return nil, p.mapErr(ref, err)
	}
	// GetObject is lazy; Stat surfaces NoSuchKey before the caller reads.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, p.mapErr(ref, err)
	}
	return obj, nil
}

// Upload puts a local file into the bucket under ref.
func (p *MinioProvider) Upload(ctx context.Context, ref, localPath string) error {
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := p.client.FPutObject(ctx, p.bucket, p.key(ref), localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", ref, err)
	}
	return nil
}

func (p *MinioProvider) mapErr(ref string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return fmt.Errorf("minio get %s: %w", ref, err)
}
