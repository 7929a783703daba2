// internal/storage/storage.go
//
// Media uploads for program images.
//
// Context
// -------
// Objects live in one S3-compatible bucket under keys shaped like
// "programs/<unix-ms>-<uuid>-<safe-name>" so listings sort roughly by
// upload time and names can never collide or escape the prefix.  The
// returned URL is public; the bucket (or the CDN in front of it) is
// expected to allow anonymous reads under the configured base URL.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Config carries the bucket coordinates.  Endpoint is optional and
// points at an S3-compatible service (MinIO and friends) when set.
type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// api is the slice of the S3 client the store uses; *s3.Client
// satisfies it and tests substitute a fake.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store uploads and deletes media objects.
type Store struct {
	client  api
	bucket  string
	baseURL string
	now     func() time.Time
}

// New builds a Store from cfg.  Returns nil when no bucket is
// configured; media endpoints then report the feature as unavailable.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("storage: aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &Store{client: client, bucket: cfg.Bucket, baseURL: baseURL, now: time.Now}, nil
}

// Store uploads data under prefix and returns the object key and its
// public URL.
func (s *Store) Store(ctx context.Context, data []byte, contentType, prefix, filename string) (key, publicURL string, err error) {
	if prefix == "" {
		prefix = "programs"
	}
	key = fmt.Sprintf("%s/%d-%s-%s", prefix, s.now().UnixMilli(), uuid.New(), safeName(filename))

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("storage: put %s: %w", key, err)
	}
	return key, s.baseURL + "/" + key, nil
}

// Delete removes the object behind publicURL.  URLs outside the
// configured base are rejected so an admin cannot aim the call at an
// unrelated bucket path.
func (s *Store) Delete(ctx context.Context, publicURL string) error {
	key, ok := s.keyFromURL(publicURL)
	if !ok {
		return fmt.Errorf("storage: url %q is not under the media base", publicURL)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) keyFromURL(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, s.baseURL+"/") {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, s.baseURL+"/")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

// safeName keeps letters, digits, dot, dash and underscore; everything
// else becomes an underscore.
func safeName(name string) string {
	if name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
