// Package s3 stores company media in an S3-compatible bucket and serves it
// from a public base URL.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/bizdir/company-api/internal/core/ports"
)

// ErrNotDerivable is returned by AssetID for URLs that do not name an asset.
var ErrNotDerivable = errors.New("s3: asset id not derivable from url")

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".avif": true, ".gif": true, ".svg": true,
}

// API is the subset of *s3.Client the store uses.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // e.g. a MinIO URL; empty means AWS
	AccessKey string
	SecretKey string
	// PublicBaseURL prefixes object keys in returned URLs. Derived from the
	// endpoint and bucket when empty.
	PublicBaseURL string
}

// NewClient builds an S3 client. Static credentials are used when an access
// key is configured, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// MediaStore implements ports.MediaStore.
type MediaStore struct {
	api     API
	bucket  string
	baseURL string
	newKey  func() string
}

var _ ports.MediaStore = (*MediaStore)(nil)

func NewMediaStore(api API, cfg Config) *MediaStore {
	return &MediaStore{
		api:     api,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		newKey:  uuid.NewString,
	}
}

func publicBaseURL(cfg Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Upload stores the object under <folder>/<uuid>.<format>.
func (m *MediaStore) Upload(ctx context.Context, obj ports.MediaObject) (string, error) {
	ext := obj.Format
	if ext == "" {
		ext = "bin"
	}
	key := path.Join(obj.Folder, m.newKey()+"."+ext)

	in := &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        obj.Body,
		ContentType: aws.String(obj.ContentType),
	}
	if obj.Size > 0 {
		in.ContentLength = aws.Int64(obj.Size)
	}
	if _, err := m.api.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return m.baseURL + "/" + key, nil
}

// Destroy deletes the object whose key is assetID.
func (m *MediaStore) Destroy(ctx context.Context, assetID string) error {
	_, err := m.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", assetID, err)
	}
	return nil
}

// AssetID returns "<folder>/<file>" from the last two path segments of
// rawURL. The file must carry an image extension.
func (m *MediaStore) AssetID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("%w: %q", ErrNotDerivable, rawURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return "", fmt.Errorf("%w: %q", ErrNotDerivable, rawURL)
	}
	folder, file := segments[len(segments)-2], segments[len(segments)-1]
	if folder == "" || !imageExtensions[strings.ToLower(path.Ext(file))] {
		return "", fmt.Errorf("%w: %q", ErrNotDerivable, rawURL)
	}
	return folder + "/" + file, nil
}

// Ping checks that the bucket is reachable, for the readiness probe.
func (m *MediaStore) Ping(ctx context.Context) error {
	_, err := m.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(m.bucket)})
	return err
}
