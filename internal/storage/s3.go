package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// extensions for the image content types the console accepts.
var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// S3Service uploads product images to Amazon S3 (or compatible APIs).
type S3Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	endpoint string
}

// NewS3Service builds a storage service. endpoint, when non-empty, is an
// S3-compatible base URL and switches public URLs to path style.
func NewS3Service(client *s3.Client, region, endpoint string) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   region,
		endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

func (s *S3Service) UploadImage(ctx context.Context, dataURI string, opts UploadOptions) (string, error) {
	if opts.Bucket == "" {
		return "", fmt.Errorf("storage bucket is required")
	}

	contentType, payload, err := decodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	keyPrefix := strings.Trim(opts.KeyPrefix, "/")
	key := uuid.NewString() + imageExtensions[contentType]
	if keyPrefix != "" {
		key = keyPrefix + "/" + key
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrUploadFailed, key, err)
	}

	return s.objectURL(opts.Bucket, key), nil
}

func (s *S3Service) objectURL(bucket, key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key)
}

// decodeDataURI splits a base64 data URI (data:image/png;base64,....) into
// its content type and raw bytes.
func decodeDataURI(dataURI string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}

	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI payload missing")
	}

	contentType, _, _ := strings.Cut(header, ";")
	if !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("data URI must be base64 encoded")
	}
	if _, known := imageExtensions[contentType]; !known {
		return "", nil, fmt.Errorf("unsupported image type %q", contentType)
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("decode image payload: %w", err)
	}
	if len(payload) == 0 {
		return "", nil, fmt.Errorf("empty image payload")
	}
	return contentType, payload, nil
}

var _ Service = (*S3Service)(nil)
