package storage

import (
	"context"
	"errors"
)

// ErrUploadFailed wraps any transport or provider error from the asset host.
// Uploads are single-attempt; the caller aborts the whole write on failure.
var ErrUploadFailed = errors.New("image upload failed")

// UploadOptions conveys upload destination metadata.
type UploadOptions struct {
	Bucket    string
	KeyPrefix string
}

// Service sends product images to remote object storage and returns a
// durable, publicly fetchable URL.
type Service interface {
	UploadImage(ctx context.Context, dataURI string, opts UploadOptions) (string, error)
}
