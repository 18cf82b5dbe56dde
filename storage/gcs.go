// Package storage uploads files to Google Cloud Storage.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/freedome/freedome/errors"
	"github.com/freedome/freedome/log"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCS stores objects in one bucket. Objects are served from their public
// URL, so the bucket must allow public reads.
type GCS struct {
	Client *storage.Client
	Bucket string
}

// NewGCS connects to Cloud Storage. With an empty credentialsFile the
// application default credentials are used.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.E(errors.Op("storage.NewGCS"), err)
	}
	return &GCS{Client: client, Bucket: bucket}, nil
}

// Close closes the underlying client.
func (s *GCS) Close() error {
	return s.Client.Close()
}

// Upload writes r to path and returns the object's public URL.
func (s *GCS) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	const op errors.Op = "GCS.Upload"

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w := s.Client.Bucket(s.Bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", errors.E(op, errors.Internal, err)
	}
	if err := w.Close(); err != nil {
		return "", errors.E(op, errors.Internal, err)
	}

	log.FromContext(ctx).Info("uploaded object",
		zap.String("bucket", s.Bucket),
		zap.String("path", path),
		zap.Int64("size", w.Attrs().Size))

	return PublicURL(s.Bucket, path), nil
}

// PublicURL is the https URL of an object in a publicly readable bucket.
func PublicURL(bucket, path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(parts, "/")
}
