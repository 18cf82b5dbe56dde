package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"cloud.google.com/go/storage"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		bucket, path string
		want         string
	}{
		{"freedome", "logos/u1/1714564800.png", "https://storage.googleapis.com/freedome/logos/u1/1714564800.png"},
		{"freedome", "logos/u 1/λογότυπο.png", "https://storage.googleapis.com/freedome/logos/u%201/%CE%BB%CE%BF%CE%B3%CF%8C%CF%84%CF%85%CF%80%CE%BF.png"},
	}
	for _, test := range tests {
		if got := PublicURL(test.bucket, test.path); got != test.want {
			t.Errorf("PublicURL(%q, %q) = %q, want %q", test.bucket, test.path, got, test.want)
		}
	}
}

// TestUpload runs against fake-gcs-server or another emulator named by
// STORAGE_EMULATOR_HOST, with a bucket named by GCS_TEST_BUCKET.
func TestUpload(t *testing.T) {
	bucket := os.Getenv("GCS_TEST_BUCKET")
	if os.Getenv("STORAGE_EMULATOR_HOST") == "" || bucket == "" {
		t.Skip("STORAGE_EMULATOR_HOST or GCS_TEST_BUCKET not set")
	}

	ctx := context.Background()
	s, err := NewGCS(ctx, bucket, "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	data := []byte("\x89PNG fake image")
	url, err := s.Upload(ctx, "logos/u1/1.png", "image/png", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(url, "/logos/u1/1.png") {
		t.Errorf("url = %q", url)
	}

	obj := s.Client.Bucket(bucket).Object("logos/u1/1.png")
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := attrs.ContentType, "image/png"; got != want {
		t.Errorf("content type = %q, want %q", got, want)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("object = %q, want %q", got, data)
	}

	if err := obj.Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
		t.Error(err)
	}
}
