package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"nestadmin/internal/config"
	"nestadmin/internal/testsupport"
)

type fakeObjects struct {
	mu      sync.Mutex
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []string
	putErr  error
	delErr  error
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deletes = append(f.deletes, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testMedia() config.Media {
	return config.Media{
		Bucket:      "nest-media",
		Region:      "eu-west-1",
		PublicURL:   "https://cdn.example.com/",
		ImagePrefix: "images",
		AudioPrefix: "/audio/",
		MaxImageMB:  1,
		MaxAudioMB:  2,
	}
}

func newTestUploader(t *testing.T, cfg config.Media) (*Uploader, *fakeObjects) {
	t.Helper()
	objects := &fakeObjects{}
	u, err := New(cfg, WithObjectAPI(objects))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u.newID = func() string { return "fixed-id" }
	return u, objects
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(config.Media{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := New(config.Media{Bucket: "b"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	if _, err := New(config.Media{Bucket: "b", AccessKey: "a", SecretKey: "s", Endpoint: "http://localhost:9000", PathStyle: true}); err != nil {
		t.Fatalf("New with credentials: %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	u, objects := newTestUploader(t, testMedia())
	path := filepath.Join(t.TempDir(), "Cover.PNG")
	testsupport.WriteMediaFile(t, path, testsupport.PNGHeader, 2048)

	got, err := u.UploadImage(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	want := Upload{
		URL:         "https://cdn.example.com/images/fixed-id.png",
		Key:         "images/fixed-id.png",
		ContentType: "image/png",
		Size:        2048,
	}
	if got != want {
		t.Fatalf("upload = %+v, want %+v", got, want)
	}
	if len(objects.puts) != 1 {
		t.Fatalf("puts = %d", len(objects.puts))
	}
	put := objects.puts[0]
	if *put.Bucket != "nest-media" || *put.ContentType != "image/png" || put.ACL != types.ObjectCannedACLPublicRead {
		t.Fatalf("put input = %+v", put)
	}
	if len(objects.bodies[0]) != 2048 {
		t.Fatalf("uploaded %d bytes, want full file", len(objects.bodies[0]))
	}
}

func TestUploadAudioUsesAudioPrefix(t *testing.T) {
	u, _ := newTestUploader(t, testMedia())
	path := filepath.Join(t.TempDir(), "rain.mp3")
	testsupport.WriteMediaFile(t, path, testsupport.MP3Header, 4096)

	got, err := u.UploadAudio(context.Background(), path)
	if err != nil {
		t.Fatalf("UploadAudio: %v", err)
	}
	if got.Key != "audio/fixed-id.mp3" || got.ContentType != "audio/mpeg" {
		t.Fatalf("upload = %+v", got)
	}
}

func TestUploadRejectsWrongType(t *testing.T) {
	u, objects := newTestUploader(t, testMedia())
	path := filepath.Join(t.TempDir(), "cover.png")
	testsupport.WriteMediaFile(t, path, testsupport.PNGHeader, 100)

	if _, err := u.UploadAudio(context.Background(), path); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if len(objects.puts) != 0 {
		t.Fatal("rejected file was uploaded")
	}
}

func TestUploadRejectsOversizeAndEmpty(t *testing.T) {
	u, _ := newTestUploader(t, testMedia())
	dir := t.TempDir()

	big := filepath.Join(dir, "big.png")
	testsupport.WriteMediaFile(t, big, testsupport.PNGHeader, 1<<20+1)
	if _, err := u.UploadImage(context.Background(), big); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	empty := filepath.Join(dir, "empty.png")
	testsupport.WriteMediaFile(t, empty, nil, 0)
	if _, err := u.UploadImage(context.Background(), empty); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestUploadWrapsS3Errors(t *testing.T) {
	u, objects := newTestUploader(t, testMedia())
	objects.putErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	path := filepath.Join(t.TempDir(), "cover.png")
	testsupport.WriteMediaFile(t, path, testsupport.PNGHeader, 64)

	_, err := u.UploadImage(context.Background(), path)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	u, objects := newTestUploader(t, testMedia())
	if err := u.Delete(context.Background(), "/images/a.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(objects.deletes) != 1 || objects.deletes[0] != "images/a.png" {
		t.Fatalf("deletes = %v", objects.deletes)
	}

	objects.delErr = &types.NoSuchKey{}
	if err := u.Delete(context.Background(), "images/b.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := u.Delete(context.Background(), " "); !errors.Is(err, ErrDeleteFailed) {
		t.Fatalf("expected ErrDeleteFailed, got %v", err)
	}
}

func TestPublicURLForms(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Media
		want string
	}{
		{"cdn", config.Media{Bucket: "b", PublicURL: "https://cdn.example.com"}, "https://cdn.example.com/k.png"},
		{"path style", config.Media{Bucket: "b", Endpoint: "http://minio:9000/", PathStyle: true}, "http://minio:9000/b/k.png"},
		{"virtual host endpoint", config.Media{Bucket: "b", Endpoint: "https://b.r2.dev"}, "https://b.r2.dev/k.png"},
		{"aws", config.Media{Bucket: "b", Region: "us-west-2"}, "https://b.s3.us-west-2.amazonaws.com/k.png"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := &Uploader{cfg: tc.cfg}
			if got := u.PublicURL("k.png"); got != tc.want {
				t.Fatalf("PublicURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDetectContentTypeFallsBackToExtension(t *testing.T) {
	got, err := detectContentType(strings.NewReader("\x00\x00\x00\x00unknown"), "track.flac")
	if err != nil {
		t.Fatalf("detectContentType: %v", err)
	}
	if got != "audio/flac" {
		t.Fatalf("content type = %q", got)
	}
}
