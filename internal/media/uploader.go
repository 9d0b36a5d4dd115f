package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"nestadmin/internal/config"
	"nestadmin/internal/logging"
)

// ObjectAPI is the slice of the S3 client the uploader calls.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Upload describes a stored object.
type Upload struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Uploader stores media files in one bucket.
type Uploader struct {
	cfg    config.Media
	api    ObjectAPI
	logger *slog.Logger
	newID  func() string
}

// Option customizes an Uploader.
type Option func(*Uploader)

// WithObjectAPI replaces the S3 client, for tests and alternate backends.
func WithObjectAPI(api ObjectAPI) Option {
	return func(u *Uploader) {
		if api != nil {
			u.api = api
		}
	}
}

// WithLogger sets the uploader logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Uploader) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// New builds an uploader from the media config.
func New(cfg config.Media, opts ...Option) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	u := &Uploader{
		cfg:    cfg,
		logger: logging.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	if u.api == nil {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("%w: access and secret keys are required", ErrNotConfigured)
		}
		s3Opts := []func(*s3.Options){
			func(o *s3.Options) {
				o.Region = cfg.Region
				o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
			},
		}
		if cfg.Endpoint != "" {
			s3Opts = append(s3Opts, func(o *s3.Options) {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = cfg.PathStyle
			})
		}
		u.api = s3.New(s3.Options{}, s3Opts...)
	}
	u.logger = logging.NewComponentLogger(u.logger, "media")
	return u, nil
}

// UploadImage stores an image file.
func (u *Uploader) UploadImage(ctx context.Context, filePath string) (Upload, error) {
	return u.upload(ctx, KindImage, filePath)
}

// UploadAudio stores an audio file.
func (u *Uploader) UploadAudio(ctx context.Context, filePath string) (Upload, error) {
	return u.upload(ctx, KindAudio, filePath)
}

func (u *Uploader) upload(ctx context.Context, kind Kind, filePath string) (Upload, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return Upload{}, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Upload{}, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory", filePath)
	}
	size := info.Size()
	if size == 0 {
		return Upload{}, ErrEmptyFile
	}
	if limit := u.limit(kind); limit > 0 && size > limit {
		return Upload{}, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, filepath.Base(filePath), size, limit)
	}

	contentType, err := detectContentType(f, filePath)
	if err != nil {
		return Upload{}, err
	}
	if !allowed(kind, contentType) {
		return Upload{}, fmt.Errorf("%w: %s is %s, want %s", ErrInvalidType, filepath.Base(filePath), contentType, kind)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Upload{}, fmt.Errorf("rewind %s: %w", filePath, err)
	}

	key := u.buildKey(kind, filePath, contentType)
	_, err = u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return Upload{}, wrapS3Error(err, ErrUploadFailed)
	}

	out := Upload{URL: u.PublicURL(key), Key: key, ContentType: contentType, Size: size}
	logging.WithContext(ctx, u.logger).Info("media uploaded",
		"kind", kind.String(),
		"key", key,
		"content_type", contentType,
		"size", size,
	)
	return out, nil
}

// Delete removes an object by key.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrDeleteFailed)
	}
	_, err := u.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	logging.WithContext(ctx, u.logger).Info("media deleted", "key", key)
	return nil
}

// PublicURL returns the unsigned URL for key.
func (u *Uploader) PublicURL(key string) string {
	if u.cfg.PublicURL != "" {
		return strings.TrimSuffix(u.cfg.PublicURL, "/") + "/" + key
	}
	if u.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(u.cfg.Endpoint, "/")
		if u.cfg.PathStyle {
			return fmt.Sprintf("%s/%s/%s", endpoint, u.cfg.Bucket, key)
		}
		return fmt.Sprintf("%s/%s", endpoint, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
}

func (u *Uploader) limit(kind Kind) int64 {
	if kind == KindAudio {
		return u.cfg.MaxAudioBytes()
	}
	return u.cfg.MaxImageBytes()
}

func (u *Uploader) buildKey(kind Kind, filePath, contentType string) string {
	prefix := u.cfg.ImagePrefix
	if kind == KindAudio {
		prefix = u.cfg.AudioPrefix
	}
	prefix = strings.Trim(prefix, "/ ")
	name := u.newID() + extensionFor(filePath, contentType)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
