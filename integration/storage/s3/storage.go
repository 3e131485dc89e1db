package s3

import (
	"context"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrymomot/partsave/core/save"
)

// Client is the narrow S3 surface the uploader needs. *s3aws.Client
// satisfies it; tests inject mocks via WithClient.
type Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3aws.DeleteObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.DeleteObjectOutput, error)
}

// Config contains configuration for the uploader.
type Config struct {
	Bucket         string `env:"S3_BUCKET"`
	Region         string `env:"S3_REGION"`
	AccessKeyID    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"S3_SECRET_KEY"`
	Endpoint       string `env:"S3_ENDPOINT"`          // for S3-compatible services
	ForcePathStyle bool   `env:"S3_FORCE_PATH_STYLE"` // required by MinIO and friends
}

// Option configures the uploader.
type Option func(*options)

type options struct {
	client        Client
	httpClient    *http.Client
	configOptions []func(*awsconfig.LoadOptions) error
	uploadTimeout time.Duration
}

// WithClient sets a pre-configured S3 client, bypassing AWS config
// loading. Primarily for testing with mocks.
func WithClient(client Client) Option {
	return func(o *options) { o.client = client }
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithConfigOption adds a custom AWS config option.
func WithConfigOption(option func(*awsconfig.LoadOptions) error) Option {
	return func(o *options) { o.configOptions = append(o.configOptions, option) }
}

// WithUploadTimeout bounds each upload operation. If not set, the
// caller's context deadline governs.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *options) { o.uploadTimeout = timeout }
}

// Uploader streams saved multipart entries to S3-compatible object
// storage.
type Uploader struct {
	client        Client
	bucket        string
	uploadTimeout time.Duration
}

// New creates an uploader. Static credentials are used when provided,
// falling back to the default AWS credential chain otherwise.
func New(ctx context.Context, cfg Config, opts ...Option) (*Uploader, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		awsOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID, cfg.SecretKey, "",
				)),
			)
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, awsconfig.WithHTTPClient(o.httpClient))
		}
		awsOptions = append(awsOptions, o.configOptions...)

		awsConfig, err := awsconfig.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, classifyError(err, "load aws config")
		}

		client = s3aws.NewFromConfig(awsConfig, func(opt *s3aws.Options) {
			if cfg.Endpoint != "" {
				opt.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			opt.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &Uploader{
		client:        client,
		bucket:        cfg.Bucket,
		uploadTimeout: o.uploadTimeout,
	}, nil
}

// StoredObject describes one uploaded record.
type StoredObject struct {
	// Field is the multipart field name the record was saved under.
	Field string
	// Key is the object key in the bucket.
	Key string
	// Size is the content length in bytes.
	Size int64
	// ContentType is the media type the object was stored with.
	ContentType string
}

// Store uploads every saved record in entries under the given key prefix,
// as prefix/<field>/<random-key>. Field names are walked in sorted order
// and records within a field in arrival order, so output is
// deterministic apart from the random key suffixes. The first failure
// aborts the walk; objects already uploaded are not rolled back.
func (u *Uploader) Store(ctx context.Context, entries *save.Entries, prefix string) ([]StoredObject, error) {
	names := make([]string, 0, len(entries.Fields))
	for name := range entries.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var objects []StoredObject
	for _, name := range names {
		for _, field := range entries.Fields[name] {
			key := path.Join(prefix, name, uuid.NewString())
			obj, err := u.StoreField(ctx, field, key)
			if err != nil {
				return objects, err
			}
			objects = append(objects, obj)
		}
	}
	return objects, nil
}

// StoreField uploads one saved record to the given object key, streaming
// file-backed data from disk.
func (u *Uploader) StoreField(ctx context.Context, field save.SavedField, key string) (StoredObject, error) {
	key = strings.TrimPrefix(key, "/")
	if strings.Contains(key, "..") {
		return StoredObject{}, ErrInvalidKey
	}

	if u.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.uploadTimeout)
		defer cancel()
	}

	body, err := field.Data.Reader()
	if err != nil {
		return StoredObject{}, classifyError(err, "open saved data")
	}
	defer func() { _ = body.Close() }()

	contentType := field.Headers.ContentType
	if contentType == "" {
		if field.Data.Kind() == save.DataText {
			contentType = "text/plain; charset=utf-8"
		} else {
			contentType = "application/octet-stream"
		}
	}

	size := field.Data.Size()
	_, err = u.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return StoredObject{}, classifyError(err, "upload object")
	}

	return StoredObject{
		Field:       field.Headers.Name,
		Key:         key,
		Size:        size,
		ContentType: contentType,
	}, nil
}

// Exists checks whether an object exists in the bucket.
func (u *Uploader) Exists(ctx context.Context, key string) bool {
	key = strings.TrimPrefix(key, "/")
	_, err := u.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	return err == nil
}

// Delete removes an object, verifying existence first so a missing key
// surfaces as ErrObjectNotFound.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	key = strings.TrimPrefix(key, "/")
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}

	if _, err := u.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return classifyError(err, "check object")
	}

	if _, err := u.client.DeleteObject(ctx, &s3aws.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return classifyError(err, "delete object")
	}
	return nil
}
