package replica

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/matzehuels/archflow/pkg/retry"
)

// MinioConfig configures a [MinioSink].
type MinioConfig struct {
	// Endpoint is host:port, optionally prefixed with http:// or https://.
	// Without a scheme the connection uses TLS.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string

	// Prefix is prepended to every object name.
	Prefix string
}

// MinioSink stores blobs as objects in an S3-compatible bucket.
type MinioSink struct {
	client *minio.Client
	bucket string
	prefix string
}

var minioRetry = retry.Policy{Attempts: 3, Delay: 200 * time.Millisecond}

// NewMinio connects to the endpoint and creates the bucket when missing.
func NewMinio(ctx context.Context, cfg MinioConfig) (*MinioSink, error) {
	endpoint, secure := splitScheme(cfg.Endpoint)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client: %w", err)
	}

	err = retry.Do(ctx, minioRetry, func() error {
		exists, err := client.BucketExists(ctx, cfg.Bucket)
		if err != nil {
			return classify(err)
		}
		if exists {
			return nil
		}
		return classify(client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}))
	})
	if err != nil {
		return nil, fmt.Errorf("minio: ensure bucket %s: %w", cfg.Bucket, err)
	}
	return &MinioSink{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func splitScheme(endpoint string) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	default:
		return endpoint, true
	}
}

// classify marks errors without an S3 response, i.e. network failures, as
// transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "" {
		return retry.Transient(err)
	}
	return err
}

func (s *MinioSink) object(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Name implements [Sink].
func (s *MinioSink) Name() string { return "minio" }

// Put implements [Sink].
func (s *MinioSink) Put(ctx context.Context, key string, data []byte) error {
	return retry.Do(ctx, minioRetry, func() error {
		_, err := s.client.PutObject(ctx, s.bucket, s.object(key), bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/octet-stream"})
		return classify(err)
	})
}

// Get implements [Sink].
func (s *MinioSink) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	var missing bool
	err := retry.Do(ctx, minioRetry, func() error {
		obj, err := s.client.GetObject(ctx, s.bucket, s.object(key), minio.GetObjectOptions{})
		if err != nil {
			return classify(err)
		}
		defer obj.Close()

		data, err = io.ReadAll(obj)
		if err != nil {
			if minio.ToErrorResponse(err).Code == "NoSuchKey" {
				missing = true
				return nil
			}
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("minio: get %s: %w", key, err)
	}
	if missing {
		return nil, false, nil
	}
	return data, true, nil
}

// Close implements [Sink]. The client holds no resources.
func (s *MinioSink) Close() error { return nil }

var _ Sink = (*MinioSink)(nil)
