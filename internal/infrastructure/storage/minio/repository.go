package minio

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ReviewPulse/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ReviewPulse/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrObjectTooLarge = errors.New(errors.ErrCodeStorageError, "object exceeds size limit")
)

// ObjectMetadata describes one stored export.
type ObjectMetadata struct {
	Bucket       string
	ObjectKey    string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// ExportRepository reads review exports from the configured bucket.
type ExportRepository interface {
	// Open streams the object body.  The caller closes the reader.
	Open(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectMetadata, error)
	GetMetadata(ctx context.Context, objectKey string) (*ObjectMetadata, error)
	List(ctx context.Context, prefix string) ([]*ObjectMetadata, error)
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ExportRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: log}
}

func (r *minioRepository) GetMetadata(ctx context.Context, objectKey string) (*ObjectMetadata, error) {
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	bucket := r.client.Bucket()
	info, err := r.client.client.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, objectKey)
	}
	return toMetadata(bucket, info), nil
}

func (r *minioRepository) Open(ctx context.Context, objectKey string) (io.ReadCloser, *ObjectMetadata, error) {
	meta, err := r.GetMetadata(ctx, objectKey)
	if err != nil {
		return nil, nil, err
	}
	if limit := r.client.config.MaxObjectSize; limit > 0 && meta.Size > limit {
		return nil, nil, ErrObjectTooLarge.WithDetailf("%s is %d bytes, limit %d", objectKey, meta.Size, limit)
	}

	body, err := r.client.open(ctx, meta.Bucket, objectKey)
	if err != nil {
		return nil, nil, mapError(err, objectKey)
	}
	r.logger.Debug("Opened object",
		logging.String("bucket", meta.Bucket),
		logging.String("key", objectKey),
		logging.Int64("size", meta.Size),
	)
	return body, meta, nil
}

func (r *minioRepository) List(ctx context.Context, prefix string) ([]*ObjectMetadata, error) {
	if r.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	bucket := r.client.Bucket()
	var out []*ObjectMetadata
	for obj := range r.client.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, prefix)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		out = append(out, toMetadata(bucket, obj))
	}
	return out, nil
}

func toMetadata(bucket string, info minio.ObjectInfo) *ObjectMetadata {
	return &ObjectMetadata{
		Bucket:       bucket,
		ObjectKey:    info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}
}

func mapError(err error, key string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return ErrObjectNotFound.WithDetail(key).WithCause(err)
	case "NoSuchBucket":
		return ErrBucketNotFound.WithDetail(key).WithCause(err)
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, "object storage request failed").WithDetail(key)
}

//Personal.AI order the ending
