package checkpointer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
)

// MinioSink stores checkpoints as objects in a bucket of MinIO or
// another S3-compatible store
type MinioSink struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSink returns a new MinioSink storing checkpoints in bucket.
// The prefix is prepended to the name of each checkpoint
// (e.g. "runs/42/").
func NewMinioSink(client *minio.Client, bucket, prefix string) *MinioSink {
	return &MinioSink{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (m *MinioSink) key(name string) string {
	return path.Join(m.prefix, name)
}

// Put uploads data as the object name
func (m *MinioSink) Put(ctx context.Context, name string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, m.key(name),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		})
	if err != nil {
		return fmt.Errorf("put: %v", err)
	}
	return nil
}

// Get downloads the object name
func (m *MinioSink) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, m.key(name),
		minio.GetObjectOptions{})
	if err != nil {
		return nil, m.getError(name, err)
	}
	defer obj.Close()

	// Missing objects are only reported once the object is read
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.getError(name, err)
	}
	return data, nil
}

func (m *MinioSink) getError(name string, err error) error {
	if notFound(err) {
		return fmt.Errorf("get: %w: %v", ErrNotFound, m.key(name))
	}
	return fmt.Errorf("get: %v", err)
}

// notFound returns whether err denotes a missing bucket or object
func notFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return true
	}
	return false
}
