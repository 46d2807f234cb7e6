package storage

import (
	"context"
	"fmt"

	_ "gocloud.dev/blob/gcsblob" // GCS driver
)

// NewGCSStore creates a store on a Google Cloud Storage bucket.
func NewGCSStore(ctx context.Context, bucketName, prefix string) (*BlobStore, error) {
	return openBlobStore(ctx, fmt.Sprintf("gs://%s", bucketName), "gs", bucketName, prefix)
}
