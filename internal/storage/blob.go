package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob" // in-memory driver
)

// BlobStore writes packages to a gocloud blob bucket.
type BlobStore struct {
	bucket *blob.Bucket
	scheme string // "gs" | "s3" | "mem"
	name   string
	prefix string
}

func openBlobStore(ctx context.Context, bucketURL, scheme, name, prefix string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open %s bucket %s: %w", scheme, name, err)
	}
	return &BlobStore{
		bucket: bucket,
		scheme: scheme,
		name:   name,
		prefix: prefix,
	}, nil
}

// NewMemStore creates a store backed by an in-memory bucket.
func NewMemStore(ctx context.Context, prefix string) (*BlobStore, error) {
	return openBlobStore(ctx, "mem://", "mem", "", prefix)
}

// Publish writes both objects to temporary keys, then copies them into
// place and deletes the temporaries. A failed copy rolls back what was
// already copied.
func (s *BlobStore) Publish(ctx context.Context, ref BuildRef, pkg []byte, manifest *Manifest) (*PublishResult, error) {
	manifest.Package.URI = s.URI(ref.Path(s.prefix))
	data, err := manifest.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	suffix := ".tmp." + uuid.New().String()
	finalKeys := []string{ref.ManifestPath(s.prefix), ref.Path(s.prefix)}
	payloads := [][]byte{data, pkg}

	tempKeys := make([]string, 0, len(finalKeys))
	for i, key := range finalKeys {
		tempKey := key + suffix
		if err := s.writeObject(ctx, tempKey, payloads[i]); err != nil {
			s.abort(ctx, tempKeys)
			return nil, err
		}
		tempKeys = append(tempKeys, tempKey)
	}

	for i, tempKey := range tempKeys {
		if err := s.copyObject(ctx, tempKey, finalKeys[i]); err != nil {
			for j := 0; j < i; j++ {
				s.bucket.Delete(ctx, finalKeys[j])
			}
			s.abort(ctx, tempKeys)
			return nil, fmt.Errorf("finalize %s -> %s: %w", tempKey, finalKeys[i], err)
		}
	}
	s.abort(ctx, tempKeys)

	return &PublishResult{
		PackageKey:  finalKeys[1],
		ManifestKey: finalKeys[0],
		URI:         s.URI(finalKeys[1]),
	}, nil
}

func (s *BlobStore) writeObject(ctx context.Context, key string, data []byte) error {
	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write data to %s: %w", key, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %s: %w", key, err)
	}
	return nil
}

// copyObject copies an object within the bucket.
func (s *BlobStore) copyObject(ctx context.Context, srcKey, dstKey string) error {
	r, err := s.bucket.NewReader(ctx, srcKey, nil)
	if err != nil {
		return fmt.Errorf("open source %s: %w", srcKey, err)
	}
	defer r.Close()

	w, err := s.bucket.NewWriter(ctx, dstKey, nil)
	if err != nil {
		return fmt.Errorf("create destination %s: %w", dstKey, err)
	}

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("copy to %s: %w", dstKey, err)
	}

	return w.Close()
}

// abort removes temporary objects, ignoring errors.
func (s *BlobStore) abort(ctx context.Context, keys []string) {
	for _, key := range keys {
		s.bucket.Delete(ctx, key)
	}
}

// Exists checks if a build's package already exists.
func (s *BlobStore) Exists(ctx context.Context, ref BuildRef) (bool, error) {
	return s.bucket.Exists(ctx, ref.Path(s.prefix))
}

// Head returns metadata about a stored object.
func (s *BlobStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get attributes for %s: %w", key, err)
	}

	return &ObjectInfo{
		Key:     key,
		Size:    attrs.Size,
		ETag:    attrs.ETag,
		ModTime: attrs.ModTime,
	}, nil
}

// List returns all keys with the given prefix, skipping directories.
func (s *BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := s.bucket.List(&blob.ListOptions{
		Prefix: prefix,
	})

	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}

	return keys, nil
}

// ReadAll returns the object at key.
func (s *BlobStore) ReadAll(ctx context.Context, key string) ([]byte, error) {
	return s.bucket.ReadAll(ctx, key)
}

// URI returns the canonical URI for the given key.
func (s *BlobStore) URI(key string) string {
	if s.name == "" {
		return fmt.Sprintf("%s://%s", s.scheme, key)
	}
	return fmt.Sprintf("%s://%s/%s", s.scheme, s.name, key)
}

// Close releases the bucket connection.
func (s *BlobStore) Close() error {
	if s.bucket != nil {
		return s.bucket.Close()
	}
	return nil
}

var _ PackageStore = (*BlobStore)(nil)
