package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes packages to the local filesystem.
type LocalStore struct {
	baseDir string
	prefix  string
}

// NewLocalStore creates a new local filesystem store.
func NewLocalStore(baseDir, prefix string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base directory %s: %w", baseDir, err)
	}

	return &LocalStore{
		baseDir: baseDir,
		prefix:  prefix,
	}, nil
}

// Publish writes both files to ".tmp" siblings and renames them into place,
// package last so an existing package always has its manifest.
func (s *LocalStore) Publish(ctx context.Context, ref BuildRef, pkg []byte, manifest *Manifest) (*PublishResult, error) {
	pkgKey := ref.Path(s.prefix)
	manifestKey := ref.ManifestPath(s.prefix)
	pkgPath := filepath.Join(s.baseDir, pkgKey)
	manifestPath := filepath.Join(s.baseDir, manifestKey)

	dir := filepath.Dir(pkgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	manifest.Package.URI = s.URI(pkgKey)
	data, err := manifest.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pkgTemp := pkgPath + ".tmp"
	manifestTemp := manifestPath + ".tmp"
	if err := os.WriteFile(pkgTemp, pkg, 0644); err != nil {
		return nil, fmt.Errorf("write temp file %s: %w", pkgTemp, err)
	}
	if err := os.WriteFile(manifestTemp, data, 0644); err != nil {
		os.Remove(pkgTemp)
		return nil, fmt.Errorf("write temp file %s: %w", manifestTemp, err)
	}

	if err := os.Rename(manifestTemp, manifestPath); err != nil {
		os.Remove(pkgTemp)
		os.Remove(manifestTemp)
		return nil, fmt.Errorf("rename %s to %s: %w", manifestTemp, manifestPath, err)
	}
	if err := os.Rename(pkgTemp, pkgPath); err != nil {
		os.Remove(pkgTemp)
		os.Remove(manifestPath)
		return nil, fmt.Errorf("rename %s to %s: %w", pkgTemp, pkgPath, err)
	}

	return &PublishResult{
		PackageKey:  pkgKey,
		ManifestKey: manifestKey,
		URI:         s.URI(pkgKey),
	}, nil
}

// Exists checks if a build's package already exists.
func (s *LocalStore) Exists(ctx context.Context, ref BuildRef) (bool, error) {
	path := filepath.Join(s.baseDir, ref.Path(s.prefix))
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Head returns metadata about a stored file.
func (s *LocalStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	fi, err := os.Stat(filepath.Join(s.baseDir, key))
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	return &ObjectInfo{
		Key:     key,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}, nil
}

// URI returns the canonical URI for the given key.
func (s *LocalStore) URI(key string) string {
	absPath, err := filepath.Abs(filepath.Join(s.baseDir, key))
	if err != nil {
		absPath = filepath.Join(s.baseDir, key)
	}
	return "file://" + absPath
}

// Close is a no-op for local storage.
func (s *LocalStore) Close() error {
	return nil
}

var _ PackageStore = (*LocalStore)(nil)
