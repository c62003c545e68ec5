package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// filesystemStore implements ContentStore on a local file hierarchy: each
// storage key maps to the file of the same relative path under the root.
// It is safe for concurrent use; writers to the same key race.
type filesystemStore struct {
	fs afero.Fs
}

// NewFilesystem creates a filesystem content store rooted at dir, creating
// the directory if absent. All keys resolve strictly below dir.
func NewFilesystem(dir string) (ContentStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	base := afero.NewOsFs()
	if err := base.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &filesystemStore{fs: afero.NewBasePathFs(base, dir)}, nil
}

// NewFilesystemFromFs creates a filesystem content store over an arbitrary
// afero filesystem. Tests use this with an in-memory fs.
func NewFilesystemFromFs(fs afero.Fs) ContentStore {
	return &filesystemStore{fs: fs}
}

func (s *filesystemStore) Put(ctx context.Context, key string, r io.Reader, size int64) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	if dir := path.Dir(key); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return ObjectInfo{}, fmt.Errorf("create subtree: %w", err)
		}
	}
	f, err := s.fs.Create(key)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create object: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("write object: %w", err)
	}
	info, statErr := s.Stat(ctx, key)
	if statErr != nil {
		return ObjectInfo{Key: key, Size: n}, nil
	}
	return info, nil
}

func (s *filesystemStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	info, err := s.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := s.fs.Open(key)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("open object: %w", err)
	}
	return f, info, nil
}

func (s *filesystemStore) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}
	fi, err := s.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return ObjectInfo{}, ErrNotFound
		}
		return ObjectInfo{}, fmt.Errorf("stat object: %w", err)
	}
	if fi.IsDir() {
		return ObjectInfo{}, ErrNotFound
	}
	return ObjectInfo{Key: key, Size: fi.Size(), LastModified: fi.ModTime()}, nil
}

func (s *filesystemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.Stat(ctx, key); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *filesystemStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root := strings.TrimSuffix(prefix, "/")
	fi, err := s.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat prefix: %w", err)
	}
	if !fi.IsDir() {
		return []ObjectInfo{{Key: root, Size: fi.Size(), LastModified: fi.ModTime()}}, nil
	}

	var out []ObjectInfo
	err = afero.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		out = append(out, ObjectInfo{
			Key:          strings.TrimPrefix(p, "/"),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk prefix: %w", err)
	}
	return out, nil
}
