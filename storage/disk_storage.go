package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

type diskStorage struct {
	BaseDir string
}

// NewDiskStorage stores every key as a file below baseDir
func NewDiskStorage(baseDir string) *diskStorage {
	return &diskStorage{BaseDir: baseDir}
}

func (ds *diskStorage) GetKeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var matchedFiles []string

	searchPrefix := filepath.Join(ds.BaseDir, prefix)

	err := filepath.WalkDir(ds.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasPrefix(path, searchPrefix) {
			rel, err := filepath.Rel(ds.BaseDir, path)
			if err != nil {
				return err
			}
			matchedFiles = append(matchedFiles, filepath.ToSlash(rel))
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	sort.Strings(matchedFiles)

	return matchedFiles, err
}

func (ds *diskStorage) Write(ctx context.Context, key string, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	filePath := filepath.Join(ds.BaseDir, key)
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return errors.Wrapf(err, "can not create directory for %s", key)
	}

	// write then rename so a reader never sees half a file
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "can not write %s", key)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return errors.Wrapf(err, "can not rename %s", key)
	}
	return nil
}

func (ds *diskStorage) Read(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(filepath.Join(ds.BaseDir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrDoesNotExist
	}
	return data, err
}

func (ds *diskStorage) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	filePath := filepath.Join(ds.BaseDir, key)
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // Ignore file not found errors
		}
		return err
	}
	return nil
}
