package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// FileLoader reads a catalog cached as JSON.
type FileLoader struct {
	Path string
}

// Load implements Loader.
func (f FileLoader) Load(_ context.Context) ([]model.Movie, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var movies []model.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", f.Path, err)
	}
	if len(movies) == 0 {
		return nil, model.ErrEmptyCatalog
	}
	return movies, nil
}

// WriteFile stores movies at path atomically.
func WriteFile(path string, movies []model.Movie) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog dir: %w", err)
	}
	data, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "catalog-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// WriteThrough returns a loader that saves every successful load from l to
// path. Cache write failures are reported through onCacheError and do not
// fail the load.
func WriteThrough(l Loader, path string, onCacheError func(error)) Loader {
	return LoaderFunc(func(ctx context.Context) ([]model.Movie, error) {
		movies, err := l.Load(ctx)
		if err != nil {
			return nil, err
		}
		if err := WriteFile(path, movies); err != nil && onCacheError != nil {
			onCacheError(err)
		}
		return movies, nil
	})
}
