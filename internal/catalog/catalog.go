// Package catalog loads the list of movies questions are built from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Loader returns a catalog of movies.
type Loader interface {
	Load(ctx context.Context) ([]model.Movie, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]model.Movie, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context) ([]model.Movie, error) {
	return f(ctx)
}

// FirstOf tries loaders in order and returns the first non-empty catalog.
func FirstOf(loaders ...Loader) Loader {
	return LoaderFunc(func(ctx context.Context) ([]model.Movie, error) {
		var errs []error
		for _, l := range loaders {
			if l == nil {
				continue
			}
			movies, err := l.Load(ctx)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			movies = Filter(movies)
			if len(movies) == 0 {
				errs = append(errs, model.ErrEmptyCatalog)
				continue
			}
			return movies, nil
		}
		if len(errs) == 0 {
			return nil, model.ErrEmptyCatalog
		}
		return nil, errors.Join(errs...)
	})
}

// Filter keeps movies that have a poster and a parsable rating.
func Filter(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if strings.TrimSpace(m.ImageURL) == "" {
			continue
		}
		if _, err := Rating(m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Rating parses the movie's rating.
func Rating(m model.Movie) (float64, error) {
	raw := strings.TrimSpace(m.Rating)
	if raw == "" {
		return 0, fmt.Errorf("movie %q has no rating", m.Title)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("movie %q has invalid rating %q: %w", m.Title, raw, err)
	}
	return v, nil
}
