// Package question builds quiz questions from a movie catalog.
package question

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/tuiquiz/internal/catalog"
	"github.com/verte-zerg/tuiquiz/internal/model"
)

// ImageFetcher downloads poster bytes.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Factory loads a catalog and produces questions on background goroutines.
type Factory struct {
	ctx    context.Context
	loader catalog.Loader
	images ImageFetcher
	logger *log.Logger
	group  singleflight.Group

	mu     sync.Mutex
	rnd    *rand.Rand
	movies []model.Movie
}

// New returns a Factory. ctx bounds every background request.
func New(ctx context.Context, loader catalog.Loader, images ImageFetcher, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Factory{
		ctx:    ctx,
		loader: loader,
		images: images,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes question generation deterministic.
func (f *Factory) Seed(seed int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rnd = rand.New(rand.NewSource(seed))
}

// LoadCatalog fetches the catalog. Concurrent loads share one request.
func (f *Factory) LoadCatalog(onReady func(), onError func(error)) {
	go func() {
		_, err, _ := f.group.Do("catalog", func() (any, error) {
			movies, err := f.loader.Load(f.ctx)
			if err != nil {
				return nil, err
			}
			movies = catalog.Filter(movies)
			if len(movies) == 0 {
				return nil, model.ErrEmptyCatalog
			}
			f.mu.Lock()
			f.movies = movies
			f.mu.Unlock()
			f.logger.Printf("catalog loaded: %d movies", len(movies))
			return nil, nil
		})
		if err != nil {
			onError(&model.LoadError{Kind: model.KindCatalogLoad, Err: err})
			return
		}
		onReady()
	}()
}

// RequestQuestion builds one question. epoch is only used for logging; the
// caller matches deliveries itself.
func (f *Factory) RequestQuestion(epoch int, onReady func(model.Question), onError func(error)) {
	go func() {
		movie, comparison, threshold, ok := f.pick()
		if !ok {
			onError(&model.LoadError{Kind: model.KindQuestionLoad, Err: model.ErrEmptyCatalog})
			return
		}
		data, err := f.images.Fetch(f.ctx, movie.ImageURL)
		if err != nil {
			f.logger.Printf("epoch %d: failed to load poster for %q: %v", epoch, movie.Title, err)
			onError(&model.LoadError{Kind: model.KindQuestionLoad, Err: fmt.Errorf("failed to load image: %w", err)})
			return
		}
		q, err := Build(movie, model.Image{URL: movie.ImageURL, Data: data}, comparison, threshold)
		if err != nil {
			onError(&model.LoadError{Kind: model.KindQuestionLoad, Err: err})
			return
		}
		onReady(q)
	}()
}

func (f *Factory) pick() (model.Movie, Comparison, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.movies) == 0 {
		return model.Movie{}, Greater, 0, false
	}
	movie := f.movies[f.rnd.Intn(len(f.movies))]
	comparison, threshold := randomComparison(f.rnd)
	return movie, comparison, threshold, true
}
