package question

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/catalog"
	"github.com/verte-zerg/tuiquiz/internal/model"
)

type stubFetcher struct {
	err error
}

func (s stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("img:" + url), nil
}

type result struct {
	q   model.Question
	err error
}

func await(t *testing.T, ch <-chan result) result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for callback")
		return result{}
	}
}

func staticLoader(movies ...model.Movie) catalog.Loader {
	return catalog.LoaderFunc(func(context.Context) ([]model.Movie, error) {
		return movies, nil
	})
}

func loadCatalog(t *testing.T, f *Factory) error {
	t.Helper()
	ch := make(chan result, 1)
	f.LoadCatalog(func() { ch <- result{} }, func(err error) { ch <- result{err: err} })
	return await(t, ch).err
}

func requestQuestion(t *testing.T, f *Factory) result {
	t.Helper()
	ch := make(chan result, 1)
	f.RequestQuestion(1, func(q model.Question) { ch <- result{q: q} }, func(err error) { ch <- result{err: err} })
	return await(t, ch)
}

func TestBuildGreater(t *testing.T) {
	movie := model.Movie{Title: "Alpha", Year: "1999", Rating: "8.5"}
	q, err := Build(movie, model.Image{URL: "u"}, Greater, 8)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if q.Text != "Is the rating of this movie greater than 8?" || !q.CorrectAnswer {
		t.Fatalf("unexpected question %+v", q)
	}
	if q.Caption != "Alpha (1999)" {
		t.Fatalf("unexpected caption %q", q.Caption)
	}
	q, _ = Build(movie, model.Image{}, Greater, 9)
	if q.CorrectAnswer {
		t.Fatalf("8.5 is not greater than 9")
	}
}

func TestBuildLess(t *testing.T) {
	movie := model.Movie{Title: "Beta", Rating: "5.0"}
	q, err := Build(movie, model.Image{}, Less, 6)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(q.Text, "less than 6") || !q.CorrectAnswer {
		t.Fatalf("unexpected question %+v", q)
	}
	q, _ = Build(movie, model.Image{}, Less, 5)
	if q.CorrectAnswer {
		t.Fatalf("5.0 is not less than 5")
	}
}

func TestBuildRejectsMissingRating(t *testing.T) {
	if _, err := Build(model.Movie{Title: "x"}, model.Image{}, Greater, 7); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRandomComparisonRanges(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		cmp, th := randomComparison(rnd)
		switch cmp {
		case Greater:
			if th < 7 || th > 9 {
				t.Fatalf("greater threshold out of range: %d", th)
			}
		case Less:
			if th < 2 || th > 7 {
				t.Fatalf("less threshold out of range: %d", th)
			}
		}
	}
}

func TestFactoryDeliversQuestion(t *testing.T) {
	movie := model.Movie{Title: "Alpha", ImageURL: "https://img/a.jpg", Rating: "7.9"}
	f := New(context.Background(), staticLoader(movie), stubFetcher{}, nil)
	f.Seed(42)
	if err := loadCatalog(t, f); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	r := requestQuestion(t, f)
	if r.err != nil {
		t.Fatalf("request: %v", r.err)
	}
	if string(r.q.Image.Data) != "img:https://img/a.jpg" || r.q.Caption != "Alpha" {
		t.Fatalf("unexpected question %+v", r.q)
	}
}

func TestFactoryWithoutCatalogFails(t *testing.T) {
	f := New(context.Background(), staticLoader(), stubFetcher{}, nil)
	r := requestQuestion(t, f)
	var loadErr *model.LoadError
	if !errors.As(r.err, &loadErr) || loadErr.Kind != model.KindQuestionLoad {
		t.Fatalf("expected question load error, got %v", r.err)
	}
}

func TestFactoryEmptyCatalogFails(t *testing.T) {
	f := New(context.Background(), staticLoader(model.Movie{Title: "no poster", Rating: "5"}), stubFetcher{}, nil)
	err := loadCatalog(t, f)
	var loadErr *model.LoadError
	if !errors.As(err, &loadErr) || loadErr.Kind != model.KindCatalogLoad || !errors.Is(err, model.ErrEmptyCatalog) {
		t.Fatalf("expected empty catalog error, got %v", err)
	}
}

func TestFactoryImageFailure(t *testing.T) {
	movie := model.Movie{Title: "Alpha", ImageURL: "https://img/a.jpg", Rating: "7.9"}
	f := New(context.Background(), staticLoader(movie), stubFetcher{err: errors.New("404")}, nil)
	if err := loadCatalog(t, f); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	r := requestQuestion(t, f)
	var loadErr *model.LoadError
	if !errors.As(r.err, &loadErr) || loadErr.Kind != model.KindQuestionLoad {
		t.Fatalf("expected question load error, got %v", r.err)
	}
	if !strings.Contains(r.err.Error(), "failed to load image") {
		t.Fatalf("unexpected message %q", r.err.Error())
	}
}

func TestFactoryCollapsesConcurrentLoads(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	loader := catalog.LoaderFunc(func(context.Context) ([]model.Movie, error) {
		calls.Add(1)
		<-release
		return []model.Movie{{Title: "a", ImageURL: "u", Rating: "7"}}, nil
	})
	f := New(context.Background(), loader, stubFetcher{}, nil)

	ch := make(chan result, 2)
	f.LoadCatalog(func() { ch <- result{} }, func(err error) { ch <- result{err: err} })
	f.LoadCatalog(func() { ch <- result{} }, func(err error) { ch <- result{err: err} })
	time.Sleep(50 * time.Millisecond)
	close(release)
	for i := 0; i < 2; i++ {
		if r := await(t, ch); r.err != nil {
			t.Fatalf("load %d: %v", i, r.err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one catalog request, got %d", n)
	}
}
