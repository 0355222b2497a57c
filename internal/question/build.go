package question

import (
	"fmt"
	"math/rand"

	"github.com/verte-zerg/tuiquiz/internal/catalog"
	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Comparison is the direction a question asks about.
type Comparison int

const (
	Greater Comparison = iota
	Less
)

func randomComparison(rnd *rand.Rand) (Comparison, int) {
	if rnd.Intn(2) == 0 {
		return Greater, 7 + rnd.Intn(3) // 7..9
	}
	return Less, 2 + rnd.Intn(6) // 2..7
}

// Build creates a question comparing the movie's rating to threshold.
func Build(movie model.Movie, image model.Image, comparison Comparison, threshold int) (model.Question, error) {
	rating, err := catalog.Rating(movie)
	if err != nil {
		return model.Question{}, err
	}
	var text string
	var answer bool
	switch comparison {
	case Less:
		text = fmt.Sprintf("Is the rating of this movie less than %d?", threshold)
		answer = rating < float64(threshold)
	default:
		text = fmt.Sprintf("Is the rating of this movie greater than %d?", threshold)
		answer = rating > float64(threshold)
	}
	caption := movie.Title
	if movie.Year != "" {
		caption = fmt.Sprintf("%s (%s)", movie.Title, movie.Year)
	}
	return model.Question{
		Image:         image,
		Caption:       caption,
		Text:          text,
		CorrectAnswer: answer,
	}, nil
}
