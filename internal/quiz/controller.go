// Package quiz drives quiz rounds: it requests questions, records answers
// and hands finished rounds to the statistics store.
//
// All Controller methods must be called on one coordination context. The
// question source runs elsewhere and reaches the controller only through the
// Executor, so callbacks never race with commands.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

// Phase is the state of the round state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoadingCatalog
	PhaseAwaitingQuestion
	PhaseQuestionPresented
	PhaseLocked
	PhaseRoundComplete
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoadingCatalog:
		return "loading-catalog"
	case PhaseAwaitingQuestion:
		return "awaiting-question"
	case PhaseQuestionPresented:
		return "question-presented"
	case PhaseLocked:
		return "locked"
	case PhaseRoundComplete:
		return "round-complete"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	summaryTitle  = "This round is over!"
	summaryButton = "Play again"
)

// Source produces the catalog and individual questions asynchronously.
// Callbacks may run on any goroutine.
type Source interface {
	LoadCatalog(onReady func(), onError func(error))
	RequestQuestion(epoch int, onReady func(model.Question), onError func(error))
}

// View receives state changes. Every call happens on the coordination context.
type View interface {
	LoadingStarted()
	LoadingFinished()
	LoadError(message string)
	QuestionDisplayed(step model.Step)
	AnswerLocked(isCorrect bool)
	RoundComplete(summary model.RoundSummary)
}

// StatisticsStore persists finished rounds.
type StatisticsStore interface {
	Store(ctx context.Context, correct, total int) error
	Snapshot(ctx context.Context) (model.StatisticsSnapshot, error)
}

// Controller is the round state machine.
type Controller struct {
	source Source
	view   View
	stats  StatisticsStore
	exec   Executor
	ctx    context.Context
	logger *log.Logger

	phase        Phase
	index        int
	correct      int
	current      *model.Question
	epoch        int
	catalogReady bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for ignored commands and dropped deliveries.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithContext sets the context passed to the statistics store.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

// New constructs an idle controller.
func New(source Source, view View, stats StatisticsStore, exec Executor, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		view:   view,
		stats:  stats,
		exec:   exec,
		ctx:    context.Background(),
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Index returns the zero-based position of the current question.
func (c *Controller) Index() int { return c.index }

// CorrectCount returns the number of correct answers in this round.
func (c *Controller) CorrectCount() int { return c.correct }

// Epoch returns the stamp of the latest outbound request.
func (c *Controller) Epoch() int { return c.epoch }

// Current returns the live question, if any.
func (c *Controller) Current() (model.Question, bool) {
	if c.current == nil {
		return model.Question{}, false
	}
	return *c.current, true
}

// Begin starts the first catalog load.
func (c *Controller) Begin() {
	if c.phase != PhaseIdle {
		c.ignore("begin")
		return
	}
	c.loadCatalog()
}

// SubmitAnswer evaluates the user's answer to the live question.
func (c *Controller) SubmitAnswer(answer bool) {
	if c.phase != PhaseQuestionPresented {
		c.ignore("submit")
		return
	}
	if c.current == nil {
		c.logger.Printf("quiz: submit without a current question ignored")
		return
	}
	isCorrect := answer == c.current.CorrectAnswer
	if isCorrect {
		c.correct++
	}
	c.phase = PhaseLocked
	c.view.AnswerLocked(isCorrect)
}

// Advance moves past a locked answer, either to the next question or to the
// round summary.
func (c *Controller) Advance() {
	if c.phase != PhaseLocked {
		c.ignore("advance")
		return
	}
	if c.index == model.QuestionsPerRound-1 {
		c.finishRound()
		return
	}
	c.index++
	c.requestQuestion()
}

// Restart begins a new round after a summary or an error.
func (c *Controller) Restart() {
	if c.phase != PhaseRoundComplete && c.phase != PhaseFailed {
		c.ignore("restart")
		return
	}
	c.reset()
	if !c.catalogReady {
		c.loadCatalog()
		return
	}
	c.requestQuestion()
}

// Reload begins a new round with a fresh catalog.
func (c *Controller) Reload() {
	if c.phase != PhaseRoundComplete && c.phase != PhaseFailed {
		c.ignore("reload")
		return
	}
	c.reset()
	c.catalogReady = false
	c.loadCatalog()
}

func (c *Controller) reset() {
	c.index = 0
	c.correct = 0
	c.current = nil
}

func (c *Controller) loadCatalog() {
	c.epoch++
	epoch := c.epoch
	c.phase = PhaseLoadingCatalog
	c.view.LoadingStarted()
	c.source.LoadCatalog(
		func() {
			c.exec.Post(func() { c.catalogLoaded(epoch) })
		},
		func(err error) {
			c.exec.Post(func() { c.catalogFailed(epoch, err) })
		},
	)
}

func (c *Controller) requestQuestion() {
	c.epoch++
	epoch := c.epoch
	c.phase = PhaseAwaitingQuestion
	c.view.LoadingStarted()
	c.source.RequestQuestion(epoch,
		func(q model.Question) {
			c.exec.Post(func() { c.questionLoaded(epoch, q) })
		},
		func(err error) {
			c.exec.Post(func() { c.questionFailed(epoch, err) })
		},
	)
}

func (c *Controller) catalogLoaded(epoch int) {
	if !c.expects(PhaseLoadingCatalog, epoch, "catalog") {
		return
	}
	c.catalogReady = true
	c.view.LoadingFinished()
	c.requestQuestion()
}

func (c *Controller) catalogFailed(epoch int, err error) {
	if !c.expects(PhaseLoadingCatalog, epoch, "catalog error") {
		return
	}
	c.catalogReady = false
	c.fail(&model.LoadError{Kind: model.KindCatalogLoad, Err: err})
}

func (c *Controller) questionLoaded(epoch int, q model.Question) {
	if !c.expects(PhaseAwaitingQuestion, epoch, "question") {
		return
	}
	c.current = &q
	c.phase = PhaseQuestionPresented
	c.view.LoadingFinished()
	c.view.QuestionDisplayed(c.step(q))
}

func (c *Controller) questionFailed(epoch int, err error) {
	if !c.expects(PhaseAwaitingQuestion, epoch, "question error") {
		return
	}
	c.fail(&model.LoadError{Kind: model.KindQuestionLoad, Err: err})
}

func (c *Controller) fail(err *model.LoadError) {
	// Keep a more specific kind chosen by the source.
	var loadErr *model.LoadError
	if errors.As(err.Err, &loadErr) {
		err = loadErr
	}
	c.phase = PhaseFailed
	c.logger.Printf("quiz: %v", err)
	c.view.LoadingFinished()
	c.view.LoadError(err.Error())
}

func (c *Controller) finishRound() {
	total := model.QuestionsPerRound
	if err := c.stats.Store(c.ctx, c.correct, total); err != nil {
		c.logger.Printf("quiz: failed to store round: %v", err)
	}
	snap, err := c.stats.Snapshot(c.ctx)
	if err != nil {
		c.logger.Printf("quiz: failed to read statistics: %v", err)
	}
	c.phase = PhaseRoundComplete
	c.view.RoundComplete(model.RoundSummary{
		Title:           summaryTitle,
		ResultLine:      fmt.Sprintf("Your result: %d/%d", c.correct, total),
		ButtonText:      summaryButton,
		GamesPlayed:     snap.GamesPlayed,
		BestGame:        snap.BestGame,
		AccuracyPercent: snap.TotalAccuracy,
	})
}

func (c *Controller) step(q model.Question) model.Step {
	return model.Step{
		Image:    q.Image,
		Caption:  q.Caption,
		Question: q.Text,
		Position: fmt.Sprintf("%d/%d", c.index+1, model.QuestionsPerRound),
	}
}

func (c *Controller) expects(phase Phase, epoch int, what string) bool {
	if c.phase != phase || epoch != c.epoch {
		c.logger.Printf("quiz: dropped stale %s (epoch %d, current %d, phase %s)", what, epoch, c.epoch, c.phase)
		return false
	}
	return true
}

func (c *Controller) ignore(cmd string) {
	c.logger.Printf("quiz: %s ignored in phase %s", cmd, c.phase)
}
