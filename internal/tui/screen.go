package tui

import "github.com/verte-zerg/tuiquiz/internal/model"

// screen is the controller's view. It only records state; Model renders it.
type screen struct {
	loading bool
	errMsg  string
	step    *model.Step
	locked  bool
	correct bool
	summary *model.RoundSummary

	// set by AnswerLocked, consumed by Model to schedule Advance
	pendingAdvance bool
}

func (s *screen) LoadingStarted() {
	s.loading = true
	s.errMsg = ""
	s.summary = nil
}

func (s *screen) LoadingFinished() {
	s.loading = false
}

func (s *screen) LoadError(message string) {
	s.errMsg = message
	s.step = nil
	s.locked = false
}

func (s *screen) QuestionDisplayed(step model.Step) {
	s.errMsg = ""
	s.summary = nil
	s.locked = false
	s.step = &step
}

func (s *screen) AnswerLocked(isCorrect bool) {
	s.locked = true
	s.correct = isCorrect
	s.pendingAdvance = true
}

func (s *screen) RoundComplete(summary model.RoundSummary) {
	s.locked = false
	s.step = nil
	s.summary = &summary
}
