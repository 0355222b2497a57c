// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	captionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	positionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle    = errorStyle.Bold(true)

	cardStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	modalStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

type beginMsg struct{}

// taskMsg carries work posted to the coordination loop.
type taskMsg func()

type loopDoneMsg struct{}

type advanceMsg struct{ epoch int }

// Model implements the Bubble Tea quiz UI.
type Model struct {
	ctrl      *quiz.Controller
	loop      *quiz.Loop
	screen    *screen
	spinner   spinner.Model
	lockDelay time.Duration

	width  int
	height int
}

// NewModel wires a controller to the UI. The controller runs on the Bubble
// Tea update goroutine; background results reach it through loop.
func NewModel(source quiz.Source, statistics quiz.StatisticsStore, loop *quiz.Loop, lockDelay time.Duration, logger *log.Logger) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = captionStyle
	m := &Model{
		loop:      loop,
		screen:    &screen{},
		spinner:   sp,
		lockDelay: lockDelay,
	}
	m.ctrl = quiz.New(source, m.screen, statistics, loop, quiz.WithLogger(logger))
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return beginMsg{} },
		waitForTask(m.loop),
		m.spinner.Tick,
	)
}

// waitForTask blocks until the loop has work or is closed.
func waitForTask(loop *quiz.Loop) tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-loop.Tasks():
			return taskMsg(fn)
		case <-loop.Done():
			return loopDoneMsg{}
		}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case beginMsg:
		m.ctrl.Begin()
		return m, m.afterCommand()
	case taskMsg:
		msg()
		return m, tea.Batch(waitForTask(m.loop), m.afterCommand())
	case loopDoneMsg:
		return m, nil
	case advanceMsg:
		if msg.epoch == m.ctrl.Epoch() {
			m.ctrl.Advance()
		}
		return m, m.afterCommand()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "y", "right":
		m.ctrl.SubmitAnswer(true)
	case "n", "left":
		m.ctrl.SubmitAnswer(false)
	case "enter", "r":
		m.ctrl.Restart()
	case "R":
		m.ctrl.Reload()
	}
	return m, m.afterCommand()
}

// afterCommand schedules the delayed advance after an answer is locked.
func (m *Model) afterCommand() tea.Cmd {
	if !m.screen.pendingAdvance {
		return nil
	}
	m.screen.pendingAdvance = false
	epoch := m.ctrl.Epoch()
	return tea.Tick(m.lockDelay, func(time.Time) tea.Msg {
		return advanceMsg{epoch: epoch}
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderContent()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
	return body + "\n" + footer
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 60
	}
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderContent() string {
	s := m.screen
	switch {
	case s.summary != nil:
		return m.renderSummary(*s.summary)
	case s.errMsg != "":
		return m.renderError(s.errMsg)
	case s.loading:
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	case s.step != nil:
		return m.renderStep(*s.step)
	}
	return ""
}

func (m *Model) renderStep(step model.Step) string {
	width := m.contentWidth()
	lines := []string{
		positionStyle.Render("Question " + step.Position),
		"",
		captionStyle.Render(wrapText(step.Caption, width-6)),
		positionStyle.Render(posterLabel(step.Image)),
		"",
		titleStyle.Render(wrapText(step.Question, width-6)),
		"",
	}
	style := cardStyle.Width(width)
	if m.screen.locked {
		if m.screen.correct {
			lines = append(lines, correctStyle.Render("Correct!"))
			style = style.BorderForeground(lipgloss.Color("#52C41A"))
		} else {
			lines = append(lines, wrongStyle.Render("Wrong!"))
			style = style.BorderForeground(lipgloss.Color("#FF4D4F"))
		}
	} else {
		lines = append(lines, "[y] Yes    [n] No")
	}
	return style.Render(strings.Join(lines, "\n"))
}

func posterLabel(img model.Image) string {
	if len(img.Data) == 0 {
		return "poster unavailable"
	}
	return fmt.Sprintf("poster %.1f KB", float64(len(img.Data))/1024)
}

func (m *Model) renderSummary(summary model.RoundSummary) string {
	body := []string{
		titleStyle.Render(summary.Title),
		"",
		summary.Message(),
		"",
		captionStyle.Render("[enter] " + summary.ButtonText),
	}
	return modalStyle.Width(m.modalWidth()).Render(strings.Join(body, "\n"))
}

func (m *Model) renderError(message string) string {
	body := []string{
		errorStyle.Render("Something went wrong"),
		"",
		wrapText(message, m.modalWidth()-6),
		"",
		captionStyle.Render("[enter] Try again  [R] Reload catalog"),
	}
	return modalStyle.Width(m.modalWidth()).Render(strings.Join(body, "\n"))
}

func (m *Model) modalWidth() int {
	w := m.contentWidth()
	if w > 60 {
		return 60
	}
	return w
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if s := m.screen; s.step != nil && s.summary == nil {
		answered := m.ctrl.Index()
		if m.ctrl.Phase() == quiz.PhaseLocked {
			answered++
		}
		segments = append(segments, fmt.Sprintf("Score %d/%d", m.ctrl.CorrectCount(), answered))
	}
	segments = append(segments, "y/n answer", "R reload", "q quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}
