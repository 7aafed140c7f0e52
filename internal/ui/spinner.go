package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user aborts a running request.
var ErrCancelled = errors.New("cancelled")

// getTTY opens /dev/tty for direct terminal access (bypasses redirections)
func getTTY() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

type resultMsg struct {
	value any
	err   error
}

// spinnerModel shows progress while a single request runs
type spinnerModel struct {
	spinner   spinner.Model
	message   string
	start     time.Time
	run       func() (any, error)
	cancel    context.CancelFunc
	cancelled bool
	done      bool
	result    resultMsg
	styles    *Styles
}

func newSpinnerModel(message string, cancel context.CancelFunc, run func() (any, error), styles *Styles) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner
	return spinnerModel{
		spinner: s,
		message: message,
		start:   time.Now(),
		run:     run,
		cancel:  cancel,
		styles:  styles,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			v, err := m.run()
			return resultMsg{value: v, err: err}
		},
	)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			m.cancelled = true
			m.cancel()
			return m, tea.Quit
		}

	case resultMsg:
		m.result = msg
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	elapsed := time.Since(m.start).Truncate(time.Second)
	return fmt.Sprintf("%s %s... %s\n",
		m.spinner.View(),
		m.message,
		m.styles.Muted.Render(fmt.Sprintf("%s (esc to cancel)", elapsed)))
}

// RunWithSpinner runs fn while showing a spinner on the terminal. Without a
// terminal, or with quiet set, fn runs directly.
func RunWithSpinner[T any](ctx context.Context, message string, quiet bool, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var zero T
	if quiet {
		return fn(ctx)
	}
	tty, err := getTTY()
	if err != nil {
		return fn(ctx)
	}
	defer tty.Close()

	run := func() (any, error) { return fn(ctx) }
	m := newSpinnerModel(message, cancel, run, DefaultStyles())
	p := tea.NewProgram(m, tea.WithInput(tty), tea.WithOutput(os.Stderr), tea.WithoutSignalHandler(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, err
	}

	fm := final.(spinnerModel)
	if fm.cancelled {
		return zero, ErrCancelled
	}
	if fm.result.err != nil {
		return zero, fm.result.err
	}
	v, _ := fm.result.value.(T)
	return v, nil
}
