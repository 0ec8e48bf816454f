package ui

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// SignalForwarder receives the interrupt when ctrl+c is pressed while the
// spinner owns the terminal.
type SignalForwarder interface {
	ForwardSignal(sig os.Signal)
}

type spinnerDoneMsg struct{}

type spinnerDetailMsg string

type spinnerModel struct {
	spinner        spinner.Model
	message        string
	target         string
	detailRendered string
	done           bool
	start          time.Time
	forwarder      SignalForwarder
}

type spinnerHandle struct {
	program  *tea.Program
	detailCh chan string
	doneCh   chan struct{}
}

var spinnerMessages = []string{
	"Generating test page...",
	"Reading the bug report...",
	"Writing a reproduction...",
	"Wiring up the trigger button...",
	"Inlining styles and scripts...",
	"Trying to break the browser...",
}

var spinnerStyles = []spinner.Spinner{
	spinner.Line,
	spinner.Dot,
	spinner.MiniDot,
	spinner.Jump,
	spinner.Pulse,
	spinner.Points,
	spinner.Globe,
	spinner.Moon,
	spinner.Monkey,
}

var (
	activeSpinner   *spinnerHandle
	activeSpinnerMu sync.Mutex
)

var (
	terminalOutput     io.Writer
	terminalOutputOnce sync.Once
)

// maxDetailLines caps the bug report excerpt shown under the spinner.
const maxDetailLines = 6

func getTerminalOutput() io.Writer {
	terminalOutputOnce.Do(func() {
		if runtime.GOOS == "windows" {
			terminalOutput = os.Stderr
			return
		}
		f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			terminalOutput = io.Discard
			return
		}
		terminalOutput = f
	})
	return terminalOutput
}

// StartSpinner draws a spinner on the terminal until the returned func is
// called. The returned func is safe to call more than once.
func StartSpinner(message string, target string, forwarder SignalForwarder) func() {
	lipgloss.SetColorProfile(termenv.ANSI)
	p := tea.NewProgram(newSpinnerModel(message, target, forwarder), tea.WithOutput(getTerminalOutput()))
	handle := &spinnerHandle{
		program:  p,
		detailCh: make(chan string, 8),
		doneCh:   make(chan struct{}),
	}
	activeSpinnerMu.Lock()
	activeSpinner = handle
	activeSpinnerMu.Unlock()

	done := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(done)
	}()
	go func() {
		for {
			select {
			case text := <-handle.detailCh:
				if strings.TrimSpace(text) != "" {
					handle.program.Send(spinnerDetailMsg(text))
				}
			case <-handle.doneCh:
				return
			}
		}
	}()
	var stopOnce sync.Once
	return func() {
		stopOnce.Do(func() {
			handle.program.Send(spinnerDoneMsg{})
			<-done
			close(handle.doneCh)
			activeSpinnerMu.Lock()
			activeSpinner = nil
			activeSpinnerMu.Unlock()
		})
	}
}

// SendSpinnerDetail shows text under the running spinner, if any.
func SendSpinnerDetail(text string) {
	activeSpinnerMu.Lock()
	handle := activeSpinner
	activeSpinnerMu.Unlock()
	if handle == nil {
		return
	}
	select {
	case handle.detailCh <- text:
	default:
	}
}

func RandomSpinnerMessage() string {
	if len(spinnerMessages) == 0 {
		return "Generating test page..."
	}
	seed := time.Now().UnixNano()
	return spinnerMessages[int(seed%int64(len(spinnerMessages)))]
}

// Excerpt returns the first lines of a bug report for display.
func Excerpt(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > maxDetailLines {
		lines = append(lines[:maxDetailLines], "…")
	}
	return strings.Join(lines, "\n")
}

func newSpinnerModel(message string, target string, forwarder SignalForwarder) spinnerModel {
	s := spinner.New()
	s.Spinner = randomSpinnerStyle()
	s.Style = accentStyle
	return spinnerModel{spinner: s, message: message, target: target, start: time.Now(), forwarder: forwarder}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinnerDetailMsg:
		m.detailRendered = mutedStyle.Render(string(msg))
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" && m.forwarder != nil {
			m.forwarder.ForwardSignal(os.Interrupt)
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return "\r\033[2K"
	}
	elapsed := time.Since(m.start).Seconds()
	elapsedStr := fmt.Sprintf("%.1fs", elapsed)
	targetTag := ""
	if m.target != "" {
		targetTag = " " + mutedStyle.Render("(using "+m.target+")")
	}
	if strings.TrimSpace(m.detailRendered) != "" {
		return fmt.Sprintf("\n  %s %s%s (%s)\n%s\n", m.spinner.View(), m.message, targetTag, elapsedStr, indent(m.detailRendered))
	}
	return fmt.Sprintf("\n  %s %s%s (%s)\n", m.spinner.View(), m.message, targetTag, elapsedStr)
}

func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func randomSpinnerStyle() spinner.Spinner {
	if len(spinnerStyles) == 0 {
		return spinner.Dot
	}
	seed := time.Now().UnixNano()
	return spinnerStyles[int(seed%int64(len(spinnerStyles)))]
}
