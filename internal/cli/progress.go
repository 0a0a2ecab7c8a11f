package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/railvoice/internal/agent"
	"github.com/raphaelgruber/railvoice/internal/client"
	"github.com/raphaelgruber/railvoice/internal/models"
	"github.com/raphaelgruber/railvoice/internal/resolver"
)

const tickInterval = 250 * time.Millisecond

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Warning:    lipgloss.Color("#FFAF00"), // amber
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// step is a point in the lookup shown on the progress bar.
type step struct {
	label string
	pct   float64
}

var (
	stepPrimary   = step{"asking status API", 0.15}
	stepFallback  = step{"checking status website", 0.45}
	stepSummarize = step{"summarizing", 0.85}
	stepDone      = step{"done", 1}
)

// tickMsg keeps the elapsed timer moving.
type tickMsg time.Time

// stageMsg reports a resolver transition.
type stageMsg resolver.Event

// summarizingMsg reports that the summary is being generated.
type summarizingMsg struct{}

// resultMsg carries the final outcome.
type resultMsg struct {
	source   string
	degraded bool
	err      error
}

// progressModel is the bubbletea model for a status lookup.
type progressModel struct {
	pnr      string
	step     step
	started  time.Time
	progress progress.Model
	theme    Theme
	cancel   context.CancelFunc
	source   string
	degraded bool
	done     bool
	quitting bool
	err      error
}

func newProgressModel(pnr string, cancel context.CancelFunc) progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		pnr:      pnr,
		step:     stepPrimary,
		started:  time.Now(),
		progress: prog,
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

// Init returns the initial command.
func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case stageMsg:
		switch msg.Stage {
		case resolver.StageTryPrimary:
			m.step = stepPrimary
		case resolver.StageTryFallback:
			m.step = stepFallback
		case resolver.StageDone:
			m.step = stepDone
		}
		return m, nil

	case summarizingMsg:
		m.step = stepSummarize
		return m, nil

	case resultMsg:
		m.done = true
		m.step = stepDone
		m.source = msg.source
		m.degraded = msg.degraded
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.pnr))
	bar := m.progress.ViewAs(m.step.pct)
	elapsed := time.Since(m.started).Truncate(time.Second)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s (%s)\n%s\n", status, bar, m.step.label, elapsed, hint)
}

func (m progressModel) finalView() string {
	switch {
	case m.quitting:
		return m.theme.hintStyle().Render("\nLookup cancelled.\n")
	case m.err != nil:
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ %s\n", describeError(m.err)))
	case m.source != "" && m.degraded:
		return m.theme.warningStyle().Render(fmt.Sprintf("! Found via %s, little detail recovered\n", m.source))
	case m.source != "":
		return m.theme.completedStyle().Render(fmt.Sprintf("✓ Found via %s\n", m.source))
	default:
		return m.theme.completedStyle().Render("✓ Done\n")
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// describeError turns pipeline errors into a user-facing sentence.
func describeError(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidPNR):
		return "Invalid PNR. A PNR is exactly 10 digits."
	case errors.Is(err, models.ErrAllSourcesExhausted):
		return "Unable to fetch PNR status. Please verify the PNR number."
	case errors.Is(err, models.ErrNoPNRFound):
		return "No valid PNR found."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	default:
		return err.Error()
	}
}

// lookupFunc does the work behind a progress display. send forwards
// progress messages to the display.
type lookupFunc func(ctx context.Context, send func(tea.Msg)) (source string, degraded bool, err error)

// runProgress shows an interactive progress bar on stderr while work runs.
// Ctrl+C cancels the work and returns context.Canceled.
func runProgress(ctx context.Context, pnr string, work lookupFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(pnr, cancel), tea.WithOutput(os.Stderr))

	go func() {
		source, degraded, err := work(ctx, p.Send)
		p.Send(resultMsg{source: source, degraded: degraded, err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	m, ok := finalModel.(progressModel)
	if !ok {
		return errors.New("progress UI returned an unexpected model")
	}
	if m.quitting {
		return context.Canceled
	}
	return m.err
}

// RunStatusProgress resolves pnr in process while showing progress.
func RunStatusProgress(ctx context.Context, a *agent.Agent, pnr, language string, summarize bool) (*agent.StatusReport, error) {
	var report *agent.StatusReport
	err := runProgress(ctx, pnr, func(ctx context.Context, send func(tea.Msg)) (string, bool, error) {
		r, err := a.Lookup(ctx, pnr, language, summarize,
			func() { send(summarizingMsg{}) },
			resolver.Observe(func(e resolver.Event) { send(stageMsg(e)) }))
		if err != nil {
			return "", false, err
		}
		report = r
		return string(r.Source), r.Degraded, nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RunRemoteStatusProgress resolves pnr on a railvoice server, driving the
// same progress display from the server's stream.
func RunRemoteStatusProgress(ctx context.Context, c *client.Client, pnr, language string, summarize bool) (*client.StatusResult, error) {
	var result *client.StatusResult
	err := runProgress(ctx, pnr, func(ctx context.Context, send func(tea.Msg)) (string, bool, error) {
		res, err := c.StatusStream(ctx, pnr, language, summarize, func(e client.StatusEvent) {
			if msg := remoteEventMsg(e); msg != nil {
				send(msg)
			}
		})
		if err != nil {
			return "", false, err
		}
		result = res
		return res.Source, res.Degraded, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// remoteEventMsg maps a server stream event to a progress message.
func remoteEventMsg(e client.StatusEvent) tea.Msg {
	switch e.Type {
	case client.EventStage:
		return stageMsg{Stage: resolver.Stage(e.Stage)}
	case client.EventSummarizing:
		return summarizingMsg{}
	default:
		return nil
	}
}
