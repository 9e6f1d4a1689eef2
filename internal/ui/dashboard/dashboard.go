// Package dashboard renders the RaptorFlow home screen: growth metrics,
// saved cohorts and drafts, and a live activity feed.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/raptorflow/raptorflow/internal/activity"
	"github.com/raptorflow/raptorflow/internal/cohorts"
	"github.com/raptorflow/raptorflow/internal/events"
	"github.com/raptorflow/raptorflow/internal/log"
	"github.com/raptorflow/raptorflow/internal/metricsgen"
	"github.com/raptorflow/raptorflow/internal/positioning"
	"github.com/raptorflow/raptorflow/internal/ui/styles"
)

const (
	feedLength    = 8
	draftsShown   = 5
	metricsDays   = 30
	sparklineSpan = 24
)

type refreshMsg struct{}

type busEventMsg struct {
	event events.Event
}

type watchErrMsg struct {
	err error
}

// Model is the dashboard TUI model.
type Model struct {
	cohortRepo  cohorts.Repository
	draftRepo   positioning.DraftRepository
	bus         *events.Bus
	busCh       <-chan events.Event
	busCancel   func()
	watcher     *fsnotify.Watcher
	watchPath   string
	debounce    time.Duration
	metricsSeed int64

	dash     metricsgen.Dashboard
	cohorts  []*cohorts.Cohort
	drafts   []*positioning.Draft
	feed     []activity.Event
	live     []activity.Event
	loadErr  string
	width    int
	height   int
	quitting bool
}

// Option configures the dashboard.
type Option func(*Model)

// WithAutoRefresh watches the given file and reloads on changes, debounced.
func WithAutoRefresh(path string, debounce time.Duration) Option {
	return func(m *Model) {
		m.watchPath = path
		m.debounce = debounce
	}
}

// WithBus subscribes the dashboard to workspace events for live refresh.
func WithBus(bus *events.Bus) Option {
	return func(m *Model) {
		m.bus = bus
	}
}

// New creates a dashboard over the given repositories.
func New(cohortRepo cohorts.Repository, draftRepo positioning.DraftRepository, metricsSeed int64, opts ...Option) Model {
	m := Model{
		cohortRepo:  cohortRepo,
		draftRepo:   draftRepo,
		metricsSeed: metricsSeed,
		debounce:    time.Second,
		width:       100,
		height:      30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.bus != nil {
		m.busCh, m.busCancel = m.bus.Subscribe(events.Filter{}, 32)
	}
	if m.watchPath != "" {
		m.startWatcher()
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.busCh != nil {
		cmds = append(cmds, waitForBusEvent(m.busCh))
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForFileChange(m.watcher, m.debounce))
	}
	return tea.Batch(cmds...)
}

// startWatcher begins watching the data file for changes.
func (m *Model) startWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to create file watcher", err)
		return
	}
	if err := watcher.Add(m.watchPath); err != nil {
		log.ErrorErr(log.CatUI, "Failed to watch data file", err, "path", m.watchPath)
		_ = watcher.Close()
		return
	}
	m.watcher = watcher
}

// waitForFileChange blocks until a write event lands, then debounces before
// asking for a refresh.
func waitForFileChange(watcher *fsnotify.Watcher, debounce time.Duration) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					time.Sleep(debounce)
					drainEvents(watcher)
					return refreshMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

// drainEvents discards events that piled up during the debounce window.
func drainEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-watcher.Events:
		default:
			return
		}
	}
}

func waitForBusEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return busEventMsg{event: e}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		m.reload()
		if m.watcher != nil {
			return m, waitForFileChange(m.watcher, m.debounce)
		}
		return m, nil

	case busEventMsg:
		if entry, ok := activity.FromBusEvent(msg.event); ok {
			m.live = append([]activity.Event{entry}, m.live...)
			if len(m.live) > feedLength {
				m.live = m.live[:feedLength]
			}
		}
		m.reload()
		return m, waitForBusEvent(m.busCh)

	case watchErrMsg:
		log.ErrorErr(log.CatUI, "File watcher error", msg.err)
		if m.watcher != nil {
			return m, waitForFileChange(m.watcher, m.debounce)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.shutdown()
			return m, tea.Quit
		case "r":
			m.reload()
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) shutdown() {
	if m.busCancel != nil {
		m.busCancel()
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

// reload pulls fresh data for every panel. Live bus entries stay at the
// top of the feed, padded out with the seeded workspace feed.
func (m *Model) reload() {
	m.loadErr = ""
	m.dash = metricsgen.Generate(m.metricsSeed, metricsDays, time.Now())
	m.feed = append(append([]activity.Event{}, m.live...),
		activity.Feed(m.metricsSeed, feedLength, time.Now())...)
	if len(m.feed) > feedLength {
		m.feed = m.feed[:feedLength]
	}

	if m.cohortRepo != nil {
		list, err := m.cohortRepo.List()
		if err != nil {
			log.ErrorErr(log.CatUI, "Failed to load cohorts", err)
			m.loadErr = "Some panels failed to load."
		} else {
			m.cohorts = list
		}
	}
	if m.draftRepo != nil {
		drafts, err := m.draftRepo.List(draftsShown)
		if err != nil {
			log.ErrorErr(log.CatUI, "Failed to load drafts", err)
			m.loadErr = "Some panels failed to load."
		} else {
			m.drafts = drafts
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	panelWidth := max(m.width/3, 30)
	metricsPanel := styles.RenderPanel(m.metricsBody(panelWidth-2), "Growth", "", panelWidth, 9)
	cohortsPanel := styles.RenderPanel(m.cohortsBody(), "Cohorts", fmt.Sprintf("%d", len(m.cohorts)), panelWidth, 9)
	draftsPanel := styles.RenderPanel(m.draftsBody(), "Positioning drafts", "", panelWidth, 9)

	top := lipgloss.JoinHorizontal(lipgloss.Top, metricsPanel, cohortsPanel, draftsPanel)

	feedWidth := max(m.width-2, 60)
	feedPanel := styles.RenderPanel(m.feedBody(), "Activity", "", feedWidth, feedLength+2)

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(feedPanel)
	b.WriteString("\n")
	if m.loadErr != "" {
		b.WriteString(styles.ErrorStyle.Render(m.loadErr))
		b.WriteString("\n")
	}
	b.WriteString(styles.HintStyle.Render("w workshop • r refresh • q quit"))
	return b.String()
}

func (m Model) metricsBody(width int) string {
	span := min(sparklineSpan, max(width-10, 8))
	rows := []struct {
		label  string
		series metricsgen.Series
		money  bool
	}{
		{"Visitors", m.dash.Visitors, false},
		{"Signups", m.dash.Conversions, false},
		{"MRR", m.dash.MRR, true},
	}

	var b strings.Builder
	for _, row := range rows {
		value := styles.FormatCount(row.series.Latest())
		if row.money {
			value = styles.FormatCurrency(row.series.Latest())
		}
		delta := styles.FormatDelta(row.series.Delta())
		b.WriteString(fmt.Sprintf("%-9s %8s %s\n", row.label, value, delta))
		b.WriteString(styles.HintStyle.Render(metricsgen.Sparkline(row.series, span)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) cohortsBody() string {
	if len(m.cohorts) == 0 {
		return styles.HintStyle.Render("No cohorts yet.\nRun 'raptorflow cohorts new'.")
	}
	var b strings.Builder
	for _, c := range m.cohorts {
		b.WriteString(fmt.Sprintf("%s %s\n", c.Name, styles.HintStyle.Render("("+string(c.SizeBand)+")")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) draftsBody() string {
	if len(m.drafts) == 0 {
		return styles.HintStyle.Render("No drafts yet.\nRun 'raptorflow workshop'.")
	}
	var b strings.Builder
	for _, d := range m.drafts {
		marker := styles.ValidStyle.Render("●")
		if d.Fallback {
			marker = lipgloss.NewStyle().Foreground(styles.StatusWarningColor).Render("◐")
		}
		b.WriteString(fmt.Sprintf("%s %s\n", marker, styles.TruncateString(d.Title, 30)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) feedBody() string {
	var b strings.Builder
	for _, e := range m.feed {
		b.WriteString(styles.HintStyle.Render(e.At.Format("15:04")))
		b.WriteString("  ")
		b.WriteString(e.Describe())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
