// Package wizardview renders a step wizard over the controller in
// internal/wizard. One screen per step, a progress header, and a result
// screen once generation has run.
package wizardview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raptorflow/raptorflow/internal/events"
	"github.com/raptorflow/raptorflow/internal/log"
	"github.com/raptorflow/raptorflow/internal/ui/styles"
	"github.com/raptorflow/raptorflow/internal/wizard"
)

// ResultRenderer turns a generation result into display text for the
// terminal step. Schemas plug in their own rendering.
type ResultRenderer func(result wizard.Result) string

// callTimeout bounds the generate and save collaborator calls made from
// command goroutines.
const callTimeout = 30 * time.Second

type generateDoneMsg struct {
	result wizard.Result
}

type saveDoneMsg struct {
	err error
}

// DoneMsg is emitted instead of quitting when the view runs embedded in a
// host model, so the host can dismiss the wizard and keep running.
type DoneMsg struct {
	Saved bool
}

// Model drives one wizard schema through the terminal.
type Model struct {
	ctrl     *wizard.Controller
	render   ResultRenderer
	bus      *events.Bus
	inputs   map[string]*textinput.Model
	selects  map[string]int
	focus    int
	spin     spinner.Model
	width    int
	busy     bool
	busyWhat string
	errMsg   string
	saved    bool
	embedded bool
	quitting bool
}

// New creates a wizard view over the given controller. The renderer is
// required; the bus may be nil.
func New(ctrl *wizard.Controller, render ResultRenderer, bus *events.Bus) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.AccentColor)

	inputs := make(map[string]*textinput.Model)
	selects := make(map[string]int)
	for _, step := range ctrl.Schema().Steps {
		for _, f := range step.Fields {
			switch f.Kind {
			case wizard.FieldSelect:
				selects[f.Name] = -1
			default:
				ti := textinput.New()
				ti.Placeholder = f.Placeholder
				ti.Prompt = "> "
				ti.CharLimit = 500
				inputs[f.Name] = &ti
			}
		}
	}

	m := Model{
		ctrl:    ctrl,
		render:  render,
		bus:     bus,
		inputs:  inputs,
		selects: selects,
		spin:    s,
		width:   80,
	}
	m.syncFocus()
	return m
}

// Embedded makes the quit keys emit DoneMsg instead of tea.Quit. Hosts
// like the dashboard use this to return to their own view.
func (m Model) Embedded() Model {
	m.embedded = true
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case generateDoneMsg:
		m.busy = false
		m.ctrl.CompleteGenerate(msg.result)
		m.errMsg = ""
		if msg.result.Fallback {
			m.errMsg = "Generation service unavailable; showing the local draft instead."
		}
		m.focus = 0
		m.syncFocus()
		m.publish(events.New(events.EventWorkshopGenerated, nil).
			WithSchema(m.ctrl.Schema().Name, m.ctrl.Current()))
		return m, nil

	case saveDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Save failed: %v. Your answers are untouched, try again.", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.saved = true
		m.publish(events.New(events.EventWorkshopSaved, nil).
			WithSchema(m.ctrl.Schema().Name, m.ctrl.Current()))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		return m.dismiss()

	case "enter":
		return m.handleEnter()

	case "shift+tab":
		if m.focus > 0 {
			m.focus--
			m.syncFocus()
		} else if m.ctrl.Current() > 1 {
			m.retreat()
		}
		return m, nil

	case "tab":
		fields := m.currentFields()
		if m.focus < len(fields)-1 {
			m.focus++
			m.syncFocus()
		}
		return m, nil

	case "left", "right":
		if f, ok := m.focusedField(); ok && f.Kind == wizard.FieldSelect {
			m.cycleSelect(f, msg.String() == "right")
			return m, nil
		}

	case "ctrl+s":
		if m.ctrl.Result() != nil && !m.saved {
			return m.startSave()
		}
		return m, nil
	}

	// Everything else edits the focused text input.
	if f, ok := m.focusedField(); ok && f.Kind == wizard.FieldText {
		ti := m.inputs[f.Name]
		var cmd tea.Cmd
		*ti, cmd = ti.Update(msg)
		m.ctrl.SetField(f.Name, ti.Value())
		m.saved = false
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	// Terminal step: enter saves.
	if m.ctrl.Result() != nil && m.ctrl.Current() == m.ctrl.TotalSteps() {
		if m.saved {
			return m.dismiss()
		}
		return m.startSave()
	}

	fields := m.currentFields()
	if m.focus < len(fields)-1 {
		m.focus++
		m.syncFocus()
		return m, nil
	}

	if !m.ctrl.StepValid(m.ctrl.Current()) {
		m.errMsg = "Fill in the required fields before moving on."
		return m, nil
	}
	m.errMsg = ""

	if m.onLastInputStep() {
		return m.startGenerate()
	}

	m.ctrl.Advance()
	m.focus = 0
	m.syncFocus()
	m.publish(events.New(events.EventWorkshopStepAdvanced, nil).
		WithSchema(m.ctrl.Schema().Name, m.ctrl.Current()))
	return m, nil
}

// dismiss ends the wizard: embedded views hand control back to the host,
// standalone views quit the program.
func (m Model) dismiss() (tea.Model, tea.Cmd) {
	if m.embedded {
		saved := m.saved
		return m, func() tea.Msg { return DoneMsg{Saved: saved} }
	}
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) retreat() {
	m.ctrl.Retreat()
	m.focus = 0
	m.syncFocus()
	m.errMsg = ""
}

// startGenerate snapshots the fields on the event loop and runs only the
// collaborator call in the command goroutine; the outcome is applied to the
// controller when generateDoneMsg comes back through Update.
func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	fields, err := m.ctrl.BeginGenerate()
	if err != nil {
		m.errMsg = "Fill in the required fields before generating."
		return m, nil
	}
	m.busy = true
	m.busyWhat = "Generating your positioning map"
	ctrl := m.ctrl
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return generateDoneMsg{result: ctrl.RunGenerator(ctx, fields)}
	}
}

// startSave follows the same snapshot-then-apply shape as startGenerate.
func (m Model) startSave() (tea.Model, tea.Cmd) {
	fields, result, err := m.ctrl.BeginSave()
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.busy = true
	m.busyWhat = "Saving"
	ctrl := m.ctrl
	name := m.ctrl.Schema().Name
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		err := ctrl.RunSaver(ctx, fields, result)
		if err != nil {
			log.ErrorErr(log.CatWizard, "Save failed", err, "schema", name)
		}
		return saveDoneMsg{err: err}
	}
}

// cycleSelect moves a select field to its next or previous option.
func (m *Model) cycleSelect(f wizard.Field, forward bool) {
	idx := m.selects[f.Name]
	n := len(f.Options)
	if forward {
		idx = (idx + 1) % n
	} else {
		if idx <= 0 {
			idx = n - 1
		} else {
			idx--
		}
	}
	m.selects[f.Name] = idx
	m.ctrl.SetField(f.Name, f.Options[idx])
	m.saved = false
}

func (m Model) currentFields() []wizard.Field {
	return m.ctrl.Schema().Steps[m.ctrl.Current()-1].Fields
}

func (m Model) focusedField() (wizard.Field, bool) {
	fields := m.currentFields()
	if m.focus < 0 || m.focus >= len(fields) {
		return wizard.Field{}, false
	}
	return fields[m.focus], true
}

func (m *Model) onLastInputStep() bool {
	return m.ctrl.Current() == m.ctrl.Schema().TerminalStep()-1
}

// syncFocus blurs every text input except the focused field's.
func (m *Model) syncFocus() {
	focused, _ := m.focusedField()
	for name, ti := range m.inputs {
		if name == focused.Name {
			ti.Focus()
		} else {
			ti.Blur()
		}
	}
}

func (m *Model) publish(e events.Event) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	schema := m.ctrl.Schema()
	step := schema.Steps[m.ctrl.Current()-1]

	b.WriteString(styles.TitleStyle.Render(step.Title))
	b.WriteString("  ")
	b.WriteString(styles.HintStyle.Render(styles.FormatStepIndicator(m.ctrl.Current(), m.ctrl.TotalSteps())))
	b.WriteString("\n")
	b.WriteString(m.progressLine())
	b.WriteString("\n\n")

	if step.Hint != "" {
		b.WriteString(styles.HintStyle.Render(step.Hint))
		b.WriteString("\n\n")
	}

	if step.Terminal {
		b.WriteString(m.resultView())
	} else {
		b.WriteString(m.fieldsView(step))
	}

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.spin.View())
		b.WriteString(styles.HintStyle.Render(m.busyWhat + "..."))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.helpLine(step))
	return b.String()
}

// progressLine renders one marker per step: filled when valid, the current
// step highlighted.
func (m Model) progressLine() string {
	markers := make([]string, 0, m.ctrl.TotalSteps())
	for n := 1; n <= m.ctrl.TotalSteps(); n++ {
		marker := "○"
		if m.ctrl.StepValid(n) {
			marker = "●"
		}
		style := styles.HintStyle
		switch {
		case n == m.ctrl.Current():
			style = lipgloss.NewStyle().Foreground(styles.HighlightColor)
		case m.ctrl.StepValid(n):
			style = styles.ValidStyle
		}
		markers = append(markers, style.Render(marker))
	}
	return strings.Join(markers, " ")
}

func (m Model) fieldsView(step wizard.Step) string {
	var b strings.Builder
	for i, f := range step.Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		labelStyle := styles.HintStyle
		if i == m.focus {
			labelStyle = lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")

		switch f.Kind {
		case wizard.FieldSelect:
			b.WriteString(m.selectView(f, i == m.focus))
		default:
			b.WriteString(m.inputs[f.Name].View())
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (m Model) selectView(f wizard.Field, focused bool) string {
	idx := m.selects[f.Name]
	value := "(choose with ←/→)"
	if idx >= 0 {
		value = fmt.Sprintf("← %s →  (%d/%d)", f.Options[idx], idx+1, len(f.Options))
	}
	if focused {
		return lipgloss.NewStyle().Foreground(styles.AccentColor).Render(value)
	}
	return styles.HintStyle.Render(value)
}

func (m Model) resultView() string {
	result := m.ctrl.Result()
	if result == nil {
		return styles.HintStyle.Render("No result yet.")
	}
	out := m.render(*result)
	if m.saved {
		out += "\n\n" + styles.ValidStyle.Render("Saved.")
	}
	return out
}

func (m Model) helpLine(step wizard.Step) string {
	quit := "esc quit"
	if m.embedded {
		quit = "esc back"
	}
	if step.Terminal {
		if m.saved {
			return styles.HintStyle.Render("enter done • " + quit)
		}
		return styles.HintStyle.Render("ctrl+s save • " + quit)
	}
	parts := []string{"enter next", "shift+tab back"}
	if m.onLastInputStep() {
		parts[0] = "enter generate"
	}
	if hasSelect(step) {
		parts = append(parts, "←/→ choose")
	}
	parts = append(parts, quit)
	return styles.HintStyle.Render(strings.Join(parts, " • "))
}

func hasSelect(step wizard.Step) bool {
	for _, f := range step.Fields {
		if f.Kind == wizard.FieldSelect {
			return true
		}
	}
	return false
}
