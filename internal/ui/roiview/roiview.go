// Package roiview is a small interactive form around the ROI calculator.
package roiview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/raptorflow/raptorflow/internal/roi"
	"github.com/raptorflow/raptorflow/internal/ui/styles"
)

type fieldSpec struct {
	label   string
	initial string
}

var fieldSpecs = []fieldSpec{
	{"Team size", "5"},
	{"Hourly rate ($)", "100"},
	{"Hours per week on busywork", "4"},
	{"Adoption multiplier (0-1)", "1.0"},
}

// Model drives the ROI form.
type Model struct {
	inputs          []textinput.Model
	focus           int
	planAnnualPrice float64
	outcome         *roi.Outcome
	inputErr        string
	quitting        bool
}

// New creates the ROI form using the given plan price for payback math.
func New(planAnnualPrice float64) Model {
	inputs := make([]textinput.Model, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		ti := textinput.New()
		ti.SetValue(spec.initial)
		ti.Prompt = "> "
		ti.CharLimit = 12
		if i == 0 {
			ti.Focus()
		}
		inputs[i] = ti
	}

	m := Model{inputs: inputs, planAnnualPrice: planAnnualPrice}
	m.recalculate()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return m, tea.Quit
	case "tab", "enter", "down":
		m.focus = (m.focus + 1) % len(m.inputs)
		m.syncFocus()
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus + len(m.inputs) - 1) % len(m.inputs)
		m.syncFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(keyMsg)
	m.recalculate()
	return m, cmd
}

func (m *Model) syncFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

// recalculate re-runs the payback math from the current field values.
func (m *Model) recalculate() {
	m.outcome = nil
	m.inputErr = ""

	teamSize, err := strconv.Atoi(strings.TrimSpace(m.inputs[0].Value()))
	if err != nil {
		m.inputErr = "Team size must be a whole number."
		return
	}
	rate, err := parseFloat(m.inputs[1].Value())
	if err != nil {
		m.inputErr = "Hourly rate must be a number."
		return
	}
	hours, err := parseFloat(m.inputs[2].Value())
	if err != nil {
		m.inputErr = "Hours per week must be a number."
		return
	}
	adoption, err := parseFloat(m.inputs[3].Value())
	if err != nil {
		m.inputErr = "Adoption multiplier must be a number."
		return
	}

	outcome, err := roi.Calculate(roi.Inputs{
		TeamSize:           teamSize,
		HourlyRate:         rate,
		HoursPerWeek:       hours,
		AdoptionMultiplier: adoption,
	}, m.planAnnualPrice)
	if err != nil {
		m.inputErr = err.Error()
		return
	}
	m.outcome = &outcome
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("ROI calculator"))
	b.WriteString("\n\n")

	for i, spec := range fieldSpecs {
		labelStyle := styles.HintStyle
		if i == m.focus {
			labelStyle = lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
		}
		b.WriteString(labelStyle.Render(spec.label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.inputErr != "" {
		b.WriteString(styles.ErrorStyle.Render(m.inputErr))
	} else if m.outcome != nil {
		b.WriteString(m.outcomeView())
	}
	b.WriteString("\n\n")
	b.WriteString(styles.HintStyle.Render("tab next field • q quit"))
	return b.String()
}

func (m Model) outcomeView() string {
	o := m.outcome
	payback := "n/a (no projected savings)"
	if !math.IsInf(o.PaybackWeeks, 1) {
		payback = fmt.Sprintf("%.1f weeks", o.PaybackWeeks)
	}

	rows := []string{
		fmt.Sprintf("Weekly cost of busywork   %s", styles.FormatCurrency(o.WeeklyCost)),
		fmt.Sprintf("Annualized cost           %s", styles.FormatCurrency(o.AnnualCost)),
		fmt.Sprintf("Projected annual savings  %s", styles.ValidStyle.Render(styles.FormatCurrency(o.ProjectedAnnualSavings))),
		fmt.Sprintf("Subscription payback      %s", payback),
	}
	return strings.Join(rows, "\n")
}
