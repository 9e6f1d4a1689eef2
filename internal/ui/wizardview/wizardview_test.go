package wizardview

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorflow/raptorflow/internal/wizard"
)

func testSchema() wizard.Schema {
	return wizard.Schema{
		Name: "test",
		Steps: []wizard.Step{
			{
				ID:    "who",
				Title: "Who is it for",
				Fields: []wizard.Field{
					{Name: "audience", Label: "Audience", Kind: wizard.FieldText, Required: true},
					{Name: "band", Label: "Band", Kind: wizard.FieldSelect, Required: true, Options: []string{"niche", "broad"}},
				},
			},
			{
				ID:    "what",
				Title: "What changes",
				Fields: []wizard.Field{
					{Name: "change", Label: "Change", Kind: wizard.FieldText, Required: true},
				},
			},
			{ID: "done", Title: "Result", Terminal: true},
		},
	}
}

type fakeGenerator struct {
	out any
	err error
}

func (g *fakeGenerator) Generate(context.Context, map[string]string) (any, error) {
	return g.out, g.err
}

type fakeSaver struct {
	err   error
	calls int
}

func (s *fakeSaver) Save(context.Context, map[string]string, any) error {
	s.calls++
	return s.err
}

func echoRender(r wizard.Result) string {
	return fmt.Sprintf("result: %v", r.Value)
}

func newModel(t *testing.T, gen wizard.Generator, saver wizard.Saver) Model {
	t.Helper()
	ctrl, err := wizard.New(testSchema(), gen, func(map[string]string) any { return "fell back" }, saver)
	require.NoError(t, err)
	return New(ctrl, echoRender, nil)
}

func press(m Model, key string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(Model)
}

func pressSpecial(m Model, t tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: t})
	return next.(Model)
}

func pressNamed(m Model, name string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch name {
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestTypingFillsControllerField(t *testing.T) {
	m := newModel(t, nil, nil)

	m = press(m, "d")
	m = press(m, "e")
	m = press(m, "v")

	assert.Equal(t, "dev", m.ctrl.Field("audience"))
}

func TestSelectCyclesWithArrows(t *testing.T) {
	m := newModel(t, nil, nil)

	m = pressSpecial(m, tea.KeyTab) // focus the select
	m, _ = pressNamed(m, "right")
	assert.Equal(t, "niche", m.ctrl.Field("band"))

	m, _ = pressNamed(m, "right")
	assert.Equal(t, "broad", m.ctrl.Field("band"))

	m, _ = pressNamed(m, "left")
	assert.Equal(t, "niche", m.ctrl.Field("band"))
}

func TestEnterOnIncompleteStepShowsError(t *testing.T) {
	m := newModel(t, nil, nil)

	m = pressSpecial(m, tea.KeyTab) // move to last field without filling anything
	m = pressSpecial(m, tea.KeyEnter)

	assert.Equal(t, 1, m.ctrl.Current(), "step must not advance")
	assert.NotEmpty(t, m.errMsg)
}

func TestEnterAdvancesWhenStepValid(t *testing.T) {
	m := newModel(t, nil, nil)

	m = press(m, "x")
	m = pressSpecial(m, tea.KeyEnter) // to select field
	m, _ = pressNamed(m, "right")
	m = pressSpecial(m, tea.KeyEnter) // advance

	assert.Equal(t, 2, m.ctrl.Current())
	assert.Empty(t, m.errMsg)
}

func TestShiftTabRetreatsFromFirstField(t *testing.T) {
	m := newModel(t, nil, nil)
	m = press(m, "x")
	m = pressSpecial(m, tea.KeyEnter)
	m, _ = pressNamed(m, "right")
	m = pressSpecial(m, tea.KeyEnter)
	require.Equal(t, 2, m.ctrl.Current())

	m, _ = pressNamed(m, "shift+tab")
	assert.Equal(t, 1, m.ctrl.Current())
	assert.Equal(t, "x", m.ctrl.Field("audience"), "fields survive retreat")
}

func fillAndReachLastStep(t *testing.T, m Model) Model {
	t.Helper()
	m = press(m, "x")
	m = pressSpecial(m, tea.KeyEnter)
	m, _ = pressNamed(m, "right")
	m = pressSpecial(m, tea.KeyEnter)
	m = press(m, "y")
	return m
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestEnterOnLastInputStepGenerates(t *testing.T) {
	m := newModel(t, &fakeGenerator{out: "the map"}, nil)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	assert.True(t, m.busy)

	m = runCmd(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, m.ctrl.TotalSteps(), m.ctrl.Current(), "generation lands on the terminal step")
	require.NotNil(t, m.ctrl.Result())
	assert.Equal(t, "the map", m.ctrl.Result().Value)
	assert.Contains(t, m.View(), "result: the map")
}

func TestGenerateFailureFallsBackAndExplains(t *testing.T) {
	m := newModel(t, &fakeGenerator{err: errors.New("down")}, nil)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, next.(Model), cmd)

	require.NotNil(t, m.ctrl.Result())
	assert.Equal(t, "fell back", m.ctrl.Result().Value)
	assert.True(t, m.ctrl.Result().Fallback)
	assert.Contains(t, m.View(), "local draft")
}

func TestCtrlSSavesResult(t *testing.T) {
	saver := &fakeSaver{}
	m := newModel(t, &fakeGenerator{out: "the map"}, saver)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, next.(Model), cmd)

	m, saveCmd := pressNamed(m, "ctrl+s")
	m = runCmd(t, m, saveCmd)

	assert.Equal(t, 1, saver.calls)
	assert.True(t, m.saved)
	assert.Contains(t, m.View(), "Saved.")
}

func TestSaveFailureKeepsStateAndReports(t *testing.T) {
	saver := &fakeSaver{err: errors.New("disk full")}
	m := newModel(t, &fakeGenerator{out: "the map"}, saver)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, next.(Model), cmd)

	m, saveCmd := pressNamed(m, "ctrl+s")
	m = runCmd(t, m, saveCmd)

	assert.False(t, m.saved)
	assert.Contains(t, m.errMsg, "Save failed")
	require.NotNil(t, m.ctrl.Result(), "result survives a failed save")
	assert.Equal(t, "x", m.ctrl.Field("audience"), "fields survive a failed save")
}

func TestGenerateCmdLeavesControllerUntouched(t *testing.T) {
	m := newModel(t, &fakeGenerator{out: "the map"}, nil)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)

	// The command only calls the collaborator; the controller must not
	// move until Update applies the message on the event loop.
	msg := cmd()
	assert.Equal(t, 2, m.ctrl.Current())
	assert.Nil(t, m.ctrl.Result())

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.Equal(t, m.ctrl.TotalSteps(), m.ctrl.Current())
	require.NotNil(t, m.ctrl.Result())
}

type blockingGenerator struct {
	release chan struct{}
}

func (g *blockingGenerator) Generate(context.Context, map[string]string) (any, error) {
	<-g.release
	return "the map", nil
}

func TestViewDuringGeneration(t *testing.T) {
	gen := &blockingGenerator{release: make(chan struct{})}
	m := newModel(t, gen, nil)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)

	// Run the command the way the bubbletea runtime does, on its own
	// goroutine, while the loop keeps rendering.
	msgCh := make(chan tea.Msg, 1)
	go func() { msgCh <- cmd() }()

	for i := 0; i < 50; i++ {
		_ = m.View()
	}
	close(gen.release)

	next, _ = m.Update(<-msgCh)
	m = next.(Model)
	assert.Equal(t, m.ctrl.TotalSteps(), m.ctrl.Current())
	assert.Contains(t, m.View(), "result: the map")
}

func TestSaveCmdLeavesControllerUntouched(t *testing.T) {
	saver := &fakeSaver{}
	m := newModel(t, &fakeGenerator{out: "the map"}, saver)
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, next.(Model), cmd)

	m, saveCmd := pressNamed(m, "ctrl+s")
	require.NotNil(t, saveCmd)

	msg := saveCmd()
	assert.Equal(t, 1, saver.calls)
	assert.False(t, m.saved, "saved flips only once Update sees the message")

	next, _ = m.Update(msg)
	assert.True(t, next.(Model).saved)
}

func TestEmbeddedEscHandsBackToHost(t *testing.T) {
	m := newModel(t, &fakeGenerator{out: "the map"}, nil).Embedded()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, DoneMsg{Saved: false}, cmd())
	assert.False(t, m.quitting, "embedded views never quit the program")
	assert.Contains(t, m.View(), "esc back")
}

func TestEmbeddedDoneReportsSave(t *testing.T) {
	saver := &fakeSaver{}
	m := newModel(t, &fakeGenerator{out: "the map"}, saver).Embedded()
	m = fillAndReachLastStep(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, next.(Model), cmd)

	m, saveCmd := pressNamed(m, "ctrl+s")
	m = runCmd(t, m, saveCmd)
	require.True(t, m.saved)

	_, doneCmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, doneCmd)
	assert.Equal(t, DoneMsg{Saved: true}, doneCmd())
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := newModel(t, &fakeGenerator{out: "the map"}, nil)
	m = fillAndReachLastStep(t, m)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.True(t, m.busy)

	before := m.ctrl.Field("change")
	m = press(m, "z")
	assert.Equal(t, before, m.ctrl.Field("change"))
}

func TestWizardSmoke(t *testing.T) {
	m := newModel(t, nil, nil)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return len(bts) > 0
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))
}
