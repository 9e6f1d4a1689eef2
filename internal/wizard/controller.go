package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/raptorflow/raptorflow/internal/log"
)

// ErrIncomplete is returned by Generate when one or more input steps are
// still invalid.
var ErrIncomplete = errors.New("wizard: required steps are not complete")

// ErrNoResult is returned by Save before a result has been generated.
var ErrNoResult = errors.New("wizard: nothing generated yet")

// Generator produces the structured result from the collected field values.
// Implementations call the RaptorFlow backend; failures are expected and
// trigger the local fallback.
type Generator interface {
	Generate(ctx context.Context, fields map[string]string) (any, error)
}

// Saver persists the finalized wizard outcome.
type Saver interface {
	Save(ctx context.Context, fields map[string]string, result any) error
}

// Fallback deterministically builds a result from the literal field values.
// It runs when the Generator fails so the user is never left at a dead end.
type Fallback func(fields map[string]string) any

// Result is the outcome of a Generate call.
type Result struct {
	// Value is the generated (or fallback-substituted) structured result.
	Value any
	// Fallback reports whether the local substitution was used.
	Fallback bool
}

// Controller drives a strictly ordered, validated multi-step form.
//
// Steps are 1-indexed. Forward navigation is gated on per-step validity;
// backward navigation is unconditional. The terminal step is entered only
// through Generate. The controller is not safe for concurrent use: it is
// designed to be mutated from a single event loop. RunGenerator and
// RunSaver are the only methods that may be called off that loop.
type Controller struct {
	schema   Schema
	gen      Generator
	saver    Saver
	fallback Fallback

	current  int
	fields   map[string]string
	validity map[int]bool
	result   *Result

	// fieldStep maps a field name to the 1-indexed step declaring it, so
	// SetField only recomputes validity for the affected step.
	fieldStep map[string]int
}

// New creates a controller positioned at step 1 with empty fields.
// The saver may be nil when the workflow has no persistence action.
func New(schema Schema, gen Generator, fallback Fallback, saver Saver) (*Controller, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	if fallback == nil {
		return nil, fmt.Errorf("schema %s: fallback is required", schema.Name)
	}

	c := &Controller{
		schema:    schema,
		gen:       gen,
		saver:     saver,
		fallback:  fallback,
		current:   1,
		fields:    make(map[string]string),
		validity:  make(map[int]bool),
		fieldStep: make(map[string]int),
	}
	for i, step := range schema.Steps {
		for _, f := range step.Fields {
			c.fieldStep[f.Name] = i + 1
		}
	}
	for i := range schema.Steps {
		c.recomputeStep(i + 1)
	}
	return c, nil
}

// SetField updates a field value and recomputes validity for the declaring
// step. Passing a name the schema does not declare is a programmer error
// and panics. Any previously generated result is stale after an edit and
// is discarded.
func (c *Controller) SetField(name, value string) {
	step, ok := c.fieldStep[name]
	if !ok {
		panic(fmt.Sprintf("wizard: field %q not declared in schema %s", name, c.schema.Name))
	}
	c.fields[name] = value
	c.recomputeStep(step)
	if c.result != nil {
		log.Debug(log.CatWizard, "Discarding stale result after field edit", "schema", c.schema.Name, "field", name)
		c.result = nil
	}
}

// Field returns the current value for a field (empty string when unset).
func (c *Controller) Field(name string) string {
	return c.fields[name]
}

// Fields returns a copy of all field values.
func (c *Controller) Fields() map[string]string {
	out := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// Current returns the 1-indexed current step.
func (c *Controller) Current() int { return c.current }

// TotalSteps returns the number of steps including the terminal step.
func (c *Controller) TotalSteps() int { return len(c.schema.Steps) }

// Schema returns the schema the controller was built from.
func (c *Controller) Schema() Schema { return c.schema }

// StepValid reports whether the given 1-indexed step is valid. The terminal
// step is valid once a result exists.
func (c *Controller) StepValid(n int) bool {
	if n < 1 || n > len(c.schema.Steps) {
		return false
	}
	if c.schema.Steps[n-1].Terminal {
		return c.result != nil
	}
	return c.validity[n]
}

// InputStepsValid reports whether every non-terminal step is valid, the
// precondition for Generate.
func (c *Controller) InputStepsValid() bool {
	for i, step := range c.schema.Steps {
		if step.Terminal {
			continue
		}
		if !c.validity[i+1] {
			return false
		}
	}
	return true
}

// Advance moves forward one step when the current step is valid. It never
// moves past the last input step: the terminal step is reached only via
// Generate. Invalid current step makes Advance a no-op.
func (c *Controller) Advance() {
	if !c.validity[c.current] {
		return
	}
	if c.current >= c.schema.TerminalStep()-1 {
		return
	}
	c.current++
}

// Retreat moves back one step, floored at 1.
func (c *Controller) Retreat() {
	if c.current > 1 {
		c.current--
	}
}

// GoToStep jumps to the given 1-indexed step. Jumping backward (or staying
// put) is always allowed; jumping forward requires every step from the
// current one up to, but excluding, the target to be valid. The terminal
// step is never a valid jump target. Violations are silent no-ops so the
// UI can wire jumps to clicks without pre-checking.
func (c *Controller) GoToStep(n int) {
	if n < 1 || n >= c.schema.TerminalStep() {
		return
	}
	if n <= c.current {
		c.current = n
		return
	}
	for i := c.current; i < n; i++ {
		if !c.validity[i] {
			return
		}
	}
	c.current = n
}

// Generate invokes the generation collaborator with the collected fields.
// All input steps must be valid. A generator failure (or absent generator)
// substitutes the deterministic local fallback, so a successful call always
// yields a non-empty result. On completion the controller advances to the
// terminal step.
//
// Event-loop callers that must not block use the three-phase form instead:
// BeginGenerate on the loop, RunGenerator on a worker, CompleteGenerate on
// the loop when the worker finishes.
func (c *Controller) Generate(ctx context.Context) (Result, error) {
	fields, err := c.BeginGenerate()
	if err != nil {
		return Result{}, err
	}
	res := c.RunGenerator(ctx, fields)
	c.CompleteGenerate(res)
	return res, nil
}

// BeginGenerate checks the generation precondition and snapshots the
// collected fields for a RunGenerator call. Returns ErrIncomplete when any
// input step is invalid.
func (c *Controller) BeginGenerate() (map[string]string, error) {
	if !c.InputStepsValid() {
		return nil, ErrIncomplete
	}
	return c.Fields(), nil
}

// RunGenerator calls the generation collaborator with a field snapshot,
// substituting the deterministic fallback on failure. It reads only the
// collaborators fixed at New and never touches mutable controller state,
// so it may run on a worker goroutine while the owning loop keeps reading
// the controller.
func (c *Controller) RunGenerator(ctx context.Context, fields map[string]string) Result {
	if c.gen == nil {
		return Result{Value: c.fallback(fields), Fallback: true}
	}
	value, err := c.gen.Generate(ctx, fields)
	if err != nil {
		log.Warn(log.CatWizard, "Generation failed, using local fallback", "schema", c.schema.Name, "error", err)
		return Result{Value: c.fallback(fields), Fallback: true}
	}
	return Result{Value: value}
}

// CompleteGenerate records a generation outcome and advances to the
// terminal step.
func (c *Controller) CompleteGenerate(res Result) {
	c.result = &res
	c.current = c.schema.TerminalStep()
}

// Result returns the generated result, or nil before Generate succeeds.
func (c *Controller) Result() *Result { return c.result }

// Save hands the finalized fields and result to the persistence
// collaborator. Failures are returned to the caller for display and leave
// the in-memory state untouched. BeginSave plus RunSaver is the
// event-loop-safe form, mirroring Generate.
func (c *Controller) Save(ctx context.Context) error {
	fields, result, err := c.BeginSave()
	if err != nil {
		return err
	}
	return c.RunSaver(ctx, fields, result)
}

// BeginSave snapshots the fields and result for a RunSaver call. Returns
// ErrNoResult before Generate has produced a result.
func (c *Controller) BeginSave() (map[string]string, any, error) {
	if c.result == nil {
		return nil, nil, ErrNoResult
	}
	return c.Fields(), c.result.Value, nil
}

// RunSaver hands a snapshot to the persistence collaborator. Like
// RunGenerator it touches no mutable controller state and may run on a
// worker goroutine.
func (c *Controller) RunSaver(ctx context.Context, fields map[string]string, result any) error {
	if c.saver == nil {
		return nil
	}
	if err := c.saver.Save(ctx, fields, result); err != nil {
		return fmt.Errorf("saving wizard outcome: %w", err)
	}
	return nil
}

// recomputeStep re-derives validity for a single 1-indexed input step:
// a step is valid when all its required fields are non-blank.
func (c *Controller) recomputeStep(n int) {
	step := c.schema.Steps[n-1]
	if step.Terminal {
		return
	}
	valid := true
	for _, f := range step.Fields {
		if f.Required && strings.TrimSpace(c.fields[f.Name]) == "" {
			valid = false
			break
		}
	}
	c.validity[n] = valid
}
