// Package wizard implements the linear wizard controller that drives
// RaptorFlow's multi-step forms: an ordered sequence of validated steps
// ending in a terminal results screen reached through a generation call.
//
// The controller is deliberately free of any rendering concern. TUI views
// dispatch commands (SetField, Advance, Retreat, GoToStep, Generate, Save)
// and read state back; all mutation is synchronous and single-goroutine,
// matching the bubbletea event loop it runs under.
package wizard

import "fmt"

// FieldKind distinguishes free-text fields from single-select fields.
type FieldKind string

const (
	// FieldText is a free-text input.
	FieldText FieldKind = "text"
	// FieldSelect is a single-select from a fixed option list.
	FieldSelect FieldKind = "select"
)

// Field declares one input within a step.
type Field struct {
	// Name is the schema-unique key the value is stored under.
	Name string `yaml:"name"`
	// Label is the prompt shown to the user.
	Label string `yaml:"label"`
	// Placeholder is hint text for empty text fields.
	Placeholder string `yaml:"placeholder"`
	// Kind selects the input widget.
	Kind FieldKind `yaml:"kind"`
	// Required fields must be non-blank for the owning step to be valid.
	Required bool `yaml:"required"`
	// Options are the choices for select fields.
	Options []string `yaml:"options"`
}

// Step is one screen of the wizard.
type Step struct {
	ID     string  `yaml:"id"`
	Title  string  `yaml:"title"`
	Hint   string  `yaml:"hint"`
	Fields []Field `yaml:"fields"`

	// Terminal marks the results step. It carries no fields and is reached
	// only through Generate, never through Advance or GoToStep.
	Terminal bool `yaml:"terminal"`
}

// Schema is the full ordered step list for one wizard workflow.
type Schema struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Validate checks structural soundness: at least one input step, a single
// terminal step in final position, and schema-unique field names.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema: name is required")
	}
	if len(s.Steps) < 2 {
		return fmt.Errorf("schema %s: need at least one input step and a terminal step", s.Name)
	}

	seen := make(map[string]string)
	for i, step := range s.Steps {
		if step.ID == "" {
			return fmt.Errorf("schema %s: step %d: id is required", s.Name, i+1)
		}
		if step.Terminal {
			if i != len(s.Steps)-1 {
				return fmt.Errorf("schema %s: terminal step %s must be last", s.Name, step.ID)
			}
			if len(step.Fields) > 0 {
				return fmt.Errorf("schema %s: terminal step %s cannot declare fields", s.Name, step.ID)
			}
			continue
		}
		for _, f := range step.Fields {
			if f.Name == "" {
				return fmt.Errorf("schema %s: step %s: field name is required", s.Name, step.ID)
			}
			if prev, dup := seen[f.Name]; dup {
				return fmt.Errorf("schema %s: field %s declared in both %s and %s", s.Name, f.Name, prev, step.ID)
			}
			seen[f.Name] = step.ID
			if f.Kind == FieldSelect && len(f.Options) == 0 {
				return fmt.Errorf("schema %s: select field %s has no options", s.Name, f.Name)
			}
		}
	}

	if !s.Steps[len(s.Steps)-1].Terminal {
		return fmt.Errorf("schema %s: last step must be terminal", s.Name)
	}
	return nil
}

// TerminalStep returns the 1-indexed position of the terminal step.
func (s Schema) TerminalStep() int {
	return len(s.Steps)
}

// FieldNames returns all declared field names in step order.
func (s Schema) FieldNames() []string {
	var names []string
	for _, step := range s.Steps {
		for _, f := range step.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}
