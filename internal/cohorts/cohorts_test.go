package cohorts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorflow/raptorflow/internal/wizard"
)

func TestCohortValidate(t *testing.T) {
	tests := []struct {
		name    string
		cohort  Cohort
		wantErr bool
	}{
		{"valid", Cohort{Name: "Founders", Segment: "B2B SaaS", SizeBand: SizeNiche}, false},
		{"blank name", Cohort{Name: "  ", Segment: "B2B SaaS", SizeBand: SizeNiche}, true},
		{"blank segment", Cohort{Name: "Founders", Segment: "", SizeBand: SizeFocus}, true},
		{"bad size band", Cohort{Name: "Founders", Segment: "B2B", SizeBand: "huge"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cohort.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWizardSchema_Valid(t *testing.T) {
	s := WizardSchema()
	require.NoError(t, s.Validate())
	assert.Equal(t, 4, s.TerminalStep())
}

func TestFromFields_TrimsAndStamps(t *testing.T) {
	c := FromFields(map[string]string{
		FieldName:     "  Founders ",
		FieldSegment:  "B2B SaaS ",
		FieldSizeBand: "focus",
		FieldNotes:    " early adopters ",
	})
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Founders", c.Name)
	assert.Equal(t, "B2B SaaS", c.Segment)
	assert.Equal(t, SizeFocus, c.SizeBand)
	assert.Equal(t, "early adopters", c.Notes)
	assert.False(t, c.CreatedAt.IsZero())
	require.NoError(t, c.Validate())
}

// TestCohortWizard_EndToEnd drives the schema through the shared controller:
// gated advance, local fallback summary on the terminal screen.
func TestCohortWizard_EndToEnd(t *testing.T) {
	c, err := wizard.New(WizardSchema(), nil, Fallback, nil)
	require.NoError(t, err)

	c.SetField(FieldName, "Founders")
	c.Advance()
	require.Equal(t, 2, c.Current())

	// Size band missing keeps step 2 invalid.
	c.SetField(FieldSegment, "B2B SaaS")
	c.Advance()
	require.Equal(t, 2, c.Current())

	c.SetField(FieldSizeBand, "niche")
	c.Advance()
	require.Equal(t, 3, c.Current())

	// Notes step has no required fields, so generate is available.
	res, err := c.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Founders — B2B SaaS (niche)", res.Value)
	assert.Equal(t, 4, c.Current())
}
