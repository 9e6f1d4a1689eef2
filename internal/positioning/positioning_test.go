package positioning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raptorflow/raptorflow/internal/wizard"
)

func TestSchema_ParsesAndValidates(t *testing.T) {
	s := Schema()
	assert.Equal(t, "positioning-workshop", s.Name)
	require.Len(t, s.Steps, 6)
	assert.True(t, s.Steps[5].Terminal)
	assert.Equal(t, []string{
		FieldCohort, FieldProblemDesire, FieldTransformation,
		FieldUniqueMechanism, FieldProofPoint,
	}, s.FieldNames())
}

func TestFallbackMap_Deterministic(t *testing.T) {
	fields := map[string]string{
		FieldCohort:          "Agency owners",
		FieldProblemDesire:   "lose pitches to vaguer but louder competitors",
		FieldTransformation:  "a message the whole team repeats word for word",
		FieldUniqueMechanism: "cohort-scored message testing",
		FieldProofPoint:      "214 teams cut messaging time by 60%",
	}

	first := FallbackMap(fields)
	second := FallbackMap(fields)
	assert.Equal(t, first, second, "fallback must be deterministic")

	assert.Equal(t,
		"For Agency owners who lose pitches to vaguer but louder competitors, "+
			"RaptorFlow delivers a message the whole team repeats word for word "+
			"through cohort-scored message testing.",
		first.PrimaryClaim)

	require.Len(t, first.SupportingPoints, 3)
	stages := []JourneyStage{StageAwareness, StageConsideration, StageDecision}
	for i, sp := range first.SupportingPoints {
		assert.Equal(t, stages[i], sp.JourneyStage)
		assert.NotEmpty(t, sp.Claim)
		assert.NotEmpty(t, sp.Evidence)
		assert.NotEmpty(t, sp.EmotionalHook)
	}
}

// failingGenerator simulates an unreachable generation service.
type failingGenerator struct{}

func (failingGenerator) Generate(_ context.Context, _ map[string]string) (any, error) {
	return nil, errors.New("dial tcp: connection refused")
}

// TestWorkshop_UnreachableServiceYieldsFallbackClaim is the end-to-end
// scenario: all five fields populated, service down, and the resulting
// primary claim is the deterministic substitution over the literal inputs.
func TestWorkshop_UnreachableServiceYieldsFallbackClaim(t *testing.T) {
	c, err := wizard.New(Schema(), failingGenerator{}, Fallback, nil)
	require.NoError(t, err)

	c.SetField(FieldCohort, "c1")
	c.SetField(FieldProblemDesire, "p1")
	c.SetField(FieldTransformation, "t1")
	c.SetField(FieldUniqueMechanism, "m1")
	c.SetField(FieldProofPoint, "pr1")

	res, err := c.Generate(context.Background())
	require.NoError(t, err)
	require.True(t, res.Fallback)

	m, ok := res.Value.(Map)
	require.True(t, ok)
	assert.Equal(t, "For c1 who p1, RaptorFlow delivers t1 through m1.", m.PrimaryClaim)
}

// TestWorkshop_EmptyProblemBlocksStepTwo mirrors the empty-required-field
// scenario: a blank problem statement keeps step 2 invalid and Advance a
// no-op from there.
func TestWorkshop_EmptyProblemBlocksStepTwo(t *testing.T) {
	c, err := wizard.New(Schema(), nil, Fallback, nil)
	require.NoError(t, err)

	c.SetField(FieldCohort, "c1")
	c.SetField(FieldProblemDesire, "")
	c.Advance()
	require.Equal(t, 2, c.Current())

	assert.False(t, c.StepValid(2))
	c.Advance()
	assert.Equal(t, 2, c.Current())
}

func TestDraftNotFoundError_Message(t *testing.T) {
	err := &DraftNotFoundError{GUID: "abc"}
	assert.Contains(t, err.Error(), `guid="abc"`)
}
