// Package positioning defines the positioning workshop: the five-step wizard
// schema, the generated positioning map, and the deterministic fallback used
// when the generation service is unreachable.
package positioning

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raptorflow/raptorflow/internal/wizard"
)

//go:embed schema.yaml
var schemaYAML []byte

// Field names declared by the workshop schema. SetField calls use these.
const (
	FieldCohort          = "cohort"
	FieldProblemDesire   = "problem_desire"
	FieldTransformation  = "transformation"
	FieldUniqueMechanism = "unique_mechanism"
	FieldProofPoint      = "proof_point"
)

// JourneyStage locates a supporting point on the buyer's journey.
type JourneyStage string

const (
	StageAwareness     JourneyStage = "awareness"
	StageConsideration JourneyStage = "consideration"
	StageDecision      JourneyStage = "decision"
)

// SupportingPoint is one leg of a positioning map: a claim, the evidence
// behind it, where on the journey it lands, and the emotion it speaks to.
type SupportingPoint struct {
	Claim         string       `json:"claim"`
	Evidence      string       `json:"evidence"`
	JourneyStage  JourneyStage `json:"journey_stage"`
	EmotionalHook string       `json:"emotional_hook"`
}

// Map is the structured result of a workshop run: the headline claim plus
// its supporting points.
type Map struct {
	PrimaryClaim     string            `json:"primary_claim"`
	SupportingPoints []SupportingPoint `json:"supporting_points"`
}

// Schema parses and validates the embedded workshop schema. The embedded
// file is part of the build, so a parse failure is a programmer error.
func Schema() wizard.Schema {
	var s wizard.Schema
	if err := yaml.Unmarshal(schemaYAML, &s); err != nil {
		panic(fmt.Sprintf("positioning: embedded schema is malformed: %v", err))
	}
	if err := s.Validate(); err != nil {
		panic(fmt.Sprintf("positioning: embedded schema is invalid: %v", err))
	}
	return s
}

// FallbackMap builds a positioning map by plain template substitution over
// the literal field values. It is fully deterministic: the same inputs
// always produce the same map. Used when the generation service fails so
// the workshop never dead-ends.
func FallbackMap(fields map[string]string) Map {
	cohort := fields[FieldCohort]
	problem := fields[FieldProblemDesire]
	transformation := fields[FieldTransformation]
	mechanism := fields[FieldUniqueMechanism]
	proof := fields[FieldProofPoint]

	return Map{
		PrimaryClaim: fmt.Sprintf(
			"For %s who %s, RaptorFlow delivers %s through %s.",
			cohort, problem, transformation, mechanism,
		),
		SupportingPoints: []SupportingPoint{
			{
				Claim:         fmt.Sprintf("Built for %s", cohort),
				Evidence:      proof,
				JourneyStage:  StageAwareness,
				EmotionalHook: fmt.Sprintf("Finally, someone gets that %s", problem),
			},
			{
				Claim:         transformation,
				Evidence:      fmt.Sprintf("Powered by %s", mechanism),
				JourneyStage:  StageConsideration,
				EmotionalHook: "See the path from where you are to where you want to be",
			},
			{
				Claim:         proof,
				Evidence:      fmt.Sprintf("Results from teams like %s", cohort),
				JourneyStage:  StageDecision,
				EmotionalHook: "Proof you can take to the rest of the team",
			},
		},
	}
}

// Fallback adapts FallbackMap to the wizard controller's fallback signature.
func Fallback(fields map[string]string) any {
	return FallbackMap(fields)
}

// Draft is a saved workshop outcome: the inputs plus the map they produced.
type Draft struct {
	GUID      string
	Title     string
	Fields    map[string]string
	Map       Map
	Fallback  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DraftRepository persists workshop drafts locally.
type DraftRepository interface {
	Save(draft *Draft) error
	FindByGUID(guid string) (*Draft, error)
	List(limit int) ([]*Draft, error)
	Delete(guid string) error
}

// DraftNotFoundError indicates no draft exists for the given GUID.
type DraftNotFoundError struct {
	GUID string
}

// Error implements the error interface.
func (e *DraftNotFoundError) Error() string {
	return fmt.Sprintf("positioning draft not found: guid=%q", e.GUID)
}
