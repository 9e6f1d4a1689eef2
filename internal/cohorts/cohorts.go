// Package cohorts holds the cohort domain: the entity, its repository port,
// and the cohort-creation wizard schema.
package cohorts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raptorflow/raptorflow/internal/wizard"
)

// SizeBand buckets a cohort by rough audience size.
type SizeBand string

const (
	SizeNiche SizeBand = "niche" // under 10k reachable people
	SizeFocus SizeBand = "focus" // 10k - 100k
	SizeBroad SizeBand = "broad" // over 100k
)

// sizeBands lists the valid bands in display order.
func sizeBands() []string {
	return []string{string(SizeNiche), string(SizeFocus), string(SizeBroad)}
}

// Cohort is a named audience segment positioning work is aimed at.
type Cohort struct {
	ID        string
	Name      string
	Segment   string
	SizeBand  SizeBand
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields a cohort must carry before persistence.
func (c *Cohort) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("cohort: name is required")
	}
	if strings.TrimSpace(c.Segment) == "" {
		return fmt.Errorf("cohort: segment is required")
	}
	switch c.SizeBand {
	case SizeNiche, SizeFocus, SizeBroad:
	default:
		return fmt.Errorf("cohort: unknown size band %q", c.SizeBand)
	}
	return nil
}

// Repository persists cohorts.
type Repository interface {
	Save(cohort *Cohort) error
	FindByID(id string) (*Cohort, error)
	List() ([]*Cohort, error)
	Delete(id string) error
}

// NotFoundError indicates no cohort exists for the given ID.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cohort not found: id=%q", e.ID)
}

// Field names declared by the cohort wizard schema.
const (
	FieldName     = "name"
	FieldSegment  = "segment"
	FieldSizeBand = "size_band"
	FieldNotes    = "notes"
)

// WizardSchema returns the cohort-creation wizard. It runs on the same
// controller and the same forward-jump gating as the workshop.
func WizardSchema() wizard.Schema {
	return wizard.Schema{
		Name: "cohort-create",
		Steps: []wizard.Step{
			{ID: "identity", Title: "Name Your Cohort", Fields: []wizard.Field{
				{Name: FieldName, Label: "Cohort name", Placeholder: "Bootstrapped B2B founders", Kind: wizard.FieldText, Required: true},
			}},
			{ID: "segment", Title: "Segment", Hint: "Where do they cluster? Industry, role, stage.", Fields: []wizard.Field{
				{Name: FieldSegment, Label: "Segment description", Placeholder: "SaaS founders, pre-Series A, 2-10 person teams", Kind: wizard.FieldText, Required: true},
				{Name: FieldSizeBand, Label: "Audience size", Kind: wizard.FieldSelect, Required: true, Options: sizeBands()},
			}},
			{ID: "notes", Title: "Notes", Hint: "Optional context for future workshops.", Fields: []wizard.Field{
				{Name: FieldNotes, Label: "Notes", Kind: wizard.FieldText},
			}},
			{ID: "review", Title: "Review", Terminal: true},
		},
	}
}

// FromFields builds a cohort from completed wizard fields.
func FromFields(fields map[string]string) *Cohort {
	now := time.Now()
	return &Cohort{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(fields[FieldName]),
		Segment:   strings.TrimSpace(fields[FieldSegment]),
		SizeBand:  SizeBand(fields[FieldSizeBand]),
		Notes:     strings.TrimSpace(fields[FieldNotes]),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Fallback summarizes the cohort locally. The cohort wizard has no remote
// generation step, so the terminal screen is always built from this.
func Fallback(fields map[string]string) any {
	return fmt.Sprintf("%s — %s (%s)", fields[FieldName], fields[FieldSegment], fields[FieldSizeBand])
}
