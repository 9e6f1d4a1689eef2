package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/raptorflow/raptorflow/internal/cohorts"
	"github.com/raptorflow/raptorflow/internal/positioning"
)

// DraftModel represents the database row for the positioning_drafts table.
// Fields and the generated map are stored as JSON text columns.
type DraftModel struct {
	GUID       string
	Title      string
	FieldsJSON string
	MapJSON    *string // nullable, NULL before a map has been generated
	Fallback   int64
	CreatedAt  int64 // Unix timestamp
	UpdatedAt  int64 // Unix timestamp
}

// toDraftModel converts a domain Draft to a database DraftModel.
func toDraftModel(d *positioning.Draft) (*DraftModel, error) {
	fieldsJSON, err := json.Marshal(d.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft fields: %w", err)
	}

	m := &DraftModel{
		GUID:       d.GUID,
		Title:      d.Title,
		FieldsJSON: string(fieldsJSON),
		CreatedAt:  d.CreatedAt.Unix(),
		UpdatedAt:  d.UpdatedAt.Unix(),
	}
	if d.Fallback {
		m.Fallback = 1
	}
	if d.Map.PrimaryClaim != "" || len(d.Map.SupportingPoints) > 0 {
		mapJSON, err := json.Marshal(d.Map)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal positioning map: %w", err)
		}
		s := string(mapJSON)
		m.MapJSON = &s
	}
	return m, nil
}

// toDomain converts a database DraftModel to a domain Draft.
func (m *DraftModel) toDomain() (*positioning.Draft, error) {
	d := &positioning.Draft{
		GUID:      m.GUID,
		Title:     m.Title,
		Fallback:  m.Fallback != 0,
		CreatedAt: time.Unix(m.CreatedAt, 0),
		UpdatedAt: time.Unix(m.UpdatedAt, 0),
	}
	if err := json.Unmarshal([]byte(m.FieldsJSON), &d.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft fields: %w", err)
	}
	if m.MapJSON != nil {
		if err := json.Unmarshal([]byte(*m.MapJSON), &d.Map); err != nil {
			return nil, fmt.Errorf("failed to unmarshal positioning map: %w", err)
		}
	}
	return d, nil
}

// CohortModel represents the database row for the cohorts table.
type CohortModel struct {
	ID        string
	Name      string
	Segment   string
	SizeBand  string
	Notes     *string // nullable
	CreatedAt int64   // Unix timestamp
	UpdatedAt int64   // Unix timestamp
}

// toCohortModel converts a domain Cohort to a database CohortModel.
func toCohortModel(c *cohorts.Cohort) *CohortModel {
	m := &CohortModel{
		ID:        c.ID,
		Name:      c.Name,
		Segment:   c.Segment,
		SizeBand:  string(c.SizeBand),
		CreatedAt: c.CreatedAt.Unix(),
		UpdatedAt: c.UpdatedAt.Unix(),
	}
	if c.Notes != "" {
		notes := c.Notes
		m.Notes = &notes
	}
	return m
}

// toDomain converts a database CohortModel to a domain Cohort.
func (m *CohortModel) toDomain() *cohorts.Cohort {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}
	return &cohorts.Cohort{
		ID:        m.ID,
		Name:      m.Name,
		Segment:   m.Segment,
		SizeBand:  cohorts.SizeBand(m.SizeBand),
		Notes:     notes,
		CreatedAt: time.Unix(m.CreatedAt, 0),
		UpdatedAt: time.Unix(m.UpdatedAt, 0),
	}
}
