package server

import (
	"time"

	"github.com/raptorflow/raptorflow/internal/positioning"
)

// APIError is the standard error response shape.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// CohortResponse is the wire shape for a single cohort.
type CohortResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Segment   string    `json:"segment"`
	SizeBand  string    `json:"size_band"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CohortListResponse is returned by GET /api/cohorts.
type CohortListResponse struct {
	Cohorts []CohortResponse `json:"cohorts"`
}

// CreateCohortRequest is the body for POST /api/cohorts.
type CreateCohortRequest struct {
	Name     string `json:"name"`
	Segment  string `json:"segment"`
	SizeBand string `json:"size_band"`
	Notes    string `json:"notes,omitempty"`
}

// ROIRequest is the body for POST /api/roi.
type ROIRequest struct {
	TeamSize           int     `json:"team_size"`
	HourlyRate         float64 `json:"hourly_rate"`
	HoursPerWeek       float64 `json:"hours_per_week"`
	AdoptionMultiplier float64 `json:"adoption_multiplier"`
}

// ROIResponse is returned by POST /api/roi.
type ROIResponse struct {
	WeeklyCost             float64 `json:"weekly_cost"`
	AnnualCost             float64 `json:"annual_cost"`
	ProjectedAnnualSavings float64 `json:"projected_annual_savings"`
	PaybackWeeks           float64 `json:"payback_weeks"`
	PaybackKnown           bool    `json:"payback_known"`
}

// ActivityEntry is one row of the activity feed.
type ActivityEntry struct {
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

// ActivityResponse is returned by GET /api/activity.
type ActivityResponse struct {
	Entries []ActivityEntry `json:"entries"`
}

// GenerateRequest is the body for POST /api/workshop/generate.
type GenerateRequest struct {
	Fields map[string]string `json:"fields"`
}

// GenerateResponse is returned by POST /api/workshop/generate.
type GenerateResponse struct {
	Map      positioning.Map `json:"map"`
	Fallback bool            `json:"fallback"`
}

// DraftSummary is the wire shape for a saved draft listing.
type DraftSummary struct {
	GUID      string    `json:"guid"`
	Title     string    `json:"title"`
	Fallback  bool      `json:"fallback"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DraftListResponse is returned by GET /api/drafts.
type DraftListResponse struct {
	Drafts []DraftSummary `json:"drafts"`
}
