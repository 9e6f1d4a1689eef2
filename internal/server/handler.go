// Package server provides the local HTTP API exposed by 'raptorflow serve'.
package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/raptorflow/raptorflow/internal/activity"
	"github.com/raptorflow/raptorflow/internal/cohorts"
	"github.com/raptorflow/raptorflow/internal/events"
	"github.com/raptorflow/raptorflow/internal/log"
	"github.com/raptorflow/raptorflow/internal/positioning"
	"github.com/raptorflow/raptorflow/internal/roi"
	"github.com/raptorflow/raptorflow/internal/wizard"
)

// feedSize is how many activity entries GET /api/activity returns.
const feedSize = 12

// Handler provides the HTTP endpoints backing the RaptorFlow API.
type Handler struct {
	cohortRepo      cohorts.Repository
	draftRepo       positioning.DraftRepository
	generator       wizard.Generator
	bus             *events.Bus
	planAnnualPrice float64
	activitySeed    int64
}

// NewHandler creates a Handler. The generator may be nil, in which case
// workshop generation always uses the local fallback. The bus may be nil
// when no dashboard is listening.
func NewHandler(cohortRepo cohorts.Repository, draftRepo positioning.DraftRepository, generator wizard.Generator, bus *events.Bus, planAnnualPrice float64, activitySeed int64) *Handler {
	return &Handler{
		cohortRepo:      cohortRepo,
		draftRepo:       draftRepo,
		generator:       generator,
		bus:             bus,
		planAnnualPrice: planAnnualPrice,
		activitySeed:    activitySeed,
	}
}

// RegisterRoutes registers all API routes on the provided mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/cohorts", h.ListCohorts)
	mux.HandleFunc("POST /api/cohorts", h.CreateCohort)
	mux.HandleFunc("DELETE /api/cohorts/{id}", h.DeleteCohort)
	mux.HandleFunc("POST /api/roi", h.CalculateROI)
	mux.HandleFunc("GET /api/activity", h.Activity)
	mux.HandleFunc("POST /api/workshop/generate", h.GenerateWorkshop)
	mux.HandleFunc("GET /api/drafts", h.ListDrafts)
}

// Health returns a simple health check response.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ListCohorts returns all saved cohorts.
// GET /api/cohorts
func (h *Handler) ListCohorts(w http.ResponseWriter, _ *http.Request) {
	list, err := h.cohortRepo.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list cohorts", err.Error())
		return
	}

	resp := CohortListResponse{Cohorts: []CohortResponse{}}
	for _, c := range list {
		resp.Cohorts = append(resp.Cohorts, toCohortResponse(c))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// CreateCohort validates and persists a new cohort.
// POST /api/cohorts
func (h *Handler) CreateCohort(w http.ResponseWriter, r *http.Request) {
	var req CreateCohortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	cohort := cohorts.FromFields(map[string]string{
		cohorts.FieldName:     req.Name,
		cohorts.FieldSegment:  req.Segment,
		cohorts.FieldSizeBand: req.SizeBand,
		cohorts.FieldNotes:    req.Notes,
	})
	if err := cohort.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
		return
	}

	if err := h.cohortRepo.Save(cohort); err != nil {
		h.writeError(w, http.StatusInternalServerError, "save_failed", "Failed to save cohort", err.Error())
		return
	}

	h.publish(events.New(events.EventCohortCreated, nil).WithCohort(cohort.ID))
	h.writeJSON(w, http.StatusCreated, toCohortResponse(cohort))
}

// DeleteCohort removes a cohort by ID.
// DELETE /api/cohorts/{id}
func (h *Handler) DeleteCohort(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.cohortRepo.Delete(id); err != nil {
		var notFound *cohorts.NotFoundError
		if errors.As(err, &notFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Cohort not found", id)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete cohort", err.Error())
		return
	}

	h.publish(events.New(events.EventCohortDeleted, nil).WithCohort(id))
	w.WriteHeader(http.StatusNoContent)
}

// CalculateROI runs the payback math for the given inputs.
// POST /api/roi
func (h *Handler) CalculateROI(w http.ResponseWriter, r *http.Request) {
	var req ROIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	in := roi.Inputs{
		TeamSize:           req.TeamSize,
		HourlyRate:         req.HourlyRate,
		HoursPerWeek:       req.HoursPerWeek,
		AdoptionMultiplier: req.AdoptionMultiplier,
	}
	outcome, err := roi.Calculate(in, h.planAnnualPrice)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
		return
	}

	resp := ROIResponse{
		WeeklyCost:             outcome.WeeklyCost,
		AnnualCost:             outcome.AnnualCost,
		ProjectedAnnualSavings: outcome.ProjectedAnnualSavings,
		PaybackKnown:           !math.IsInf(outcome.PaybackWeeks, 1),
	}
	if resp.PaybackKnown {
		resp.PaybackWeeks = outcome.PaybackWeeks
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Activity returns the recent activity feed.
// GET /api/activity
func (h *Handler) Activity(w http.ResponseWriter, _ *http.Request) {
	resp := ActivityResponse{Entries: []ActivityEntry{}}
	for _, e := range activity.Feed(h.activitySeed, feedSize, time.Now()) {
		resp.Entries = append(resp.Entries, ActivityEntry{
			Kind:        string(e.Kind),
			Description: e.Describe(),
			At:          e.At,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GenerateWorkshop runs the positioning workshop end-to-end for a complete
// field set. Generation failures fall back to the local template, so a valid
// request always yields a map.
// POST /api/workshop/generate
func (h *Handler) GenerateWorkshop(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	schema := positioning.Schema()
	known := schema.FieldNames()
	for name := range req.Fields {
		if !slices.Contains(known, name) {
			h.writeError(w, http.StatusBadRequest, "validation_error", "Unknown field", name)
			return
		}
	}

	ctrl, err := wizard.New(schema, h.generator, positioning.Fallback, nil)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "wizard_error", "Failed to build workshop", err.Error())
		return
	}
	for name, value := range req.Fields {
		ctrl.SetField(name, value)
	}

	result, err := ctrl.Generate(r.Context())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "incomplete", "All workshop steps must be complete before generating", err.Error())
		return
	}

	m, ok := result.Value.(positioning.Map)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "wizard_error", "Unexpected generation result", "")
		return
	}

	h.publish(events.New(events.EventWorkshopGenerated, nil).WithSchema(schema.Name, ctrl.Current()))
	h.writeJSON(w, http.StatusOK, GenerateResponse{Map: m, Fallback: result.Fallback})
}

// ListDrafts returns saved workshop drafts, newest first.
// GET /api/drafts
func (h *Handler) ListDrafts(w http.ResponseWriter, _ *http.Request) {
	drafts, err := h.draftRepo.List(0)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list drafts", err.Error())
		return
	}

	resp := DraftListResponse{Drafts: []DraftSummary{}}
	for _, d := range drafts {
		resp.Drafts = append(resp.Drafts, DraftSummary{
			GUID:      d.GUID,
			Title:     d.Title,
			Fallback:  d.Fallback,
			UpdatedAt: d.UpdatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func toCohortResponse(c *cohorts.Cohort) CohortResponse {
	return CohortResponse{
		ID:        c.ID,
		Name:      c.Name,
		Segment:   c.Segment,
		SizeBand:  string(c.SizeBand),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (h *Handler) publish(e events.Event) {
	if h.bus != nil {
		h.bus.Publish(e)
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatServer, "Failed to encode JSON response", "error", err)
	}
}

// writeError writes an error response in the standard APIError format.
func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, APIError{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
