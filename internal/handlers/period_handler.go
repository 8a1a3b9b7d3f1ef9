package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/service"
	"github.com/isaackcz/Edsight-sub000/pkg/validator"
)

// PeriodHandler handles collection period management requests
type PeriodHandler struct {
	periodService *service.PeriodService
}

// NewPeriodHandler creates a new period handler
func NewPeriodHandler(periodService *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{
		periodService: periodService,
	}
}

// CreatePeriodRequest represents a period creation request
type CreatePeriodRequest struct {
	Name     string     `json:"name" validate:"required,min=2,max=255"`
	StartsAt time.Time  `json:"starts_at" validate:"required"`
	EndsAt   time.Time  `json:"ends_at" validate:"required"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// SetDeadlineRequest represents a deadline update request. A null deadline
// clears it.
type SetDeadlineRequest struct {
	Deadline *time.Time `json:"deadline"`
}

// Create creates a new collection period
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	period, err := h.periodService.CreatePeriod(caller, req.Name, req.StartsAt, req.EndsAt, req.Deadline, getIP(r), r.UserAgent())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	slog.Info("Collection period created", "period_id", period.ID, "name", period.Name, "admin_id", caller.ID)

	respondWithJSON(w, http.StatusCreated, period)
}

// List retrieves all collection periods
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	periods, err := h.periodService.ListPeriods()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, periods)
}

// GetActive retrieves the currently active collection period
func (h *PeriodHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodService.GetActivePeriod()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, period)
}

// SetDeadline updates or clears a period's submission deadline
func (h *PeriodHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	var req SetDeadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := h.periodService.SetDeadline(caller, id, req.Deadline, getIP(r), r.UserAgent()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Deadline updated"})
}

// Activate makes a period the active one, deactivating all others
func (h *PeriodHandler) Activate(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	if err := h.periodService.ActivatePeriod(caller, id, getIP(r), r.UserAgent()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	slog.Info("Collection period activated", "period_id", id, "admin_id", caller.ID)

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Period activated"})
}
