package handlers

import (
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/service"
)

// ReportHandler handles completion and status reporting requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Completion returns per-unit completion percentages for the caller's scope.
// The optional group_by query parameter aggregates units into their parent
// district, division or region.
func (h *ReportHandler) Completion(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	periodID, err := queryUint(r, "period_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	if groupBy := r.URL.Query().Get("group_by"); groupBy != "" {
		stats, err := h.reportService.GroupCompletion(caller, periodID, groupBy)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := h.reportService.UnitCompletion(caller, periodID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

// StatusSummary returns submission counts per workflow status for the
// caller's scope
func (h *ReportHandler) StatusSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	periodID, err := queryUint(r, "period_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	summary, err := h.reportService.StatusSummary(caller, periodID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
