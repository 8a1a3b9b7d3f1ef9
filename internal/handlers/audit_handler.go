package handlers

import (
	"net/http"
	"time"

	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/service"
)

// AuditHandler handles audit log requests
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// List retrieves audit log entries, newest first. Supports admin_id, action,
// since and until filters plus limit/offset pagination.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := repository.AuditFilters{
		Action: r.URL.Query().Get("action"),
	}

	adminID, err := queryUint(r, "admin_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}
	filters.AdminID = adminID

	for key, dst := range map[string]**time.Time{
		"since": &filters.Since,
		"until": &filters.Until,
	} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid "+key+" timestamp, expected RFC 3339")
			return
		}
		*dst = &t
	}

	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	logs, err := h.auditService.List(filters, limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}
