package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/isaackcz/Edsight-sub000/internal/geo"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/permission"
	"github.com/isaackcz/Edsight-sub000/internal/repository"
	"github.com/isaackcz/Edsight-sub000/internal/scope"
	"github.com/isaackcz/Edsight-sub000/internal/service"
	"github.com/isaackcz/Edsight-sub000/internal/workflow"
	"github.com/isaackcz/Edsight-sub000/pkg/validator"
)

// Helper functions

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := JSONResponse(w, payload); err != nil {
		w.Write([]byte(`{"error":"Internal server error"}`))
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps domain errors onto HTTP statuses. Scope and
// permission denials both map to 403 but keep distinct messages so clients
// can tell which rule refused them.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scope.ErrAccessDenied):
		respondWithError(w, http.StatusForbidden, "Requested resource is outside your geographic scope")
	case errors.Is(err, permission.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not hold the capability for this action")
	case errors.Is(err, workflow.ErrConflict):
		respondWithError(w, http.StatusConflict, "The submission was modified concurrently, reload and retry")
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrCommentRequired),
		errors.Is(err, service.ErrNotEditable):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrAdminExists),
		errors.Is(err, repository.ErrSubmissionExists):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrAdminNotFound),
		errors.Is(err, repository.ErrSubmissionNotFound),
		errors.Is(err, repository.ErrPeriodNotFound),
		errors.Is(err, repository.ErrNoActivePeriod),
		errors.Is(err, workflow.ErrSubmissionGone),
		errors.Is(err, geo.ErrNodeNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrUnknownLevel),
		errors.Is(err, models.ErrLevelRange),
		errors.Is(err, service.ErrMissingAnchor),
		errors.Is(err, service.ErrInvalidPeriodRange),
		errors.Is(err, service.ErrCannotModifySelf),
		errors.Is(err, service.ErrNotUnitAdmin),
		errors.Is(err, validator.ErrWeakPassword):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAdminInactive):
		respondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func getIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// pathID parses the {id} path value of a request
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// queryUint parses an optional unsigned query parameter
func queryUint(r *http.Request, key string) (*uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	val := uint(parsed)
	return &val, nil
}

// queryInt parses an integer query parameter with a default
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
