package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/service"
	"github.com/isaackcz/Edsight-sub000/pkg/validator"
)

// GeoHandler handles geographic hierarchy requests
type GeoHandler struct {
	geoService *service.GeoService
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(geoService *service.GeoService) *GeoHandler {
	return &GeoHandler{
		geoService: geoService,
	}
}

// ImportNodeRequest represents a hierarchy import request
type ImportNodeRequest struct {
	Level    string `json:"level" validate:"required"`
	Name     string `json:"name" validate:"required,max=255"`
	ParentID uint   `json:"parent_id"`
}

// ListRegions lists the regions inside the caller's scope
func (h *GeoHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	regions, err := h.geoService.ListRegions(caller)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, regions)
}

// ListDivisions lists divisions, optionally filtered by region
func (h *GeoHandler) ListDivisions(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	regionID, err := queryUint(r, "region_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	divisions, err := h.geoService.ListDivisions(caller, regionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, divisions)
}

// ListDistricts lists districts, optionally filtered by division
func (h *GeoHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	divisionID, err := queryUint(r, "division_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	districts, err := h.geoService.ListDistricts(caller, divisionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, districts)
}

// ListUnits lists units, optionally filtered by district
func (h *GeoHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	districtID, err := queryUint(r, "district_id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
		return
	}

	units, err := h.geoService.ListUnits(caller, districtID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, units)
}

// Import adds a node to the geographic hierarchy
func (h *GeoHandler) Import(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req ImportNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.geoService.ImportNode(caller, service.ImportNodeInput{
		LevelName: req.Level,
		Name:      validator.SanitizeString(req.Name),
		ParentID:  req.ParentID,
	}, getIP(r), r.UserAgent())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    id,
		"level": req.Level,
	})
}
