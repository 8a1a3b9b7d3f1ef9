package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/isaackcz/Edsight-sub000/internal/middleware"
	"github.com/isaackcz/Edsight-sub000/internal/models"
	"github.com/isaackcz/Edsight-sub000/internal/service"
	"github.com/isaackcz/Edsight-sub000/pkg/validator"
)

// AdminHandler handles administrator management requests
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// CreateAdminRequest represents an administrator creation request
type CreateAdminRequest struct {
	Email      string                     `json:"email" validate:"required,email"`
	Password   string                     `json:"password" validate:"required,min=8"`
	FullName   string                     `json:"full_name" validate:"required,max=255"`
	Level      string                     `json:"level" validate:"required"`
	RegionID   *uint                      `json:"region_id,omitempty"`
	DivisionID *uint                      `json:"division_id,omitempty"`
	DistrictID *uint                      `json:"district_id,omitempty"`
	UnitID     *uint                      `json:"unit_id,omitempty"`
	Overrides  models.CapabilityOverrides `json:"overrides"`
}

// UpdateAdminRequest represents an administrator update request
type UpdateAdminRequest struct {
	Email     *string                     `json:"email,omitempty"`
	FullName  *string                     `json:"full_name,omitempty"`
	Overrides *models.CapabilityOverrides `json:"overrides,omitempty"`
}

// SetStatusRequest represents an account status change request
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ResetPasswordRequest represents an administrative password reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// Create creates an administrator at or below the caller's level
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	admin, err := h.adminService.CreateAdmin(caller, service.CreateAdminInput{
		Email:      validator.SanitizeEmail(req.Email),
		Password:   req.Password,
		FullName:   validator.SanitizeString(req.FullName),
		LevelName:  req.Level,
		RegionID:   req.RegionID,
		DivisionID: req.DivisionID,
		DistrictID: req.DistrictID,
		UnitID:     req.UnitID,
		Overrides:  req.Overrides,
	}, getIP(r), r.UserAgent())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	slog.Info("Administrator created", "admin_id", admin.ID, "level", admin.LevelName, "created_by", caller.ID)

	respondWithJSON(w, http.StatusCreated, admin)
}

// Get retrieves one administrator inside the caller's scope
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	admin, err := h.adminService.GetAdmin(caller, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, admin)
}

// List retrieves administrators inside the caller's scope
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	input := service.ListAdminsInput{
		Search:    r.URL.Query().Get("search"),
		LevelName: r.URL.Query().Get("level"),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
		Limit:     queryInt(r, "limit", 50),
		Offset:    queryInt(r, "offset", 0),
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.AdminStatus(raw)
		input.Status = &status
	}

	for key, dst := range map[string]**uint{
		"region_id":   &input.RegionID,
		"division_id": &input.DivisionID,
		"district_id": &input.DistrictID,
		"unit_id":     &input.UnitID,
	} {
		val, err := queryUint(r, key)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
			return
		}
		*dst = val
	}

	admins, total, err := h.adminService.ListAdmins(caller, input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"admins": admins,
		"total":  total,
		"limit":  input.Limit,
		"offset": input.Offset,
	})
}

// Update updates an administrator's profile and overrides
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if req.Email != nil {
		if err := validator.ValidateEmail(*req.Email); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	admin, err := h.adminService.UpdateAdmin(caller, id, service.UpdateAdminInput{
		Email:     req.Email,
		FullName:  req.FullName,
		Overrides: req.Overrides,
	}, getIP(r), r.UserAgent())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, admin)
}

// SetStatus changes an administrator's account status
func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
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

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	status := models.AdminStatus(req.Status)
	switch status {
	case models.AdminActive, models.AdminInactive, models.AdminSuspended:
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown status")
		return
	}

	if err := h.adminService.SetStatus(caller, id, status, getIP(r), r.UserAgent()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Status updated",
	})
}

// ResetPassword sets a new password for an administrator in scope
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
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

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.adminService.ResetPassword(caller, id, req.NewPassword, getIP(r), r.UserAgent()); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset",
	})
}
