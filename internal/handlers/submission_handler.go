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

// SubmissionHandler handles survey submission requests
type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// SaveAnswerRequest represents an answer upsert request
type SaveAnswerRequest struct {
	QuestionID    uint   `json:"question_id" validate:"required"`
	SubQuestionID *uint  `json:"sub_question_id,omitempty"`
	Value         string `json:"value"`
}

// ReviewRequest represents an approve or return request. The comment is
// optional on approval and mandatory on return.
type ReviewRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// GetMine returns the caller's submission for the active period, creating a
// draft when none exists
func (h *SubmissionHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	submission, err := h.submissionService.GetOrCreateDraft(caller)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, submission)
}

// SaveAnswer upserts one answer on a submission
func (h *SubmissionHandler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
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

	var req SaveAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.submissionService.SaveAnswer(caller, id, req.QuestionID, req.SubQuestionID, req.Value)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}

// Submit moves a submission into the first review level
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	status, level, err := h.submissionService.Submit(caller, id, getIP(r), r.UserAgent())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	slog.Info("Submission submitted", "submission_id", id, "admin_id", caller.ID)

	respondWithJSON(w, http.StatusOK, statusPayload(status, level))
}

// Approve advances a submission past the caller's review level
func (h *SubmissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.submissionService.Approve)
}

// Return sends a submission one level back with a mandatory comment
func (h *SubmissionHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.submissionService.Return)
}

// review is the shared approve/return plumbing
func (h *SubmissionHandler) review(w http.ResponseWriter, r *http.Request,
	decide func(*models.Admin, uint, string, string, string) (models.SubmissionStatus, models.Level, error)) {
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

	var req ReviewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
			return
		}
	}

	if err := validator.ValidateStruct(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, level, err := decide(caller, id, req.Comment, getIP(r), r.UserAgent())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, statusPayload(status, level))
}

// Get retrieves a submission with answers and its review trail
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.submissionService.GetSubmission(caller, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

// List retrieves submissions for the units inside the caller's scope
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetAdmin(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	input := service.ListSubmissionsInput{}

	for key, dst := range map[string]**uint{
		"period_id":   &input.PeriodID,
		"region_id":   &input.RegionID,
		"division_id": &input.DivisionID,
		"district_id": &input.DistrictID,
	} {
		val, err := queryUint(r, key)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, ErrMsgInvalidID)
			return
		}
		*dst = val
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.SubmissionStatus(raw)
		input.Status = &status
	}

	submissions, err := h.submissionService.ListSubmissions(caller, input)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, submissions)
}

func statusPayload(status models.SubmissionStatus, level models.Level) map[string]interface{} {
	return map[string]interface{}{
		"status":        status,
		"current_level": level.String(),
	}
}
