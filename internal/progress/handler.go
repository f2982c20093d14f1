package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/learnpath/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CompleteModule handles POST /api/v1/progress/modules/{id}/complete
func (h *Handler) CompleteModule(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.CompleteModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	summary, err := h.service.CompleteModule(r.Context(), userID, moduleID, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RecordQuizScore handles POST /api/v1/progress/modules/{id}/quiz
func (h *Handler) RecordQuizScore(w http.ResponseWriter, r *http.Request) {
	h.recordScore(w, r, h.service.RecordQuizScore)
}

// RecordQuickReviewScore handles POST /api/v1/progress/modules/{id}/quick-review
func (h *Handler) RecordQuickReviewScore(w http.ResponseWriter, r *http.Request) {
	h.recordScore(w, r, h.service.RecordQuickReviewScore)
}

func (h *Handler) recordScore(w http.ResponseWriter, r *http.Request, record func(ctx context.Context, userID, moduleID int64, score int) (*models.ScoreSummary, error)) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	summary, err := record(r.Context(), userID, moduleID, req.Score)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// SubmitFeedback handles POST /api/v1/progress/modules/{id}/feedback
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	moduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	summary, err := h.service.SubmitFeedback(r.Context(), userID, moduleID, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetProgress handles GET /api/v1/progress
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	agg, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// GetRanking handles GET /api/v1/progress/ranking
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.service.GetRanking(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// GetMyRanking handles GET /api/v1/progress/ranking/me
func (h *Handler) GetMyRanking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entry, err := h.service.GetIndividualRanking(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ── Helpers ─────────────────────────────────────────────

func requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid module ID"})
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var valErr *models.ValidationError
	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: valErr.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, models.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Module already completed"})
	case errors.Is(err, models.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Already exists"})
	default:
		log.Printf("[progress] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
