package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// MoodHandler serves market mood routes.
type MoodHandler struct {
	svc    *services.MoodService
	logger *zap.Logger
}

// NewMoodHandler creates a mood handler.
func NewMoodHandler(svc *services.MoodService, logger *zap.Logger) *MoodHandler {
	return &MoodHandler{svc: svc, logger: logger}
}

// GetMood handles GET /wall-street/mood.
func (h *MoodHandler) GetMood(w http.ResponseWriter, r *http.Request) {
	mood, err := h.svc.GetCurrentMood(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, mood)
}

type submitMoodRequest struct {
	PredictedSentiment string `json:"predictedSentiment" validate:"required"`
	PredictedIndex     *int   `json:"predictedIndex,omitempty" validate:"omitempty,min=0,max=100"`
}

// SubmitPrediction handles POST /wall-street/mood/predict.
func (h *MoodHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req submitMoodRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.svc.SubmitPrediction(r.Context(), userID, req.PredictedSentiment, req.PredictedIndex)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}

// GetPredictions handles GET /wall-street/mood/predictions.
func (h *MoodHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	limit, err := intQuery(r, "limit", 30)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	predictions, err := h.svc.GetUserPredictions(r.Context(), userID, limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, predictions)
}
