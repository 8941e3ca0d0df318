package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// EarningsHandler serves earnings prediction game routes.
type EarningsHandler struct {
	svc    *services.EarningsService
	logger *zap.Logger
}

// NewEarningsHandler creates an earnings handler.
func NewEarningsHandler(svc *services.EarningsService, logger *zap.Logger) *EarningsHandler {
	return &EarningsHandler{svc: svc, logger: logger}
}

// GetUpcoming handles GET /wall-street/earnings/upcoming. The user id is
// optional; authenticated callers get their own prediction on each event.
func (h *EarningsHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	daysAhead, err := intQuery(r, "daysAhead", 14)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID, _ := common.GetUserID(r.Context())
	page, err := h.svc.GetUpcomingEvents(r.Context(), userID, daysAhead, params.PageSize)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetEventDetail handles GET /wall-street/earnings/events/{eventID}.
func (h *EarningsHandler) GetEventDetail(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEventDetail(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, event)
}

type submitEarningsRequest struct {
	Ticker     string `json:"ticker" validate:"required"`
	Prediction string `json:"prediction" validate:"required"`
}

// SubmitPrediction handles POST /wall-street/earnings/predict.
func (h *EarningsHandler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req submitEarningsRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	result, err := h.svc.SubmitPrediction(r.Context(), userID, req.Ticker, req.Prediction)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}

// GetPredictions handles GET /wall-street/earnings/predictions.
func (h *EarningsHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	limit, err := intQuery(r, "limit", 50)
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

// GetStats handles GET /wall-street/earnings/stats.
func (h *EarningsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	stats, err := h.svc.GetUserStats(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stats)
}
