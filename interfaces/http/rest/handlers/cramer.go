package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// CramerHandler serves Cramer pick routes.
type CramerHandler struct {
	svc    *services.CramerService
	logger *zap.Logger
}

// NewCramerHandler creates a cramer handler.
func NewCramerHandler(svc *services.CramerService, logger *zap.Logger) *CramerHandler {
	return &CramerHandler{svc: svc, logger: logger}
}

// GetPicks handles GET /wall-street/cramer/picks.
func (h *CramerHandler) GetPicks(w http.ResponseWriter, r *http.Request) {
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	daysBack, err := intQuery(r, "daysBack", 90)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	page, err := h.svc.GetPicks(r.Context(), params.Page, params.PageSize, r.URL.Query().Get("recommendation"), daysBack)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetPickDetail handles GET /wall-street/cramer/picks/{ticker}.
func (h *CramerHandler) GetPickDetail(w http.ResponseWriter, r *http.Request) {
	pick, err := h.svc.GetPickDetail(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, pick)
}

// GetStats handles GET /wall-street/cramer/stats.
func (h *CramerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	daysBack, err := intQuery(r, "daysBack", 30)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	stats, err := h.svc.GetStats(r.Context(), daysBack)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stats)
}
