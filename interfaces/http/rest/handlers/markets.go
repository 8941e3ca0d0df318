package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// MarketsHandler serves market-wide feature routes: index comparison,
// featured ETFs, and the daily buzz.
type MarketsHandler struct {
	svc    *services.MarketsService
	logger *zap.Logger
}

// NewMarketsHandler creates a markets handler.
func NewMarketsHandler(svc *services.MarketsService, logger *zap.Logger) *MarketsHandler {
	return &MarketsHandler{svc: svc, logger: logger}
}

// GetIndicesComparison handles GET /wall-street/indices/comparison.
func (h *MarketsHandler) GetIndicesComparison(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1M"
	}

	comparison, err := h.svc.GetIndicesComparison(r.Context(), r.URL.Query().Get("symbols"), period)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, comparison)
}

// GetFeaturedETFs handles GET /wall-street/etfs/featured.
func (h *MarketsHandler) GetFeaturedETFs(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetFeaturedETFs(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetDailyBuzz handles GET /wall-street/daily-buzz.
func (h *MarketsHandler) GetDailyBuzz(w http.ResponseWriter, r *http.Request) {
	buzz, err := h.svc.GetDailyBuzz(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, buzz)
}
