package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// StocksHandler serves stock quote and fundamentals routes.
type StocksHandler struct {
	svc    *services.StocksService
	logger *zap.Logger
}

// NewStocksHandler creates a stocks handler.
func NewStocksHandler(svc *services.StocksService, logger *zap.Logger) *StocksHandler {
	return &StocksHandler{svc: svc, logger: logger}
}

// GetStockDetail handles GET /wall-street/stocks/{symbol}.
func (h *StocksHandler) GetStockDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetStockDetail(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, detail)
}

// GetRatios handles GET /wall-street/stocks/{symbol}/ratios.
func (h *StocksHandler) GetRatios(w http.ResponseWriter, r *http.Request) {
	ratios, err := h.svc.GetStockRatios(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, ratios)
}

// GetShortInterest handles GET /wall-street/stocks/{symbol}/short-interest.
func (h *StocksHandler) GetShortInterest(w http.ResponseWriter, r *http.Request) {
	short, err := h.svc.GetShortInterest(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, short)
}
