package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// SuperInvestorsHandler serves tracked 13F filer routes.
type SuperInvestorsHandler struct {
	svc    *services.SuperInvestorsService
	logger *zap.Logger
}

// NewSuperInvestorsHandler creates a super-investors handler.
func NewSuperInvestorsHandler(svc *services.SuperInvestorsService, logger *zap.Logger) *SuperInvestorsHandler {
	return &SuperInvestorsHandler{svc: svc, logger: logger}
}

// ListInvestors handles GET /wall-street/super-investors.
func (h *SuperInvestorsHandler) ListInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := h.svc.ListInvestors(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, investors)
}

// GetFilings handles GET /wall-street/super-investors/{cik}/trades.
func (h *SuperInvestorsHandler) GetFilings(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.GetInvestorFilings(r.Context(), chi.URLParam(r, "cik"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}
