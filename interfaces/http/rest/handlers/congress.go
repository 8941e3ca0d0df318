package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/pkg/common"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// CongressHandler serves congressional trade and member routes.
type CongressHandler struct {
	svc    *services.CongressService
	logger *zap.Logger
}

// NewCongressHandler creates a congress handler.
func NewCongressHandler(svc *services.CongressService, logger *zap.Logger) *CongressHandler {
	return &CongressHandler{svc: svc, logger: logger}
}

// GetTrades handles GET /wall-street/congress/trades.
func (h *CongressHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	daysBack, err := intQuery(r, "daysBack", 30)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	filters, err := tradeFiltersFromQuery(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	page, err := h.svc.GetTrades(r.Context(), params.Page, params.PageSize, filters, daysBack)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetTradeDetail handles GET /wall-street/congress/trades/{tradeID}.
func (h *CongressHandler) GetTradeDetail(w http.ResponseWriter, r *http.Request) {
	trade, err := h.svc.GetTradeDetail(r.Context(), chi.URLParam(r, "tradeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, trade)
}

// GetMembers handles GET /wall-street/congress/members.
func (h *CongressHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	page, err := h.svc.GetMembers(r.Context(), params.Page, params.PageSize)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetMemberDetail handles GET /wall-street/congress/members/{memberID}.
func (h *CongressHandler) GetMemberDetail(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.GetMemberDetail(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, member)
}

// GetMemberTrades handles GET /wall-street/congress/members/{memberID}/trades.
func (h *CongressHandler) GetMemberTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 50)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	trades, err := h.svc.GetMemberTrades(r.Context(), chi.URLParam(r, "memberID"), limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, trades)
}

func tradeFiltersFromQuery(r *http.Request) (domain.TradeFilters, error) {
	var filters domain.TradeFilters
	q := r.URL.Query()

	if raw := q.Get("party"); raw != "" {
		party, ok := domain.ParseParty(raw)
		if !ok {
			return filters, apperrors.NewValidationError("invalid party filter: " + raw)
		}
		filters.Party = party
	}
	if raw := q.Get("chamber"); raw != "" {
		chamber, ok := domain.ParseChamber(raw)
		if !ok {
			return filters, apperrors.NewValidationError("invalid chamber filter: " + raw)
		}
		filters.Chamber = chamber
	}
	if raw := q.Get("transactionType"); raw != "" {
		txType, ok := domain.ParseTransactionType(raw)
		if !ok {
			return filters, apperrors.NewValidationError("invalid transactionType filter: " + raw)
		}
		filters.TransactionType = txType
	}
	filters.Ticker = q.Get("ticker")
	filters.MemberID = q.Get("memberId")
	return filters, nil
}
