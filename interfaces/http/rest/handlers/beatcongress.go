package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// BeatCongressHandler serves Beat Congress game routes.
type BeatCongressHandler struct {
	svc    *services.BeatCongressService
	logger *zap.Logger
}

// NewBeatCongressHandler creates a beat-congress handler.
func NewBeatCongressHandler(svc *services.BeatCongressService, logger *zap.Logger) *BeatCongressHandler {
	return &BeatCongressHandler{svc: svc, logger: logger}
}

// GetGames handles GET /wall-street/beat-congress/games.
func (h *BeatCongressHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	page, err := h.svc.GetUserGames(r.Context(), userID, r.URL.Query().Get("status"), params.Page, params.PageSize)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

type createGameRequest struct {
	CongressMemberID string `json:"congressMemberId" validate:"required"`
	DurationDays     int    `json:"durationDays,omitempty"`
}

// CreateGame handles POST /wall-street/beat-congress/games.
func (h *BeatCongressHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	req := createGameRequest{DurationDays: 30}
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	game, err := h.svc.CreateGame(r.Context(), userID, req.CongressMemberID, req.DurationDays)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, game)
}

// GetGameDetail handles GET /wall-street/beat-congress/games/{gameID}.
func (h *BeatCongressHandler) GetGameDetail(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	game, err := h.svc.GetGameDetail(r.Context(), userID, chi.URLParam(r, "gameID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, game)
}

// GetLeaderboard handles GET /wall-street/beat-congress/leaderboard. The
// user id is optional; authenticated callers also get their own rank.
func (h *BeatCongressHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	userID, _ := common.GetUserID(r.Context())
	page, err := h.svc.GetLeaderboard(r.Context(), userID, params.PageSize)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetChallengeableMembers handles GET /wall-street/beat-congress/members.
func (h *BeatCongressHandler) GetChallengeableMembers(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	limit, err := intQuery(r, "limit", 10)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	members, err := h.svc.GetChallengeableMembers(r.Context(), userID, limit)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, members)
}
