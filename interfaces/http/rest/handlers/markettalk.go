package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// MarketTalkHandler serves Market Talk episode routes.
type MarketTalkHandler struct {
	svc    *services.MarketTalkService
	logger *zap.Logger
}

// NewMarketTalkHandler creates a market-talk handler.
func NewMarketTalkHandler(svc *services.MarketTalkService, logger *zap.Logger) *MarketTalkHandler {
	return &MarketTalkHandler{svc: svc, logger: logger}
}

// GetEpisodes handles GET /wall-street/market-talk/episodes.
func (h *MarketTalkHandler) GetEpisodes(w http.ResponseWriter, r *http.Request) {
	params, err := common.ExtractPaginationParams(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	page, err := h.svc.GetEpisodes(r.Context(), params.Page, params.PageSize)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, page)
}

// GetLatest handles GET /wall-street/market-talk/latest.
func (h *MarketTalkHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.GetLatest(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, latest)
}

// GetEpisodeDetail handles GET /wall-street/market-talk/episodes/{episodeID}.
func (h *MarketTalkHandler) GetEpisodeDetail(w http.ResponseWriter, r *http.Request) {
	episode, err := h.svc.GetEpisodeDetail(r.Context(), chi.URLParam(r, "episodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, episode)
}

type generateEpisodeRequest struct {
	Topic        string  `json:"topic" validate:"required"`
	Ticker       *string `json:"ticker,omitempty"`
	MessageCount int     `json:"messageCount,omitempty"`
}

// GenerateEpisode handles POST /wall-street/market-talk/generate.
func (h *MarketTalkHandler) GenerateEpisode(w http.ResponseWriter, r *http.Request) {
	var req generateEpisodeRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	episode, err := h.svc.GenerateEpisode(r.Context(), req.Topic, req.Ticker, req.MessageCount)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, episode)
}

type startLiveRequest struct {
	Topic  string  `json:"topic" validate:"required"`
	Ticker *string `json:"ticker,omitempty"`
}

// StartLive handles POST /wall-street/market-talk/live.
func (h *MarketTalkHandler) StartLive(w http.ResponseWriter, r *http.Request) {
	var req startLiveRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	episode, err := h.svc.StartLiveEpisode(r.Context(), req.Topic, req.Ticker)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, episode)
}

type liveMessageRequest struct {
	Host      string  `json:"host" validate:"required"`
	Text      string  `json:"text" validate:"required"`
	Ticker    *string `json:"ticker,omitempty"`
	Sentiment *string `json:"sentiment,omitempty"`
}

// AddLiveMessage handles POST /wall-street/market-talk/live/{episodeID}/messages.
func (h *MarketTalkHandler) AddLiveMessage(w http.ResponseWriter, r *http.Request) {
	var req liveMessageRequest
	if err := decodeBody(r, &req); err != nil {
		common.RespondAppError(w, err)
		return
	}

	episode, err := h.svc.AddLiveMessage(r.Context(), chi.URLParam(r, "episodeID"), req.Host, req.Text, req.Ticker, req.Sentiment)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, episode)
}

// EndLive handles POST /wall-street/market-talk/live/{episodeID}/end.
func (h *MarketTalkHandler) EndLive(w http.ResponseWriter, r *http.Request) {
	episode, err := h.svc.EndLiveEpisode(r.Context(), chi.URLParam(r, "episodeID"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, episode)
}
