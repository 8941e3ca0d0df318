package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/interfaces/http/rest/handlers"
	"github.com/tradestreak/wall-street-service/interfaces/http/rest/middleware"
	"github.com/tradestreak/wall-street-service/pkg/auth"
)

// Services bundles everything the router serves.
type Services struct {
	Congress       *services.CongressService
	Cramer         *services.CramerService
	Mood           *services.MoodService
	Earnings       *services.EarningsService
	BeatCongress   *services.BeatCongressService
	MarketTalk     *services.MarketTalkService
	Stocks         *services.StocksService
	SuperInvestors *services.SuperInvestorsService
	Markets        *services.MarketsService
}

// Router builds the HTTP handler tree.
type Router struct {
	services   Services
	validator  *auth.JWTValidator
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a router.
func NewRouter(svcs Services, validator *auth.JWTValidator, enableCORS bool, logger *zap.Logger) *Router {
	return &Router{
		services:   svcs,
		validator:  validator,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.tradestreak.net"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	requireAuth := middleware.RequireAuth(rt.validator, rt.logger)
	optionalAuth := middleware.OptionalAuth(rt.validator)

	router.Route("/wall-street", func(r chi.Router) {
		r.Get("/health", rt.healthCheck)

		r.Route("/congress", func(r chi.Router) {
			h := handlers.NewCongressHandler(rt.services.Congress, rt.logger)
			r.Get("/trades", h.GetTrades)
			r.Get("/trades/{tradeID}", h.GetTradeDetail)
			r.Get("/members", h.GetMembers)
			r.Get("/members/{memberID}", h.GetMemberDetail)
			r.Get("/members/{memberID}/trades", h.GetMemberTrades)
		})

		r.Route("/cramer", func(r chi.Router) {
			h := handlers.NewCramerHandler(rt.services.Cramer, rt.logger)
			r.Get("/picks", h.GetPicks)
			r.Get("/picks/{ticker}", h.GetPickDetail)
			r.Get("/stats", h.GetStats)
		})

		r.Route("/mood", func(r chi.Router) {
			h := handlers.NewMoodHandler(rt.services.Mood, rt.logger)
			r.Get("/", h.GetMood)
			r.With(requireAuth).Post("/predict", h.SubmitPrediction)
			r.With(requireAuth).Get("/predictions", h.GetPredictions)
		})

		r.Route("/earnings", func(r chi.Router) {
			h := handlers.NewEarningsHandler(rt.services.Earnings, rt.logger)
			r.With(optionalAuth).Get("/upcoming", h.GetUpcoming)
			r.Get("/events/{eventID}", h.GetEventDetail)
			r.With(requireAuth).Post("/predict", h.SubmitPrediction)
			r.With(requireAuth).Get("/predictions", h.GetPredictions)
			r.With(requireAuth).Get("/stats", h.GetStats)
		})

		r.Route("/beat-congress", func(r chi.Router) {
			h := handlers.NewBeatCongressHandler(rt.services.BeatCongress, rt.logger)
			r.With(requireAuth).Get("/games", h.GetGames)
			r.With(requireAuth).Post("/games", h.CreateGame)
			r.With(requireAuth).Get("/games/{gameID}", h.GetGameDetail)
			r.With(optionalAuth).Get("/leaderboard", h.GetLeaderboard)
			r.With(requireAuth).Get("/members", h.GetChallengeableMembers)
		})

		r.Route("/market-talk", func(r chi.Router) {
			h := handlers.NewMarketTalkHandler(rt.services.MarketTalk, rt.logger)
			r.Get("/episodes", h.GetEpisodes)
			r.Get("/episodes/{episodeID}", h.GetEpisodeDetail)
			r.Get("/latest", h.GetLatest)
			r.Post("/generate", h.GenerateEpisode)
			r.Post("/live", h.StartLive)
			r.Post("/live/{episodeID}/messages", h.AddLiveMessage)
			r.Post("/live/{episodeID}/end", h.EndLive)
		})

		r.Route("/stocks", func(r chi.Router) {
			h := handlers.NewStocksHandler(rt.services.Stocks, rt.logger)
			r.Get("/{symbol}", h.GetStockDetail)
			r.Get("/{symbol}/ratios", h.GetRatios)
			r.Get("/{symbol}/short-interest", h.GetShortInterest)
		})

		mh := handlers.NewMarketsHandler(rt.services.Markets, rt.logger)
		r.Get("/indices/comparison", mh.GetIndicesComparison)
		r.Get("/etfs/featured", mh.GetFeaturedETFs)
		r.Get("/daily-buzz", mh.GetDailyBuzz)

		r.Route("/super-investors", func(r chi.Router) {
			h := handlers.NewSuperInvestorsHandler(rt.services.SuperInvestors, rt.logger)
			r.Get("/", h.ListInvestors)
			r.Get("/{cik}/trades", h.GetFilings)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"wall-street"}`))
}
