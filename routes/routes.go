package routes

import (
	"github.com/Dosada05/club-ranking/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes собирает все HTTP-маршруты ядра рейтингов.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	clubHandler *handlers.ClubHandler,
	playerHandler *handlers.PlayerHandler,
	seasonHandler *handlers.SeasonHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/clubs", func(r chi.Router) {
		r.Post("/", clubHandler.CreateHandler)
		r.Get("/", clubHandler.ListHandler)
		r.Get("/{clubID}", clubHandler.GetByIDHandler)
		r.Get("/{clubID}/players", playerHandler.ListByClubHandler)
		r.Get("/{clubID}/seasons", seasonHandler.ListByClubHandler)
	})

	router.Route("/players", func(r chi.Router) {
		r.Post("/", playerHandler.CreateHandler)
		r.Get("/{playerID}", playerHandler.GetByIDHandler)
	})

	router.Route("/seasons", func(r chi.Router) {
		r.Post("/", seasonHandler.CreateHandler)
		r.Get("/{seasonID}", seasonHandler.GetByIDHandler)
		r.Post("/{seasonID}/rollover", seasonHandler.RolloverHandler)
		r.Get("/{seasonID}/matches", matchHandler.ListBySeasonHandler)
		r.Get("/{seasonID}/standings", standingsHandler.SeasonStandingsHandler)
		r.Get("/{seasonID}/promotions", standingsHandler.PromotionsPreviewHandler)
		r.Post("/{seasonID}/ladder/players", playerHandler.EnrollLadderHandler)
	})

	router.Route("/boxes", func(r chi.Router) {
		r.Get("/{boxID}/standings", standingsHandler.BoxStandingsHandler)
		r.Post("/{boxID}/players", playerHandler.EnrollBoxHandler)
		r.Post("/{boxID}/fixtures", matchHandler.GenerateFixturesHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", matchHandler.CreateHandler)
		r.Get("/{matchID}", matchHandler.GetByIDHandler)
		r.Post("/{matchID}/result", matchHandler.SubmitResultHandler)
		r.Get("/{matchID}/rating-preview", matchHandler.PreviewRatingHandler)
		r.Post("/{matchID}/walkover", matchHandler.WalkoverHandler)
		r.Post("/{matchID}/cancel", matchHandler.CancelHandler)
	})

	router.Get("/ws/seasons/{seasonID}", webSocketHandler.ServeWs)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
