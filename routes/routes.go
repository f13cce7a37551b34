package routes

import (
	"net/http"

	"github.com/esports-arena/tournament-hub/handlers"
	"github.com/esports-arena/tournament-hub/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Tournament   *handlers.TournamentHandler
	Registration *handlers.RegistrationHandler
	Match        *handlers.MatchHandler
	Leaderboard  *handlers.LeaderboardHandler
	FeaturedGame *handlers.FeaturedGameHandler
	Dashboard    *handlers.DashboardHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, auth *middleware.Authenticator, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/auth/login", h.Auth.LoginHandler)

	// Публичный сайт: просмотр и подача заявок.
	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Post("/{tournamentID}/registrations", h.Registration.SubmitHandler)
	})

	router.Route("/registrations", func(r chi.Router) {
		r.Get("/{registrationID}", h.Registration.GetByIDHandler)
		r.Post("/{registrationID}/logo", h.Registration.UploadLogoHandler)
	})

	router.Get("/teams", h.Registration.ListApprovedTeamsHandler)

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.ListHandler)
		r.Get("/{matchID}", h.Match.GetByIDHandler)
	})

	router.Get("/leaderboard", h.Leaderboard.ListHandler)
	router.Get("/featured-games", h.FeaturedGame.ListHandler)

	// Живые обновления.
	router.Get("/ws", h.WebSocket.ServeWs)

	// Бэк-офис: только аутентифицированные администраторы.
	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireAdmin)

		r.Get("/dashboard", h.Dashboard.GetHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", h.Tournament.CreateHandler)
			r.Patch("/{tournamentID}", h.Tournament.UpdateHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
			r.Post("/{tournamentID}/image", h.Tournament.UploadImageHandler)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", h.Registration.ListHandler)
			r.Patch("/{registrationID}/status", h.Registration.UpdateStatusHandler)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", h.Match.CreateHandler)
			r.Patch("/{matchID}/score", h.Match.UpdateScoreHandler)
			r.Patch("/{matchID}/status", h.Match.UpdateStatusHandler)
			r.Delete("/{matchID}", h.Match.DeleteHandler)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Put("/", h.Leaderboard.UpsertHandler)
			r.Delete("/{entryID}", h.Leaderboard.DeleteHandler)
		})

		r.Route("/featured-games", func(r chi.Router) {
			r.Post("/", h.FeaturedGame.CreateHandler)
			r.Put("/{gameID}", h.FeaturedGame.UpdateHandler)
			r.Post("/{gameID}/move", h.FeaturedGame.MoveHandler)
			r.Post("/{gameID}/image", h.FeaturedGame.UploadImageHandler)
			r.Delete("/{gameID}", h.FeaturedGame.DeleteHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Auth.ListUsersHandler)
			r.Post("/", h.Auth.RegisterUserHandler)
			r.Patch("/{userID}/admin", h.Auth.SetAdminFlagHandler)
		})
	})
}
