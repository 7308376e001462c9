package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/card-league/docs"
	"github.com/Dosada05/card-league/handlers"
	"github.com/Dosada05/card-league/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Team       *handlers.TeamHandler
	Game       *handlers.GameHandler
	Override   *handlers.OverrideHandler
	Standings  *handlers.StandingsHandler
	Portal     *handlers.PortalHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	Tokens         *middleware.TokenManager
	Logger         *slog.Logger
	AllowedOrigins []string
	// PortalLoginRate limits portal login attempts per client IP per minute.
	PortalLoginRate int
	Gatherer        prometheus.Gatherer
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(opts.Tokens, opts.Logger)

	router.Post("/auth/login", h.Auth.Login)

	// Турнирные маршруты только для оператора
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(middleware.RoleOperator))

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", h.Tournament.CreateHandler)
			r.Get("/", h.Tournament.ListHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)
				r.Delete("/", h.Tournament.DeleteHandler)
				r.Patch("/status", h.Tournament.UpdateStatusHandler)
				r.Put("/schedule", h.Tournament.SetScheduleHandler)
				r.Post("/schedule/generate", h.Tournament.GenerateScheduleHandler)

				r.Post("/teams", h.Team.RegisterTeam)
				r.Get("/teams", h.Team.ListTeams)

				r.Get("/games", h.Game.ListGames)

				r.Get("/overrides", h.Override.List)
				r.Put("/overrides", h.Override.Set)
				r.Delete("/overrides", h.Override.Delete)

				r.Get("/standings", h.Standings.Get)
				r.Get("/standings/export.xlsx", h.Standings.ExportXLSX)
				r.Get("/standings/export.csv", h.Standings.ExportCSV)
				r.Get("/standings/chart.png", h.Standings.WinsChart)
				r.Post("/standings/export", h.Standings.Upload)
				r.Get("/playoffs", h.Standings.Playoffs)
			})
		})

		r.Get("/teams/{teamID}", h.Team.GetTeamByID)
		r.Put("/games/{gameID}/score", h.Game.EnterScore)
	})

	// Портал команд
	router.Route("/portal", func(r chi.Router) {
		rate := opts.PortalLoginRate
		if rate <= 0 {
			rate = 10
		}
		r.With(httprate.LimitByIP(rate, time.Minute)).Post("/login", h.Portal.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(middleware.RoleTeam))

			r.Get("/standings", h.Portal.Standings)
			r.Get("/games", h.Portal.Games)
			r.Post("/games/{gameID}/confirm", h.Portal.Confirm)
		})
	})
}
