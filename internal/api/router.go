// Package api exposes the analytics engine over HTTP: upload, dashboard
// payload, filter controls, table queries, simulation, case workflow and
// the websocket refresh channel.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/savegress/fraudsight/internal/cases"
	"github.com/savegress/fraudsight/internal/config"
	"github.com/savegress/fraudsight/internal/dashboard"
	"github.com/savegress/fraudsight/internal/kv"
	"github.com/savegress/fraudsight/internal/scheduler"
)

// Server represents the API server
type Server struct {
	config   *config.Config
	router   chi.Router
	handlers *Handlers
	hub      *Hub
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, controller *dashboard.Controller, caseMgr *cases.Manager, store kv.Store) *Server {
	hub := NewHub()
	s := &Server{
		config:   cfg,
		router:   chi.NewRouter(),
		handlers: NewHandlers(cfg, controller, caseMgr, store, hub, scheduler.NewDebouncer(cfg.Dashboard.DebounceDelay)),
		hub:      hub,
	}

	controller.SetNotify(func() {
		hub.BroadcastRefresh()
	})

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HealthCheck)
	s.router.Get("/ws", s.handlers.ServeWS)

	s.router.Route("/api/v1/fraudsight", func(r chi.Router) {
		r.Post("/upload", s.handlers.Upload)
		r.Get("/dashboard", s.handlers.GetDashboard)

		r.Route("/filters", func(r chi.Router) {
			r.Put("/threshold", s.handlers.SetThreshold)
			r.Put("/timerange", s.handlers.SetTimeRange)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/transactions", s.handlers.QueryTransactions)
			r.Get("/review", s.handlers.QueryReview)
		})

		r.Get("/simulate", s.handlers.Simulate)
		r.Post("/simulate/counterfactual", s.handlers.Counterfactual)

		r.Get("/compare", s.handlers.CompareUsers)
		r.Get("/heatmap", s.handlers.GetHeatmap)
		r.Get("/transactions/{id}/drivers", s.handlers.GetDrivers)

		// Case mutations carry analyst identity when a JWT secret is set.
		r.Group(func(r chi.Router) {
			if s.config.Server.JWTSecret != "" {
				r.Use(AuthMiddleware(s.config))
			}
			r.Get("/cases", s.handlers.ListCases)
			r.Post("/cases", s.handlers.CreateCase)
			r.Put("/cases/{id}/status", s.handlers.UpdateCaseStatus)
			r.Delete("/cases", s.handlers.ClearCases)
		})

		r.Route("/prefs", func(r chi.Router) {
			r.Get("/theme", s.handlers.GetTheme)
			r.Put("/theme", s.handlers.SetTheme)
		})
	})
}

// Router returns the chi router
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the hub's broadcast loop.
func (s *Server) Start() {
	go s.hub.Run()
}

// Stop stops the hub and any pending debounced work.
func (s *Server) Stop() {
	s.handlers.debounce.Stop()
	s.hub.Stop()
}
