package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/rpgroster-go/internal/api/apierr"
	"github.com/mcoot/rpgroster-go/internal/api/handler"
	"github.com/mcoot/rpgroster-go/internal/api/middleware"
	"github.com/mcoot/rpgroster-go/internal/dependencies/clock"
	"github.com/mcoot/rpgroster-go/internal/services/auth"
	"github.com/mcoot/rpgroster-go/internal/services/character"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	CharacterService *character.Service
	Clock            clock.Clock
	// Debug includes stack traces in error responses
	Debug bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	errWriter := apierr.NewWriter(cfg.Logger, cfg.Debug)

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, errWriter)
	characterHandler := handler.NewCharacterHandler(cfg.CharacterService, errWriter)
	systemHandler := handler.NewSystemHandler(cfg.Clock, errWriter)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService, errWriter)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	r.Use(middleware.Recovery(cfg.Logger, errWriter))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics())

	r.HandleFunc("/", systemHandler.Banner).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	// Character routes; reads are public, writes require a token.
	// Fixed paths are registered before /{id}.
	chars := api.PathPrefix("/characters").Subrouter()
	chars.HandleFunc("", characterHandler.List).Methods(http.MethodGet)
	chars.Handle("", protected(characterHandler.Create)).Methods(http.MethodPost)
	chars.Handle("/bulk-delete", protected(characterHandler.BulkDelete)).Methods(http.MethodPost)
	chars.Handle("/battle", protected(characterHandler.Battle)).Methods(http.MethodPost)
	chars.HandleFunc("/{id}", characterHandler.Get).Methods(http.MethodGet)
	chars.Handle("/{id}", protected(characterHandler.Update)).Methods(http.MethodPut)
	chars.Handle("/{id}", protected(characterHandler.Delete)).Methods(http.MethodDelete)
	chars.Handle("/{id}/level-up", protected(characterHandler.LevelUp)).Methods(http.MethodPost)
	chars.Handle("/{id}/add-experience", protected(characterHandler.AddExperience)).Methods(http.MethodPost)

	api.HandleFunc("/leaderboard", characterHandler.Leaderboard).Methods(http.MethodGet)

	// Unknown routes and methods share the 404 envelope
	notFound := middleware.Logging(cfg.Logger)(http.HandlerFunc(systemHandler.NotFound))
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	return r
}
