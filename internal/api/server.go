// Package api provides the HTTP API server and handlers for the LitShelf application.
package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"log/slog"

	"github.com/Garbson/LitShelf/internal/metadata/googlebooks"
	"github.com/Garbson/LitShelf/internal/service"
	"github.com/Garbson/LitShelf/internal/sse"
	"github.com/Garbson/LitShelf/internal/store"
)

// Version is reported by the health endpoint and the OpenAPI document.
const Version = "1.0.0"

// Services groups the business logic services used by the API server.
type Services struct {
	Auth           *service.AuthService
	Session        *service.SessionService
	Shelf          *service.BookshelfService
	Stats          *service.StatsService
	Social         *service.SocialService
	Recommendation *service.RecommendationService
	Catalog        *googlebooks.Client // nil disables catalog search
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	sseHandler      *sse.Handler
	authRateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseManager *sse.Manager, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("LitShelf API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:           st,
		services:        services,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
	}

	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger, func(r *http.Request) string {
			return getUserID(r.Context())
		})
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerBookRoutes()
	s.registerQuoteRoutes()
	s.registerStatsRoutes()
	s.registerSocialRoutes()
	s.registerRecommendationRoutes()
	s.registerMetadataRoutes()

	if s.sseHandler != nil {
		// Opening the event stream also starts the social graph watch, so
		// friendship changes refresh the connected user's cached snapshot.
		router.Get("/api/v1/events", func(w http.ResponseWriter, r *http.Request) {
			if userID := getUserID(r.Context()); userID != "" {
				if err := s.services.Social.Watch(r.Context(), userID); err != nil {
					logger.Warn("failed to start social watch", "user_id", userID, "error", err)
				}
			}
			s.sseHandler.ServeHTTP(w, r)
		})
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
