package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mediatracker/mediatracker-go/internal/config"
	"github.com/mediatracker/mediatracker-go/internal/middleware"
	"github.com/mediatracker/mediatracker-go/internal/model"
	"github.com/mediatracker/mediatracker-go/internal/service"
)

// DefaultIdentity is the owner of every media record in single-user mode.
func DefaultIdentity(cfg config.Config) model.Identity {
	return model.Identity{
		ID:       cfg.DefaultUserID,
		Username: "default",
		Email:    "default@example.com",
	}
}

// NewRouter builds the HTTP API.
func NewRouter(cfg config.Config, authService *service.AuthService, mediaService *service.MediaService) http.Handler {
	authHandler := NewAuthHandler(authService, cfg.IsDevelopment())
	mediaHandler := NewMediaHandler(mediaService, cfg.IsDevelopment())

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"))
	})

	mediaAuth := middleware.Authenticate(authService)
	if cfg.SingleUser() {
		mediaAuth = middleware.DefaultIdentity(DefaultIdentity(cfg))
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		api.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst))
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		api.With(middleware.Authenticate(authService)).Get("/auth/me", authHandler.HandleMe)

		api.Route("/media", func(media chi.Router) {
			media.Use(mediaAuth)
			media.Get("/", mediaHandler.HandleList)
			media.Post("/", mediaHandler.HandleCreate)
			media.Get("/{id}", mediaHandler.HandleGet)
			media.Put("/{id}", mediaHandler.HandleUpdate)
			media.Delete("/{id}", mediaHandler.HandleDelete)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
