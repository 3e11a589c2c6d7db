package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/api/handlers"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/api/middleware"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/audio"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/config"
	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcript"
)

// Deps are the services the HTTP layer dispatches to. Audio may be nil, in
// which case the upload route is not mounted. UploadDir, when set, is served
// read-only under /uploads.
type Deps struct {
	Transcripts *transcript.Service
	Audio       *audio.Service
	Checks      []handlers.Check
	UploadDir   string
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Deps
	rl   *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	return &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
		rl:   middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst),
	}
}

// Close releases the rate limiter's background goroutine.
func (rt *Router) Close() {
	rt.rl.Close()
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.HTTP.AllowedOrigins))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	health := handlers.NewHealthHandler(rt.deps.Checks...)
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if rt.deps.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(rt.deps.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(rt.rl.Limit)

		transcriptH := handlers.NewTranscriptHandler(rt.deps.Transcripts)
		transcriptRoutes := func(r chi.Router) {
			r.NotFound(handlers.NotFound)
			r.MethodNotAllowed(handlers.MethodNotAllowed)
			r.Post("/", transcriptH.Create)
			r.Get("/", transcriptH.List)
			r.Delete("/{id}", transcriptH.Delete)
		}
		r.Route("/transcripts", transcriptRoutes)

		r.Route("/api", func(r chi.Router) {
			r.NotFound(handlers.NotFound)
			r.MethodNotAllowed(handlers.MethodNotAllowed)
			r.Route("/transcripts", transcriptRoutes)

			if rt.deps.Audio != nil {
				uploadH := handlers.NewUploadHandler(rt.deps.Audio, rt.cfg.Storage.MaxBytes)
				r.Post("/upload", uploadH.Upload)
			}
		})
	})

	return r
}
