package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	APIKey      string        // empty disables auth on mutating routes
	RateLimiter *rate.Limiter // nil disables submission throttling
}

func Routes(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	r.Get("/health", h.Health)
	r.Get("/queue/status", h.QueueStatus)

	r.Get("/models", h.ListModels)
	r.Get("/models/{name}", h.GetModel)

	r.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.ListJobs)
		r.Get("/{id}", h.GetJob)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(opts.APIKey))
			if opts.RateLimiter != nil {
				r.Use(SubmitRateLimit(opts.RateLimiter))
			}
			r.Post("/", h.CreateSeparationJob)
		})

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(opts.APIKey))
			r.Delete("/{id}", h.DeleteJob)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(opts.APIKey))
		if opts.RateLimiter != nil {
			r.Use(SubmitRateLimit(opts.RateLimiter))
		}
		r.Post("/transcribe", h.CreateTranscriptionJob)
		r.Post("/lyrics", h.CreateLyricsJob)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
