// Package api serves the planner over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travelease/internal/common/logger"
	"travelease/internal/planner"
)

// DefaultCookieName carries the user key between swipe requests.
const DefaultCookieName = "travelease_user"

// Options configures the router.
type Options struct {
	CORSOrigins []string
	CookieName  string
	// RateLimit caps oracle-backed requests per client IP per minute; 0 disables it.
	RateLimit int
	// Ready reports whether dependencies are reachable. nil means always ready.
	Ready func(ctx context.Context) error
}

// Router holds the handlers and their dependencies.
type Router struct {
	planner *planner.Service
	opts    Options
	logger  logger.Logger
}

func NewRouter(svc *planner.Service, opts Options, log logger.Logger) *Router {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	return &Router{
		planner: svc,
		opts:    opts,
		logger:  log.With(map[string]interface{}{"component": "api"}),
	}
}

// Handler builds the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(rt.requestLogger)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/ready", rt.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", rt.handleHealth)
		r.Post("/details", rt.handleDetails)

		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimit())
			r.Post("/ai-plan", rt.handlePlan)
			r.Post("/itinerary", rt.handleItinerary)
			r.Post("/swipe/start", rt.handleSwipeStart)
			r.Get("/swipe/finalize", rt.handleSwipeFinalize)
		})

		r.Get("/swipe/card", rt.handleSwipeCard)
		r.Post("/swipe", rt.handleSwipe)
		r.Post("/swipe/reset", rt.handleSwipeReset)
	})

	return r
}

func (rt *Router) rateLimit() func(http.Handler) http.Handler {
	if rt.opts.RateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		rt.opts.RateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Success: false,
				Error:   errorDetail{Code: "RATE_LIMITED", Message: "Too many planning requests, slow down"},
			})
		}),
	)
}
