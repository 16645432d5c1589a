package routes

import (
	"net/http"

	"github.com/carefinder/backend/internal/api/handlers"
	"github.com/carefinder/backend/internal/api/middleware"
	"github.com/carefinder/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler   *handlers.SearchHandler
	feedbackHandler *handlers.FeedbackHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	feedbackHandler *handlers.FeedbackHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		searchHandler:   searchHandler,
		feedbackHandler: feedbackHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("POST /api/search/providers", r.searchHandler.SearchProviders)
	r.mux.HandleFunc("GET /api/search/specialties", r.searchHandler.ListSpecialties)
	r.mux.HandleFunc("GET /api/search/provider/{npi}", r.searchHandler.GetProvider)

	// Feedback endpoint
	r.mux.HandleFunc("POST /api/search/feedback", r.feedbackHandler.SubmitFeedback)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// HTTP performance optimizations (compression, cache headers)
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
