package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusfeed/internal/handler"
	"campusfeed/internal/httputil"
	idmw "campusfeed/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	Backend handler.Backend

	// Registry receives the request metrics and is served on /metrics.
	// A private registry is created when nil.
	Registry *prometheus.Registry
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	postHandler := handler.NewPostHandler(cfg.Backend)
	commentHandler := handler.NewCommentHandler(cfg.Backend)
	pollHandler := handler.NewPollHandler(cfg.Backend)
	listingHandler := handler.NewListingHandler(cfg.Backend)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestMetrics(reg))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Read routes: the viewer is optional and only affects is_liked / user_votes
	r.Group(func(r chi.Router) {
		r.Use(idmw.OptionalIdentityMiddleware)

		r.Get("/posts/feed", postHandler.Feed)
		r.Get("/posts/{id}", postHandler.GetByID)
		r.Get("/posts/{id}/comments", commentHandler.List)
		r.Get("/users/{id}/posts", postHandler.GetUserPosts)
		r.Get("/listings", listingHandler.List)
		r.Get("/listings/{id}", listingHandler.GetByID)
	})

	// Mutations require an acting user
	r.Group(func(r chi.Router) {
		r.Use(idmw.IdentityMiddleware)

		r.Post("/posts/{id}/like", postHandler.Like)
		r.Patch("/posts/{id}", postHandler.Edit)
		r.Post("/posts/{id}/comments", commentHandler.Create)

		r.Post("/comments/{id}/like", commentHandler.Like)
		r.Patch("/comments/{id}", commentHandler.Edit)
		r.Delete("/comments/{id}", commentHandler.Delete)

		r.Post("/polls/{id}/vote", pollHandler.Vote)

		r.Post("/listings/{id}/favorite", listingHandler.Favorite)
	})

	return r
}

// requestMetrics counts requests by route pattern and status.
func requestMetrics(reg prometheus.Registerer) func(http.Handler) http.Handler {
	factory := promauto.With(reg)
	requests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusfeed",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests served",
	}, []string{"method", "route", "status"})
	duration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "campusfeed",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "API request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
