package web

import (
	"log/slog"
	"net/http"

	"github.com/jusunglee/manchuscript/internal/db"
	"github.com/jusunglee/manchuscript/internal/gloss"
	"github.com/jusunglee/manchuscript/internal/web/handlers"
	"github.com/jusunglee/manchuscript/internal/web/middleware"
)

type Router struct {
	repo    db.Repository
	log     *slog.Logger
	glosser *gloss.Glosser
}

func NewRouter(repo db.Repository, log *slog.Logger, glosser *gloss.Glosser) *Router {
	return &Router{
		repo:    repo,
		log:     log,
		glosser: glosser,
	}
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	conversionHandler := handlers.NewConversionHandler(r.repo, r.log)
	alphabetHandler := handlers.NewAlphabetHandler()
	glossHandler := handlers.NewGlossHandler(r.glosser, r.log)

	rateLimiter := middleware.NewRateLimiter(30, 60)

	mux.Handle("POST /api/v1/conversions",
		middleware.Chain(
			http.HandlerFunc(conversionHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(rateLimiter),
		),
	)

	mux.Handle("GET /api/v1/conversions/recent",
		middleware.Chain(
			http.HandlerFunc(conversionHandler.Recent),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, s-maxage=5, max-age=0"),
		),
	)

	mux.Handle("GET /api/v1/alphabet",
		middleware.Chain(
			http.HandlerFunc(alphabetHandler.List),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, max-age=86400"),
		),
	)

	mux.Handle("POST /api/v1/glosses",
		middleware.Chain(
			http.HandlerFunc(glossHandler.Create),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(rateLimiter),
		),
	)

	return middleware.CORS(mux)
}
