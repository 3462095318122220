// Package router exposes an asset cache over HTTP using chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/assets/internal/assets"
	"github.com/conduit-lang/assets/internal/codec"
	"github.com/conduit-lang/assets/internal/source"
	"github.com/conduit-lang/assets/internal/web/middleware"
	"github.com/conduit-lang/assets/internal/web/response"
)

// Config holds the router's collaborators
type Config struct {
	// Cache serves GET and DELETE requests
	Cache *assets.Cache
	// Writer encodes cached values into response bodies
	Writer codec.Writer
	// Lister enumerates source names; optional
	Lister source.Lister
	// Logger receives request and panic logs
	Logger *zap.Logger
	// CompressMinSize is the smallest body to gzip; zero uses the default
	CompressMinSize int
	// AllowedOrigins enables CORS for these origins; empty disables it
	AllowedOrigins []string
}

// RouteInfo describes a registered route
type RouteInfo struct {
	Method  string
	Pattern string
}

// Router manages HTTP routing using chi framework
type Router struct {
	mux    chi.Router
	routes []RouteInfo

	cache  *assets.Cache
	writer codec.Writer
	lister source.Lister
	logger *zap.Logger
}

// New creates the asset API:
//
//	GET    /stats            cache counters
//	GET    /cache            cached instances
//	GET    /assets?pattern=  names known to the source
//	GET    /assets/{name}    encoded asset, ?type=<kind> (default text)
//	DELETE /assets/{name}    unload, ?type=<kind>
func New(cfg Config) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Router{
		mux:    chi.NewRouter(),
		cache:  cfg.Cache,
		writer: cfg.Writer,
		lister: cfg.Lister,
		logger: logger,
	}

	r.mux.Use(middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logging(logger),
	))
	if len(cfg.AllowedOrigins) > 0 {
		r.mux.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	r.mux.Use(middleware.Conditional(
		middleware.And(middleware.Method(http.MethodGet), middleware.PathPrefix("/assets")),
		middleware.Compression(cfg.CompressMinSize),
	))
	r.mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.RenderNotFound(w, "")
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.RenderError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	r.add(http.MethodGet, "/stats", r.stats)
	r.add(http.MethodGet, "/cache", r.entries)
	r.add(http.MethodGet, "/assets", r.list)
	r.add(http.MethodGet, "/assets/*", r.get)
	r.add(http.MethodDelete, "/assets/*", r.unload)
	return r
}

// ServeHTTP implements http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Routes returns the registered routes in registration order
func (r *Router) Routes() []RouteInfo {
	return append([]RouteInfo(nil), r.routes...)
}

func (r *Router) add(method, pattern string, handler http.HandlerFunc) {
	r.mux.Method(method, pattern, handler)
	r.routes = append(r.routes, RouteInfo{Method: method, Pattern: pattern})
}
