// Package kernel assembles the storefront HTTP handler: global middleware,
// the REST API and the auxiliary endpoints.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	gqlhttp "github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	mw "github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/tracing"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// HealthFunc reports whether a backing service is reachable.
type HealthFunc func(ctx context.Context) error

// Options are the collaborators of the HTTP kernel. Only Services is
// required. A zero RateLimit takes RATE_LIMIT from config; a negative one
// disables limiting. A nil TrustedProxies takes TRUSTED_PROXIES from config.
type Options struct {
	Services *services.Set
	Hub      *ws.Hub
	Schema   *graphql.Schema
	Health   HealthFunc

	ServiceName    string
	RateLimit      int
	TrustedProxies []string
}

// HTTPKernel owns the router with everything registered on it.
type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router.
//
// Global middleware, outermost first:
//  1. Prometheus metrics, for total latency
//  2. Recovery, before anything can panic
//  3. Request ID, before anything logs
//  4. Tracing span
//  5. Client address from trusted proxies
//  6. Logger
//  7. CORS
//  8. Rate limiter
//  9. Trailing slash normalisation, so "/products/" and "/products" match
//  10. Authentication, resolving the bearer token into an identity
func NewHTTPKernel(opts Options) *HTTPKernel {
	if opts.ServiceName == "" {
		opts.ServiceName = config.ServiceName()
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = config.RateLimit()
	}
	if opts.TrustedProxies == nil {
		opts.TrustedProxies = config.TrustedProxies()
	}
	proxies, err := mw.ParseProxies(opts.TrustedProxies)
	if err != nil {
		logger.Warn("kernel: ignoring trusted proxies", "error", err)
	}

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(mw.Recovery)
	r.Use(reqid.Middleware())
	r.Use(tracing.Middleware(opts.ServiceName))
	r.Use(mw.RealIP(proxies))
	r.Use(mw.Logger)
	r.Use(mw.CORS(mw.DefaultCORSOptions()))
	r.Use(mw.RateLimit(opts.RateLimit, time.Minute))
	r.Use(middleware.StripSlashes)
	r.Use(mw.Authenticate)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { response.MethodNotAllowed(w) })

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", healthz(opts.Health))

	if opts.Schema != nil {
		gql := gqlhttp.Handler(*opts.Schema)
		r.Get("/graphql", "graphql.query", gql)
		r.Post("/graphql", "graphql.execute", gql)
	}
	if opts.Hub != nil {
		r.Get("/ws/orders", "ws.orders", ws.Handler(opts.Hub))
	}

	routes.RegisterAPI(r, opts.Services)
	return &HTTPKernel{router: r}
}

// Handler returns the root http.Handler.
func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table, e.g. for route:list.
func (k *HTTPKernel) Router() *router.Router { return k.router }

func healthz(check HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"database": "ok"}
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				status["database"] = err.Error()
				response.Write(w, http.StatusServiceUnavailable, response.Envelope{
					Status:  http.StatusServiceUnavailable,
					Message: "unhealthy",
					Data:    status,
				})
				return
			}
		}
		response.Success(w, status)
	}
}
