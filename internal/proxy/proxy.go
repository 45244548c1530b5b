// Package proxy fronts the prediction service with a permissive-CORS
// reverse proxy so browser dashboards can call it directly.
package proxy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Proxy forwards prediction and analytics traffic to the upstream
// service. It does not retry: a failed upstream call is reported to the
// caller as 502 and the caller decides what to do next.
type Proxy struct {
	router   *chi.Mux
	port     int
	upstream *url.URL
	logger   *slog.Logger
}

func New(port int, upstreamURL string, logger *slog.Logger) (*Proxy, error) {
	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse upstream URL %q: %w", upstreamURL, err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("upstream URL %q must include scheme and host", upstreamURL)
	}

	p := &Proxy{
		router:   chi.NewRouter(),
		port:     port,
		upstream: upstream,
		logger:   logger,
	}
	p.routes()
	return p, nil
}

func (p *Proxy) routes() {
	p.router.Use(middleware.Recoverer)
	p.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	forward := p.forwarder()
	p.router.Handle("/predict", forward)
	p.router.Handle("/health", forward)
	p.router.Handle("/api/*", forward)
}

func (p *Proxy) forwarder() http.Handler {
	rp := httputil.NewSingleHostReverseProxy(p.upstream)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.logger.Error("upstream request failed",
			"path", r.URL.Path,
			"upstream", p.upstream.Host,
			"error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{
			"error_code": "upstream_unavailable",
			"message":    "prediction service is unreachable",
		})
	}
	return rp
}

func (p *Proxy) Start() error {
	addr := fmt.Sprintf(":%d", p.port)
	p.logger.Info("starting routing proxy", "addr", addr, "upstream", p.upstream.String())
	return http.ListenAndServe(addr, p.router)
}

// Handler exposes the router for tests and embedding.
func (p *Proxy) Handler() http.Handler {
	return p.router
}
