// Package httpapi is the HTTP surface: route wiring, middleware and the
// authorization gate in front of protected handlers.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"pixelplates.org/internal/auth"
	"pixelplates.org/internal/generate"
	"pixelplates.org/internal/obs"
	"pixelplates.org/internal/script"
)

// ReadyProbe checks dependencies for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config collects the collaborators the API serves.
type Config struct {
	Auth       *auth.Service
	Scripts    script.Store
	Generator  generate.Service
	Prompts    *generate.Library
	ReadyProbe ReadyProbe
	Version    string
	StaticDir  string
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	scripts    script.Store
	generator  generate.Service
	prompts    *generate.Library
	readyProbe ReadyProbe
	version    string
	staticDir  string
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       cfg.Auth,
		scripts:    cfg.Scripts,
		generator:  cfg.Generator,
		prompts:    cfg.Prompts,
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
		staticDir:  cfg.StaticDir,
	}

	// account + script API
	a.mux.HandleFunc("/api/register", a.handleRegister)
	a.mux.HandleFunc("/api/login", a.handleLogin)
	a.mux.HandleFunc("/api/generate", a.handleGenerate)
	a.mux.HandleFunc("/api/history", a.handleHistory)
	a.mux.HandleFunc("/api/prompts", a.handlePrompts)

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// front-end pages and assets
	a.mux.HandleFunc("/", a.handleIndex)
	a.mux.HandleFunc("/login", a.handleLoginPage)
	a.mux.Handle("/static/", a.staticHandler())

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, 20, 10)
	h = MaxBodyBytes(h, 8<<20)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
