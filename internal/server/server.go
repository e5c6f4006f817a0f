// Package server assembles the DRIMS HTTP API: common middleware, identity
// and audit, and the master data, stock, relief and audit routers under
// /api/v1.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/pkg/audit"
	"github.com/odpem/drims/pkg/authz"
	"github.com/odpem/drims/pkg/cache"
	"github.com/odpem/drims/pkg/features"
	"github.com/odpem/drims/pkg/masterdata"
	"github.com/odpem/drims/pkg/relief"
	"github.com/odpem/drims/pkg/stock"
)

// APIPrefix is where every DRIMS API route is mounted.
const APIPrefix = "/api/v1"

// Config holds the server settings.
type Config struct {
	Auth               authz.Config
	Audit              audit.Config
	Cache              cache.Config
	CORSAllowedOrigins []string
	// Location decides calendar dates stamped on requests, packages and
	// transfers. Nil means UTC.
	Location *time.Location
}

// Server is the DRIMS HTTP API.
type Server struct {
	db         *gorm.DB
	cfg        Config
	registry   *features.Registry
	authorizer authz.Authorizer
	identity   func(http.Handler) http.Handler
	auditStore *audit.Store
	refCache   *cache.Manager
	logger     *slog.Logger
	startedAt  time.Time
}

// New creates a Server over gdb. A nil registry means the embedded feature
// table.
func New(gdb *gorm.DB, registry *features.Registry, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = features.Default()
	}
	identity, err := authz.NewIdentityMiddleware(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("identity middleware: %w", err)
	}
	return &Server{
		db:         gdb,
		cfg:        cfg,
		registry:   registry,
		authorizer: authz.NewFeatureAuthorizer(registry),
		identity:   identity,
		auditStore: audit.NewStore(gdb),
		refCache:   cache.NewManager(cfg.Cache, logger),
		logger:     logger,
		startedAt:  time.Now(),
	}, nil
}

// AuditStore returns the store the audit middleware writes to.
func (s *Server) AuditStore() *audit.Store { return s.auditStore }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	origins := s.cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Remote-User", "X-Remote-Roles"},
		ExposedHeaders:   []string{"Link", "X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.identity)
	if s.cfg.Audit.Enabled {
		r.Use(audit.Middleware(s.auditStore, s.cfg.Audit, s.logger))
		s.logger.Info("audit middleware enabled",
			"logDenied", s.cfg.Audit.LogDenied,
			"retentionDays", s.cfg.Audit.RetentionDays)
	}

	r.Get("/healthz", s.healthHandler)
	r.Get("/livez", s.healthHandler)
	r.Get("/readyz", s.readyHandler)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authz.RequireIdentity)
			r.Get("/me", s.meHandler)
			r.Get("/me/features", s.featuresHandler)
			r.Get("/me/dashboard", s.dashboardHandler)
			r.Get("/me/navigation", s.navigationHandler)
			r.Get("/statuses/{type}", statusesHandler)
		})
		r.Mount("/audit", audit.Router(s.auditStore, s.authorizer, s.logger))
		s.mountDomain(r)
	})

	return r
}

// mountDomain serves the workflow APIs. Each package router owns a set of
// top-level resources under /api/v1.
func (s *Server) mountDomain(r chi.Router) {
	mountAt(r, masterdata.Router(masterdata.NewStore(s.db), s.authorizer, s.refCache, s.logger),
		"/events", "/items", "/warehouses", "/agencies", "/custodians", "/donors", "/reference")
	mountAt(r, stock.Router(stock.NewStore(s.db).InLocation(s.cfg.Location), s.authorizer, s.logger),
		"/inventory", "/transfers")
	mountAt(r, relief.Router(relief.NewStore(s.db).InLocation(s.cfg.Location), s.authorizer, s.logger),
		"/requests", "/eligibility", "/packages")
}

// mountAt routes every path under each prefix to h without stripping the
// prefix, since h registers its resources by full path.
func mountAt(r chi.Router, h http.Handler, prefixes ...string) {
	for _, p := range prefixes {
		r.Handle(p, h)
		r.Handle(p+"/*", h)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// readyHandler reports whether the database answers.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := map[string]string{"status": "up"}
	ready := true
	if err := db.Ping(r.Context(), s.db); err != nil {
		dbStatus["status"] = "down"
		dbStatus["error"] = err.Error()
		ready = false
	}

	code, overall := http.StatusOK, "ready"
	if !ready {
		code, overall = http.StatusServiceUnavailable, "not_ready"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   overall,
		"database": dbStatus,
	})
}
