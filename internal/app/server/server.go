package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kpitrack/internal/db"
	"kpitrack/internal/domain/audit"
	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/department"
	"kpitrack/internal/domain/employee"
	"kpitrack/internal/domain/entry"
	"kpitrack/internal/domain/notifications"
	"kpitrack/internal/domain/stats"
	"kpitrack/internal/domain/template"
	"kpitrack/internal/platform/config"
	"kpitrack/internal/platform/metrics"
	"kpitrack/internal/transport/http/api"
	adminhandler "kpitrack/internal/transport/http/handlers/admin"
	authhandler "kpitrack/internal/transport/http/handlers/auth"
	departmenthandler "kpitrack/internal/transport/http/handlers/department"
	employeehandler "kpitrack/internal/transport/http/handlers/employee"
	entryhandler "kpitrack/internal/transport/http/handlers/entry"
	notificationshandler "kpitrack/internal/transport/http/handlers/notifications"
	statshandler "kpitrack/internal/transport/http/handlers/stats"
	templatehandler "kpitrack/internal/transport/http/handlers/template"
	"kpitrack/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()

	auditSvc := audit.New(pool)
	notifySvc := notifications.New(notifications.NewStore(pool))
	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	departmentSvc := department.NewService(department.NewStore(pool))
	employeeSvc := employee.NewService(employee.NewStore(pool))
	templateSvc := template.NewService(template.NewStore(pool), employeeSvc)
	entrySvc := entry.NewService(entry.NewStore(pool), templateSvc)
	statsSvc := stats.NewService(stats.NewStore(pool), cfg.TopSlicePercent, cfg.ReportDir)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authSvc))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireRole(middleware.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, auditSvc).RegisterRoutes(r)
		adminhandler.NewHandler(authSvc, auditSvc).RegisterRoutes(r)
		departmenthandler.NewHandler(departmentSvc, auditSvc).RegisterRoutes(r)
		employeehandler.NewHandler(employeeSvc, auditSvc).RegisterRoutes(r)
		templatehandler.NewHandler(templateSvc, authSvc, notifySvc, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)

		entryHandler := entryhandler.NewHandler(entrySvc, employeeSvc, authSvc, notifySvc, auditSvc, collector)
		statsHandler := statshandler.NewHandler(statsSvc, collector)
		r.Route("/entries", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			statsHandler.Register(r)
			entryHandler.Register(r)
		})
	})

	log.Printf("kpitrack server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
