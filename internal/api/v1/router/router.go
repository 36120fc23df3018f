package router

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"ducksnap/docs"
	"ducksnap/internal/api/v1/handler"
	"ducksnap/internal/config"
	"ducksnap/internal/metrics"
	"ducksnap/internal/middleware"
	"ducksnap/internal/repository"
	"ducksnap/internal/service"
	"ducksnap/internal/web"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

// Dependencies are the external clients the router wires into services.
type Dependencies struct {
	DB       *sql.DB
	PayPal   service.PayPalClient
	Snapchat service.SnapchatClient
	Queue    service.TaskEnqueuer
	// Cache backs OAuth state, webhook idempotency and sync cooldowns.
	Cache interface {
		service.OAuthStateStore
		service.EventDeduper
		service.CooldownStore
	}
	Exports service.ExportStorage
	// Ping reports backing-service health for /healthz.
	Ping func(r *http.Request) error
}

// New builds the HTTP handler: the JSON API under /api, metrics, docs,
// health and the single page app. Background housekeeping stops with ctx.
func New(ctx context.Context, cfg *config.Config, deps Dependencies, logger zerolog.Logger) http.Handler {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepo(deps.DB)
	subRepo := repository.NewSubscriptionRepo(deps.DB)
	analysisRepo := repository.NewAnalysisRepo(deps.DB)
	ticketRepo := repository.NewTicketRepo(deps.DB)
	insightRepo := repository.NewInsightRepo(deps.DB)
	snapRepo := repository.NewSnapchatRepo(deps.DB)

	billing := service.BillingConfig{PublicBaseURL: cfg.PublicBaseURL, PayPalPlans: cfg.PayPalPlans()}

	userSvc := service.NewUserService(userRepo, logger)
	subSvc := service.NewSubscriptionService(userRepo, subRepo, deps.PayPal, billing, logger)
	webhookSvc := service.NewPayPalWebhookService(subSvc, deps.PayPal, deps.Cache, cfg.PayPalWebhookID, logger)
	analysisSvc := service.NewAnalysisService(analysisRepo, snapRepo, logger)
	dashboardSvc := service.NewDashboardService(userRepo, snapRepo, analysisRepo, insightRepo, logger)
	supportSvc := service.NewSupportService(userRepo, ticketRepo, logger)
	connectSvc := service.NewConnectService(userRepo, snapRepo, deps.Snapchat, deps.Cache, deps.Cache, deps.Queue, logger)
	reportSvc := service.NewReportService(userRepo, snapRepo, insightRepo, deps.Exports, logger)
	contentSvc := service.NewContentService()

	session := handler.SessionConfig{Secret: cfg.JWTSecret, TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}

	authMw := middleware.AuthMiddleware(cfg.JWTSecret, logger)
	premium := func(prompt string) func(http.Handler) http.Handler {
		return middleware.RequirePremium(userSvc, prompt, logger)
	}
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRatePerMin, 2, logger)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				generateLimiter.Cleanup(time.Hour)
			}
		}
	}()

	apiMux := http.NewServeMux()
	handler.NewAuthHandler(userSvc, validate, session, logger).RegisterRoutes(apiMux, authMw)
	handler.NewSubscriptionHandler(subSvc, validate, logger).RegisterRoutes(apiMux, authMw)
	handler.NewPayPalHandler(webhookSvc, validate, logger).RegisterRoutes(apiMux)
	handler.NewAnalysisHandler(analysisSvc, logger).RegisterRoutes(apiMux, authMw, premium, generateLimiter.Handler)
	handler.NewDashboardHandler(dashboardSvc, logger).RegisterRoutes(apiMux, authMw)
	handler.NewSupportHandler(supportSvc, contentSvc, logger).RegisterRoutes(apiMux, authMw)
	handler.NewSettingsHandler(userSvc, subSvc, connectSvc, validate, logger).RegisterRoutes(apiMux, authMw)
	handler.NewConnectHandler(connectSvc, logger).RegisterRoutes(apiMux, authMw)
	handler.NewReportHandler(reportSvc, validate, logger).RegisterRoutes(apiMux, authMw, premium)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ping != nil {
			if err := deps.Ping(r); err != nil {
				logger.Warn().Err(err).Msg("Health check failed")
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	})
	mux.Handle("/", web.Handler(cfg.StaticDir, cfg.JWTSecret, logger))

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return metrics.InstrumentHandler(middleware.LoggerMiddleware(logger)(c.Handler(mux)), routeLabel(apiMux))
}

// routeLabel names a request by the API pattern or page route it matches.
// Everything else, static assets and unknown paths included, is OtherRoute.
func routeLabel(apiMux *http.ServeMux) metrics.RouteFunc {
	return func(r *http.Request) string {
		p := r.URL.Path
		switch p {
		case "/healthz", "/swagger/doc.json":
			return p
		}
		if rest, ok := strings.CutPrefix(p, "/api"); ok && strings.HasPrefix(rest, "/") {
			r2 := new(http.Request)
			*r2 = *r
			u := *r.URL
			u.Path, u.RawPath = rest, ""
			r2.URL = &u
			_, pattern := apiMux.Handler(r2)
			if pattern == "" {
				return metrics.OtherRoute
			}
			// "GET /auth/me" keeps only the path; the method is its own label.
			if i := strings.IndexByte(pattern, ' '); i >= 0 {
				pattern = pattern[i+1:]
			}
			return "/api" + pattern
		}
		if _, ok := web.Lookup(p); ok {
			if p != "/" {
				p = strings.TrimSuffix(p, "/")
			}
			return p
		}
		return metrics.OtherRoute
	}
}

func allowedOrigins(cfg *config.Config) []string {
	origins := []string{strings.TrimRight(cfg.PublicBaseURL, "/")}
	if cfg.IsDevelopment() {
		origins = append(origins, "http://localhost:5173", "http://localhost:3000")
	}
	return origins
}
