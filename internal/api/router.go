package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/internal/config"
	"github.com/yegors/spotten/internal/metrics"
	"github.com/yegors/spotten/internal/websocket"
	"github.com/yegors/spotten/pkg/logger"
)

// calculationTimeout bounds a single calculation request
const calculationTimeout = 10 * time.Second

// Router wires the HTTP routes
type Router struct {
	handler     *Handler
	config      *config.Config
	logger      *logger.Logger
	wsServer    *websocket.Server
	rateLimiter *RateLimiter
}

// NewRouter creates a new router. wsServer may be nil when the preview is disabled.
func NewRouter(briefingService *briefing.Service, settings SettingsStore, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server, version string) *Router {
	r := &Router{
		handler:  NewHandler(briefingService, settings, cfg, log, wsServer, version),
		config:   cfg,
		logger:   log.Named("router"),
		wsServer: wsServer,
	}
	if cfg.RateLimit.Enabled {
		r.rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
	}
	return r
}

// Routes returns the HTTP handler
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(r.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	allowedOrigins := r.config.Server.CORSAllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Handle("/metrics", metrics.Handler())

	router.Route("/api", func(api chi.Router) {
		api.Get("/health", r.handler.GetHealth)
		api.Get("/config", r.handler.GetConfig)

		api.Get("/dropzones", r.handler.GetDropzones)
		api.Get("/dropzones/{id}", r.handler.GetDropzone)

		api.Group(func(calc chi.Router) {
			if r.rateLimiter != nil {
				calc.Use(r.rateLimiter.Middleware)
			}
			calc.Use(middleware.Timeout(calculationTimeout))

			calc.Post("/spot", r.handler.CalculateSpot)
			calc.Post("/spot/metric", r.handler.CalculateMetric)
			calc.Post("/spot/trace", r.handler.CalculateTrace)
		})

		api.Get("/settings", r.handler.ListSettings)
		api.Get("/settings/{profile}", r.handler.GetSettings)
		api.Put("/settings/{profile}", r.handler.PutSettings)
		api.Delete("/settings/{profile}", r.handler.DeleteSettings)
	})

	if r.wsServer != nil {
		router.Get("/ws", r.wsServer.HandleConnection)
	}

	if dir := r.config.Server.StaticFilesDir; dir != "" {
		router.Handle("/*", NewStaticFileHandler(dir, r.logger))
	}

	return router
}

// requestLogger logs each request through the application logger
func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		r.logger.Debug("HTTP request",
			logger.String("method", req.Method),
			logger.String("path", req.URL.Path),
			logger.Int("status", ww.Status()),
			logger.Int("bytes", ww.BytesWritten()),
			logger.Duration("duration", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(req.Context())))
	})
}
