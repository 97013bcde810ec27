// 文件路径: internal/api/router.go
// 模块说明: 这是 internal 模块里的 router 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creamcroissant/bakehub/internal/api/handler"
	"github.com/creamcroissant/bakehub/internal/api/middleware"
	"github.com/creamcroissant/bakehub/internal/config"
	"github.com/creamcroissant/bakehub/internal/security"
	"github.com/creamcroissant/bakehub/internal/service"
	"github.com/creamcroissant/bakehub/internal/support/i18n"
)

var healthPaths = []string{"/health", "/healthz", "/_internal/ready", "/metrics"}

// Services 是路由依赖的全部服务。
type Services struct {
	Auth      service.AuthService
	Register  service.RegistrationService
	Showcase  service.ShowcaseService
	Bakers    service.BakerService
	Customers service.CustomerService
	Orders    service.OrderService
	Gallery   service.GalleryService
	Files     service.FileService
	Messages  service.MessageService
	Entities  service.EntityService

	AdminUsers    service.AdminUserService
	AdminCatalog  service.AdminCatalogService
	AdminSettings service.AdminSettingsService
	AdminSystem   service.AdminSystemService

	I18n *i18n.Manager
}

// RouterOption 允许在创建 Router 时附加功能。
type RouterOption func(*routerOptions)

type routerOptions struct {
	http       config.HTTPConfig
	security   config.SecurityConfig
	limiter    *security.RateLimiter
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
}

// WithHTTPConfig sets body limit and CORS origins.
func WithHTTPConfig(cfg config.HTTPConfig) RouterOption {
	return func(ro *routerOptions) { ro.http = cfg }
}

// WithRateLimit enables the global per-IP limit backed by limiter.
func WithRateLimit(cfg config.SecurityConfig, limiter *security.RateLimiter) RouterOption {
	return func(ro *routerOptions) {
		ro.security = cfg
		ro.limiter = limiter
	}
}

// WithMetricsRegistry swaps the global Prometheus registry, mainly for tests.
func WithMetricsRegistry(reg *prometheus.Registry) RouterOption {
	return func(ro *routerOptions) {
		ro.registerer = reg
		ro.gatherer = reg
	}
}

func (s Services) validate() {
	required := map[string]any{
		"AuthService":         s.Auth,
		"RegistrationService": s.Register,
		"ShowcaseService":     s.Showcase,
		"BakerService":        s.Bakers,
		"CustomerService":     s.Customers,
		"OrderService":        s.Orders,
		"GalleryService":      s.Gallery,
		"FileService":         s.Files,
		"MessageService":      s.Messages,
		"EntityService":       s.Entities,
		"AdminUserService":    s.AdminUsers,
		"AdminCatalogService": s.AdminCatalog,
		"AdminSettings":       s.AdminSettings,
		"AdminSystemService":  s.AdminSystem,
		"I18n Manager":        s.I18n,
	}
	for name, svc := range required {
		if isNil(svc) {
			panic("router requires " + name)
		}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	if m, ok := v.(*i18n.Manager); ok {
		return m == nil
	}
	return false
}

// NewRouter wires the HTTP surface.
func NewRouter(logger *slog.Logger, services Services, metricsCfg config.MetricsConfig, opts ...RouterOption) http.Handler {
	var options routerOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	services.validate()
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Initialize Prometheus metrics
	mCfg := middleware.DefaultMetricsConfig()
	if metricsCfg.Namespace != "" {
		mCfg.Namespace = metricsCfg.Namespace
	}
	if metricsCfg.Subsystem != "" {
		mCfg.Subsystem = metricsCfg.Subsystem
	}
	if len(metricsCfg.Buckets) > 0 {
		mCfg.Buckets = metricsCfg.Buckets
	}
	mCfg.Registerer = options.registerer

	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)
	if metricsCfg.Enabled {
		r.Use(middleware.NewMetrics(mCfg).Handler)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.CORS(middleware.CORSConfig{AllowedOrigins: options.http.CORSOrigins}),
		middleware.BodyLimit(options.http.BodyLimit),
	}
	if options.security.RateLimitEnabled && options.limiter != nil {
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:   options.limiter,
			Limit:     options.security.RateLimit,
			Window:    options.security.RateWindow,
			SkipPaths: healthPaths,
			Logger:    logger,
		}))
	}
	middlewares = append(middlewares,
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     healthPaths,
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5, "application/json", "text/plain"),
		middleware.I18n(services.I18n),
	)
	r.Use(middlewares...)

	health := func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	r.Get("/healthz", health)
	// Alias for Docker health check
	r.Get("/health", health)
	r.Get("/_internal/ready", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	// Prometheus metrics endpoint
	if metricsCfg.Enabled {
		var metricsHandler http.Handler = promhttp.Handler()
		if options.gatherer != nil {
			metricsHandler = promhttp.HandlerFor(options.gatherer, promhttp.HandlerOpts{})
		}
		// If token is set, guard the metrics endpoint
		if metricsCfg.Token != "" {
			r.With(middleware.MetricsGuard(metricsCfg.Token)).Handle("/metrics", metricsHandler)
		} else {
			r.Handle("/metrics", metricsHandler)
		}
	}

	registerAPIRoutes(r, services)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		handler.RespondErrorI18n(req.Context(), w, http.StatusNotFound, "error.not_found", services.I18n)
	})

	return r
}

func registerAPIRoutes(root chi.Router, services Services) {
	root.Route("/api/v1", func(v1 chi.Router) {
		registerPassportRoutes(v1, services)
		registerPublicRoutes(v1, services)
		registerBakerRoutes(v1, services)
		registerAdminRoutes(v1, services)
	})
}

func registerPassportRoutes(v1 chi.Router, services Services) {
	passport := handler.NewPassportHandler(services.Auth, services.Register, services.I18n)
	v1.Route("/passport/auth", func(auth chi.Router) {
		auth.Post("/register", passport.Register)
		auth.Post("/login", passport.Login)
		auth.Post("/refresh", passport.Refresh)
		auth.Post("/logout", passport.Logout)
		auth.With(middleware.UserGuard(services.Auth, services.I18n)).Get("/me", passport.Me)
	})
}

func registerPublicRoutes(v1 chi.Router, services Services) {
	public := handler.NewPublicHandler(services.Showcase, services.Files, services.I18n)
	v1.Route("/public", func(pub chi.Router) {
		pub.Get("/bakers", public.ListBakers)
		pub.Get("/bakers/{slug}", public.Storefront)
		pub.Get("/bakers/{slug}/gallery", public.Gallery)
		pub.Post("/bakers/{slug}/inquiries", public.SubmitInquiry)
		pub.Get("/themes", public.Themes)
		pub.Get("/files/{id:[0-9]+}", public.File)
		pub.Get("/files/{id:[0-9]+}/thumbnail", public.Thumbnail)
		pub.Get("/i18n/{lang}", public.Translations)
	})
}

func registerBakerRoutes(v1 chi.Router, services Services) {
	baker := handler.NewBakerHandler(handler.BakerServices{
		Bakers:    services.Bakers,
		Customers: services.Customers,
		Orders:    services.Orders,
		Gallery:   services.Gallery,
		Files:     services.Files,
		Messages:  services.Messages,
		Entities:  services.Entities,
	}, services.I18n)

	v1.Route("/baker", func(b chi.Router) {
		b.Use(middleware.UserGuard(services.Auth, services.I18n))
		b.Use(middleware.BakerGuard(services.I18n))

		b.Get("/profile", baker.Profile)
		b.Put("/profile", baker.UpdateProfile)
		b.Put("/profile/publish", baker.Publish)
		b.Get("/stats", baker.Stats)

		b.Get("/customers", baker.ListCustomers)
		b.Post("/customers", baker.CreateCustomer)
		b.Get("/customers/{id:[0-9]+}", baker.GetCustomer)
		b.Put("/customers/{id:[0-9]+}", baker.UpdateCustomer)
		b.Delete("/customers/{id:[0-9]+}", baker.DeleteCustomer)

		b.Get("/orders", baker.ListOrders)
		b.Post("/orders", baker.CreateOrder)
		b.Get("/orders/{id:[0-9]+}", baker.GetOrder)
		b.Put("/orders/{id:[0-9]+}", baker.UpdateOrder)
		b.Post("/orders/{id:[0-9]+}/status", baker.TransitionOrder)
		b.Delete("/orders/{id:[0-9]+}", baker.DeleteOrder)

		b.Get("/gallery", baker.ListGallery)
		b.Post("/gallery", baker.CreateGalleryItem)
		b.Get("/gallery/{id:[0-9]+}", baker.GetGalleryItem)
		b.Put("/gallery/{id:[0-9]+}", baker.UpdateGalleryItem)
		b.Delete("/gallery/{id:[0-9]+}", baker.DeleteGalleryItem)

		b.Get("/files", baker.ListFiles)
		b.Post("/files", baker.UploadFile)
		b.Get("/files/{id:[0-9]+}", baker.DownloadFile)
		b.Delete("/files/{id:[0-9]+}", baker.DeleteFile)

		b.Get("/messages", baker.ListMessages)
		b.Get("/messages/{id:[0-9]+}", baker.GetMessage)
		b.Post("/messages/{id:[0-9]+}/read", baker.MarkRead)
		b.Delete("/messages/{id:[0-9]+}", baker.DeleteMessage)

		b.Get("/entities", baker.Entities)
		b.Get("/entities/{entity}", baker.ListEntity)
		b.Get("/entities/{entity}/schema", baker.DescribeEntity)
	})
}

func registerAdminRoutes(v1 chi.Router, services Services) {
	admin := handler.NewAdminHandler(handler.AdminServices{
		Users:    services.AdminUsers,
		Catalog:  services.AdminCatalog,
		Settings: services.AdminSettings,
		System:   services.AdminSystem,
	}, services.I18n)

	v1.Route("/admin", func(a chi.Router) {
		a.Use(middleware.UserGuard(services.Auth, services.I18n))
		a.Use(middleware.AdminGuard(services.I18n))

		a.Get("/users", admin.ListUsers)
		a.Post("/users", admin.CreateUser)
		a.Get("/users/{id:[0-9]+}", admin.GetUser)
		a.Put("/users/{id:[0-9]+}/status", admin.SetUserStatus)
		a.Put("/users/{id:[0-9]+}/password", admin.ResetPassword)

		a.Get("/bakers", admin.ListBakers)
		a.Put("/bakers/{id:[0-9]+}/publish", admin.SetBakerPublished)

		a.Get("/themes", admin.ListThemes)
		a.Post("/themes", admin.CreateTheme)
		a.Put("/themes/{id:[0-9]+}", admin.UpdateTheme)
		a.Delete("/themes/{id:[0-9]+}", admin.DeleteTheme)

		a.Get("/settings", admin.ListSettings)
		a.Get("/settings/{key}", admin.GetSetting)
		a.Put("/settings/{key}", admin.SetSetting)

		a.Get("/system/status", admin.SystemStatus)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}
