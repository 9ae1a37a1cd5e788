// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	donorsfeature "github.com/dalemusser/donorhub/internal/app/features/donors"
	errorsfeature "github.com/dalemusser/donorhub/internal/app/features/errors"
	exportfeature "github.com/dalemusser/donorhub/internal/app/features/export"
	healthfeature "github.com/dalemusser/donorhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/donorhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/donorhub/internal/app/features/logout"
	userinfofeature "github.com/dalemusser/donorhub/internal/app/features/userinfo"
	"github.com/dalemusser/donorhub/internal/app/registry"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Every route answers JSON; the donor
// routes require a signed-in admin.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionTTL, appCfg.SessionSecure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	audit := newAuditLogger(appCfg, deps, logger)
	gate := newGate(appCfg, deps, audit, logger)

	// LoadSessionUser resolves the cookie's token against the session store
	// on every request, so logout and expiry take effect immediately.
	sessionMgr.SetResolver(gate.Authenticate)

	// A registry per handler keeps repeated BuildHandler calls (tests) from
	// colliding on the default registerer.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var limiter *ratelimit.LoginLimiter
	if appCfg.LoginRateLimit > 0 {
		window := appCfg.LoginRateWindow
		if window <= 0 {
			window = 15 * time.Minute
		}
		limiter = ratelimit.NewLoginLimiter(appCfg.LoginRateLimit, window)
	}

	donorRegistry := registry.New(deps.Donors, audit, m, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.DatabasePinger, deps.SessionPinger, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Authentication
	loginHandler := loginfeature.NewHandler(gate, sessionMgr, limiter, audit, m, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(gate, sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	r.Mount("/userinfo", userinfofeature.Routes(userinfofeature.NewHandler()))

	// Donor registry
	donorsHandler := donorsfeature.NewHandler(donorRegistry, errLog, logger)
	exportHandler := exportfeature.NewHandler(donorRegistry, audit, errLog, appCfg.ExportTitle, logger)
	r.Mount("/donors", donorsfeature.Routes(donorsHandler, exportHandler, sessionMgr))

	return r, nil
}
