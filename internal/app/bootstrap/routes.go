// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/edusphere/console/internal/app/features/authgoogle"
	dashboardfeature "github.com/edusphere/console/internal/app/features/dashboard"
	errorsfeature "github.com/edusphere/console/internal/app/features/errors"
	healthfeature "github.com/edusphere/console/internal/app/features/health"
	loginfeature "github.com/edusphere/console/internal/app/features/login"
	logoutfeature "github.com/edusphere/console/internal/app/features/logout"
	passwordresetfeature "github.com/edusphere/console/internal/app/features/passwordreset"
	setupfeature "github.com/edusphere/console/internal/app/features/setup"
	stafffeature "github.com/edusphere/console/internal/app/features/staff"
	"github.com/edusphere/console/internal/app/system/auditlog"
	"github.com/edusphere/console/internal/app/system/auth"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the console.
//
// WAFFLE calls this after configuration, backend wiring, and Startup have
// completed. The router applies three global layers before any feature:
// CSRF protection, the session-user loader (which runs the per-request
// profile fetch through the refresh-aware client), and the post-auth
// redirect policy.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, deps.API, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(deps.AuditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Staff: appCfg.AuditLogStaff,
	})

	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()

	csrfMiddleware := csrf.Protect(
		[]byte(appCfg.SessionKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	)
	r.Use(csrfMiddleware)

	// Loads the current user into context on every request; a dead token
	// pair is cleared here and the request continues anonymously.
	r.Use(sessionMgr.LoadSessionUser)

	// Forced navigation for live sessions: onboarding first, no camping on
	// /login or /setup afterwards.
	r.Use(sessionMgr.RedirectPolicy)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(appCfg.APIBaseURL, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, errLog, auditLog, googleEnabled, appCfg.RegisterSplitName, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(sessionMgr, errLog, auditLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	resetHandler := passwordresetfeature.NewHandler(sessionMgr, errLog, logger)
	r.Mount("/password-reset", passwordresetfeature.Routes(resetHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Onboarding wizard
	setupHandler := setupfeature.NewHandler(sessionMgr, errLog, auditLog, logger)
	r.Mount("/setup", setupfeature.Routes(setupHandler, sessionMgr))

	// Staff management
	staffHandler := stafffeature.NewHandler(sessionMgr, errLog, auditLog, logger)
	r.Mount("/staff", stafffeature.Routes(staffHandler, sessionMgr))

	// Dashboard and module placeholders, guarded, at the root
	dashboardHandler := dashboardfeature.NewHandler(sessionMgr, logger)
	r.Group(func(pr chi.Router) {
		pr.Use(sessionMgr.RequireSignedIn)
		pr.Mount("/", dashboardfeature.Routes(dashboardHandler))
	})

	return r, nil
}
