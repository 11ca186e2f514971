// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the EduSphere console.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: api_base_url, session_name, etc.
//   - Environment variables: EDUSPHERE_API_BASE_URL, EDUSPHERE_SESSION_NAME, etc.
//   - Command-line flags: --api_base_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "api_base_url", Default: "http://localhost:8000", Desc: "EduSphere backend base URL"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "edusphere-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of this console (OAuth callback)"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "log", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_staff", Default: "log", Desc: "Staff admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Optional audit sink
	{Name: "mongo_uri", Default: "", Desc: "MongoDB URI for the audit sink (blank disables it)"},
	{Name: "mongo_database", Default: "edusphere_console", Desc: "MongoDB database name for audit events"},

	// Registration behavior
	{Name: "register_split_name", Default: true, Desc: "Split display name into first/last at registration"},

	// Backend call deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for per-request profile fetches"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for interactive backend calls"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for slow backend calls"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, EDUSPHERE_* for app), and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EDUSPHERE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		APIBaseURL: strings.TrimRight(appValues.String("api_base_url"), "/"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		BaseURL: appValues.String("base_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogStaff: appValues.String("audit_log_staff"),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		RegisterSplitName: appValues.Bool("register_split_name"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	// Without a Mongo sink, db-backed audit modes degrade to log-only.
	if appCfg.MongoURI == "" {
		if appCfg.AuditLogAuth == "all" || appCfg.AuditLogAuth == "db" {
			logger.Info("no mongo_uri configured; audit_log_auth downgraded to 'log'")
			appCfg.AuditLogAuth = "log"
		}
		if appCfg.AuditLogStaff == "all" || appCfg.AuditLogStaff == "db" {
			logger.Info("no mongo_uri configured; audit_log_staff downgraded to 'log'")
			appCfg.AuditLogStaff = "log"
		}
	}

	return coreCfg, appCfg, nil
}

// validAuditModes are the accepted values for the audit_log_* keys.
var validAuditModes = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation before any
// backend is dialed.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	u, err := url.Parse(appCfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api_base_url %q is not an absolute URL", appCfg.APIBaseURL)
	}

	if !validAuditModes[appCfg.AuditLogAuth] {
		return fmt.Errorf("audit_log_auth %q: want all, db, log, or off", appCfg.AuditLogAuth)
	}
	if !validAuditModes[appCfg.AuditLogStaff] {
		return fmt.Errorf("audit_log_staff %q: want all, db, log, or off", appCfg.AuditLogStaff)
	}

	if appCfg.MongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	if coreCfg.Env == "prod" && strings.HasPrefix(appCfg.SessionKey, "dev-only") {
		return fmt.Errorf("session_key still has the development default; set a strong key")
	}

	return nil
}
