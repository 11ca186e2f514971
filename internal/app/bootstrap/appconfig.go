// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, log
// level, env); AppConfig is everything specific to the console: where the
// EduSphere backend lives, session cookie settings, Google OAuth
// credentials, audit sink configuration, and behavior flags.
type AppConfig struct {
	// EduSphere backend
	APIBaseURL string // e.g. "https://api.edusphere.example.com"

	// Session management
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL of this console, used for the OAuth callback
	BaseURL string

	// Google OAuth (sign-in button hidden when unset)
	GoogleClientID     string
	GoogleClientSecret string

	// Audit logging modes: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string
	AuditLogStaff string

	// Optional MongoDB sink for audit events. Blank disables the db sink;
	// "all"/"db" modes then degrade to log-only.
	MongoURI      string
	MongoDatabase string

	// Registration sends name as first_name/last_name when true, or the
	// whole display name as first_name when false.
	RegisterSplitName bool

	// Backend call deadlines
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
