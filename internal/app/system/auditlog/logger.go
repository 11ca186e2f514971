// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/edusphere/console/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout,
	// password reset, setup). Values: "all" (MongoDB + zap), "db", "log",
	// "off".
	Auth string
	// Staff controls logging for staff admin events (invite, permission
	// change, delete). Same values.
	Staff string
}

// Logger records audit events to structured logs and, when a store is
// configured, to MongoDB. A nil *Logger is a no-op, and a nil store
// degrades "all"/"db" to log-only; the console runs fine without Mongo.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger. store may be nil.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// clientIP extracts the client IP, honoring reverse-proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.ActorEmail != "" {
		fields = append(fields, zap.String("actor_email", event.ActorEmail))
	}
	if event.ActorID != 0 {
		fields = append(fields, zap.Int64("actor_id", event.ActorID))
	}
	if event.TargetID != 0 {
		fields = append(fields, zap.Int64("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to configuration.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryStaff:
		setting = l.config.Staff
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" || l.store == nil {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

/*── authentication events ──────────────────────────────────────────────────*/

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID int64, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLoginSuccess,
		ActorID:    userID,
		ActorEmail: email,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	})
}

func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		ActorEmail:    email,
		IP:            clientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
	})
}

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID int64, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventRegistered,
		ActorID:    userID,
		ActorEmail: email,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	})
}

func (l *Logger) GoogleLogin(ctx context.Context, r *http.Request, userID int64, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventGoogleLogin,
		ActorID:    userID,
		ActorEmail: email,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	})
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID int64, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventLogout,
		ActorID:    userID,
		ActorEmail: email,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	})
}

func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, audit.Event{
		Category:   audit.CategoryAuth,
		EventType:  audit.EventPasswordResetReq,
		ActorEmail: email,
		IP:         clientIP(r),
		UserAgent:  r.UserAgent(),
		Success:    true,
	})
}

func (l *Logger) SetupCompleted(ctx context.Context, r *http.Request, userID int64, orgName string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSetupCompleted,
		ActorID:   userID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"organization": orgName},
	})
}

/*── staff admin events ─────────────────────────────────────────────────────*/

func (l *Logger) StaffInvited(ctx context.Context, r *http.Request, actorID int64, invitedEmail, role string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryStaff,
		EventType: audit.EventStaffInvited,
		ActorID:   actorID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": invitedEmail, "role": role},
	})
}

func (l *Logger) StaffPermissionsUpdated(ctx context.Context, r *http.Request, actorID, targetID int64, flag string, value bool) {
	detail := "off"
	if value {
		detail = "on"
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryStaff,
		EventType: audit.EventStaffPermissionsUpdated,
		ActorID:   actorID,
		TargetID:  targetID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"flag": flag, "value": detail},
	})
}

func (l *Logger) StaffDeleted(ctx context.Context, r *http.Request, actorID, targetID int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryStaff,
		EventType: audit.EventStaffDeleted,
		ActorID:   actorID,
		TargetID:  targetID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}
