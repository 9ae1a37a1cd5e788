// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration. Each category takes
// "all" (db + zap), "db", "log" (zap only) or "off".
type Config struct {
	Auth  string
	Admin string
}

// Sink persists audit events. *audit.Store satisfies it; it is nil when the
// active backend has no audit collection.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Actor identifies who performed an action and from where.
type Actor struct {
	Username  string
	IP        string
	UserAgent string
}

// ActorFromRequest builds an Actor for username from the request's client data.
func ActorFromRequest(r *http.Request, username string) Actor {
	return Actor{Username: username, IP: ratelimit.ClientIP(r), UserAgent: r.UserAgent()}
}

// Logger writes audit events to a Sink and to zap.
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil.
func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
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

// Log records an audit event according to the category's setting.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, a Actor) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		Actor:     a.Username,
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Success:   true,
	})
}

// LoginFailed records a rejected login. eventType distinguishes the cause,
// which is never shown to the caller.
func (l *Logger) LoginFailed(ctx context.Context, a Actor, eventType, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		Actor:         a.Username,
		IP:            a.IP,
		UserAgent:     a.UserAgent,
		Success:       false,
		FailureReason: reason,
	})
}

func (l *Logger) Logout(ctx context.Context, a Actor) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		Actor:     a.Username,
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Success:   true,
	})
}

// --- Admin Events ---

func (l *Logger) AdminCreated(ctx context.Context, username string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminCreated,
		Target:    username,
		Success:   true,
	})
}

func (l *Logger) DonorCreated(ctx context.Context, a Actor, donorID int64) {
	l.donorEvent(ctx, a, audit.EventDonorCreated, donorID, nil)
}

func (l *Logger) DonorUpdated(ctx context.Context, a Actor, donorID int64) {
	l.donorEvent(ctx, a, audit.EventDonorUpdated, donorID, nil)
}

// DonorDeleted is logged for every delete request, including ones for ids
// that no longer exist.
func (l *Logger) DonorDeleted(ctx context.Context, a Actor, donorID int64) {
	l.donorEvent(ctx, a, audit.EventDonorDeleted, donorID, nil)
}

func (l *Logger) DonorsExported(ctx context.Context, a Actor, format string, count int) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventDonorExported,
		Actor:     a.Username,
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Success:   true,
		Details: map[string]string{
			"format": format,
			"rows":   strconv.Itoa(count),
		},
	})
}

func (l *Logger) donorEvent(ctx context.Context, a Actor, eventType string, donorID int64, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		Actor:     a.Username,
		Target:    strconv.FormatInt(donorID, 10),
		IP:        a.IP,
		UserAgent: a.UserAgent,
		Success:   true,
		Details:   details,
	})
}
