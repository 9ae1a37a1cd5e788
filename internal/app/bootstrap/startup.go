// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// donorhub creates the bootstrap admin account when one is configured and
// starts the expired-session sweeper for stores that need one.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	gate := newGate(appCfg, deps, newAuditLogger(appCfg, deps, logger), logger)
	if err := ensureAdmin(ctx, gate, appCfg.BootstrapAdminUsername, appCfg.BootstrapAdminPassword, logger); err != nil {
		return err
	}

	if deps.SessionCleanup != nil {
		deps.SessionCleanup.Start()
	}
	return nil
}

// ensureAdmin creates username unless it already exists.
func ensureAdmin(ctx context.Context, gate *auth.Gate, username, password string, logger *zap.Logger) error {
	if username == "" {
		logger.Info("no bootstrap admin configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	_, err := gate.CreateUser(ctx, username, password)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrAlreadyExists):
		logger.Info("bootstrap admin already exists", zap.String("username", username))
		return nil
	default:
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(deps.AuditSink, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
}

func newGate(appCfg AppConfig, deps DBDeps, audit *auditlog.Logger, logger *zap.Logger) *auth.Gate {
	return auth.NewGate(deps.AdminUsers, deps.Sessions, audit, auth.GateConfig{
		SessionTTL: appCfg.SessionTTL,
		BcryptCost: appCfg.BcryptCost,
	}, logger)
}
