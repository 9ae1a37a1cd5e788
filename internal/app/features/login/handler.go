// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/donorhub/internal/app/features/errors"
	"github.com/dalemusser/donorhub/internal/app/store/audit"
	"github.com/dalemusser/donorhub/internal/app/system/apperr"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/authutil"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/app/system/ratelimit"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Gate       *auth.Gate
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter // nil disables throttling
	AuditLog   *auditlog.Logger
	Metrics    *metrics.Metrics
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(gate *auth.Gate, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter,
	audit *auditlog.Logger, m *metrics.Metrics, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gate:       gate,
		SessionMgr: sm,
		Limiter:    limiter,
		AuditLog:   audit,
		Metrics:    m,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username"`
}

// HandleLoginPost handles POST /login with {username, password}.
//
//	200 {success:true, message, username} + session cookie
//	400 {success:false, message, fieldErrors}   missing fields / bad body
//	401 {success:false, message}                 unknown user or wrong password
//	429 {success:false, message}                 too many attempts
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	fields, err := httpjson.ReadFields(r)
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	username := authutil.NormalizeUsername(fields["username"])

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, username); !ok {
			h.AuditLog.LoginFailed(r.Context(), auditlog.ActorFromRequest(r, username),
				audit.EventLoginFailedRateLimit, "rate limited")
			h.Metrics.Login(metrics.OutcomeLimited)
			httpjson.Fail(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sess, err := h.Gate.Login(ctx, auth.Credentials{
		Username:  username,
		Password:  fields["password"],
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if ve, ok := apperr.AsValidation(err); ok {
			h.Metrics.Login(metrics.OutcomeInvalid)
			httpjson.FailFields(w, http.StatusBadRequest, ve.First(), ve.Fields)
			return
		}
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			h.Metrics.Login(metrics.OutcomeInvalid)
			httpjson.Fail(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.Metrics.Login(metrics.OutcomeError)
		h.ErrLog.ServerError(w, r, err, "We could not sign you in. Please try again.")
		return
	}

	if err := h.SessionMgr.Issue(w, r, sess.Token); err != nil {
		h.Metrics.Login(metrics.OutcomeError)
		h.ErrLog.ServerError(w, r, err, "We could not sign you in. Please try again.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(r, username)
	}
	h.Metrics.Login(metrics.OutcomeOK)

	h.Log.Info("admin signed in", zap.String("username", sess.Username))
	httpjson.Write(w, http.StatusOK, loginResponse{Success: true, Message: "Signed in.", Username: sess.Username})
}
