// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	Gate       *auth.Gate
	SessionMgr *auth.SessionManager
}

func NewHandler(gate *auth.Gate, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		Gate:       gate,
		SessionMgr: sessionMgr,
	}
}

// HandleLogout handles POST /logout. It always expires the cookie and
// answers 200, whether or not a session existed.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if tok := h.SessionMgr.Token(r); tok != "" {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if err := h.Gate.Logout(ctx, tok); err != nil {
			h.Log.Warn("logout: delete session record", zap.Error(err))
		}
	}

	if err := h.SessionMgr.Clear(w, r); err != nil {
		h.Log.Error("logout: clear session cookie", zap.Error(err))
	}

	httpjson.OK(w, http.StatusOK, "Signed out.")
}
