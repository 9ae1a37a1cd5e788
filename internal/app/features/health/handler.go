package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/donorhub/internal/app/system/httpjson"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// MongoPinger pings the primary of client.
func MongoPinger(client *mongo.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Database Pinger
	Sessions Pinger
	Log      *zap.Logger
}

// NewHandler constructs a health Handler. sessions may be nil when the
// session records live in the database.
func NewHandler(database, sessions Pinger, logger *zap.Logger) *Handler {
	return &Handler{Database: database, Sessions: sessions, Log: logger}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Sessions string `json:"sessions"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "sessions":"connected" }
//
// When either backend fails: 503 and
//
//	{ "status":"error", "database":"disconnected", "sessions":"connected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected", Sessions: "connected"}

	if err := h.Database.Ping(ctx); err != nil {
		h.Log.Error("health-check: database ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
	}
	if h.Sessions != nil {
		if err := h.Sessions.Ping(ctx); err != nil {
			h.Log.Error("health-check: session store ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Sessions = "disconnected"
			if resp.Message == "" {
				resp.Message = "Session store unavailable"
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	httpjson.Write(w, status, resp)
}
