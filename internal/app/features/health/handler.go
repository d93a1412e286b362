package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// SessionCounter reports how many class list edit sessions are open.
type SessionCounter interface {
	Len() int
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client   *mongo.Client
	Sessions SessionCounter
	Version  string
	Log      *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
// sessions may be nil.
func NewHandler(client *mongo.Client, sessions SessionCounter, version string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Sessions: sessions,
		Version:  version,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	Version      string `json:"version,omitempty"`
	EditSessions *int   `json:"edit_sessions,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "version":"1.4.0", "edit_sessions":2 }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Version:  h.Version,
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Sessions != nil {
		n := h.Sessions.Len()
		resp.EditSessions = &n
	}

	_ = json.NewEncoder(w).Encode(resp)
}
