// internal/app/features/updates/handler.go
package updates

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/gateway"
	"github.com/dalemusser/quickclass/internal/app/system/releasefeed"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler shows whether a newer release is published. It never installs
// anything.
type Handler struct {
	Feed *releasefeed.Feed
	Log  *zap.Logger
}

func NewHandler(feed *releasefeed.Feed, logger *zap.Logger) *Handler {
	return &Handler{Feed: feed, Log: logger}
}

type updatesData struct {
	viewdata.BaseVM
	Enabled bool
	Check   releasefeed.Check
	Error   string
}

func (h *Handler) check(ctx context.Context) (releasefeed.Check, string) {
	if !h.Feed.Enabled() {
		return releasefeed.Check{}, ""
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	c, err := h.Feed.Check(ctx)
	switch {
	case err == nil:
		return c, ""
	case errors.Is(err, releasefeed.ErrNoRelease):
		return c, "No release has been published yet."
	default:
		return c, "Could not reach the release server. Try again later."
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /updates                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpdates(w http.ResponseWriter, r *http.Request) {
	c, msg := h.check(r.Context())
	if c.Installed == "" && h.Feed != nil {
		c.Installed = h.Feed.Installed()
	}
	templates.Render(w, r, "updates", updatesData{
		BaseVM:  viewdata.NewBaseVM(r, "Updates", "/"),
		Enabled: h.Feed.Enabled(),
		Check:   c,
		Error:   msg,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /updates/refresh                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.Feed.Enabled() {
		h.Feed.Invalidate()
		h.Log.Info("release cache cleared")
	}
	http.Redirect(w, r, "/updates", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/updates                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

type checkJSON struct {
	Installed       string    `json:"installed"`
	Latest          string    `json:"latest,omitempty"`
	UpdateAvailable bool      `json:"update_available"`
	PackageURL      string    `json:"package_url,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at,omitempty"`
	Changelog       string    `json:"changelog,omitempty"`
}

func (h *Handler) ServeCheckJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !h.Feed.Enabled() {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(gateway.Envelope{Success: false, Data: "Release checks are not configured."})
		return
	}
	c, msg := h.check(r.Context())
	if msg != "" {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(gateway.Envelope{Success: false, Data: msg})
		return
	}
	_ = json.NewEncoder(w).Encode(gateway.Envelope{Success: true, Data: checkJSON{
		Installed:       c.Installed,
		Latest:          c.Latest,
		UpdateAvailable: c.UpdateAvailable,
		PackageURL:      c.PackageURL,
		ReleaseURL:      c.ReleaseURL,
		PublishedAt:     c.PublishedAt,
		Changelog:       string(c.Changelog),
	}})
}
