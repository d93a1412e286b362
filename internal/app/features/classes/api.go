// internal/app/features/classes/api.go
package classes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/dalemusser/quickclass/internal/app/system/gateway"
	"github.com/dalemusser/quickclass/internal/app/system/importfmt"
	"github.com/dalemusser/quickclass/internal/app/system/timeouts"
	"github.com/dalemusser/quickclass/internal/domain/models"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, env gateway.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, gateway.Envelope{Success: false, Data: msg})
}

// writeGatewayError answers a failed gateway call. Rejections carry the
// backend's reason; everything else is a generic server failure.
func (h *Handler) writeGatewayError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var rej *gateway.RejectedError
	if errors.As(err, &rej) {
		h.Log.Info("class api rejected", zap.String("op", op), zap.String("reason", rej.Message))
		writeFailure(w, http.StatusBadRequest, rej.Message)
		return
	}
	h.Log.Error("class api failed", zap.String("op", op), zap.String("path", r.URL.Path), zap.Error(err))
	writeFailure(w, http.StatusInternalServerError, "Something went wrong.")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 2*importfmt.MaxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/classes                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := actorContext(r, timeouts.Short())
	defer cancel()

	entries, err := h.Gateway.LoadInitial(ctx)
	if err != nil {
		h.writeGatewayError(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, gateway.Envelope{
		Success: true,
		Data:    gateway.ClassesPayload{Classes: models.CloneEntries(entries)},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/classes                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var in gateway.ClassesPayload
	if err := decodeBody(w, r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	ctx, cancel := actorContext(r, timeouts.Medium())
	defer cancel()

	canonical, err := h.Gateway.Save(ctx, in.Classes)
	if err != nil {
		h.writeGatewayError(w, r, "save", err)
		return
	}
	writeJSON(w, http.StatusOK, gateway.Envelope{
		Success: true,
		Data:    gateway.ClassesPayload{Classes: models.CloneEntries(canonical)},
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/classes/import                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var in gateway.ImportRequest
	if err := decodeBody(w, r, &in); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	ctx, cancel := actorContext(r, timeouts.Batch())
	defer cancel()

	res, err := h.Gateway.BatchImport(ctx, in.Text, classstore.ParseImportMode(in.Mode))
	if err != nil {
		h.writeGatewayError(w, r, "import", err)
		return
	}
	res.Classes = models.CloneEntries(res.Classes)
	writeJSON(w, http.StatusOK, gateway.Envelope{Success: true, Data: res})
}
