package editor

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/quickclass/internal/app/system/gateway"
)

func writeJSON(w http.ResponseWriter, status int, ok bool, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(gateway.Envelope{Success: ok, Data: data})
}
