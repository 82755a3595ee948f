// Package api provides HTTP API handlers for the webcam-wave detector.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/BernieSumption/webcam-wave/internal/app"
)

// ParamsHandler exposes the live detection parameters: GET returns the
// current set, PUT validates, applies and persists a new one.
type ParamsHandler struct {
	app *app.App
}

// NewParamsHandler creates a new ParamsHandler for the given app.
func NewParamsHandler(a *app.App) *ParamsHandler {
	return &ParamsHandler{app: a}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ServeHTTP implements the http.Handler interface.
func (h *ParamsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Params())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update handles PUT /api/params. The request body is a full parameter
// set; partial updates start from the current values.
func (h *ParamsHandler) update(w http.ResponseWriter, r *http.Request) {
	params := h.app.Params()
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !params.Valid() {
		writeError(w, http.StatusBadRequest, "Parameters out of range")
		return
	}

	if err := h.app.SetParams(params); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply parameters")
		return
	}

	writeJSON(w, http.StatusOK, h.app.Params())
}
