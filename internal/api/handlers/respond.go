package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcript"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}

// writeServiceError maps a transcript.Service failure to its response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := transcript.KindOf(err)
	msg := err.Error()
	var e *transcript.Error
	if errors.As(err, &e) {
		msg = e.Message
	}

	status := http.StatusInternalServerError
	switch kind {
	case transcript.KindValidation:
		status = http.StatusBadRequest
	case transcript.KindNotFound:
		status = http.StatusNotFound
	default:
		slog.ErrorContext(r.Context(), "transcript request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeError(w, status, string(kind), msg)
}

// NotFound and MethodNotAllowed replace chi's plain-text defaults so every
// failure carries the same body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, string(transcript.KindNotFound), "route not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}
