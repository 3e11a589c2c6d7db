package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/transcript"
)

const maxTranscriptBody = 1 << 20

type TranscriptHandler struct {
	svc *transcript.Service
}

func NewTranscriptHandler(svc *transcript.Service) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

func (h *TranscriptHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transcript.CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTranscriptBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(transcript.KindValidation), "invalid request body")
		return
	}

	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	transcripts, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transcripts)
}

func (h *TranscriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "transcript deleted successfully",
		"id":      id.String(),
	})
}
