package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lakshya-git-hub/speech-to-text-app/internal/audio"
)

// multipart framing allowance on top of the audio size limit
const multipartOverhead = 1 << 20

type UploadHandler struct {
	svc      *audio.Service
	maxBytes int64
}

func NewUploadHandler(svc *audio.Service, maxBytes int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxBytes: maxBytes}
}

type uploadResponse struct {
	Message    string  `json:"message"`
	FilePath   string  `json:"filePath"`
	FileName   string  `json:"fileName"`
	SizeBytes  int64   `json:"sizeBytes"`
	Transcript string  `json:"transcript,omitempty"`
	Language   string  `json:"language"`
	Detected   string  `json:"detectedLanguage,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	TaskID     string  `json:"taskId,omitempty"`
}

// Upload accepts a multipart form with the audio file in the "audio" field
// and optional "language" and "async" fields.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "validation", audio.ErrTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "validation", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", audio.ErrEmptyFile.Error())
		return
	}
	defer file.Close()

	async, _ := strconv.ParseBool(r.FormValue("async"))

	res, err := h.svc.Upload(r.Context(), audio.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
		Language:    r.FormValue("language"),
		Async:       async,
	})
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	resp := uploadResponse{
		Message:    "audio uploaded successfully",
		FilePath:   res.Upload.FilePath,
		FileName:   res.Upload.FileName,
		SizeBytes:  res.Upload.SizeBytes,
		Transcript: res.Transcript,
		Language:   res.Language,
		Detected:   res.Detected,
		Duration:   res.Duration,
		TaskID:     res.TaskID,
	}

	if res.TaskID != "" {
		resp.Message = "audio uploaded, transcription scheduled"
		writeJSON(w, http.StatusAccepted, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, audio.ErrEmptyFile), errors.Is(err, audio.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, audio.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "validation", err.Error())
	case errors.Is(err, audio.ErrAsyncUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	case errors.Is(err, audio.ErrTranscription):
		writeError(w, http.StatusBadGateway, "transcription", audio.ErrTranscription.Error())
	default:
		writeServiceError(w, r, err)
	}
}
