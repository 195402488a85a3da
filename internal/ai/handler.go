package ai

import (
	"encoding/json"
	"net/http"

	"github.com/mindwell-health/practice-api/pkg/logging"
)

// 25 MB, the OpenAI audio upload ceiling.
const maxAudioUploadBytes = 25 << 20

// TranscriptionHandler exposes audio transcription over HTTP.
type TranscriptionHandler struct {
	transcriber *Transcriber
	logger      *logging.Logger
}

func NewTranscriptionHandler(transcriber *Transcriber, logger *logging.Logger) *TranscriptionHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TranscriptionHandler{transcriber: transcriber, logger: logger}
}

// Transcribe handles POST /transcriptions requests. The audio arrives as a
// multipart upload under the "audio" field.
func (h *TranscriptionHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioUploadBytes)
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart audio upload required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	text, err := h.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("transcription failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
