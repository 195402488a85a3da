package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mindwell-health/practice-api/internal/ai"
	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// NoteStore is the repository surface the handler needs.
type NoteStore interface {
	Create(ctx context.Context, req *CreateNoteRequest) (*Note, error)
	GetByID(ctx context.Context, therapistID, id string) (*Note, error)
	ListByPatient(ctx context.Context, therapistID, patientID string) ([]*Note, error)
	SaveSummary(ctx context.Context, id, summary, source string) error
}

// Summarizer produces a note summary with its provenance.
type Summarizer interface {
	Summarize(ctx context.Context, body string) (ai.Summary, error)
}

// Handler exposes clinical notes over HTTP. All routes require a therapist
// session.
type Handler struct {
	repo       NoteStore
	summarizer Summarizer
	logger     *logging.Logger
}

func NewHandler(repo NoteStore, summarizer Summarizer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, summarizer: summarizer, logger: logger}
}

// CreateNote handles POST /notes requests.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.TherapistID = claims.UserID()
	// Mounted both at /notes and /patients/{patientID}/notes; the URL form wins.
	if patientID := chi.URLParam(r, "patientID"); patientID != "" {
		req.PatientID = patientID
	}

	note, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientIDRequired), errors.Is(err, ErrBodyRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("create note failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// ListForPatient handles GET /patients/{patientID}/notes requests.
func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	patientID := chi.URLParam(r, "patientID")
	list, err := h.repo.ListByPatient(r.Context(), claims.UserID(), patientID)
	if err != nil {
		h.logger.Error("list notes failed", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []*Note{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notes": list})
}

// GetNote handles GET /notes/{noteID} requests.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	note, err := h.repo.GetByID(r.Context(), claims.UserID(), chi.URLParam(r, "noteID"))
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			writeError(w, http.StatusNotFound, "note_not_found")
			return
		}
		h.logger.Error("get note failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// SummarizeNote handles POST /notes/{noteID}/summarize requests. Summarizing
// again overwrites the previous summary.
func (h *Handler) SummarizeNote(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if h.summarizer == nil {
		writeError(w, http.StatusServiceUnavailable, "summarization not configured")
		return
	}

	noteID := chi.URLParam(r, "noteID")
	note, err := h.repo.GetByID(r.Context(), claims.UserID(), noteID)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			writeError(w, http.StatusNotFound, "note_not_found")
			return
		}
		h.logger.Error("get note failed", "error", err, "note_id", noteID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), note.Body)
	if err != nil {
		h.logger.Error("summarize failed", "error", err, "note_id", noteID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.repo.SaveSummary(r.Context(), noteID, summary.Text, summary.Source); err != nil {
		h.logger.Error("save summary failed", "error", err, "note_id", noteID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"summary":        summary.Text,
		"summary_source": summary.Source,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
