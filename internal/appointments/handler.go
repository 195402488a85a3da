package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Scheduler is the repository surface the handler needs.
type Scheduler interface {
	Create(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error)
	GetByID(ctx context.Context, therapistID, id string) (*Appointment, error)
	ListByPatient(ctx context.Context, therapistID, patientID string) ([]*Appointment, error)
	Cancel(ctx context.Context, therapistID, id string) error
}

// Handler exposes appointment booking over HTTP. All routes require a
// therapist session except the reminder run, which is key-protected at the
// router.
type Handler struct {
	repo   Scheduler
	runner *ReminderRunner
	logger *logging.Logger
}

func NewHandler(repo Scheduler, runner *ReminderRunner, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, runner: runner, logger: logger}
}

// CreateAppointment handles POST /appointments requests.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.TherapistID = claims.UserID()

	appointment, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientIDRequired),
			errors.Is(err, ErrTimesRequired),
			errors.Is(err, ErrEndBeforeStart):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("create appointment failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, appointment)
}

// ListForPatient handles GET /patients/{patientID}/appointments requests.
func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	patientID := chi.URLParam(r, "patientID")
	appointments, err := h.repo.ListByPatient(r.Context(), claims.UserID(), patientID)
	if err != nil {
		h.logger.Error("list appointments failed", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if appointments == nil {
		appointments = []*Appointment{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"appointments": appointments})
}

// CancelAppointment handles DELETE /appointments/{appointmentID} requests.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id := chi.URLParam(r, "appointmentID")
	if err := h.repo.Cancel(r.Context(), claims.UserID(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment_not_found")
			return
		}
		h.logger.Error("cancel appointment failed", "error", err, "appointment_id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// RunReminders handles POST /appointments/reminders/run requests from the
// external scheduler.
func (h *Handler) RunReminders(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.logger.Error("reminder run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
