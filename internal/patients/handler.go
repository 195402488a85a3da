package patients

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Handler handles HTTP requests for patient records.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new patients handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// CreatePatient handles POST /patients requests.
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.TherapistID = claims.UserID()

	patient, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrMissingTherapist):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create patient", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create patient")
		}
		return
	}

	h.logger.Info("patient created", "id", patient.ID, "therapist_id", patient.TherapistID)
	writeJSON(w, http.StatusCreated, patient)
}

// ListPatients handles GET /patients requests.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	list, err := h.repo.ListByTherapist(r.Context(), claims.UserID())
	if err != nil {
		h.logger.Error("failed to list patients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list patients")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"patients": list,
		"count":    len(list),
	})
}

// GetPatient handles GET /patients/{patientID} requests.
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id := chi.URLParam(r, "patientID")
	patient, err := h.repo.GetByID(r.Context(), claims.UserID(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, ErrPatientNotFound.Error())
			return
		}
		h.logger.Error("failed to get patient", "error", err, "patient_id", id)
		writeError(w, http.StatusInternalServerError, "failed to get patient")
		return
	}

	writeJSON(w, http.StatusOK, patient)
}

// LinkAccountRequest is the body for post-signup account linking. The email
// is optional and only confirms the session claim; the session email is the
// one that gets linked.
type LinkAccountRequest struct {
	Email string `json:"email"`
}

// LinkAccount handles POST /patients/link requests. The session identity is
// bound to the patient record matching the session email. A body email that
// disagrees with the session claim is rejected, never linked.
func (h *Handler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}
	if claims.Email == "" {
		writeError(w, http.StatusBadRequest, "session has no email claim")
		return
	}

	var req LinkAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email != "" && !strings.EqualFold(req.Email, claims.Email) {
		writeError(w, http.StatusForbidden, "email_mismatch")
		return
	}

	result, err := h.repo.Link(r.Context(), claims.Email, claims.UserID())
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientNotFound):
			writeError(w, http.StatusNotFound, ErrPatientNotFound.Error())
		case errors.Is(err, ErrLinkConflict):
			writeError(w, http.StatusConflict, "identity conflict")
		default:
			h.logger.Error("failed to link account", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to link account")
		}
		return
	}

	h.logger.Info("account linked", "patient_id", result.Patient.ID, "already_linked", result.AlreadyLinked)
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"patient":        result.Patient,
		"already_linked": result.AlreadyLinked,
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
