package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/internal/onboarding"
	"github.com/mindwell-health/practice-api/internal/patients"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Recorder is the store surface the handler needs.
type Recorder interface {
	Insert(ctx context.Context, patientID string, therapistUserID *string, answers []int, result Result) (*GAD7Record, error)
	ListByPatient(ctx context.Context, patientID string) ([]*GAD7Record, error)
	Latest(ctx context.Context, patientID string) (*GAD7Record, error)
}

// TokenValidator classifies invite tokens for the public submission path.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (onboarding.ValidationResult, error)
}

// PatientLookup scopes therapist submissions to their own patients.
type PatientLookup interface {
	GetByID(ctx context.Context, therapistID, id string) (*patients.Patient, error)
}

// Handler exposes GAD-7 scoring over HTTP.
type Handler struct {
	store     Recorder
	validator TokenValidator
	patients  PatientLookup
	logger    *logging.Logger
}

func NewHandler(store Recorder, validator TokenValidator, lookup PatientLookup, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, validator: validator, patients: lookup, logger: logger}
}

// SubmitRequest is the therapist-facing submission body.
type SubmitRequest struct {
	PatientID string `json:"patientId"`
	Answers   []int  `json:"answers"`
}

// Submit handles POST /assessments/gad7 requests from a therapist session.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.PatientID) == "" {
		writeError(w, http.StatusBadRequest, "patientId and answers are required")
		return
	}

	if _, err := h.patients.GetByID(r.Context(), claims.UserID(), req.PatientID); err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, patients.ErrPatientNotFound.Error())
			return
		}
		h.logger.Error("gad7 patient lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	therapistID := claims.UserID()
	h.score(w, r, req.PatientID, &therapistID, req.Answers)
}

// TokenSubmitRequest is the onboarding-flow submission body.
type TokenSubmitRequest struct {
	Token   string `json:"token"`
	Answers []int  `json:"answers"`
}

// SubmitWithToken handles POST /onboarding/gad7 requests. The invite token
// must classify as valid; expired or consumed tokens are rejected.
func (h *Handler) SubmitWithToken(w http.ResponseWriter, r *http.Request) {
	var req TokenSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token and answers are required")
		return
	}

	result, err := h.validator.Validate(r.Context(), req.Token)
	if err != nil {
		h.logger.Error("gad7 token validation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	switch result.Outcome {
	case onboarding.OutcomeValid:
	case onboarding.OutcomeExpired, onboarding.OutcomeUsed:
		writeError(w, http.StatusGone, string(result.Outcome))
		return
	default:
		writeError(w, http.StatusNotFound, string(onboarding.OutcomeInvalid))
		return
	}

	h.score(w, r, result.PatientID, nil, req.Answers)
}

func (h *Handler) score(w http.ResponseWriter, r *http.Request, patientID string, therapistUserID *string, answers []int) {
	result, err := ScoreGAD7(answers)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.store.Insert(r.Context(), patientID, therapistUserID, answers, result)
	if err != nil {
		h.logger.Error("gad7 insert failed", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":       true,
		"id":       record.ID,
		"total":    record.Total,
		"severity": record.Severity,
	})
}

// ListForPatient handles GET /patients/{patientID}/assessments requests.
func (h *Handler) ListForPatient(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	patientID := chi.URLParam(r, "patientID")
	if _, err := h.patients.GetByID(r.Context(), claims.UserID(), patientID); err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, patients.ErrPatientNotFound.Error())
			return
		}
		h.logger.Error("gad7 patient lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	records, err := h.store.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("gad7 list failed", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if records == nil {
		records = []*GAD7Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": records})
}

// LatestForPatient handles GET /patients/{patientID}/assessments/latest requests.
func (h *Handler) LatestForPatient(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	patientID := chi.URLParam(r, "patientID")
	if _, err := h.patients.GetByID(r.Context(), claims.UserID(), patientID); err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, patients.ErrPatientNotFound.Error())
			return
		}
		h.logger.Error("gad7 patient lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	record, err := h.store.Latest(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			writeError(w, http.StatusNotFound, ErrResultNotFound.Error())
			return
		}
		h.logger.Error("gad7 latest failed", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
