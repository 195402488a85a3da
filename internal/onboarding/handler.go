package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mindwell-health/practice-api/internal/consent"
	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/internal/patients"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Handler exposes the onboarding flow over HTTP.
type Handler struct {
	orchestrator *Orchestrator
	logger       *logging.Logger
}

func NewHandler(orchestrator *Orchestrator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orchestrator: orchestrator, logger: logger}
}

// IssueInvite handles POST /patients/{patientID}/invite requests.
func (h *Handler) IssueInvite(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	patientID := chi.URLParam(r, "patientID")
	token, err := h.orchestrator.Issue(r.Context(), claims.UserID(), patientID)
	if err != nil {
		h.writeFlowError(w, err, "issue invite")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"ok":         true,
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	})
}

// ValidateRequest is the body of a token validation call.
type ValidateRequest struct {
	Token string `json:"token"`
}

// ValidateToken handles POST /onboarding/validate requests.
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	result, patient, err := h.orchestrator.Validate(r.Context(), req.Token)
	if err != nil {
		h.writeFlowError(w, err, "validate token")
		return
	}
	if err := outcomeError(result.Outcome); err != nil {
		h.writeFlowError(w, err, "validate token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"patientId":    patient.ID,
		"needsConsent": patient.ConsentRequired,
		"mustChange":   patient.MustChangePassword,
	})
}

// ConsentRequest is the body of a consent submission.
type ConsentRequest struct {
	Token    string             `json:"token"`
	Consents []consent.Decision `json:"consents"`
	Version  string             `json:"version"`
	Language string             `json:"language"`
}

// SubmitConsent handles POST /onboarding/consent requests. The caller proves
// who they are with either an invite token or a session.
func (h *Handler) SubmitConsent(w http.ResponseWriter, r *http.Request) {
	var req ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meta := consent.Meta{
		Version:   req.Version,
		Language:  req.Language,
		UserAgent: r.UserAgent(),
	}

	var err error
	switch {
	case strings.TrimSpace(req.Token) != "":
		err = h.orchestrator.SubmitConsent(r.Context(), req.Token, req.Consents, meta)
	default:
		claims, ok := middleware.SessionClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "token or session required")
			return
		}
		err = h.orchestrator.SubmitConsentForUser(r.Context(), claims.UserID(), req.Consents, meta)
	}
	if err != nil {
		h.writeFlowError(w, err, "submit consent")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PasswordRequest is the body of the password step.
type PasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SetPassword handles POST /onboarding/password requests. This is the single
// point where the invite token is consumed.
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	patient, err := h.orchestrator.SetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		h.writeFlowError(w, err, "set password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"patientId":  patient.ID,
		"mustChange": false,
	})
}

// LinkAccount handles POST /onboarding/link requests. Requires a session; the
// identity is bound to the patient record matching the session email.
func (h *Handler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}
	if claims.Email == "" {
		writeError(w, http.StatusBadRequest, "session has no email")
		return
	}

	result, err := h.orchestrator.Link(r.Context(), claims.Email, claims.UserID())
	if err != nil {
		h.writeFlowError(w, err, "link account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"patientId":      result.Patient.ID,
		"already_linked": result.AlreadyLinked,
		"step":           result.Patient.OnboardingStatus,
	})
}

// Status handles GET /onboarding/status requests.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if strings.TrimSpace(token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	status, err := h.orchestrator.Status(r.Context(), token)
	if err != nil {
		h.writeFlowError(w, err, "status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// writeFlowError maps flow errors onto the HTTP taxonomy: 400 malformed,
// 404 unknown token/record, 409 identity conflict, 410 expired/used token,
// 500 otherwise.
func (h *Handler) writeFlowError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrTokenNotFound):
		writeError(w, http.StatusNotFound, string(OutcomeInvalid))
	case errors.Is(err, ErrTokenExpired):
		writeError(w, http.StatusGone, string(OutcomeExpired))
	case errors.Is(err, ErrTokenUsed):
		writeError(w, http.StatusGone, string(OutcomeUsed))
	case errors.Is(err, ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, consent.ErrPrivacyRequired),
		errors.Is(err, consent.ErrNoDecisions),
		errors.Is(err, consent.ErrUnknownType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, patients.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, patients.ErrPatientNotFound.Error())
	case errors.Is(err, patients.ErrLinkConflict):
		writeError(w, http.StatusConflict, "identity conflict")
	default:
		h.logger.Error("onboarding "+op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
