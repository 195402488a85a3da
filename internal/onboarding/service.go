package onboarding

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mindwell-health/practice-api/internal/consent"
	"github.com/mindwell-health/practice-api/internal/observability/metrics"
	"github.com/mindwell-health/practice-api/internal/patients"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// TokenRepository is the full token store surface the orchestrator needs.
type TokenRepository interface {
	TokenFinder
	Create(ctx context.Context, patientID, token string, expiresAt time.Time) (*InviteToken, error)
	MarkUsed(ctx context.Context, token string, at time.Time) error
}

// PatientStore is the patient repository surface the orchestrator needs.
type PatientStore interface {
	Get(ctx context.Context, id string) (*patients.Patient, error)
	GetByID(ctx context.Context, therapistID, id string) (*patients.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*patients.Patient, error)
	Link(ctx context.Context, email, userID string) (*patients.LinkResult, error)
	SetOnboardingStatus(ctx context.Context, patientID string, status patients.OnboardingStatus) error
	MarkConsentAccepted(ctx context.Context, patientID string, at time.Time) error
	ClearMustChangePassword(ctx context.Context, patientID string) error
}

// ConsentService records consent submissions.
type ConsentService interface {
	Record(ctx context.Context, patientID string, decisions []consent.Decision, meta consent.Meta) error
	HasAccepted(ctx context.Context, patientID string, t consent.Type) (bool, error)
}

// IdentityService is the managed auth service's admin surface.
type IdentityService interface {
	EnsureUser(ctx context.Context, email, password string) (string, error)
}

// InviteMailer sends the invite email carrying the onboarding link.
type InviteMailer interface {
	SendInvite(ctx context.Context, to, toName, link string) error
}

// Orchestrator sequences the forward-only onboarding flow:
// validate -> consent -> password -> link -> complete. Terminal failures
// (expired/used token, consent denied, link conflict) are only recoverable
// by issuing a brand-new invite.
type Orchestrator struct {
	tokens    TokenRepository
	validator *Validator
	patients  PatientStore
	consents  ConsentService
	identity  IdentityService
	mailer    InviteMailer
	metrics   *metrics.OnboardingMetrics
	logger    *logging.Logger

	tokenTTL time.Duration
	baseURL  string
	now      func() time.Time
}

// OrchestratorConfig wires the orchestrator's collaborators.
type OrchestratorConfig struct {
	Tokens    TokenRepository
	Validator *Validator
	Patients  PatientStore
	Consents  ConsentService
	Identity  IdentityService
	Mailer    InviteMailer
	Metrics   *metrics.OnboardingMetrics
	Logger    *logging.Logger
	TokenTTL  time.Duration
	BaseURL   string
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Tokens == nil {
		panic("onboarding: token repository required")
	}
	if cfg.Patients == nil {
		panic("onboarding: patient store required")
	}
	if cfg.Validator == nil {
		cfg.Validator = NewValidator(cfg.Tokens, DefaultTokenMinLength)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 72 * time.Hour
	}
	return &Orchestrator{
		tokens:    cfg.Tokens,
		validator: cfg.Validator,
		patients:  cfg.Patients,
		consents:  cfg.Consents,
		identity:  cfg.Identity,
		mailer:    cfg.Mailer,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		tokenTTL:  cfg.TokenTTL,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		now:       time.Now,
	}
}

// Issue creates a fresh invite token for a patient owned by the therapist
// and emails the onboarding link. Issuing again invalidates nothing: old
// tokens simply age out.
func (o *Orchestrator) Issue(ctx context.Context, therapistID, patientID string) (*InviteToken, error) {
	patient, err := o.patients.GetByID(ctx, therapistID, patientID)
	if err != nil {
		return nil, err
	}

	value, err := generateToken()
	if err != nil {
		return nil, err
	}

	token, err := o.tokens.Create(ctx, patient.ID, value, o.now().Add(o.tokenTTL))
	if err != nil {
		return nil, err
	}

	if o.mailer != nil {
		link := fmt.Sprintf("%s/onboarding?token=%s", o.baseURL, token.Token)
		if err := o.mailer.SendInvite(ctx, patient.Email, patient.DisplayName, link); err != nil {
			// The token is already persisted; the therapist can resend.
			o.logger.Error("invite email failed", "error", err, "patient_id", patient.ID)
		}
	}

	o.logger.Info("invite issued", "patient_id", patient.ID, "expires_at", token.ExpiresAt)
	return token, nil
}

// Validate classifies a token and, on the first successful validation,
// advances the patient's stored step.
func (o *Orchestrator) Validate(ctx context.Context, token string) (ValidationResult, *patients.Patient, error) {
	defer o.observeStep("validate", time.Now())

	result, err := o.validator.Validate(ctx, token)
	if err != nil {
		return ValidationResult{}, nil, err
	}
	o.metrics.ObserveTokenValidation(string(result.Outcome))

	if result.Outcome != OutcomeValid {
		return result, nil, nil
	}

	patient, err := o.patients.Get(ctx, result.PatientID)
	if err != nil {
		return ValidationResult{}, nil, err
	}
	if patient.OnboardingStatus == patients.StatusInvited {
		if err := o.patients.SetOnboardingStatus(ctx, patient.ID, patients.StatusTokenValidated); err != nil {
			return ValidationResult{}, nil, err
		}
		patient.OnboardingStatus = patients.StatusTokenValidated
	}
	return result, patient, nil
}

// SubmitConsent records consent decisions for the token's patient. The token
// must still be valid; consent does not consume it.
func (o *Orchestrator) SubmitConsent(ctx context.Context, token string, decisions []consent.Decision, meta consent.Meta) error {
	defer o.observeStep("consent", time.Now())

	result, err := o.validator.Validate(ctx, token)
	if err != nil {
		return err
	}
	if err := outcomeError(result.Outcome); err != nil {
		return err
	}
	return o.recordConsent(ctx, result.PatientID, decisions, meta)
}

// SubmitConsentForUser records consent decisions for an authenticated,
// already-linked patient.
func (o *Orchestrator) SubmitConsentForUser(ctx context.Context, userID string, decisions []consent.Decision, meta consent.Meta) error {
	patient, err := o.patients.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return o.recordConsent(ctx, patient.ID, decisions, meta)
}

func (o *Orchestrator) recordConsent(ctx context.Context, patientID string, decisions []consent.Decision, meta consent.Meta) error {
	if err := o.consents.Record(ctx, patientID, decisions, meta); err != nil {
		o.metrics.ObserveConsent("rejected")
		return err
	}
	o.metrics.ObserveConsent("accepted")
	return o.patients.MarkConsentAccepted(ctx, patientID, o.now())
}

// SetPassword consumes the token and sets the patient's password with the
// identity service. Consumption happens first; if a later step fails the
// token stays consumed and a new invite is required (no rollback).
func (o *Orchestrator) SetPassword(ctx context.Context, token, password string) (*patients.Patient, error) {
	defer o.observeStep("password", time.Now())

	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	result, err := o.validator.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := outcomeError(result.Outcome); err != nil {
		return nil, err
	}

	// Consent gates the password step: a patient with no accepted privacy
	// row must never get past consent.
	accepted, err := o.consents.HasAccepted(ctx, result.PatientID, consent.TypePrivacy)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, consent.ErrPrivacyRequired
	}

	patient, err := o.patients.Get(ctx, result.PatientID)
	if err != nil {
		return nil, err
	}

	if err := o.tokens.MarkUsed(ctx, token, o.now()); err != nil {
		return nil, err
	}

	if _, err := o.identity.EnsureUser(ctx, patient.Email, password); err != nil {
		return nil, fmt.Errorf("onboarding: set password: %w", err)
	}

	if err := o.patients.ClearMustChangePassword(ctx, patient.ID); err != nil {
		return nil, err
	}
	patient.MustChangePassword = false
	patient.OnboardingStatus = patients.StatusPasswordSet

	o.logger.Info("onboarding password set", "patient_id", patient.ID)
	return patient, nil
}

// Link binds the authenticated identity to its patient record by email and
// closes the flow when every gate is cleared.
func (o *Orchestrator) Link(ctx context.Context, email, userID string) (*patients.LinkResult, error) {
	defer o.observeStep("link", time.Now())

	result, err := o.patients.Link(ctx, email, userID)
	if err != nil {
		switch err {
		case patients.ErrPatientNotFound:
			o.metrics.ObserveLink("not_found")
		case patients.ErrLinkConflict:
			o.metrics.ObserveLink("conflict")
		default:
			o.metrics.ObserveLink("error")
		}
		return nil, err
	}
	if result.AlreadyLinked {
		o.metrics.ObserveLink("already_linked")
	} else {
		o.metrics.ObserveLink("linked")
	}

	p := result.Patient
	if !p.MustChangePassword && !p.ConsentRequired && p.OnboardingStatus != patients.StatusComplete {
		if err := o.patients.SetOnboardingStatus(ctx, p.ID, patients.StatusComplete); err != nil {
			return nil, err
		}
		p.OnboardingStatus = patients.StatusComplete
	}
	return result, nil
}

// StatusResponse describes the current onboarding step for a token.
type StatusResponse struct {
	Step         string `json:"step"`
	NeedsConsent bool   `json:"needsConsent"`
	MustChange   bool   `json:"mustChange"`
}

// Status reconstructs the current step from the token row and patient flags,
// reconciling the stored status so a page refresh is idempotent. Works for
// consumed tokens too: after the password step the client still polls status
// while the session is being established.
func (o *Orchestrator) Status(ctx context.Context, token string) (*StatusResponse, error) {
	row, err := o.tokens.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if row.Expired(o.now()) {
		return nil, ErrTokenExpired
	}

	patient, err := o.patients.Get(ctx, row.PatientID)
	if err != nil {
		return nil, err
	}

	step := deriveStep(patient, row)
	if patients.OnboardingStatus(step) != patient.OnboardingStatus {
		// Flags win over the stored enum when they disagree.
		if err := o.patients.SetOnboardingStatus(ctx, patient.ID, patients.OnboardingStatus(step)); err != nil {
			return nil, err
		}
	}

	return &StatusResponse{
		Step:         step,
		NeedsConsent: patient.ConsentRequired,
		MustChange:   patient.MustChangePassword,
	}, nil
}

func deriveStep(p *patients.Patient, t *InviteToken) string {
	switch {
	case p.UserID != nil && !p.MustChangePassword && !p.ConsentRequired:
		return string(patients.StatusComplete)
	case p.UserID != nil:
		return string(patients.StatusLinked)
	case !p.MustChangePassword && t.Used():
		return string(patients.StatusPasswordSet)
	case !p.ConsentRequired:
		return string(patients.StatusConsentGiven)
	case p.OnboardingStatus == patients.StatusTokenValidated:
		return string(patients.StatusTokenValidated)
	default:
		return string(patients.StatusInvited)
	}
}

func (o *Orchestrator) observeStep(step string, start time.Time) {
	o.metrics.ObserveStepLatency(step, time.Since(start).Seconds())
}

func outcomeError(outcome Outcome) error {
	switch outcome {
	case OutcomeValid:
		return nil
	case OutcomeExpired:
		return ErrTokenExpired
	case OutcomeUsed:
		return ErrTokenUsed
	default:
		return ErrTokenNotFound
	}
}

func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("onboarding: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
