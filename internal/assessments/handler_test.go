package assessments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/internal/onboarding"
	"github.com/mindwell-health/practice-api/internal/patients"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

type memRecorder struct {
	inserted []*GAD7Record
}

func (m *memRecorder) Insert(ctx context.Context, patientID string, therapistUserID *string, answers []int, result Result) (*GAD7Record, error) {
	record := &GAD7Record{
		ID:              "res-1",
		PatientID:       patientID,
		TherapistUserID: therapistUserID,
		Answers:         answers,
		Total:           result.Total,
		Severity:        result.Severity,
		CreatedAt:       time.Now(),
	}
	m.inserted = append(m.inserted, record)
	return record, nil
}

func (m *memRecorder) ListByPatient(ctx context.Context, patientID string) ([]*GAD7Record, error) {
	var out []*GAD7Record
	for _, r := range m.inserted {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecorder) Latest(ctx context.Context, patientID string) (*GAD7Record, error) {
	var latest *GAD7Record
	for _, r := range m.inserted {
		if r.PatientID != patientID {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrResultNotFound
	}
	return latest, nil
}

type stubValidator struct {
	result onboarding.ValidationResult
}

func (s *stubValidator) Validate(ctx context.Context, token string) (onboarding.ValidationResult, error) {
	return s.result, nil
}

type stubLookup struct{}

func (stubLookup) GetByID(ctx context.Context, therapistID, id string) (*patients.Patient, error) {
	if therapistID == "ther-1" && id == "pat-1" {
		return &patients.Patient{ID: "pat-1", TherapistID: "ther-1"}, nil
	}
	return nil, patients.ErrPatientNotFound
}

func therapistRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	claims := &middleware.SessionClaims{Role: middleware.RoleTherapist}
	claims.Subject = "ther-1"
	return req.WithContext(middleware.WithSessionClaims(req.Context(), claims))
}

func TestSubmitScoresAndPersists(t *testing.T) {
	recorder := &memRecorder{}
	h := NewHandler(recorder, &stubValidator{}, stubLookup{}, logging.Default())

	rr := httptest.NewRecorder()
	h.Submit(rr, therapistRequest(http.MethodPost, "/assessments/gad7",
		`{"patientId":"pat-1","answers":[2,2,2,2,1,1,0]}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["total"] != float64(10) || body["severity"] != "moderate" {
		t.Fatalf("unexpected body: %v", body)
	}
	if len(recorder.inserted) != 1 || recorder.inserted[0].TherapistUserID == nil {
		t.Fatalf("expected persisted record attributed to the therapist")
	}
}

func TestSubmitRejectsInvalidAnswers(t *testing.T) {
	h := NewHandler(&memRecorder{}, &stubValidator{}, stubLookup{}, logging.Default())

	rr := httptest.NewRecorder()
	h.Submit(rr, therapistRequest(http.MethodPost, "/assessments/gad7",
		`{"patientId":"pat-1","answers":[1,2,3]}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong count, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Submit(rr, therapistRequest(http.MethodPost, "/assessments/gad7",
		`{"patientId":"pat-1","answers":[0,0,0,0,0,0,4]}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range answer, got %d", rr.Code)
	}
}

func TestSubmitScopedToTherapist(t *testing.T) {
	h := NewHandler(&memRecorder{}, &stubValidator{}, stubLookup{}, logging.Default())

	rr := httptest.NewRecorder()
	h.Submit(rr, therapistRequest(http.MethodPost, "/assessments/gad7",
		`{"patientId":"pat-99","answers":[0,0,0,0,0,0,0]}`))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign patient, got %d", rr.Code)
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	h := NewHandler(&memRecorder{}, &stubValidator{}, stubLookup{}, logging.Default())

	rr := httptest.NewRecorder()
	h.Submit(rr, httptest.NewRequest(http.MethodPost, "/assessments/gad7",
		strings.NewReader(`{"patientId":"pat-1","answers":[0,0,0,0,0,0,0]}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestSubmitWithTokenValid(t *testing.T) {
	recorder := &memRecorder{}
	validator := &stubValidator{result: onboarding.ValidationResult{
		Outcome:   onboarding.OutcomeValid,
		PatientID: "pat-1",
	}}
	h := NewHandler(recorder, validator, stubLookup{}, logging.Default())

	rr := httptest.NewRecorder()
	h.SubmitWithToken(rr, httptest.NewRequest(http.MethodPost, "/onboarding/gad7",
		strings.NewReader(`{"token":"abc123abc123","answers":[3,3,3,3,3,3,3]}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(recorder.inserted) != 1 || recorder.inserted[0].TherapistUserID != nil {
		t.Fatalf("expected anonymous persisted record")
	}
	if recorder.inserted[0].Severity != SeveritySevere {
		t.Fatalf("expected severe for maximum score, got %s", recorder.inserted[0].Severity)
	}
}

func patientScopedRequest(patientID string) *http.Request {
	req := therapistRequest(http.MethodGet, "/patients/"+patientID+"/assessments/latest", "")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("patientID", patientID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestLatestForPatientReturnsNewestResult(t *testing.T) {
	recorder := &memRecorder{}
	h := NewHandler(recorder, &stubValidator{}, stubLookup{}, logging.Default())

	ther := "ther-1"
	first, _ := recorder.Insert(context.Background(), "pat-1", &ther, []int{0, 0, 0, 0, 0, 0, 0}, Result{Total: 0, Severity: SeverityMinimal})
	first.CreatedAt = time.Now().Add(-time.Hour)
	recorder.Insert(context.Background(), "pat-1", &ther, []int{2, 2, 2, 2, 1, 1, 0}, Result{Total: 10, Severity: SeverityModerate})

	rr := httptest.NewRecorder()
	h.LatestForPatient(rr, patientScopedRequest("pat-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body GAD7Record
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Total != 10 || body.Severity != SeverityModerate {
		t.Fatalf("expected the newest result, got total=%d severity=%s", body.Total, body.Severity)
	}
}

func TestLatestForPatientWithoutResults(t *testing.T) {
	h := NewHandler(&memRecorder{}, &stubValidator{}, stubLookup{}, logging.Default())

	rr := httptest.NewRecorder()
	h.LatestForPatient(rr, patientScopedRequest("pat-1"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when no results exist, got %d", rr.Code)
	}
}

func TestSubmitWithTokenRejectsNonValidOutcomes(t *testing.T) {
	cases := []struct {
		outcome onboarding.Outcome
		status  int
	}{
		{onboarding.OutcomeExpired, http.StatusGone},
		{onboarding.OutcomeUsed, http.StatusGone},
		{onboarding.OutcomeInvalid, http.StatusNotFound},
	}
	for _, tc := range cases {
		h := NewHandler(&memRecorder{}, &stubValidator{result: onboarding.ValidationResult{Outcome: tc.outcome}}, stubLookup{}, logging.Default())
		rr := httptest.NewRecorder()
		h.SubmitWithToken(rr, httptest.NewRequest(http.MethodPost, "/onboarding/gad7",
			strings.NewReader(`{"token":"abc123abc123","answers":[0,0,0,0,0,0,0]}`)))
		if rr.Code != tc.status {
			t.Fatalf("outcome %s: expected %d, got %d", tc.outcome, tc.status, rr.Code)
		}
	}
}
