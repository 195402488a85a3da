package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// DashboardHandler serves the therapist's practice overview.
type DashboardHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewDashboardHandler(db *sql.DB, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{db: db, logger: logger}
}

// DashboardResponse contains the practice overview metrics.
type DashboardResponse struct {
	Patients     PatientMetrics     `json:"patients"`
	Appointments AppointmentMetrics `json:"appointments"`
	Notes        NoteMetrics        `json:"notes"`
}

// PatientMetrics contains patient-related overview numbers.
type PatientMetrics struct {
	Total          int `json:"total"`
	PendingInvites int `json:"pending_invites"`
	Onboarded      int `json:"onboarded"`
}

// AppointmentMetrics contains scheduling overview numbers.
type AppointmentMetrics struct {
	Upcoming  int `json:"upcoming"`
	ThisWeek  int `json:"this_week"`
	Cancelled int `json:"cancelled"`
}

// NoteMetrics contains documentation overview numbers.
type NoteMetrics struct {
	ThisWeek     int `json:"this_week"`
	Unsummarized int `json:"unsummarized"`
}

// GetDashboard returns the practice overview for the session therapist.
// GET /dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	therapistID := claims.UserID()

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	weekAhead := now.AddDate(0, 0, 7)

	var resp DashboardResponse

	// Aggregates are best effort; a failed scan leaves the zero value.
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM patients WHERE therapist_id = $1`, therapistID,
	).Scan(&resp.Patients.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM patients WHERE therapist_id = $1 AND user_id IS NULL`, therapistID,
	).Scan(&resp.Patients.PendingInvites)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM patients WHERE therapist_id = $1 AND onboarding_status = 'complete'`, therapistID,
	).Scan(&resp.Patients.Onboarded)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE therapist_id = $1 AND status = 'scheduled' AND starts_at > $2`, therapistID, now,
	).Scan(&resp.Appointments.Upcoming)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE therapist_id = $1 AND status = 'scheduled' AND starts_at > $2 AND starts_at <= $3`, therapistID, now, weekAhead,
	).Scan(&resp.Appointments.ThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE therapist_id = $1 AND status = 'cancelled'`, therapistID,
	).Scan(&resp.Appointments.Cancelled)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM clinical_notes WHERE therapist_id = $1 AND created_at >= $2`, therapistID, weekAgo,
	).Scan(&resp.Notes.ThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM clinical_notes WHERE therapist_id = $1 AND summary IS NULL`, therapistID,
	).Scan(&resp.Notes.Unsummarized)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("dashboard encode failed", "error", err)
	}
}
