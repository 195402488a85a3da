package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mindwell-health/practice-api/internal/ai"
	"github.com/mindwell-health/practice-api/internal/appointments"
	"github.com/mindwell-health/practice-api/internal/assessments"
	"github.com/mindwell-health/practice-api/internal/http/handlers"
	httpmiddleware "github.com/mindwell-health/practice-api/internal/http/middleware"
	"github.com/mindwell-health/practice-api/internal/notes"
	"github.com/mindwell-health/practice-api/internal/onboarding"
	"github.com/mindwell-health/practice-api/internal/patients"
	"github.com/mindwell-health/practice-api/internal/photos"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	OnboardingHandler    *onboarding.Handler
	PatientsHandler      *patients.Handler
	AssessmentsHandler   *assessments.Handler
	AppointmentsHandler  *appointments.Handler
	NotesHandler         *notes.Handler
	TranscriptionHandler *ai.TranscriptionHandler
	PhotosHandler        *photos.Handler
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string

	// SessionSecret signs the identity-service session JWTs.
	SessionSecret string
	// InternalServiceKey guards operational endpoints called by the
	// reminder scheduler. When empty those endpoints reject everything.
	InternalServiceKey string

	// Dashboard dependencies (optional)
	DB *sql.DB
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, metrics, token-authenticated onboarding)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.OnboardingHandler != nil {
			public.Route("/onboarding", func(r chi.Router) {
				r.Post("/validate", cfg.OnboardingHandler.ValidateToken)
				r.Post("/consent", cfg.OnboardingHandler.SubmitConsent)
				r.Post("/password", cfg.OnboardingHandler.SetPassword)
				r.Get("/status", cfg.OnboardingHandler.Status)
				if cfg.AssessmentsHandler != nil {
					r.Post("/gad7", cfg.AssessmentsHandler.SubmitWithToken)
				}
			})
		}
		// Reminder runs come from the scheduler, not a browser session.
		if cfg.AppointmentsHandler != nil {
			public.With(requireServiceKey(cfg.InternalServiceKey)).
				Post("/appointments/reminders/run", cfg.AppointmentsHandler.RunReminders)
		}
	})

	if cfg.SessionSecret == "" {
		return r
	}

	// Patient routes: the link endpoints run right after signup and only
	// make sense for a patient session.
	r.Group(func(patient chi.Router) {
		patient.Use(httpmiddleware.SessionJWT(cfg.SessionSecret))
		patient.Use(httpmiddleware.RequireRole(httpmiddleware.RolePatient))
		if cfg.OnboardingHandler != nil {
			patient.Post("/onboarding/link", cfg.OnboardingHandler.LinkAccount)
		}
		if cfg.PatientsHandler != nil {
			patient.Post("/patients/link", cfg.PatientsHandler.LinkAccount)
		}
	})

	// Therapist routes
	r.Group(func(therapist chi.Router) {
		therapist.Use(httpmiddleware.SessionJWT(cfg.SessionSecret))
		therapist.Use(httpmiddleware.RequireRole(httpmiddleware.RoleTherapist))

		if cfg.PatientsHandler != nil {
			therapist.Post("/patients", cfg.PatientsHandler.CreatePatient)
			therapist.Get("/patients", cfg.PatientsHandler.ListPatients)
			therapist.Route("/patients/{patientID}", func(r chi.Router) {
				r.Get("/", cfg.PatientsHandler.GetPatient)
				if cfg.OnboardingHandler != nil {
					r.Post("/invite", cfg.OnboardingHandler.IssueInvite)
				}
				if cfg.AssessmentsHandler != nil {
					r.Get("/assessments", cfg.AssessmentsHandler.ListForPatient)
					r.Get("/assessments/latest", cfg.AssessmentsHandler.LatestForPatient)
				}
				if cfg.AppointmentsHandler != nil {
					r.Get("/appointments", cfg.AppointmentsHandler.ListForPatient)
				}
				if cfg.NotesHandler != nil {
					r.Post("/notes", cfg.NotesHandler.CreateNote)
					r.Get("/notes", cfg.NotesHandler.ListForPatient)
				}
			})
		}
		if cfg.AssessmentsHandler != nil {
			therapist.Post("/assessments/gad7", cfg.AssessmentsHandler.Submit)
		}
		if cfg.AppointmentsHandler != nil {
			therapist.Post("/appointments", cfg.AppointmentsHandler.CreateAppointment)
			therapist.Delete("/appointments/{appointmentID}", cfg.AppointmentsHandler.CancelAppointment)
		}
		if cfg.NotesHandler != nil {
			therapist.Post("/notes", cfg.NotesHandler.CreateNote)
			therapist.Get("/notes/{noteID}", cfg.NotesHandler.GetNote)
			therapist.Post("/notes/{noteID}/summarize", cfg.NotesHandler.SummarizeNote)
		}
		if cfg.TranscriptionHandler != nil {
			therapist.Post("/transcriptions", cfg.TranscriptionHandler.Transcribe)
		}
		if cfg.PhotosHandler != nil {
			therapist.Get("/photos/search", cfg.PhotosHandler.Search)
		}
		if cfg.DB != nil {
			dashboard := handlers.NewDashboardHandler(cfg.DB, cfg.Logger)
			therapist.Get("/dashboard", dashboard.GetDashboard)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
