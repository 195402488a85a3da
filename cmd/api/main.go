package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mindwell-health/practice-api/cmd/mainconfig"
	"github.com/mindwell-health/practice-api/internal/ai"
	"github.com/mindwell-health/practice-api/internal/api/router"
	"github.com/mindwell-health/practice-api/internal/appointments"
	"github.com/mindwell-health/practice-api/internal/assessments"
	appconfig "github.com/mindwell-health/practice-api/internal/config"
	"github.com/mindwell-health/practice-api/internal/consent"
	"github.com/mindwell-health/practice-api/internal/identity"
	"github.com/mindwell-health/practice-api/internal/notes"
	"github.com/mindwell-health/practice-api/internal/notify"
	"github.com/mindwell-health/practice-api/internal/observability/metrics"
	"github.com/mindwell-health/practice-api/internal/onboarding"
	"github.com/mindwell-health/practice-api/internal/patients"
	"github.com/mindwell-health/practice-api/internal/photos"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting practice API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// The dashboard aggregates run over database/sql.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	onboardingMetrics := metrics.NewOnboardingMetrics(prometheus.DefaultRegisterer)

	// Stores
	tokenStore := onboarding.NewTokenStore(pool)
	patientRepo := patients.NewRepository(pool)
	consentRecorder := consent.NewRecorder(consent.NewStore(pool), logger)
	assessmentStore := assessments.NewStore(pool)
	appointmentRepo := appointments.NewRepository(pool)
	noteRepo := notes.NewRepository(pool)

	identityClient := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityServiceKey)

	emailSender := buildEmailSender(ctx, cfg, logger)
	notifier := notify.NewService(emailSender, cfg.PracticeName, logger)

	validator := onboarding.NewValidator(tokenStore, cfg.InviteTokenMinLength)
	orchestrator := onboarding.NewOrchestrator(onboarding.OrchestratorConfig{
		Tokens:    tokenStore,
		Validator: validator,
		Patients:  patientRepo,
		Consents:  consentRecorder,
		Identity:  identityClient,
		Mailer:    notifier,
		Metrics:   onboardingMetrics,
		Logger:    logger,
		TokenTTL:  cfg.InviteTokenTTL,
		BaseURL:   cfg.OnboardingBaseURL,
	})

	reminderRunner := appointments.NewReminderRunner(
		appointmentRepo, notifier, onboardingMetrics, logger, cfg.ReminderWindow)

	// AI clients
	var transcriptionHandler *ai.TranscriptionHandler
	var summarizer notes.Summarizer
	if cfg.OpenAIAPIKey != "" {
		openaiClient := newOpenAIClient(cfg)
		var llm ai.LLMClient = ai.NewOpenAIClient(openaiClient, cfg.OpenAIModel)
		if cfg.GeminiAPIKey != "" {
			gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Error("failed to create gemini client", "error", err)
			} else {
				llm = ai.NewFallbackClient(llm, gemini, logger)
			}
		}
		summarizer = ai.NewSummarizer(llm, cfg.OpenAIModel, int32(cfg.SummaryMaxTokens), logger)
		transcriber := ai.NewTranscriber(openaiClient, cfg.TranscriptionModel)
		transcriptionHandler = ai.NewTranscriptionHandler(transcriber, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set; summarization uses excerpts, transcription disabled")
	}

	// Stock photo search, with an optional Redis cache in front.
	var photoSearcher photos.Searcher = photos.NewClient(cfg.PhotosBaseURL, cfg.PhotosAPIKey)
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		photoSearcher = photos.NewCachedSearcher(photoSearcher, redisClient, cfg.PhotosCacheTTL, logger)
	}

	routerCfg := &router.Config{
		Logger:               logger,
		OnboardingHandler:    onboarding.NewHandler(orchestrator, logger),
		PatientsHandler:      patients.NewHandler(patientRepo, logger),
		AssessmentsHandler:   assessments.NewHandler(assessmentStore, validator, patientRepo, logger),
		AppointmentsHandler:  appointments.NewHandler(appointmentRepo, reminderRunner, logger),
		NotesHandler:         notes.NewHandler(noteRepo, summarizer, logger),
		TranscriptionHandler: transcriptionHandler,
		PhotosHandler:        photos.NewHandler(photoSearcher, logger),
		MetricsHandler:       promhttp.Handler(),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		SessionSecret:        cfg.SessionJWTSecret,
		InternalServiceKey:   cfg.InternalServiceKey,
		DB:                   sqlDB,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func newOpenAIClient(cfg *appconfig.Config) *openai.Client {
	if cfg.OpenAIBaseURL != "" {
		clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
		clientCfg.BaseURL = cfg.OpenAIBaseURL
		return openai.NewClientWithConfig(clientCfg)
	}
	return openai.NewClient(cfg.OpenAIAPIKey)
}

// buildEmailSender picks the configured provider and falls back to the log
// stub so development environments never need real credentials.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured; using stub sender")
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config; using stub sender", "error", err)
			break
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
		if sender != nil {
			return sender
		}
	}
	return notify.NewStubEmailSender(logger)
}
