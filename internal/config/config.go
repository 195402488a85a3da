package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PracticeName  string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Session auth (HMAC JWT issued by the identity service)
	SessionJWTSecret string

	// Identity service admin API
	IdentityBaseURL    string
	IdentityServiceKey string

	// Onboarding
	InviteTokenTTL       time.Duration
	InviteTokenMinLength int
	OnboardingBaseURL    string

	// Appointment reminders
	ReminderWindow time.Duration
	// InternalServiceKey authenticates the external scheduler that triggers
	// reminder runs.
	InternalServiceKey string

	// Email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	// AWS (SES)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// LLM / transcription
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	GeminiAPIKey       string
	GeminiModel        string
	TranscriptionModel string
	SummaryMaxTokens   int
	SummaryTemperature float64

	// Stock photos
	PhotosAPIKey   string
	PhotosBaseURL  string
	PhotosCacheTTL time.Duration

	// Redis (photo search cache)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PracticeName:  getEnv("PRACTICE_NAME", "Mindwell Health"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		SessionJWTSecret: getEnv("SESSION_JWT_SECRET", ""),

		IdentityBaseURL:    getEnv("IDENTITY_BASE_URL", ""),
		IdentityServiceKey: getEnv("IDENTITY_SERVICE_KEY", ""),

		InviteTokenTTL:       getEnvAsDuration("INVITE_TOKEN_TTL", 72*time.Hour),
		InviteTokenMinLength: getEnvAsInt("INVITE_TOKEN_MIN_LENGTH", 12),
		OnboardingBaseURL:    getEnv("ONBOARDING_BASE_URL", ""),

		ReminderWindow:     getEnvAsDuration("REMINDER_WINDOW", 24*time.Hour),
		InternalServiceKey: getEnv("INTERNAL_SERVICE_KEY", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Mindwell"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Mindwell"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
		SummaryMaxTokens:   getEnvAsInt("SUMMARY_MAX_TOKENS", 512),
		SummaryTemperature: getEnvAsFloat("SUMMARY_TEMPERATURE", 0.2),

		PhotosAPIKey:   getEnv("PHOTOS_API_KEY", ""),
		PhotosBaseURL:  getEnv("PHOTOS_BASE_URL", "https://api.pexels.com/v1"),
		PhotosCacheTTL: getEnvAsDuration("PHOTOS_CACHE_TTL", 15*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
