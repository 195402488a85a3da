package metrics

import "github.com/prometheus/client_golang/prometheus"

// OnboardingMetrics exposes counters/histograms for the invite and consent flows.
type OnboardingMetrics struct {
	tokenValidations *prometheus.CounterVec
	consentSubmitted *prometheus.CounterVec
	linkAttempts     *prometheus.CounterVec
	remindersSent    *prometheus.CounterVec
	stepLatency      *prometheus.HistogramVec
}

func NewOnboardingMetrics(reg prometheus.Registerer) *OnboardingMetrics {
	m := &OnboardingMetrics{
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindwell",
			Subsystem: "onboarding",
			Name:      "token_validations_total",
			Help:      "Invite token validations by outcome",
		}, []string{"outcome"}),
		consentSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindwell",
			Subsystem: "onboarding",
			Name:      "consent_submissions_total",
			Help:      "Consent submissions by result",
		}, []string{"result"}),
		linkAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindwell",
			Subsystem: "onboarding",
			Name:      "link_attempts_total",
			Help:      "Account link attempts by result",
		}, []string{"result"}),
		remindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mindwell",
			Subsystem: "appointments",
			Name:      "reminders_sent_total",
			Help:      "Appointment reminder emails by status",
		}, []string{"status"}),
		stepLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mindwell",
			Subsystem: "onboarding",
			Name:      "step_latency_seconds",
			Help:      "Latency of onboarding step handlers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.tokenValidations, m.consentSubmitted, m.linkAttempts, m.remindersSent, m.stepLatency)
	return m
}

func (m *OnboardingMetrics) ObserveTokenValidation(outcome string) {
	if m == nil {
		return
	}
	m.tokenValidations.WithLabelValues(outcome).Inc()
}

func (m *OnboardingMetrics) ObserveConsent(result string) {
	if m == nil {
		return
	}
	m.consentSubmitted.WithLabelValues(result).Inc()
}

func (m *OnboardingMetrics) ObserveLink(result string) {
	if m == nil {
		return
	}
	m.linkAttempts.WithLabelValues(result).Inc()
}

func (m *OnboardingMetrics) ObserveReminder(status string) {
	if m == nil {
		return
	}
	m.remindersSent.WithLabelValues(status).Inc()
}

func (m *OnboardingMetrics) ObserveStepLatency(step string, seconds float64) {
	if m == nil {
		return
	}
	m.stepLatency.WithLabelValues(step).Observe(seconds)
}
