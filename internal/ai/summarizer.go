package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mindwell-health/practice-api/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const summarySystemPrompt = `You summarize clinical session notes for the treating therapist.
Write 2-4 sentences in neutral clinical language. Mention reported symptoms,
interventions and agreed next steps. Do not invent details that are not in
the note. Return ONLY a JSON object {"summary": "..."} with no markdown,
no code fences, no explanation.`

var aiTracer = otel.Tracer("mindwell.internal.ai")

var summaryLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "mindwell",
		Subsystem: "ai",
		Name:      "summary_latency_seconds",
		Help:      "Latency of note summarization completions",
		Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
	},
	[]string{"model", "status"},
)

var summarySourceTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mindwell",
		Subsystem: "ai",
		Name:      "summary_source_total",
		Help:      "Counts produced summaries by source",
	},
	[]string{"source"}, // source: model, fallback
)

func init() {
	prometheus.MustRegister(summaryLatency)
	prometheus.MustRegister(summarySourceTotal)
}

// RegisterMetrics registers ai metrics with a custom registry. Use this when
// exposing a non-default registry.
func RegisterMetrics(reg prometheus.Registerer) {
	if reg == nil || reg == prometheus.DefaultRegisterer {
		return
	}
	reg.MustRegister(summaryLatency, summarySourceTotal)
}

const (
	// SummarySourceModel marks a summary produced by the LLM.
	SummarySourceModel = "model"
	// SummarySourceFallback marks a deterministic excerpt used when the
	// model was unavailable or returned garbage.
	SummarySourceFallback = "fallback"
)

// Summary is a produced note summary with its provenance.
type Summary struct {
	Text   string
	Source string
}

// Summarizer turns clinical note bodies into short summaries.
type Summarizer struct {
	client    LLMClient
	model     string
	maxTokens int32
	logger    *logging.Logger
}

func NewSummarizer(client LLMClient, model string, maxTokens int32, logger *logging.Logger) *Summarizer {
	if client == nil {
		panic("ai: llm client required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 300
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Summarizer{client: client, model: model, maxTokens: maxTokens, logger: logger}
}

// Summarize produces a summary for a note body. A model failure degrades to
// a deterministic excerpt, never to an error: the note itself is the source
// of truth and the caller records which path produced the text.
func (s *Summarizer) Summarize(ctx context.Context, body string) (Summary, error) {
	if strings.TrimSpace(body) == "" {
		return Summary{}, errors.New("ai: empty note body")
	}

	ctx, span := aiTracer.Start(ctx, "ai.summarize")
	defer span.End()

	start := time.Now()
	resp, err := s.client.Complete(ctx, LLMRequest{
		Model:       s.model,
		System:      []string{summarySystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: body}},
		MaxTokens:   s.maxTokens,
		Temperature: 0.2,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	summaryLatency.WithLabelValues(s.model, status).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		s.logger.Warn("summary model call failed, using excerpt", "error", err)
		return s.fallback(body), nil
	}

	var parsed struct {
		Summary string `json:"summary"`
	}
	outcome, perr := CoerceJSON(resp.Text, &parsed)
	span.SetAttributes(
		attribute.String("mindwell.ai.parse_outcome", string(outcome)),
		attribute.Int("mindwell.ai.total_tokens", int(resp.Usage.TotalTokens)),
	)
	if perr != nil || strings.TrimSpace(parsed.Summary) == "" {
		s.logger.Warn("summary response unparseable, using excerpt", "error", perr, "outcome", outcome)
		return s.fallback(body), nil
	}

	summarySourceTotal.WithLabelValues(SummarySourceModel).Inc()
	return Summary{Text: strings.TrimSpace(parsed.Summary), Source: SummarySourceModel}, nil
}

const fallbackExcerptLen = 280

func (s *Summarizer) fallback(body string) Summary {
	summarySourceTotal.WithLabelValues(SummarySourceFallback).Inc()
	text := strings.Join(strings.Fields(body), " ")
	if len(text) > fallbackExcerptLen {
		cut := strings.LastIndex(text[:fallbackExcerptLen], " ")
		if cut <= 0 {
			cut = fallbackExcerptLen
		}
		text = text[:cut] + "…"
	}
	return Summary{Text: text, Source: SummarySourceFallback}
}
