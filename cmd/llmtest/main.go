package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"

	"github.com/mindwell-health/practice-api/internal/ai"
	"github.com/mindwell-health/practice-api/pkg/logging"
)

const sampleNote = `Patient reports persistent worry about work deadlines and ` +
	`difficulty falling asleep most nights this week. We practiced the grounding ` +
	`exercise introduced last session and reviewed the sleep hygiene plan. ` +
	`Patient agreed to keep a worry journal before the next appointment.`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := logging.Default()

	fmt.Println("Summarization Provider Test")
	fmt.Println("===========================")

	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey != "" {
		fmt.Println("\n[1] Testing OpenAI...")
		client := ai.NewOpenAIClient(openai.NewClient(openaiKey), "gpt-4o-mini")
		runSummary(ctx, client, logger)
	} else {
		fmt.Println("\n[1] Skipping OpenAI test (OPENAI_API_KEY not set)")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey != "" {
		fmt.Println("\n[2] Testing Gemini...")
		client, err := ai.NewGeminiClient(ctx, geminiKey, "gemini-2.5-flash")
		if err != nil {
			fmt.Printf("    failed to create Gemini client: %v\n", err)
		} else {
			runSummary(ctx, client, logger)
		}
	} else {
		fmt.Println("\n[2] Skipping Gemini test (GEMINI_API_KEY not set)")
	}
}

func runSummary(ctx context.Context, client ai.LLMClient, logger *logging.Logger) {
	summarizer := ai.NewSummarizer(client, "", 300, logger)
	start := time.Now()
	summary, err := summarizer.Summarize(ctx, sampleNote)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    summarize error: %v\n", err)
		return
	}
	fmt.Printf("    source=%s (%v)\n", summary.Source, elapsed.Round(time.Millisecond))
	fmt.Printf("    %s\n", summary.Text)
}
