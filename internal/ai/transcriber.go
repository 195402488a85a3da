package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type audioTranscriber interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Transcriber turns uploaded session audio into text via the OpenAI audio API.
type Transcriber struct {
	client  audioTranscriber
	modelID string
}

func NewTranscriber(client *openai.Client, modelID string) *Transcriber {
	if client == nil {
		panic("ai: openai client required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = openai.Whisper1
	}
	return &Transcriber{client: client, modelID: modelID}
}

func newTranscriberWithClient(client audioTranscriber, modelID string) *Transcriber {
	return &Transcriber{client: client, modelID: modelID}
}

// Transcribe streams one audio file through the transcription model. The
// filename matters: the API infers the container format from its extension.
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", errors.New("ai: audio filename required")
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.modelID,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("ai: transcription failed: %w", err)
	}
	return resp.Text, nil
}
