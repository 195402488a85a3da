package ai

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mindwell-health/practice-api/pkg/logging"
	openai "github.com/sashabaranov/go-openai"
)

type stubChatClient struct {
	response openai.ChatCompletionResponse
	err      error
	requests []openai.ChatCompletionRequest
}

func (s *stubChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return s.response, nil
}

func TestOpenAICompleteFlattensChoice(t *testing.T) {
	stub := &stubChatClient{response: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "done"}, FinishReason: openai.FinishReasonStop},
		},
		Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
	c := newOpenAIClientWithCompleter(stub, "gpt-4o-mini")

	resp, err := c.Complete(context.Background(), LLMRequest{
		System:   []string{"be terse"},
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "done" || resp.Usage.TotalTokens != 15 || resp.StopReason != "stop" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	req := stub.requests[0]
	if req.Model != "gpt-4o-mini" || len(req.Messages) != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system prompt first, got %s", req.Messages[0].Role)
	}
}

func TestOpenAICompleteRequiresMessages(t *testing.T) {
	c := newOpenAIClientWithCompleter(&stubChatClient{}, "gpt-4o-mini")
	if _, err := c.Complete(context.Background(), LLMRequest{}); err == nil {
		t.Fatalf("expected error for empty request")
	}
}

func TestOpenAICompleteWrapsErrors(t *testing.T) {
	upstream := errors.New("boom")
	c := newOpenAIClientWithCompleter(&stubChatClient{err: upstream}, "gpt-4o-mini")
	if _, err := c.Complete(context.Background(), LLMRequest{
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
	}); !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
}

type stubAudioClient struct {
	response openai.AudioResponse
	err      error
	requests []openai.AudioRequest
}

func (s *stubAudioClient) CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return openai.AudioResponse{}, s.err
	}
	return s.response, nil
}

func TestTranscribePassesFilename(t *testing.T) {
	stub := &stubAudioClient{response: openai.AudioResponse{Text: "session transcript"}}
	tr := newTranscriberWithClient(stub, openai.Whisper1)

	text, err := tr.Transcribe(context.Background(), "session.mp3", bytes.NewReader([]byte("audio")))
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "session transcript" {
		t.Fatalf("unexpected text: %q", text)
	}
	if stub.requests[0].FilePath != "session.mp3" || stub.requests[0].Model != openai.Whisper1 {
		t.Fatalf("unexpected request: %+v", stub.requests[0])
	}
}

func TestTranscriptionHandler(t *testing.T) {
	stub := &stubAudioClient{response: openai.AudioResponse{Text: "hello"}}
	h := NewTranscriptionHandler(&Transcriber{client: stub, modelID: openai.Whisper1}, logging.Default())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", "session.wav")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("fake audio bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/transcriptions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.Transcribe(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if stub.requests[0].FilePath != "session.wav" {
		t.Fatalf("expected upload filename forwarded, got %q", stub.requests[0].FilePath)
	}
}

func TestTranscriptionHandlerRequiresAudio(t *testing.T) {
	h := NewTranscriptionHandler(&Transcriber{client: &stubAudioClient{}, modelID: openai.Whisper1}, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/transcriptions", bytes.NewReader([]byte("not multipart")))
	rr := httptest.NewRecorder()
	h.Transcribe(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
