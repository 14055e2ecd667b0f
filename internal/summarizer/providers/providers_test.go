package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Theomnitron/SummaRead/internal/errortypes"
	"github.com/Theomnitron/SummaRead/internal/telemetry"
)

func TestHFSummarizer(t *testing.T) {
	var captured summarizationRequest
	server := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusOK,
		ResponseBody: `[{"summary_text":"A short summary."}]`,
		OnRequest: func(r *http.Request, body []byte) {
			if r.Header.Get("Authorization") != "Bearer hf_test" {
				t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
			}
			if err := json.Unmarshal(body, &captured); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
		},
	})

	metrics := telemetry.NewMetricsCollector()
	s := NewHFSummarizer(Config{APIKey: "hf_test", BaseURL: server.URL, Timeout: time.Second}, metrics, nil)

	got, err := s.Summarize(context.Background(), "long text", SummarizationParams{MinLength: 195, MaxLength: 325})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "A short summary." {
		t.Errorf("Expected summary text, got %q", got)
	}
	if captured.Inputs != "long text" || captured.Parameters.MinLength != 195 || captured.Parameters.MaxLength != 325 {
		t.Errorf("Unexpected request payload: %+v", captured)
	}
	if captured.Parameters.DoSample {
		t.Errorf("Expected do_sample to be false")
	}
	if metrics.GetCounter(telemetry.MetricSummarizeCalls) != 1 {
		t.Errorf("Expected one recorded call")
	}
}

func TestHFSummarizerResponses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantError bool
	}{
		{"missing summary_text", http.StatusOK, `[{"generated_text":"x"}]`, "", false},
		{"empty array", http.StatusOK, `[]`, "", true},
		{"object body", http.StatusOK, `{"error":"Model is loading"}`, "", true},
		{"invalid json", http.StatusOK, `not json`, "", true},
		{"server error", http.StatusBadGateway, `{"error":"bad gateway"}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := MockServer(t, MockResponseConfig{StatusCode: tt.status, ResponseBody: tt.body})

			s := NewHFSummarizer(Config{BaseURL: server.URL}, nil, nil)
			got, err := s.Summarize(context.Background(), "text", SummarizationParams{MinLength: 1, MaxLength: 10})
			if tt.wantError {
				if !errortypes.IsRemoteCallError(err) {
					t.Errorf("Expected remote call error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestChatClient(t *testing.T) {
	var captured map[string]any
	server := MockServer(t, MockResponseConfig{
		StatusCode:   http.StatusOK,
		ResponseBody: ChatCompletionBody("Ocean Currents and Climate"),
		OnRequest: func(r *http.Request, body []byte) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if err := json.Unmarshal(body, &captured); err != nil {
				t.Errorf("Failed to decode request: %v", err)
			}
		},
	})

	metrics := telemetry.NewMetricsCollector()
	c := NewChatClient(Config{APIKey: "k", BaseURL: server.URL + "/", ModelID: "test-model", Timeout: time.Second}, metrics, nil)

	got, err := c.Complete(context.Background(), ChatRequest{
		Prompt:      "What is this about?",
		Temperature: 0.7,
		MaxTokens:   20,
		Stop:        []string{"\n", "."},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "Ocean Currents and Climate" {
		t.Errorf("Expected content, got %q", got)
	}

	if captured["model"] != "test-model" {
		t.Errorf("Expected model in request, got %v", captured["model"])
	}
	if captured["max_tokens"] != float64(20) {
		t.Errorf("Expected max_tokens 20, got %v", captured["max_tokens"])
	}
	stop, _ := captured["stop"].([]any)
	if len(stop) != 2 {
		t.Errorf("Expected two stop sequences, got %v", captured["stop"])
	}
	if metrics.GetCounter(telemetry.MetricChatCalls) != 1 || metrics.GetCounter(telemetry.MetricChatFailures) != 0 {
		t.Errorf("Unexpected chat metrics")
	}
}

func TestChatClientFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   interface{}
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"no choices", http.StatusOK, map[string]any{"id": "x", "object": "chat.completion", "choices": []any{}}},
		{"empty content", http.StatusOK, ChatCompletionBody("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := MockServer(t, MockResponseConfig{StatusCode: tt.status, ResponseBody: tt.body})

			metrics := telemetry.NewMetricsCollector()
			c := NewChatClient(Config{APIKey: "k", BaseURL: server.URL + "/", ModelID: "m", Timeout: time.Second}, metrics, nil)
			_, err := c.Complete(context.Background(), ChatRequest{Prompt: "p", MaxTokens: 5})
			if !errortypes.IsRemoteCallError(err) {
				t.Errorf("Expected remote call error, got %v", err)
			}
			if metrics.GetCounter(telemetry.MetricChatFailures) != 1 {
				t.Errorf("Expected one recorded failure")
			}
		})
	}
}
