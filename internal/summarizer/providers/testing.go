package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockResponseConfig describes the canned answer of a fake model endpoint.
type MockResponseConfig struct {
	StatusCode int
	// ResponseBody is written as is when it is a string or []byte and
	// JSON-encoded otherwise. Nil writes no body.
	ResponseBody any
	Headers      map[string]string
	// OnRequest, when set, sees every request and its JSON body first.
	OnRequest func(r *http.Request, body []byte)
}

// MockServer starts a fake model endpoint that answers every request with
// config. It is closed when the test ends.
func MockServer(t *testing.T, config MockResponseConfig) *httptest.Server {
	t.Helper()

	payload, err := encodeBody(config.ResponseBody)
	if err != nil {
		t.Fatalf("Failed to encode mock response: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if config.OnRequest != nil {
			var raw json.RawMessage
			_ = json.NewDecoder(r.Body).Decode(&raw)
			config.OnRequest(r, raw)
		}

		w.Header().Set("Content-Type", "application/json")
		for k, v := range config.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(config.StatusCode)
		if payload != nil {
			w.Write(payload)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(b), nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(b)
	}
}

// ChatCompletionBody builds a minimal chat completion response with content.
func ChatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

// StubCompleter is a Completer for tests. Respond, when set, decides the
// answer; otherwise Content and ReturnError are returned.
type StubCompleter struct {
	Content     string
	ReturnError error
	Respond     func(req ChatRequest) (string, error)

	mu       sync.Mutex
	requests []ChatRequest
}

// Complete implements Completer.
func (s *StubCompleter) Complete(_ context.Context, req ChatRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Respond != nil {
		return s.Respond(req)
	}
	return s.Content, s.ReturnError
}

// Requests returns the prompts seen so far.
func (s *StubCompleter) Requests() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRequest(nil), s.requests...)
}

// SummarizeCall records one call made to a StubSummarizer.
type SummarizeCall struct {
	Inputs string
	Params SummarizationParams
}

// StubSummarizer is a Summarizer for tests. Respond decides the answer
// for each call; when nil the input is echoed back unchanged.
type StubSummarizer struct {
	Respond func(inputs string, params SummarizationParams) (string, error)

	mu    sync.Mutex
	calls []SummarizeCall
}

// Summarize implements Summarizer.
func (s *StubSummarizer) Summarize(_ context.Context, inputs string, params SummarizationParams) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, SummarizeCall{Inputs: inputs, Params: params})
	s.mu.Unlock()

	if s.Respond != nil {
		return s.Respond(inputs, params)
	}
	return inputs, nil
}

// Calls returns every call made so far, in arrival order.
func (s *StubSummarizer) Calls() []SummarizeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SummarizeCall(nil), s.calls...)
}
