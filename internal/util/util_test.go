package util

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDocumentHash(t *testing.T) {
	a := DocumentHash("same text")
	b := DocumentHash("same text")
	c := DocumentHash("other text")

	if a != b {
		t.Errorf("Expected equal hashes for equal text, got %s and %s", a, b)
	}
	if a == c {
		t.Errorf("Expected different hashes for different text")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
	if ShortHash("same text") != a[:16] {
		t.Errorf("Expected short hash to prefix the full hash")
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"inputs":"hello"`) {
			t.Errorf("Expected JSON payload, got %s", body)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := PostJSON(context.Background(), server.Client(), server.URL, "tok", map[string]string{"inputs": "hello"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Expected response body, got %s", body)
	}
}

func TestPostJSONStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer server.Close()

	_, err := PostJSON(context.Background(), server.Client(), server.URL, "", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", statusErr.StatusCode)
	}
	if len(statusErr.Body) != maxErrorBody {
		t.Errorf("Expected body truncated to %d, got %d", maxErrorBody, len(statusErr.Body))
	}
}
