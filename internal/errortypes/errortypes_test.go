package errortypes

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name  string
		err   *AppError
		want  ErrorType
		check func(error) bool
	}{
		{"input", InputError(cause, "bad input"), ErrorTypeInput, IsInputError},
		{"remote", RemoteCallError(cause, "call failed"), ErrorTypeRemoteCall, IsRemoteCallError},
		{"recursion", RecursionLimitError(cause, "too deep"), ErrorTypeRecursionLimit, IsRecursionLimitError},
		{"ranking", RankingError(cause, "no ranking"), ErrorTypeRanking, IsRankingError},
		{"not found", NotFoundError(cause, "missing"), ErrorTypeNotFound, IsNotFoundError},
		{"database", DatabaseError(cause, "db"), ErrorTypeDatabase, IsDatabaseError},
		{"config", ConfigError(cause, "config"), ErrorTypeConfig, IsConfigError},
		{"internal", InternalError(cause, "internal"), ErrorTypeInternal, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.want {
				t.Errorf("Expected type %q, got %q", tt.want, tt.err.Type)
			}
			if !errors.Is(tt.err, cause) {
				t.Error("Expected errors.Is to find the cause")
			}
			if tt.err.StackInfo == "" {
				t.Error("Expected stack info to be captured")
			}
			if tt.check != nil && !tt.check(tt.err) {
				t.Errorf("Expected Is helper to match %q", tt.want)
			}
			if TypeOf(tt.err) != tt.want {
				t.Errorf("Expected TypeOf %q, got %q", tt.want, TypeOf(tt.err))
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := InputError(errors.New("empty"), "nothing to summarize")
	if err.Error() != "nothing to summarize: empty" {
		t.Errorf("Expected 'nothing to summarize: empty', got %q", err.Error())
	}

	bare := &AppError{Err: errors.New("plain")}
	if bare.Error() != "plain" {
		t.Errorf("Expected 'plain', got %q", bare.Error())
	}

	nilCause := InternalError(nil, "oops")
	if nilCause.Err == nil {
		t.Error("Expected a placeholder cause for a nil error")
	}
}

func TestWrappedHelpers(t *testing.T) {
	err := fmt.Errorf("summarize: %w", RemoteCallError(errors.New("503"), "summarization request failed"))

	if !IsRemoteCallError(err) {
		t.Error("Expected wrapped remote call error to be detected")
	}
	if IsInputError(err) {
		t.Error("Did not expect an input error")
	}
	if TypeOf(errors.New("plain")) != "" {
		t.Error("Expected empty type for a plain error")
	}
}

func TestFields(t *testing.T) {
	err := RemoteCallError(errors.New("timeout"), "chat request failed").
		WithField("service", "chat").
		WithFields(map[string]interface{}{"status": 504, "attempt": 1})

	if err.Fields["service"] != "chat" {
		t.Errorf("Expected service 'chat', got %v", err.Fields["service"])
	}
	if err.Fields["status"] != 504 {
		t.Errorf("Expected status 504, got %v", err.Fields["status"])
	}
	if len(err.Fields) != 3 {
		t.Errorf("Expected 3 fields, got %d", len(err.Fields))
	}

	empty := &AppError{Err: errors.New("x")}
	empty.WithField("k", "v")
	if empty.Fields["k"] != "v" {
		t.Error("Expected WithField to allocate the field map")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogError(logger, InputError(errors.New("too short"), "document too short").WithField("word_count", 12))
	out := buf.String()
	for _, want := range []string{"document too short", "type=input", "word_count=12", "original_error=\"too short\""} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got %q", want, out)
		}
	}

	buf.Reset()
	LogError(logger, errors.New("plain failure"))
	if !strings.Contains(buf.String(), "plain failure") {
		t.Errorf("Expected plain error to be logged, got %q", buf.String())
	}
}

func TestFieldsOf(t *testing.T) {
	err := fmt.Errorf("gate: %w", InputError(errors.New("short"), "too short").WithField("word_count", 12))

	fields := FieldsOf(err)
	if fields["word_count"] != 12 {
		t.Errorf("Expected word_count 12, got %v", fields["word_count"])
	}

	fields["word_count"] = 0
	if FieldsOf(err)["word_count"] != 12 {
		t.Error("Expected FieldsOf to return a copy")
	}

	if FieldsOf(errors.New("plain")) != nil {
		t.Error("Expected nil fields for a plain error")
	}
	if FieldsOf(InternalError(errors.New("x"), "x")) != nil {
		t.Error("Expected nil fields for an error without fields")
	}
}
