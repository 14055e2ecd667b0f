package tools

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Theomnitron/SummaRead/internal/pipeline"
	"github.com/Theomnitron/SummaRead/internal/sessionstore"
)

func TestNewSummaryResponse(t *testing.T) {
	rec := sessionstore.NewRecord("session-1", "hash", &pipeline.SummaryResult{
		Heading: "Heading",
		Outline: pipeline.Outline{MainPoints: []string{"p"}, KeyDiscoveries: []string{}},
	}, time.Hour)

	resp := NewSummaryResponse(rec)
	if resp.Status != StatusSuccess {
		t.Errorf("Expected status 'success', got '%s'", resp.Status)
	}
	if resp.SessionID != "session-1" || resp.ResultID != rec.ResultID {
		t.Errorf("Expected ids from record, got session %q result %q", resp.SessionID, resp.ResultID)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal SummaryResponse: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal JSON into map: %v", err)
	}
	summary, ok := jsonMap["summary"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected summary object, got %v", jsonMap["summary"])
	}
	outline := summary["outline"].(map[string]interface{})
	if _, ok := outline["key_discoveries"].([]interface{}); !ok {
		t.Errorf("Expected key_discoveries to be an array, got %v", outline["key_discoveries"])
	}
	if _, ok := jsonMap["error"]; ok {
		t.Error("Expected error to be omitted on success")
	}
}

func TestErrorResponsesOmitPayload(t *testing.T) {
	data, err := json.Marshal(ExportSummaryPDFResponse{Status: StatusError, Error: "no summary for session"})
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}
	want := `{"status":"error","error":"no summary for session"}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestRequestFieldNames(t *testing.T) {
	var req SummarizePDFRequest
	if err := json.Unmarshal([]byte(`{"session_id":"s","pdf_base64":"JVBERg=="}`), &req); err != nil {
		t.Fatalf("Failed to unmarshal SummarizePDFRequest: %v", err)
	}
	if req.SessionID != "s" || req.PDFBase64 != "JVBERg==" {
		t.Errorf("Unexpected request: %+v", req)
	}

	var speech SpeechScriptRequest
	if err := json.Unmarshal([]byte(`{"session_id":"s","accent":"co.in"}`), &speech); err != nil {
		t.Fatalf("Failed to unmarshal SpeechScriptRequest: %v", err)
	}
	if speech.Accent != "co.in" {
		t.Errorf("Expected accent 'co.in', got '%s'", speech.Accent)
	}
}
