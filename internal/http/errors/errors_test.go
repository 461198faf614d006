package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError_AppErrorInChain(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("resume: %w", ErrSessionMismatch.WithDetail("expired")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "SESSION_MISMATCH" || body["detail"] != "expired" {
		t.Fatalf("body = %v", body)
	}
	if ErrSessionMismatch.Detail != "" {
		t.Fatal("WithDetail mutated the base error")
	}
}

func TestWriteError_GenericIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWriteUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteUnauthorized(rec, NewUnauthorizedClient(MsgMissingAuthorization))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	want := map[string]any{
		"realm":             "client",
		"error":             "unauthorized_client",
		"error_description": "Missing authorization header",
		"statusCode":        float64(403),
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s = %v, want %v", k, body[k], v)
		}
	}
}
