package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSONErrorEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	if err := writeJSONError(rr, http.StatusForbidden, "you shall not pass"); err != nil {
		t.Fatalf("writeJSONError: %v", err)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Error("error envelope must carry success=false")
	}
	if body.Message != "you shall not pass" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.Status != http.StatusForbidden {
		t.Errorf("expected status 403 in body, got %d", body.Status)
	}
}
