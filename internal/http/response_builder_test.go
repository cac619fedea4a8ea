package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuilderDefaults(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Write(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("default status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("HX-Trigger") != "" {
		t.Fatalf("unexpected HX-Trigger header: %q", rec.Header().Get("HX-Trigger"))
	}
}

func TestBuilderTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerExpenseCreated(42).
		TriggerFormReset().
		Write(rec)

	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &events); err != nil {
		t.Fatalf("HX-Trigger not JSON: %v", err)
	}
	if _, ok := events["expense:created"]; !ok {
		t.Fatalf("missing expense:created")
	}
	if _, ok := events["form:reset"]; !ok {
		t.Fatalf("missing form:reset")
	}

	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(events["expense:created"], &payload); err != nil || payload.ID != 42 {
		t.Fatalf("expense:created payload = %s", events["expense:created"])
	}
}

func TestBuilderBodyAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		Status(http.StatusCreated).
		BodyHTML(`<div class="success">done</div>`).
		Write(rec)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "done") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rec)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("message not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Fatalf("expected escaped markup: %s", body)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("POST, DELETE").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if rec.Header().Get("Allow") != "POST, DELETE" {
		t.Fatalf("Allow = %q", rec.Header().Get("Allow"))
	}
}
