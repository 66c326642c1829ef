package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

// decodeToast extracts the showToast payload from an HX-Trigger header.
func decodeToast(t *testing.T, header string) map[string]string {
	t.Helper()
	if header == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(header), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	raw, ok := parsed["showToast"]
	if !ok {
		t.Fatal("expected showToast key in HX-Trigger JSON")
	}
	var toast map[string]string
	if err := json.Unmarshal(raw, &toast); err != nil {
		t.Fatalf("showToast value is not valid JSON: %v", err)
	}
	return toast
}

func TestSetToast(t *testing.T) {
	tests := []struct {
		name      string
		toastType string
		message   string
	}{
		{"success", ToastSuccess, "Item saved"},
		{"warning", ToastWarning, "Item saved, but PST could not be updated"},
		{"quotes", ToastInfo, `Scope "Framing" created`},
		{"markup", ToastError, `<script>alert("x")</script>`},
		{"unicode", ToastInfo, "Saved ✔"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			SetToast(e, tt.toastType, tt.message)

			toast := decodeToast(t, rec.Header().Get("HX-Trigger"))
			if toast["type"] != tt.toastType || toast["message"] != tt.message {
				t.Errorf("toast = %v, want type %q message %q", toast, tt.toastType, tt.message)
			}
			if !strings.Contains(rec.Header().Get("Set-Cookie"), "flash_toast=") {
				t.Error("expected flash_toast cookie")
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", `{"estimateChanged":{"scope":"s1"}}`)

	SetToast(e, ToastSuccess, "Merged")

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := parsed["estimateChanged"]; !ok {
		t.Error("expected estimateChanged to be preserved after merge")
	}
	if decodeToast(t, rec.Header().Get("HX-Trigger"))["message"] != "Merged" {
		t.Error("expected merged toast message")
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, ToastError, "Overwritten")

	if decodeToast(t, rec.Header().Get("HX-Trigger"))["message"] != "Overwritten" {
		t.Error("expected toast after overwriting invalid header")
	}
}

func TestErrorToast(t *testing.T) {
	tests := []struct {
		name string
		code int
		msg  string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input"},
		{"not found", http.StatusNotFound, "Scope not found"},
		{"server error", http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Response = rec

			if err := ErrorToast(e, tt.code, tt.msg); err != nil {
				t.Fatalf("ErrorToast returned error: %v", err)
			}
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none")
			}
			if rec.Body.String() != tt.msg {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.msg)
			}
			if decodeToast(t, rec.Header().Get("HX-Trigger"))["type"] != ToastError {
				t.Error("expected error toast")
			}
		})
	}
}
