package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestParseTaskID(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		pathValue  string
		wantOK     bool
		wantID     int64
		wantStatus int
		wantError  string
	}{
		{name: "valid id", pathValue: "42", wantOK: true, wantID: 42},
		{name: "not a number", pathValue: "abc", wantStatus: http.StatusBadRequest, wantError: "invalid_task_id"},
		{name: "zero", pathValue: "0", wantStatus: http.StatusBadRequest, wantError: "invalid_task_id"},
		{name: "negative", pathValue: "-3", wantStatus: http.StatusBadRequest, wantError: "invalid_task_id"},
		{name: "empty", pathValue: "", wantStatus: http.StatusBadRequest, wantError: "invalid_task_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.SetPathValue("task_id", tt.pathValue)
			rec := httptest.NewRecorder()

			id, ok := ParseTaskID(rec, req, logger)

			if ok != tt.wantOK {
				t.Errorf("ParseTaskID() ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("ParseTaskID() id = %d, want %d", id, tt.wantID)
			}

			if !tt.wantOK {
				if rec.Code != tt.wantStatus {
					t.Errorf("ParseTaskID() status = %v, want %v", rec.Code, tt.wantStatus)
				}

				var resp map[string]string
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp["error"] != tt.wantError {
					t.Errorf("ParseTaskID() error = %v, want %v", resp["error"], tt.wantError)
				}
			}
		})
	}
}

func TestParseTaskInfoAndPeopleIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/test", nil)
	req.SetPathValue("info_id", "7")
	req.SetPathValue("people_id", "x")
	rec := httptest.NewRecorder()

	infoID, ok := ParseTaskInfoID(rec, req, zap.NewNop())
	if !ok || infoID != 7 {
		t.Fatalf("ParseTaskInfoID() = %d, %v, want 7, true", infoID, ok)
	}

	if _, ok := ParsePeopleID(rec, req, zap.NewNop()); ok {
		t.Fatal("ParsePeopleID() accepted a non-numeric id")
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["error"] != "invalid_people_id" {
		t.Errorf("error = %q, want invalid_people_id", resp["error"])
	}
}
