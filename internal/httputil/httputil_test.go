package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusUnprocessableEntity, "The company cannot be moved", map[string]interface{}{
		"reason": "root_not_movable",
		"status": 200, // must not override the standard member
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["reason"] != "root_not_movable" {
		t.Errorf("reason = %v", body["reason"])
	}
	if body["status"] != float64(422) {
		t.Errorf("status member = %v, want 422", body["status"])
	}
	if !strings.Contains(body["type"].(string), "rfc4918") {
		t.Errorf("type = %v", body["type"])
	}
}

func TestOptionalString(t *testing.T) {
	var body struct {
		Item OptionalString `json:"item"`
	}

	tests := []struct {
		json        string
		wantPresent bool
		wantValue   *string
	}{
		{`{}`, false, nil},
		{`{"item": null}`, true, nil},
		{`{"item": "site_3"}`, true, strPtr("site_3")},
	}

	for _, tt := range tests {
		body.Item = OptionalString{}
		if err := json.Unmarshal([]byte(tt.json), &body); err != nil {
			t.Fatalf("%s: %v", tt.json, err)
		}
		if body.Item.Present != tt.wantPresent {
			t.Errorf("%s: Present = %v", tt.json, body.Item.Present)
		}
		if (body.Item.Value == nil) != (tt.wantValue == nil) ||
			(body.Item.Value != nil && *body.Item.Value != *tt.wantValue) {
			t.Errorf("%s: Value = %v", tt.json, body.Item.Value)
		}
	}
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	var dest struct {
		ID string `json:"id"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"x","extra":1}`))
	if err := ParseJSON(httptest.NewRecorder(), r, &dest); err == nil {
		t.Error("expected unknown field error")
	}
}

func strPtr(s string) *string { return &s }
