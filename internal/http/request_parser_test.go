package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finweb/internal/core"
)

func TestParseMonthParam(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		query string
		want  core.Month
	}{
		{"valid month", "month=2024-02", core.Month{Year: 2024, Month: 2}},
		{"december", "month=2023-12", core.Month{Year: 2023, Month: 12}},
		{"missing", "", core.Month{Year: 2024, Month: 5}},
		{"malformed", "month=2024-2", core.Month{Year: 2024, Month: 5}},
		{"out of range", "month=2024-13", core.Month{Year: 2024, Month: 5}},
		{"garbage", "month=abc", core.Month{Year: 2024, Month: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if got := ParseMonthParam(q, now); got != tt.want {
				t.Errorf("ParseMonthParam(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseTabParam(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"uuid", "tab=0b7c53c2-3c1e-4d5f-9a43-2a1f0d6e8b11", "0b7c53c2-3c1e-4d5f-9a43-2a1f0d6e8b11"},
		{"upper case normalised", "tab=0B7C53C2-3C1E-4D5F-9A43-2A1F0D6E8B11", "0b7c53c2-3c1e-4d5f-9a43-2a1f0d6e8b11"},
		{"missing", "", ""},
		{"not a uuid", "tab=%3Cscript%3E", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if got := ParseTabParam(q); got != tt.want {
				t.Errorf("ParseTabParam(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5, "recurring": true}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}

	if !parser.Bool("recurring") {
		t.Error("Bool('recurring') = false, want true")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100&recurring=on"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}

	if !parser.Bool("recurring") {
		t.Error("Bool('recurring') = false, want true for checkbox value 'on'")
	}
	if parser.Bool("missing") {
		t.Error("Bool('missing') = true, want false")
	}
}

func TestRequestBodyParser_Sanitizes(t *testing.T) {
	body := "description=" + url.QueryEscape("  Coffee\x00\x07 beans  ")
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("description"); got != "Coffee beans" {
		t.Errorf("Get('description') = %q, want %q", got, "Coffee beans")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"id": `))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("Parse() expected error for truncated JSON")
	}
	if err := parser.Parse(); err == nil {
		t.Error("second Parse() should return the same error")
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"DELETE allowed with multiple", http.MethodDelete, []string{http.MethodDelete, http.MethodPost}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestRequirePOST(t *testing.T) {
	postReq := httptest.NewRequest(http.MethodPost, "/test", nil)
	if result := RequirePOST(postReq); result != nil {
		t.Error("RequirePOST should allow POST requests")
	}

	getReq := httptest.NewRequest(http.MethodGet, "/test", nil)
	if result := RequirePOST(getReq); result == nil {
		t.Error("RequirePOST should reject GET requests")
	}
}

func TestRequireGET(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead} {
		if RequireGET(httptest.NewRequest(m, "/test", nil)) != nil {
			t.Errorf("RequireGET should allow %s", m)
		}
	}
	if RequireGET(httptest.NewRequest(http.MethodPost, "/test", nil)) == nil {
		t.Error("RequireGET should reject POST requests")
	}
}

func TestRequireDeleteOrPOST(t *testing.T) {
	tests := []struct {
		method  string
		wantErr bool
	}{
		{http.MethodPost, false},
		{http.MethodDelete, false},
		{http.MethodGet, true},
		{http.MethodPut, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireDeleteOrPOST(req)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestParseBodyOrFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("field=value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p, fail := ParseBodyOrFail(req)
	if fail != nil {
		t.Fatal("Expected nil for valid form, got error response")
	}
	if p.Get("field") != "value" {
		t.Error("Form was not parsed correctly")
	}

	bad := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("{not json"))
	if _, fail := ParseBodyOrFail(bad); fail == nil {
		t.Fatal("Expected error response for malformed JSON")
	} else {
		w := httptest.NewRecorder()
		fail.Write(w)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status code = %d, want %d", w.Code, http.StatusBadRequest)
		}
	}
}
