package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		BodyHTML("<p>test</p>").
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "<p>test</p>" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "<p>test</p>")
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerExpenseCreated("2024-05").
		TriggerFormReset().
		TriggerSuccessNotification("Test message").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	var events map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &events); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	for _, name := range []string{EventExpenseCreated, EventFormReset, EventNotification} {
		if _, ok := events[name]; !ok {
			t.Errorf("HX-Trigger missing %q: %s", name, trigger)
		}
	}
	if !strings.Contains(trigger, `"month":"2024-05"`) {
		t.Errorf("expense:created payload missing month: %s", trigger)
	}
	if !strings.Contains(trigger, `"type":"success"`) {
		t.Errorf("notification payload missing type: %s", trigger)
	}
}

func TestHTMXResponseBuilder_RefreshTriggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerCategoriesRefresh().
		TriggerRecurringRefresh().
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	for _, name := range []string{EventCategoriesRefresh, EventRecurringRefresh} {
		if !strings.Contains(trigger, `"`+name+`"`) {
			t.Errorf("HX-Trigger missing %q: %s", name, trigger)
		}
	}
}

func TestHTMXResponseBuilder_NoTriggers(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Write(w)

	if got := w.Header().Get("HX-Trigger"); got != "" {
		t.Errorf("HX-Trigger = %q, want empty", got)
	}
}

func TestHTMXResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Header("X-Custom", "value").
		Status(http.StatusCreated).
		Write(w)

	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestHTMXResponseBuilder_Redirect(t *testing.T) {
	w := httptest.NewRecorder()
	NewHTMXResponse().Redirect("/login").Write(w)

	if got := w.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}
}

func TestHTMXResponseBuilder_Render(t *testing.T) {
	tmpl := template.Must(template.New("").Parse(`{{define "greet"}}<p>Hello {{.}}</p>{{end}}`))

	t.Run("renders template", func(t *testing.T) {
		w := httptest.NewRecorder()
		b := NewHTMXResponse().Status(http.StatusAccepted).Render(tmpl, "greet", "<b>you</b>")
		if b.Err() != nil {
			t.Fatalf("Err() = %v", b.Err())
		}
		b.Write(w)

		if w.Code != http.StatusAccepted {
			t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
		}
		if got := w.Body.String(); got != "<p>Hello &lt;b&gt;you&lt;/b&gt;</p>" {
			t.Errorf("Body = %q", got)
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		w := httptest.NewRecorder()
		b := NewHTMXResponse().TriggerFormReset().Render(tmpl, "missing", nil)
		if b.Err() == nil {
			t.Fatal("expected render error")
		}
		b.Write(w)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status code = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if w.Header().Get("HX-Trigger") != "" {
			t.Error("triggers must not be sent with a failed render")
		}
	})

	t.Run("nil templates", func(t *testing.T) {
		b := NewHTMXResponse().Render(nil, "greet", nil)
		if b.Err() != errTemplatesNotLoaded {
			t.Errorf("Err() = %v, want %v", b.Err(), errTemplatesNotLoaded)
		}
	})
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bad request",
			builder:    BadRequestError("Invalid input"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `<div class="error" role="alert">Invalid input</div>`,
		},
		{
			name:       "unprocessable entity",
			builder:    UnprocessableEntityError("Validation failed"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `<div class="error" role="alert">Validation failed</div>`,
		},
		{
			name:       "bad gateway",
			builder:    BadGatewayError("Failed to load expenses"),
			wantStatus: http.StatusBadGateway,
			wantBody:   `<div class="error" role="alert">Failed to load expenses</div>`,
		},
		{
			name:       "too many requests",
			builder:    ErrorResponse(http.StatusTooManyRequests, "Slow down"),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `<div class="error" role="alert">Slow down</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("Body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequestError("<script>alert('xss')</script>").Write(w)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("Error response did not escape HTML")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("Error response did not properly escape HTML entities")
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()

	MethodNotAllowedError("GET, POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if w.Header().Get("Allow") != "GET, POST" {
		t.Errorf("Allow header = %q, want %q", w.Header().Get("Allow"), "GET, POST")
	}
}

func TestNotificationTypes(t *testing.T) {
	tests := []struct {
		notifType NotificationType
		want      string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		NewHTMXResponse().
			TriggerNotification(tt.notifType, "test", 1000).
			Write(w)

		trigger := w.Header().Get("HX-Trigger")
		if !strings.Contains(trigger, `"type":"`+tt.want+`"`) {
			t.Errorf("Notification type %q not found in trigger: %s", tt.want, trigger)
		}
	}
}
