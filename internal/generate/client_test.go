package generate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClient_Success(t *testing.T) {
	var got map[string]any
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":"Hello world"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 0)
	content, err := c.Generate(context.Background(), Request{Topic: "AI in healthcare"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if content != "Hello world" {
		t.Fatalf("unexpected content %q", content)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}

	prefs, ok := got["userPreferences"].(map[string]any)
	if !ok {
		t.Fatalf("missing userPreferences in %v", got)
	}
	jobs, ok := prefs["job_descriptions"].([]any)
	if !ok || len(jobs) != 0 {
		t.Fatalf("expected empty job_descriptions array, got %#v", prefs["job_descriptions"])
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantReason string
	}{
		{"structured error", http.StatusTooManyRequests, `{"error":"rate limited"}`, 429, "rate limited"},
		{"error without message", http.StatusInternalServerError, `{}`, 500, fallbackServiceReason},
		{"non json error", http.StatusBadGateway, `<html>bad gateway</html>`, 502, fallbackServiceReason},
		{"2xx without content", http.StatusOK, `{"error":"odd"}`, 200, fallbackServiceReason},
		{"2xx not json", http.StatusOK, `hello`, 200, fallbackServiceReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, 0).Generate(context.Background(), Request{Topic: "x"})
			var serr *ServiceError
			if !errors.As(err, &serr) {
				t.Fatalf("expected ServiceError, got %v", err)
			}
			if serr.Status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", serr.Status, tt.wantStatus)
			}
			if got := Reason(err); got != tt.wantReason {
				t.Fatalf("reason = %q, want %q", got, tt.wantReason)
			}
		})
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, 0).Generate(context.Background(), Request{Topic: "x"})
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if Reason(err) != transportReason {
		t.Fatalf("unexpected reason %q", Reason(err))
	}
	if Reason(err) == Reason(&ServiceError{Status: 500}) {
		t.Fatalf("transport and service reasons must differ")
	}
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPClient(srv.URL, 0).Generate(ctx, Request{Topic: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHTTPClient_ForwardsAccessToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"content":"ok"}`))
	}))
	defer srv.Close()

	ctx := WithAccessToken(context.Background(), "tok-1")
	if _, err := NewHTTPClient(srv.URL, 0).Generate(ctx, Request{Topic: "t"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if auth != "Bearer tok-1" {
		t.Fatalf("unexpected authorization %q", auth)
	}
}
