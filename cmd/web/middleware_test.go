package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/myrjola/fitroadmap/internal/contexthelpers"
	"github.com/myrjola/fitroadmap/internal/metrics"
	"github.com/myrjola/fitroadmap/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type timeoutResponseWriter struct {
	httptest.ResponseRecorder
}

func newTimeoutResponseWriter() *timeoutResponseWriter {
	return &timeoutResponseWriter{
		ResponseRecorder: *httptest.NewRecorder(),
	}
}

// SetWriteDeadline is needed to not get "feature not implemented" error.
func (w *timeoutResponseWriter) SetWriteDeadline(_ time.Time) error {
	return nil
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	m, reg := metrics.NewTestManagerAndRegistry()
	return &application{ //nolint:exhaustruct // this is a test
		logger:   testhelpers.NewLogger(testhelpers.NewWriter(t)),
		metrics:  m,
		gatherer: reg,
		now:      time.Now,
	}
}

func Test_application_timeout(t *testing.T) {
	tests := []struct {
		name     string
		sleepMS  int
		timesOut bool
	}{
		{
			name:     "completes within timeout",
			sleepMS:  500,
			timesOut: false,
		},
		{
			name:     "times out",
			sleepMS:  3000,
			timesOut: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := newTestApplication(t)
				handler := app.routes()

				url := fmt.Sprintf("/api/test/timeout?sleep_ms=%d", tt.sleepMS)
				req := httptest.NewRequest(http.MethodGet, url, nil)
				w := newTimeoutResponseWriter()

				handler.ServeHTTP(w, req)

				time.Sleep(time.Duration(tt.sleepMS) * time.Millisecond)

				if tt.timesOut {
					// TimeoutHandler returns 503 Service Unavailable with the configured message.
					if w.Code != http.StatusServiceUnavailable {
						t.Errorf("Expected status 503 on timeout, got %d", w.Code)
					}
					if !strings.Contains(w.Body.String(), "timed out") {
						t.Errorf("Expected timeout message in response body, got: %s", w.Body.String())
					}
				} else if w.Code != http.StatusOK {
					t.Errorf("Expected status 200, got %d", w.Code)
				}

				got := testutil.ToFloat64(app.metrics.CounterRequests.WithLabelValues(http.MethodGet,
					"GET /api/test/timeout", fmt.Sprint(w.Code)))
				if got != 1 {
					t.Errorf("Expected the request to be counted once under its route, got %v", got)
				}
			})
		})
	}
}

func Test_application_timeout_extended(t *testing.T) {
	tests := []struct {
		name     string
		sleep    time.Duration
		timesOut bool
	}{
		{name: "slow handler completes", sleep: 14 * time.Second, timesOut: false},
		{name: "slow handler times out", sleep: 17 * time.Second, timesOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				app := newTestApplication(t)
				handler := app.timeout(16 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					time.Sleep(tt.sleep)
					w.WriteHeader(http.StatusOK)
				}))

				w := newTimeoutResponseWriter()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/plan", nil))
				time.Sleep(tt.sleep)

				want := http.StatusOK
				if tt.timesOut {
					want = http.StatusServiceUnavailable
				}
				if w.Code != want {
					t.Errorf("Expected status %d, got %d", want, w.Code)
				}
			})
		})
	}
}

func Test_secureHeaders(t *testing.T) {
	var nonce string
	handler := secureHeaders(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		nonce = contexthelpers.CSPNonce(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exercises", nil))

	if nonce == "" {
		t.Fatal("Expected a CSP nonce in the request context")
	}
	csp := w.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "style-src 'nonce-"+nonce+"'") {
		t.Errorf("Expected the nonce in the policy, got %q", csp)
	}
	if !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("Expected a locked down default source, got %q", csp)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "deny" {
		t.Errorf("Expected X-Frame-Options deny, got %q", got)
	}
}

func Test_application_recoverPanic(t *testing.T) {
	app := newTestApplication(t)
	handler := app.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if got := testutil.ToFloat64(app.metrics.CounterPanics); got != 1 {
		t.Errorf("Expected one recorded panic, got %v", got)
	}
}
