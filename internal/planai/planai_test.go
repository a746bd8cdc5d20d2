package planai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitroadmap/internal/metrics"
	"github.com/myrjola/fitroadmap/internal/planai"
	"github.com/myrjola/fitroadmap/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const generatedPlan = `{"label":"Push Day","dayKey":"PUSH","exercises":[` +
	`{"key":"bench","name":"Bench Press","sets":4,"reps":8,"notes":""},` +
	`{"key":"ohp","name":"Overhead Press","sets":3,"reps":10,"notes":"slow eccentric"}]}`

// fakeModel serves chat completions whose message content is content, or status with an error body when
// status is not 200.
func fakeModel(t *testing.T, status int, content string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
			return
		}
		body, err := json.Marshal(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
		if err != nil {
			t.Errorf("marshal completion: %v", err)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(t *testing.T, baseURL, apiKey string) (*planai.Client, *metrics.Manager) {
	t.Helper()
	m, _ := metrics.NewTestManagerAndRegistry()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	client := planai.New(planai.Config{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       "gpt-4o-mini",
		Timeout:     5 * time.Second,
		CacheSizeMB: 1,
	}, m, logger)
	return client, m
}

func TestClient_Plan(t *testing.T) {
	t.Parallel()
	srv, calls := fakeModel(t, http.StatusOK, "Here you go:\n"+generatedPlan+"\nGood luck!")
	client, m := newClient(t, srv.URL, "test-key")
	ctx := context.Background()

	got, err := client.Plan(ctx, "  Bigger chest ")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := planai.Result{
		Source: planai.SourceLLM,
		Plan: planai.Plan{
			Label:  "Push Day",
			DayKey: "PUSH",
			Exercises: []planai.Exercise{
				{Key: "bench", Name: "Bench Press", Sets: 4, Reps: 8, Notes: ""},
				{Key: "ohp", Name: "Overhead Press", Sets: 3, Reps: 10, Notes: "slow eccentric"},
			},
		},
		Error: nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}

	// The same goal with different case and spacing is served from the cache.
	cached, err := client.Plan(ctx, "bigger   CHEST")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want.Source = planai.SourceCache
	if diff := cmp.Diff(want, cached); diff != "" {
		t.Errorf("cached Plan() mismatch (-want +got):\n%s", diff)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("model called %d times, want 1", n)
	}
	if got := testutil.ToFloat64(m.CounterPlans.WithLabelValues(planai.SourceCache)); got != 1 {
		t.Errorf("cache plans = %v, want 1", got)
	}
}

func TestClient_Plan_fallback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		status     int
		content    string
		apiKey     string
		goal       string
		wantLabel  string
		wantStatus int
		wantCalls  int32
	}{
		{
			name:       "missing API key",
			status:     http.StatusOK,
			content:    generatedPlan,
			apiKey:     "",
			goal:       "get stronger legs",
			wantLabel:  "Full Body (Fallback)",
			wantStatus: http.StatusInternalServerError,
			wantCalls:  0,
		},
		{
			name:       "upstream error status",
			status:     http.StatusTooManyRequests,
			apiKey:     "test-key",
			goal:       "腹筋を割りたい",
			wantLabel:  "Core & Upper (Fallback)",
			wantStatus: http.StatusTooManyRequests,
			wantCalls:  1,
		},
		{
			name:       "empty content",
			status:     http.StatusOK,
			content:    "",
			apiKey:     "test-key",
			goal:       "Six Pack by summer",
			wantLabel:  "Core & Upper (Fallback)",
			wantStatus: http.StatusBadGateway,
			wantCalls:  1,
		},
		{
			name:       "not JSON",
			status:     http.StatusOK,
			content:    "I cannot help with that.",
			apiKey:     "test-key",
			goal:       "run a marathon",
			wantLabel:  "Full Body (Fallback)",
			wantStatus: http.StatusBadGateway,
			wantCalls:  1,
		},
		{
			name:       "incomplete plan",
			status:     http.StatusOK,
			content:    `{"label":"Legs","exercises":[]}`,
			apiKey:     "test-key",
			goal:       "visible abs",
			wantLabel:  "Core & Upper (Fallback)",
			wantStatus: http.StatusBadGateway,
			wantCalls:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, calls := fakeModel(t, tt.status, tt.content)
			client, m := newClient(t, srv.URL, tt.apiKey)

			got, err := client.Plan(context.Background(), tt.goal)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if got.Source != planai.SourceFallback {
				t.Errorf("Source = %q, want %q", got.Source, planai.SourceFallback)
			}
			if got.Plan.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got.Plan.Label, tt.wantLabel)
			}
			if got.Error == nil {
				t.Fatal("Error = nil, want failure details")
			}
			if got.Error.Via != "openai" || got.Error.Status != tt.wantStatus || got.Error.Detail == "" {
				t.Errorf("Error = %+v, want via openai with status %d and a detail", *got.Error, tt.wantStatus)
			}
			if n := calls.Load(); n != tt.wantCalls {
				t.Errorf("model called %d times, want %d", n, tt.wantCalls)
			}
			if n := testutil.ToFloat64(m.CounterPlans.WithLabelValues(planai.SourceFallback)); n != 1 {
				t.Errorf("fallback plans = %v, want 1", n)
			}

			// Fallbacks are not cached.
			if _, err = client.Plan(context.Background(), tt.goal); err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if n := testutil.ToFloat64(m.CounterPlans.WithLabelValues(planai.SourceCache)); n != 0 {
				t.Errorf("cache plans = %v, want 0", n)
			}
		})
	}
}

func TestClient_Plan_emptyGoal(t *testing.T) {
	t.Parallel()
	client, _ := newClient(t, "", "test-key")
	if _, err := client.Plan(context.Background(), " \n\t"); !errors.Is(err, planai.ErrEmptyGoal) {
		t.Errorf("Plan() error = %v, want %v", err, planai.ErrEmptyGoal)
	}
}

func TestFallbackPlan(t *testing.T) {
	t.Parallel()
	tests := []struct {
		goal       string
		wantDayKey string
	}{
		{"お腹を引き締めたい", "CORE"},
		{"I want ABS", "CORE"},
		{"six pack", "CORE"},
		{"bigger arms", "FULL"},
		{"", "FULL"},
	}
	for _, tt := range tests {
		plan := planai.FallbackPlan(tt.goal)
		if plan.DayKey != tt.wantDayKey {
			t.Errorf("FallbackPlan(%q).DayKey = %q, want %q", tt.goal, plan.DayKey, tt.wantDayKey)
		}
		if len(plan.Exercises) != 3 {
			t.Errorf("FallbackPlan(%q) has %d exercises, want 3", tt.goal, len(plan.Exercises))
		}
	}
}
