package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/myrjola/fitroadmap/internal/planai"
)

const generatedPlan = `{"label":"Leg Day","dayKey":"LEGS","exercises":[` +
	`{"key":"squat","name":"Back Squat","sets":5,"reps":5,"notes":""}]}`

// fakeOpenAI answers every chat completion with generatedPlan.
func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": generatedPlan},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_application_plan(t *testing.T) {
	t.Run("Fallback without API key", func(t *testing.T) {
		var (
			ctx    = t.Context()
			server = startServer(t, testLookupEnv)
			client = server.Client()
		)
		var result planai.Result
		status, err := client.JSON(ctx, http.MethodPost, "/api/plan", planRequest{GoalText: "腹筋を割りたい"}, &result)
		if err != nil {
			t.Fatalf("Failed to post plan: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected 200, got %d", status)
		}
		if result.Source != planai.SourceFallback || result.Plan.DayKey != "CORE" {
			t.Errorf("Expected the core fallback plan, got %s %s", result.Source, result.Plan.DayKey)
		}
		if result.Error == nil || result.Error.Status != http.StatusInternalServerError {
			t.Errorf("Expected the missing key failure, got %+v", result.Error)
		}

		if status, err = client.JSON(ctx, http.MethodPost, "/api/plan", planRequest{GoalText: "  "}, nil); err != nil {
			t.Fatalf("Failed to post plan: %v", err)
		}
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400 for an empty goal, got %d", status)
		}
	})

	t.Run("Generated plan", func(t *testing.T) {
		model := fakeOpenAI(t)
		var (
			ctx    = t.Context()
			server = startServer(t, lookupEnvWith(map[string]string{
				"FITROADMAP_OPENAI_API_KEY":  "test-key",
				"FITROADMAP_OPENAI_BASE_URL": model.URL,
			}))
			client = server.Client()
		)
		var result planai.Result
		status, err := client.JSON(ctx, http.MethodPost, "/api/plan", planRequest{GoalText: "脚を太くしたい"}, &result)
		if err != nil {
			t.Fatalf("Failed to post plan: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected 200, got %d", status)
		}
		if result.Source != planai.SourceLLM || result.Error != nil {
			t.Errorf("Expected a generated plan, got %s %+v", result.Source, result.Error)
		}
		if result.Plan.Label != "Leg Day" || len(result.Plan.Exercises) != 1 {
			t.Errorf("Unexpected plan %+v", result.Plan)
		}

		metricsText := getText(t, client, "/metrics")
		if !strings.Contains(metricsText, `fitroadmap_web_plans_total{source="llm"} 1`) {
			t.Error("Expected the generated plan to be counted")
		}
	})
}
