// Package planai asks a chat completion model for a one-day workout plan and degrades to a static plan when the
// model cannot deliver one.
package planai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coocood/freecache"
	"github.com/myrjola/fitroadmap/internal/errors"
	"github.com/myrjola/fitroadmap/internal/metrics"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrEmptyGoal is returned when the goal text is blank.
var ErrEmptyGoal = errors.NewSentinel("goalText is required")

const (
	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"

	via            = "openai"
	cacheExpiry    = int(time.Hour / time.Second)
	minCacheSizeMB = 1
)

// Exercise is one entry of a generated plan. Key is the scheduler's exercise kind.
type Exercise struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Sets  int    `json:"sets"`
	Reps  int    `json:"reps"`
	Notes string `json:"notes,omitempty"`
}

// Plan is a one-day workout plan.
type Plan struct {
	Label     string     `json:"label"`
	DayKey    string     `json:"dayKey"`
	Exercises []Exercise `json:"exercises"`
}

// Failure explains why the fallback plan was returned.
type Failure struct {
	Via    string `json:"via"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Result is the plan and where it came from. Error is set only for fallback plans.
type Result struct {
	Source string   `json:"source"`
	Plan   Plan     `json:"plan"`
	Error  *Failure `json:"error,omitempty"`
}

// Config configures the model access. An empty APIKey makes every call fall back without network access.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	CacheSizeMB int
}

// Client generates plans. It is safe for concurrent use.
type Client struct {
	client  openai.Client
	cfg     Config
	cache   *freecache.Cache
	metrics *metrics.Manager
	logger  *slog.Logger
}

// New creates a Client. Successful plans are cached per goal text for an hour.
func New(cfg Config, m *metrics.Manager, logger *slog.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// The endpoint falls back instead of retrying.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		client:  openai.NewClient(opts...),
		cfg:     cfg,
		cache:   freecache.NewCache(max(minCacheSizeMB, cfg.CacheSizeMB) * 1024 * 1024), //nolint:mnd // MiB.
		metrics: m,
		logger:  logger,
	}
}

// Plan returns a plan for goalText. Every failure to get a valid plan from the model results in the fallback
// plan with the failure attached, so the only error is ErrEmptyGoal.
func (c *Client) Plan(ctx context.Context, goalText string) (Result, error) {
	goal := strings.TrimSpace(goalText)
	if goal == "" {
		return Result{}, ErrEmptyGoal
	}
	start := time.Now()
	result := c.plan(ctx, goal)
	c.metrics.HistPlanDuration.Observe(time.Since(start).Seconds())
	c.metrics.CounterPlans.WithLabelValues(result.Source).Inc()
	return result, nil
}

func (c *Client) plan(ctx context.Context, goal string) Result {
	key := []byte(cacheKey(goal))
	if cached, err := c.cache.Get(key); err == nil {
		var plan Plan
		if err = json.Unmarshal(cached, &plan); err == nil {
			return Result{Source: SourceCache, Plan: plan, Error: nil}
		}
	}

	plan, failure := c.complete(ctx, goal)
	if failure != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "falling back to static plan",
			slog.Int("status", failure.Status), slog.String("detail", failure.Detail))
		return Result{Source: SourceFallback, Plan: FallbackPlan(goal), Error: failure}
	}

	if data, err := json.Marshal(plan); err == nil {
		if err = c.cache.Set(key, data, cacheExpiry); err != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "failed to cache plan", errors.SlogError(err))
		}
	}
	return Result{Source: SourceLLM, Plan: plan, Error: nil}
}

func cacheKey(goal string) string {
	return strings.ToLower(strings.Join(strings.Fields(goal), " "))
}

func (c *Client) complete(ctx context.Context, goal string) (Plan, *Failure) {
	if c.cfg.APIKey == "" {
		return Plan{}, &Failure{Via: via, Status: http.StatusInternalServerError, Detail: "OpenAI API key is not set"}
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{ //nolint:exhaustruct // optional params.
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a precise assistant that outputs only valid JSON. No prose."),
			openai.UserMessage(buildPrompt(goal)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{ //nolint:exhaustruct // one variant.
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{ //nolint:exhaustruct // type has a default.
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{ //nolint:exhaustruct // no description.
					Name:   "workout_plan",
					Schema: planSchema(),
					Strict: openai.Bool(true),
				},
			},
		},
		Temperature:         openai.Float(0.4), //nolint:mnd // mostly deterministic.
		MaxCompletionTokens: openai.Int(800),   //nolint:mnd // a plan is short.
	})
	if err != nil {
		return Plan{}, failureFrom(err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return Plan{}, &Failure{Via: via, Status: http.StatusBadGateway, Detail: "empty content from model"}
	}
	plan, err := parsePlan(completion.Choices[0].Message.Content)
	if err != nil {
		return Plan{}, &Failure{Via: via, Status: http.StatusBadGateway, Detail: err.Error()}
	}
	return plan, nil
}

func failureFrom(err error) *Failure {
	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr):
		return &Failure{Via: via, Status: apiErr.StatusCode, Detail: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Via: via, Status: http.StatusGatewayTimeout, Detail: err.Error()}
	default:
		return &Failure{Via: via, Status: http.StatusInternalServerError, Detail: err.Error()}
	}
}

// parsePlan extracts the outermost JSON object from text, tolerating prose around it.
func parsePlan(text string) (Plan, error) {
	first, last := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if first == -1 || last <= first {
		return Plan{}, errors.New("no JSON object in model output")
	}
	var plan Plan
	if err := json.Unmarshal([]byte(text[first:last+1]), &plan); err != nil {
		return Plan{}, errors.Wrap(err, "decode plan")
	}
	if plan.Label == "" || plan.DayKey == "" || len(plan.Exercises) == 0 {
		return Plan{}, errors.New("plan is missing label, dayKey or exercises")
	}
	return plan, nil
}

//nolint:gochecknoglobals // static.
var exerciseKeys = []string{"bench", "squat", "dead", "ohp", "row", "pulldown", "accessory", "stretch"}

func planSchema() map[string]any {
	str := map[string]any{"type": "string"}
	integer := map[string]any{"type": "integer"}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":  str,
			"dayKey": str,
			"exercises": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key":   map[string]any{"type": "string", "enum": exerciseKeys},
						"name":  str,
						"sets":  integer,
						"reps":  integer,
						"notes": str,
					},
					"required":             []string{"key", "name", "sets", "reps", "notes"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"label", "dayKey", "exercises"},
		"additionalProperties": false,
	}
}

func buildPrompt(goal string) string {
	return fmt.Sprintf(`あなたはパーソナルトレーナーです。ユーザーの「なりたい体」テキストに基づき、
本日のワークアウトプランを JSON で返してください。日本語で考えて、日本語で出力してください。

要件:
- JSON 以外は一切出力しない
- key は %s のいずれか
- セット数・回数はビギナーに安全な範囲（例: 3〜5 セット、5〜12 回）
- 「過負荷の原則」を意識しつつ、今日は安全に実施できるボリューム
- 器具が埋まる可能性があるので、ビッグ3に固執しない

ユーザー入力: """%s"""`, strings.Join(exerciseKeys, "|"), goal)
}

// FallbackPlan is the static plan for goal: a core and upper body day when the goal mentions the belly or abs
// and a full body day otherwise.
func FallbackPlan(goal string) Plan {
	g := strings.ToLower(goal)
	for _, word := range []string{"腹", "abs", "six pack"} {
		if strings.Contains(g, word) {
			return Plan{
				Label:  "Core & Upper (Fallback)",
				DayKey: "CORE",
				Exercises: []Exercise{
					{Key: "accessory", Name: "Plank", Sets: 3, Reps: 30, Notes: "30秒 ×3"},
					{Key: "pulldown", Name: "Lat Pulldown", Sets: 3, Reps: 10, Notes: ""},
					{Key: "bench", Name: "DB Bench Press", Sets: 3, Reps: 10, Notes: ""},
				},
			}
		}
	}
	return Plan{
		Label:  "Full Body (Fallback)",
		DayKey: "FULL",
		Exercises: []Exercise{
			{Key: "squat", Name: "Goblet Squat", Sets: 3, Reps: 10, Notes: ""},
			{Key: "row", Name: "Seated Row", Sets: 3, Reps: 10, Notes: ""},
			{Key: "ohp", Name: "DB Shoulder Press", Sets: 3, Reps: 10, Notes: ""},
		},
	}
}
