package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/e2etest"
	"github.com/myrjola/fitroadmap/internal/logging"
	"github.com/myrjola/fitroadmap/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	onboardingTimeout       = 30 * time.Second
	scenarioTimeout         = 30 * time.Second
	historyTimeout          = 5 * time.Minute
	maxConcurrentOnboarding = 10
	maxConcurrentOperations = 20
	numUsers                = 10
	baseBodyWeight          = 50.0
	bodyWeightRange         = 40
	baseLiftWeight          = 30.0
	liftWeightRange         = 40
	baseReps                = 5
	repsRange               = 6
	logHistoryWeeks         = 26 // 6 months of training logs
	daysPerWeek             = 7
	successRateThreshold    = 95.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
)

// OnboardedUser is an anonymous client that has saved a profile.
type OnboardedUser struct {
	Client *e2etest.Client
	Index  int
}

func expectOK(status int, err error) error {
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", status)
	}
	return nil
}

// OnboardUser creates a new anonymous client and saves a random profile for it.
func OnboardUser(ctx context.Context, url string, userIndex int, logger *slog.Logger) (*OnboardedUser, error) {
	// Every client gets its own session cookie and thus its own user.
	client, err := e2etest.NewClient(url)
	if err != nil {
		return nil, fmt.Errorf("creating client for user %d: %w", userIndex, err)
	}

	form := map[string]any{
		"experience":   []string{"初心者", "中級者", "経験者"}[rand.IntN(3)], //nolint:gosec,mnd // load test data.
		"goals":        []string{"筋肉をつけたい"},
		"bodyWeightKg": baseBodyWeight + float64(rand.IntN(bodyWeightRange)), //nolint:gosec // load test data.
		"goalType":     "bulk",
	}
	if err = expectOK(client.JSON(ctx, http.MethodPut, "/api/profile", form, nil)); err != nil {
		return nil, fmt.Errorf("save profile for user %d: %w", userIndex, err)
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "User onboarded", slog.Int("user_index", userIndex))
	return &OnboardedUser{Client: client, Index: userIndex}, nil
}

// SetupUsers onboards numUsers users concurrently.
func SetupUsers(ctx context.Context, url string, logger *slog.Logger) ([]*OnboardedUser, error) {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting user onboarding", slog.Int("num_users", numUsers))

	var (
		users   = make([]*OnboardedUser, 0, numUsers)
		usersMu sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOnboarding)
	for i := range numUsers {
		g.Go(func() error {
			userCtx, cancel := context.WithTimeout(gctx, onboardingTimeout)
			defer cancel()

			user, err := OnboardUser(userCtx, url, i, logger)
			if err != nil {
				return err
			}
			usersMu.Lock()
			users = append(users, user)
			usersMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "Some user onboardings failed",
			slog.Int("successful_count", len(users)))
		return users, fmt.Errorf("onboarding failures: %w", err)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "All users onboarded successfully", slog.Int("total_users", len(users)))
	return users, nil
}

//nolint:gosec,mnd // load test data.
func randomLog(date coach.Date) coach.DailyLog {
	bodyWeight := baseBodyWeight + float64(rand.IntN(bodyWeightRange))
	l := coach.DailyLog{Date: date, BodyWeightKg: &bodyWeight, Lifts: map[coach.Lift]coach.DailyLift{}}
	for _, lift := range coach.Lifts {
		weight := coach.RoundToPlate(baseLiftWeight + float64(rand.IntN(liftWeightRange)))
		reps := baseReps + rand.IntN(repsRange)
		l.Lifts[lift] = coach.DailyLift{Weight: &weight, Reps: &reps, Success: rand.IntN(4) > 0}
	}
	return l
}

// GenerateLogHistory saves 6 months of Monday logs for a user.
func GenerateLogHistory(ctx context.Context, user *OnboardedUser, logger *slog.Logger) error {
	today := coach.DateOf(time.Now())
	start := coach.WeekStart(today.AddDays(-logHistoryWeeks * daysPerWeek))

	for week := range logHistoryWeeks {
		date := start.AddDays(week * daysPerWeek)
		if today.Before(date) {
			continue
		}
		path := "/api/logs/" + date.String()
		if err := expectOK(user.Client.JSON(ctx, http.MethodPut, path, randomLog(date), nil)); err != nil {
			// Keep going so that one failing day does not leave the user without history.
			logger.LogAttrs(ctx, slog.LevelWarn, "Failed to save log",
				slog.Int("user_index", user.Index),
				slog.String("date", date.String()),
				slog.Any("error", err))
			continue
		}
	}
	return nil
}

// GenerateLogHistoryForUsers saves log history for every user concurrently.
func GenerateLogHistoryForUsers(ctx context.Context, users []*OnboardedUser, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for _, user := range users {
		g.Go(func() error {
			historyCtx, cancel := context.WithTimeout(gctx, historyTimeout)
			defer cancel()
			return GenerateLogHistory(historyCtx, user, logger)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("generate log history: %w", err)
	}
	return nil
}

// TrainingScenario is one day of app usage: checking the week and today's session, logging it and looking at
// the rewards and the roadmap.
func TrainingScenario(ctx context.Context, user *OnboardedUser, logger *slog.Logger) error {
	client := user.Client
	today := coach.DateOf(time.Now())

	var week coach.WeekPlan
	if err := expectOK(client.JSON(ctx, http.MethodGet, "/api/weeks/"+today.String(), nil, &week)); err != nil {
		return fmt.Errorf("get week: %w", err)
	}
	var session coach.Session
	if err := expectOK(client.JSON(ctx, http.MethodGet, "/api/today", nil, &session)); err != nil {
		return fmt.Errorf("get today: %w", err)
	}
	var outcome struct {
		XPGained int `json:"xpGained"`
	}
	path := "/api/logs/" + today.String()
	if err := expectOK(client.JSON(ctx, http.MethodPut, path, randomLog(today), &outcome)); err != nil {
		return fmt.Errorf("save log: %w", err)
	}
	for _, p := range []string{"/api/rewards", "/api/roadmap", "/api/menu"} {
		if err := expectOK(client.JSON(ctx, http.MethodGet, p, nil, nil)); err != nil {
			return fmt.Errorf("get %s: %w", p, err)
		}
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "Training scenario completed",
		slog.Int("user_index", user.Index),
		slog.Bool("rest_day", session.Rest),
		slog.Int("xp_gained", outcome.XPGained))
	return nil
}

// RunLoadTest runs the training scenario for every user.
func RunLoadTest(ctx context.Context, users []*OnboardedUser, logger *slog.Logger) error {
	userCount := len(users)
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", userCount))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for _, user := range users {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			if err := TrainingScenario(scenarioCtx, user, logger); err != nil {
				failureCount.Add(1)
				// Failures are counted, not propagated, so that the other scenarios keep running.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("user_index", user.Index),
					slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(userCount) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}
	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	setupStart := time.Now()
	users, err := SetupUsers(ctx, url, logger)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failed to setup users", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "User setup completed",
		slog.Duration("setup_duration", time.Since(setupStart)),
		slog.Int("onboarded_users", len(users)))

	historyStart := time.Now()
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting log history generation",
		slog.Int("num_users", len(users)),
		slog.Int("weeks_per_user", logHistoryWeeks))
	if err = GenerateLogHistoryForUsers(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "some log history generation failed, continuing with load test",
			slog.Any("error", err))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Log history generation completed",
		slog.Duration("history_duration", time.Since(historyStart)))

	loadTestStart := time.Now()
	if err = RunLoadTest(ctx, users, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_test_duration", time.Since(loadTestStart)),
		slog.Int("users_tested", len(users)))
}
