package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/e2etest"
	"github.com/myrjola/fitroadmap/internal/logging"
	"github.com/myrjola/fitroadmap/internal/testhelpers"
)

// TestOnboarding walks a fresh anonymous user through onboarding, today's session and a first log.
func TestOnboarding(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	form := map[string]any{"experience": "初心者", "goals": []string{"筋肉をつけたい"}, "bodyWeightKg": 60}
	if err := expectOK(client.JSON(ctx, http.MethodPut, "/api/profile", form, nil)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	var session coach.Session
	if err := expectOK(client.JSON(ctx, http.MethodGet, "/api/today", nil, &session)); err != nil {
		return fmt.Errorf("get today: %w", err)
	}
	weight := 60.0
	log := coach.DailyLog{BodyWeightKg: &weight} //nolint:exhaustruct // body weight only.
	path := "/api/logs/" + coach.DateOf(time.Now()).String()
	if err := expectOK(client.JSON(ctx, http.MethodPut, path, log, nil)); err != nil {
		return fmt.Errorf("save log: %w", err)
	}
	if err := expectOK(client.JSON(ctx, http.MethodGet, "/api/rewards", nil, nil)); err != nil {
		return fmt.Errorf("get rewards: %w", err)
	}
	return nil
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

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = TestOnboarding(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing onboarding", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
