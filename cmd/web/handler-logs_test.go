package main

import (
	"database/sql"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/ptr"
	"github.com/myrjola/fitroadmap/internal/workout"
)

func big3Log(weight float64, success bool) coach.DailyLog {
	lifts := map[coach.Lift]coach.DailyLift{}
	for _, lift := range coach.Lifts {
		lifts[lift] = coach.DailyLift{Weight: ptr.Ref(weight), Reps: ptr.Ref(5), Success: success}
	}
	return coach.DailyLog{BodyWeightKg: ptr.Ref(70.0), Lifts: lifts}
}

func Test_application_logs(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startServer(t, testLookupEnv)
		client = server.Client()
	)

	profile := map[string]any{"experience": "中級者", "bodyWeightKg": 70, "heightCm": 175, "goalType": "bulk"}
	if status, err := client.JSON(ctx, http.MethodPut, "/api/profile", profile, nil); err != nil ||
		status != http.StatusOK {
		t.Fatalf("Failed to put profile: %d %v", status, err)
	}

	steps := []struct {
		date       string
		log        coach.DailyLog
		wantXP     int
		wantStreak int
	}{
		{"2024-01-01", big3Log(60, true), 15, 1},
		{"2024-01-01", big3Log(62.5, true), 0, 1},
		{"2024-01-02", big3Log(62.5, false), 10, 2},
		{"2024-01-03", big3Log(65, true), 15, 3},
	}
	for _, s := range steps {
		var out workout.LogOutcome
		status, err := client.JSON(ctx, http.MethodPut, "/api/logs/"+s.date, s.log, &out)
		if err != nil {
			t.Fatalf("Failed to put log %s: %v", s.date, err)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected 200 for log %s, got %d", s.date, status)
		}
		if out.XPGained != s.wantXP || out.Streak != s.wantStreak {
			t.Errorf("Log %s earned %d xp with streak %d, want %d and %d", s.date, out.XPGained, out.Streak,
				s.wantXP, s.wantStreak)
		}
		if out.Log.Date.String() != s.date {
			t.Errorf("Expected the path date %s on the stored log, got %s", s.date, out.Log.Date)
		}
	}

	t.Run("List and get", func(t *testing.T) {
		var logs []coach.DailyLog
		status, err := client.JSON(ctx, http.MethodGet, "/api/logs", nil, &logs)
		if err != nil || status != http.StatusOK {
			t.Fatalf("Failed to list logs: %d %v", status, err)
		}
		var dates []string
		for _, l := range logs {
			dates = append(dates, l.Date.String())
		}
		if diff := cmp.Diff([]string{"2024-01-01", "2024-01-02", "2024-01-03"}, dates); diff != "" {
			t.Errorf("Log dates mismatch (-want +got):\n%s", diff)
		}

		var first coach.DailyLog
		if status, err = client.JSON(ctx, http.MethodGet, "/api/logs/2024-01-01", nil, &first); err != nil {
			t.Fatalf("Failed to get log: %v", err)
		}
		if w := first.Lift(coach.Bench).Weight; status != http.StatusOK || w == nil || *w != 62.5 {
			t.Errorf("Expected the re-saved bench of 62.5, got %d %v", status, w)
		}

		if status, err = client.JSON(ctx, http.MethodGet, "/api/logs/2024-02-01", nil, nil); err != nil {
			t.Fatalf("Failed to get log: %v", err)
		}
		if status != http.StatusNotFound {
			t.Errorf("Expected 404 for a day without log, got %d", status)
		}
	})

	t.Run("Mismatching body date", func(t *testing.T) {
		l := big3Log(60, true)
		l.Date = coach.MustParseDate("2024-01-09")
		status, err := client.JSON(ctx, http.MethodPut, "/api/logs/2024-01-10", l, nil)
		if err != nil {
			t.Fatalf("Failed to put log: %v", err)
		}
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", status)
		}
	})

	t.Run("Rewards", func(t *testing.T) {
		var rewards workout.Rewards
		status, err := client.JSON(ctx, http.MethodGet, "/api/rewards?date=2024-01-03", nil, &rewards)
		if err != nil || status != http.StatusOK {
			t.Fatalf("Failed to get rewards: %d %v", status, err)
		}
		if rewards.Gamification.XP != 40 || rewards.LogStreak != 3 || rewards.Praise == "" {
			t.Errorf("Unexpected rewards %+v", rewards)
		}
		if !strings.Contains(strings.Join(rewards.Gamification.Badges, ","), "Streak3") {
			t.Errorf("Expected the Streak3 badge, got %v", rewards.Gamification.Badges)
		}
	})

	t.Run("Roadmap", func(t *testing.T) {
		var roadmap workout.Roadmap
		status, err := client.JSON(ctx, http.MethodGet, "/api/roadmap", nil, &roadmap)
		if err != nil || status != http.StatusOK {
			t.Fatalf("Failed to get roadmap: %d %v", status, err)
		}
		if len(roadmap.Points) == 0 || roadmap.GoalWeightKg <= 70 {
			t.Errorf("Expected a bulking roadmap above 70 kg, got goal %v with %d points",
				roadmap.GoalWeightKg, len(roadmap.Points))
		}
	})

	t.Run("Export", func(t *testing.T) {
		resp, err := client.Get(ctx, "/api/export")
		if err != nil {
			t.Fatalf("Failed to export: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		if got := resp.Header.Get("Content-Type"); got != "application/x-sqlite3" {
			t.Errorf("Expected a SQLite download, got content type %q", got)
		}
		if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "attachment") {
			t.Errorf("Expected an attachment, got %q", got)
		}

		exportPath := filepath.Join(t.TempDir(), "export.sqlite3")
		file, err := os.Create(exportPath)
		if err != nil {
			t.Fatalf("Failed to create export file: %v", err)
		}
		if _, err = io.Copy(file, resp.Body); err != nil {
			t.Fatalf("Failed to read export: %v", err)
		}
		if err = file.Close(); err != nil {
			t.Fatalf("Failed to close export file: %v", err)
		}

		exported, err := sql.Open("sqlite3", exportPath)
		if err != nil {
			t.Fatalf("Failed to open export: %v", err)
		}
		defer exported.Close()
		var logs, profiles int
		if err = exported.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_logs").Scan(&logs); err != nil {
			t.Fatalf("Failed to count logs: %v", err)
		}
		if err = exported.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&profiles); err != nil {
			t.Fatalf("Failed to count profiles: %v", err)
		}
		if logs != 3 || profiles != 1 {
			t.Errorf("Expected 3 logs and 1 profile in the export, got %d and %d", logs, profiles)
		}
	})
}

func Test_application_corruptState(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startServer(t, testLookupEnv)
		client = server.Client()
	)

	if status, err := client.JSON(ctx, http.MethodPut, "/api/profile", map[string]any{"bodyWeightKg": 60},
		nil); err != nil || status != http.StatusOK {
		t.Fatalf("Failed to put profile: %d %v", status, err)
	}
	if _, err := server.DB().ExecContext(ctx, `UPDATE profiles SET data = '{"goals": 5}'`); err != nil {
		t.Fatalf("Failed to corrupt profile: %v", err)
	}

	var resp errorResponse
	status, err := client.JSON(ctx, http.MethodGet, "/api/profile", nil, &resp)
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if status != http.StatusConflict || resp.Error != "corrupt state" {
		t.Errorf("Expected 409 corrupt state, got %d %q", status, resp.Error)
	}

	// Saving a new profile repairs the state.
	if status, err = client.JSON(ctx, http.MethodPut, "/api/profile", map[string]any{"bodyWeightKg": 61},
		nil); err != nil || status != http.StatusOK {
		t.Fatalf("Failed to put profile: %d %v", status, err)
	}
	if status, err = client.JSON(ctx, http.MethodGet, "/api/profile", nil, nil); err != nil ||
		status != http.StatusOK {
		t.Errorf("Expected the repaired profile, got %d %v", status, err)
	}

	if !strings.Contains(getText(t, client, "/metrics"), "fitroadmap_web_corrupt_states_total 1") {
		t.Error("Expected the corrupt state to be counted")
	}
}
