package coach_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitroadmap/internal/coach"
)

func TestClampWeeklyGains(t *testing.T) {
	tests := []struct {
		name    string
		series  []float64
		maxGain float64
		want    []float64
	}{
		{name: "clamped growth", series: []float64{40, 60, 80, 100, 120}, maxGain: 2,
			want: []float64{40, 42, 44, 46, 48}},
		{name: "within limit is plate rounded", series: []float64{60, 62.5, 65, 67.5, 70}, maxGain: 3,
			want: []float64{60, 62.5, 65, 67.5, 70}},
		{name: "rounding never exceeds the limit", series: []float64{41, 43.2, 45.4}, maxGain: 2,
			want: []float64{40, 42, 44}},
		{name: "clamped decline", series: []float64{100, 80, 60}, maxGain: 3, want: []float64{100, 97, 94}},
		{name: "empty", series: nil, maxGain: 2, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, coach.ClampWeeklyGains(tt.series, tt.maxGain)); diff != "" {
				t.Errorf("ClampWeeklyGains() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProjectRoadmap(t *testing.T) {
	t.Parallel()
	p := coach.Normalize(coach.Profile{ //nolint:exhaustruct // roadmap inputs.
		BodyWeightKg: 70,
		GoalWeightKg: 65,
		WeeksToGoal:  4,
		StartedAt:    coach.NewDate(2024, time.January, 1),
		GoalType:     coach.GoalTypeFit,
		Lifts: coach.Big3{
			Bench: coach.LiftGoal{Current: coach.LiftValue{Weight: 40, Reps: 5}, Goal: coach.LiftValue{Weight: 120, Reps: 1}},
			Squat: coach.LiftGoal{Current: coach.LiftValue{Weight: 60, Reps: 5}, Goal: coach.LiftValue{Weight: 70, Reps: 5}},
			// Dead goal is estimated as RoundToPlate(65 × 2.0) = 130.
			Dead: coach.LiftGoal{Current: coach.LiftValue{Weight: 80, Reps: 5}, Goal: coach.LiftValue{Weight: 0, Reps: 0}},
		},
	})

	got := coach.ProjectRoadmap(p)
	want := []coach.RoadmapPoint{
		{Week: 0, Date: coach.NewDate(2024, time.January, 1), WeightKg: 70, BenchTarget: 40, SquatTarget: 60, DeadTarget: 80},
		{Week: 1, Date: coach.NewDate(2024, time.January, 8), WeightKg: 68.8, BenchTarget: 42, SquatTarget: 62.5,
			DeadTarget: 83},
		{Week: 2, Date: coach.NewDate(2024, time.January, 15), WeightKg: 67.5, BenchTarget: 44, SquatTarget: 65,
			DeadTarget: 86},
		{Week: 3, Date: coach.NewDate(2024, time.January, 22), WeightKg: 66.3, BenchTarget: 46, SquatTarget: 67.5,
			DeadTarget: 89},
		{Week: 4, Date: coach.NewDate(2024, time.January, 29), WeightKg: 65, BenchTarget: 48, SquatTarget: 70,
			DeadTarget: 92},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ProjectRoadmap() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectRoadmap_clampProperty(t *testing.T) {
	t.Parallel()
	for _, goalType := range []coach.GoalType{coach.GoalTypeSlim, coach.GoalTypeFit, coach.GoalTypeBulk} {
		for weeks := 1; weeks <= 30; weeks += 7 {
			p := coach.Normalize(coach.Profile{ //nolint:exhaustruct // roadmap inputs.
				BodyWeightKg: 83.3,
				HeightCm:     181,
				WeeksToGoal:  weeks,
				GoalType:     goalType,
				StartedAt:    coach.NewDate(2024, time.May, 6),
			})
			points := coach.ProjectRoadmap(p)
			if len(points) != weeks+1 {
				t.Fatalf("%s/%d weeks: got %d points", goalType, weeks, len(points))
			}
			for i := 1; i < len(points); i++ {
				steps := map[coach.Lift]float64{
					coach.Bench: points[i].BenchTarget - points[i-1].BenchTarget,
					coach.Squat: points[i].SquatTarget - points[i-1].SquatTarget,
					coach.Dead:  points[i].DeadTarget - points[i-1].DeadTarget,
				}
				for lift, step := range steps {
					if math.Abs(step) > coach.MaxWeeklyGainKg[lift]+1e-9 {
						t.Errorf("%s/%d weeks: %s step %v at week %d exceeds %v", goalType, weeks, lift, step, i,
							coach.MaxWeeklyGainKg[lift])
					}
				}
			}
		}
	}
}

func TestProjectRoadmap_horizonIsCapped(t *testing.T) {
	t.Parallel()
	for _, weeks := range []int{coach.MaxWeeksToGoal + 1, 100_000_000, math.MaxInt} {
		p := coach.Profile{ //nolint:exhaustruct // roadmap inputs.
			BodyWeightKg: 70,
			WeeksToGoal:  weeks,
			StartedAt:    coach.NewDate(2024, time.January, 1),
		}
		points := coach.ProjectRoadmap(p)
		if len(points) != coach.MaxWeeksToGoal+1 {
			t.Errorf("ProjectRoadmap() with %d weeks got %d points, want %d", weeks, len(points),
				coach.MaxWeeksToGoal+1)
		}
		if n := coach.Normalize(p); n.WeeksToGoal != coach.MaxWeeksToGoal {
			t.Errorf("Normalize() weeks to goal = %d, want %d", n.WeeksToGoal, coach.MaxWeeksToGoal)
		}
	}
}

func TestEstimateGoalWeight(t *testing.T) {
	tests := []struct {
		name    string
		profile coach.Profile
		want    float64
	}{
		{name: "explicit goal", profile: coach.Profile{BodyWeightKg: 70, GoalWeightKg: 55, BodyFatPct: 30}, //nolint:exhaustruct // inputs.
			want: 55},
		{name: "lean mass at goal body fat", profile: coach.Profile{BodyWeightKg: 80, BodyFatPct: 25, //nolint:exhaustruct // inputs.
			GoalType: coach.GoalTypeFit}, want: 68.2},
		{name: "target BMI from height", profile: coach.Profile{BodyWeightKg: 70, HeightCm: 170, //nolint:exhaustruct // inputs.
			GoalType: coach.GoalTypeSlim}, want: 60.7},
		{name: "current weight", profile: coach.Profile{BodyWeightKg: 64.44, GoalType: coach.GoalTypeBulk}, //nolint:exhaustruct // inputs.
			want: 64.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := coach.EstimateGoalWeight(tt.profile); got != tt.want {
				t.Errorf("EstimateGoalWeight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeekIndex(t *testing.T) {
	t.Parallel()
	start := coach.NewDate(2024, time.January, 3) // Wednesday
	tests := map[coach.Date]int{
		coach.NewDate(2023, time.December, 20): 0,
		coach.NewDate(2024, time.January, 7):   0,
		coach.NewDate(2024, time.January, 8):   1,
		coach.NewDate(2024, time.February, 1):  4,
	}
	for today, want := range tests {
		if got := coach.WeekIndex(start, today); got != want {
			t.Errorf("WeekIndex(%s, %s) = %d, want %d", start, today, got, want)
		}
	}
}
