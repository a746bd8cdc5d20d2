package coach_test

import (
	"math"
	"testing"

	"github.com/myrjola/fitroadmap/internal/coach"
)

func TestRoundToPlate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "zero", in: 0, want: 0},
		{name: "rounds down below half", in: 1.24, want: 0},
		{name: "half rounds up", in: 1.25, want: 2.5},
		{name: "squat estimate", in: 21, want: 20},
		{name: "already on plate", in: 22.5, want: 22.5},
		{name: "upper half", in: 23.8, want: 25},
		{name: "negative", in: -1.3, want: -2.5},
		{name: "NaN", in: math.NaN(), want: 0},
		{name: "infinity", in: math.Inf(1), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := coach.RoundToPlate(tt.in); got != tt.want {
				t.Errorf("RoundToPlate(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundToPlate_multipleAndIdempotent(t *testing.T) {
	t.Parallel()
	for x := -50.0; x <= 300; x += 0.37 {
		r := coach.RoundToPlate(x)
		if math.Mod(r, coach.PlateIncrement) != 0 {
			t.Fatalf("RoundToPlate(%v) = %v is not a multiple of %v", x, r, coach.PlateIncrement)
		}
		if again := coach.RoundToPlate(r); again != r {
			t.Fatalf("RoundToPlate not idempotent for %v: %v then %v", x, r, again)
		}
		if math.Abs(r-x) > coach.PlateIncrement/2 {
			t.Fatalf("RoundToPlate(%v) = %v is further than half a plate", x, r)
		}
	}
}
