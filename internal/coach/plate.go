// Package coach turns a training profile into concrete workouts: the daily exercise menu, the weekly split
// schedule, the strength and body weight roadmap and the rewards derived from daily logs.
//
// Every function in this package is a pure function of its arguments. The exercise tables are package level
// values that are never modified, so all functions are safe for concurrent use.
package coach

import "math"

// PlateIncrement is the smallest load step in kilograms.
const PlateIncrement = 2.5

// RoundToPlate rounds x to the nearest multiple of PlateIncrement with halves rounding up.
// Non-finite values round to 0.
func RoundToPlate(x float64) float64 {
	if !isFinite(x) {
		return 0
	}
	r := math.Floor(x/PlateIncrement+0.5) * PlateIncrement //nolint:mnd // round half up.
	if r == 0 {
		return 0 // normalise -0
	}
	return r
}

// roundTenth rounds to one decimal.
func roundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10 //nolint:mnd // one decimal.
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// positiveOr returns x when it is a finite positive number and fallback otherwise.
func positiveOr(x, fallback float64) float64 {
	if isFinite(x) && x > 0 {
		return x
	}
	return fallback
}
