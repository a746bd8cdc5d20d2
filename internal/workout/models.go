package workout

import (
	"github.com/myrjola/fitroadmap/internal/coach"
	"github.com/myrjola/fitroadmap/internal/errors"
)

var (
	// ErrNotFound is returned when the user has no stored record for the requested key.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrCorruptState is returned when a stored record cannot be decoded.
	ErrCorruptState = errors.NewSentinel("corrupt state")
	// ErrInvalidInput is returned for requests that can never succeed, like a log without a date.
	ErrInvalidInput = errors.NewSentinel("invalid input")
	// ErrNoAlternative is returned when every eligible exercise for a slot is already taken.
	ErrNoAlternative = errors.NewSentinel("no alternative exercise")
	// ErrUnidentified is returned when the context carries no user key.
	ErrUnidentified = errors.NewSentinel("unidentified user")
)

// LogOutcome is what saving a daily log earned.
type LogOutcome struct {
	Log          coach.DailyLog     `json:"log"`
	XPGained     int                `json:"xpGained"`
	NewBadges    []string           `json:"newBadges"`
	Gamification coach.Gamification `json:"gamification"`
	Streak       int                `json:"streak"`
	Praise       string             `json:"praise,omitempty"`
}

// Rewards combines the stored gamification state with what can be derived from the logs.
type Rewards struct {
	Gamification coach.Gamification  `json:"gamification"`
	LogStreak    int                 `json:"logStreak"`
	Praise       string              `json:"praise,omitempty"`
	Achievements []coach.Achievement `json:"achievements"`
	// Locked lists the achievements still to unlock in display order.
	Locked []coach.Achievement `json:"locked"`
}

// RoadmapActual is a logged measurement placed on the roadmap's week axis.
type RoadmapActual struct {
	Week     int        `json:"week"`
	Date     coach.Date `json:"date"`
	WeightKg *float64   `json:"weightKg,omitempty"`
	Bench    *float64   `json:"bench,omitempty"`
	Squat    *float64   `json:"squat,omitempty"`
	Dead     *float64   `json:"dead,omitempty"`
}

// Roadmap is the weekly projection together with the logged actuals.
type Roadmap struct {
	GoalWeightKg float64              `json:"goalWeightKg"`
	CurrentWeek  int                  `json:"currentWeek"`
	Points       []coach.RoadmapPoint `json:"points"`
	Actuals      []RoadmapActual      `json:"actuals"`
}
