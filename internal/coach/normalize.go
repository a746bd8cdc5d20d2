package coach

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultBodyWeightKg = 50
	defaultWeeksToGoal  = 12
)

// ErrMalformedInput is returned by [ParseInput] and [ParseInputYAML] when the payload is not an object of a known
// shape.
var ErrMalformedInput = errors.New("malformed profile input")

// Input is one of the accepted profile shapes: [Profile], [OnboardingForm] or [LegacyForm].
// Only [Normalize] inspects which variant it holds.
type Input interface {
	isInput()
}

func (Profile) isInput()        {}
func (OnboardingForm) isInput() {}
func (LegacyForm) isInput()     {}

// OnboardingForm is the questionnaire answer. Goals, barriers, duration and schedule accept the Japanese labels
// shown in the questionnaire as well as canonical tokens.
type OnboardingForm struct {
	Experience        string   `json:"experience"        yaml:"experience"`
	Goals             []string `json:"goals"             yaml:"goals"`
	Barriers          []string `json:"barriers"          yaml:"barriers"`
	Duration          string   `json:"duration"          yaml:"duration"`
	Schedule          []string `json:"schedule"          yaml:"schedule"`
	BodyWeightKg      float64  `json:"bodyWeightKg"      yaml:"bodyWeightKg"`
	HeightCm          float64  `json:"heightCm"          yaml:"heightCm"`
	BodyFatPct        float64  `json:"bodyFatPct"        yaml:"bodyFatPct"`
	GoalWeightKg      float64  `json:"goalWeightKg"      yaml:"goalWeightKg"`
	WeeksToGoal       int      `json:"weeksToGoal"       yaml:"weeksToGoal"`
	StartedAt         Date     `json:"startedAt"         yaml:"startedAt"`
	GoalType          string   `json:"goalType"          yaml:"goalType"`
	SessionsCompleted int      `json:"sessionsCompleted" yaml:"sessionsCompleted"`
	Lifts             Big3     `json:"lifts"             yaml:"lifts"`
}

// LegacyTraining is the training preference block of the oldest profile shape. Only the level is kept, the
// number of sessions is a per-week setting of [WeekPlan].
type LegacyTraining struct {
	Level string `json:"level" yaml:"level"`
}

// LegacyForm is the oldest profile shape with a single goal string, target area ids and a nested training block.
type LegacyForm struct {
	OnboardingForm `yaml:",inline"`

	Goal            string          `json:"goal"            yaml:"goal"`
	TargetAreas     []string        `json:"targetAreas"     yaml:"targetAreas"`
	CurrentWeightKg float64         `json:"currentWeightKg" yaml:"currentWeightKg"`
	Training        *LegacyTraining `json:"training"        yaml:"training"`
}

// ParseInput decodes a JSON profile payload into the matching [Input] variant. A payload with experienceTier is
// a canonical profile, one with goal, targetAreas, currentWeightKg or training is a legacy form and anything
// else is an onboarding form.
func ParseInput(data []byte) (Input, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	in, err := decodeInput(fields, func(v any) error { return json.Unmarshal(data, v) })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return in, nil
}

// ParseInputYAML is [ParseInput] for YAML documents.
func ParseInputYAML(data []byte) (Input, error) {
	var fields map[string]yaml.Node
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	in, err := decodeInput(fields, func(v any) error { return yaml.Unmarshal(data, v) })
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return in, nil
}

func decodeInput[V any](fields map[string]V, decode func(any) error) (Input, error) {
	switch {
	case hasAny(fields, "experienceTier"):
		var p Profile
		err := decode(&p)
		return p, err
	case hasAny(fields, "goal", "targetAreas", "currentWeightKg", "training"):
		var f LegacyForm
		err := decode(&f)
		return f, err
	default:
		var f OnboardingForm
		err := decode(&f)
		return f, err
	}
}

func hasAny[V any](fields map[string]V, keys ...string) bool {
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

// Normalize converts any accepted input shape into a canonical [Profile]. Unknown tokens are dropped and missing
// numbers get documented defaults, so Normalize never fails. Normalizing a canonical profile returns it unchanged.
// A nil input yields the default profile.
func Normalize(in Input) Profile {
	switch v := in.(type) {
	case Profile:
		return normalizeProfile(v)
	case OnboardingForm:
		return normalizeProfile(v.toProfile(nil))
	case LegacyForm:
		return normalizeProfile(v.toProfile())
	}
	return normalizeProfile(Profile{}) //nolint:exhaustruct // defaults are filled in.
}

func (f OnboardingForm) toProfile(extraGoals []GoalID) Profile {
	goals := slices.Clone(extraGoals)
	for _, g := range f.Goals {
		if id, ok := parseGoal(g); ok {
			goals = append(goals, id)
		}
	}
	var barriers []Barrier
	for _, b := range f.Barriers {
		if barrier, ok := parseBarrier(b); ok {
			barriers = append(barriers, barrier)
		}
	}
	var days []Weekday
	for _, d := range f.Schedule {
		if day, ok := ParseWeekday(d); ok {
			days = append(days, day)
		}
	}
	return Profile{
		ExperienceTier:      Experience(f.Experience),
		Goals:               goals,
		GoalAreas:           nil,
		Barriers:            barriers,
		SessionDurationBand: Duration(f.Duration),
		BodyWeightKg:        f.BodyWeightKg,
		HeightCm:            f.HeightCm,
		BodyFatPct:          f.BodyFatPct,
		GoalWeightKg:        f.GoalWeightKg,
		WeeksToGoal:         f.WeeksToGoal,
		StartedAt:           f.StartedAt,
		GoalType:            GoalType(f.GoalType),
		WeeklySchedule:      days,
		SessionsCompleted:   f.SessionsCompleted,
		Lifts:               f.Lifts,
	}
}

//nolint:gochecknoglobals // static tables.
var (
	legacyGoals = map[string]GoalID{
		"slim":    GoalWholeTone,
		"tone":    GoalAbsTone,
		"muscle":  GoalArms,
		"healthy": GoalPosture,
	}
	legacyAreas = map[string]GoalID{
		"abs":   GoalAbsTone,
		"hips":  GoalHipUp,
		"arms":  GoalArms,
		"back":  GoalPosture,
		"whole": GoalWholeTone,
	}
)

func (f LegacyForm) toProfile() Profile {
	var goals []GoalID
	if id, ok := legacyGoals[strings.ToLower(strings.TrimSpace(f.Goal))]; ok {
		goals = append(goals, id)
	} else if id, ok = parseGoal(f.Goal); ok {
		goals = append(goals, id)
	}
	for _, a := range f.TargetAreas {
		if id, ok := legacyAreas[strings.ToLower(strings.TrimSpace(a))]; ok {
			goals = append(goals, id)
		}
	}
	p := f.OnboardingForm.toProfile(goals)
	if p.BodyWeightKg <= 0 {
		p.BodyWeightKg = f.CurrentWeightKg
	}
	if f.Training != nil && p.ExperienceTier == "" {
		p.ExperienceTier = Experience(f.Training.Level)
	}
	return p
}

func normalizeProfile(p Profile) Profile {
	goals := make([]GoalID, 0, len(p.Goals))
	for _, g := range goalOrder {
		if slices.ContainsFunc(p.Goals, func(in GoalID) bool {
			id, ok := parseGoal(string(in))
			return ok && id == g
		}) {
			goals = append(goals, g)
		}
	}

	barriers := make([]Barrier, 0, len(p.Barriers))
	for _, b := range barrierOrder {
		if slices.ContainsFunc(p.Barriers, func(in Barrier) bool {
			parsed, ok := parseBarrier(string(in))
			return ok && parsed == b
		}) {
			barriers = append(barriers, b)
		}
	}

	days := make([]Weekday, 0, len(p.WeeklySchedule))
	for d := Monday; d <= Sunday; d++ {
		if slices.Contains(p.WeeklySchedule, d) {
			days = append(days, d)
		}
	}

	return Profile{
		ExperienceTier:      parseExperience(string(p.ExperienceTier)),
		Goals:               goals,
		GoalAreas:           normalizeAreas(goals, p.GoalAreas),
		Barriers:            barriers,
		SessionDurationBand: parseDuration(string(p.SessionDurationBand)),
		BodyWeightKg:        positiveOr(p.BodyWeightKg, defaultBodyWeightKg),
		HeightCm:            positiveOr(p.HeightCm, 0),
		BodyFatPct:          normalizeBodyFat(p.BodyFatPct),
		GoalWeightKg:        positiveOr(p.GoalWeightKg, 0),
		WeeksToGoal:         normalizeWeeks(p.WeeksToGoal),
		StartedAt:           p.StartedAt,
		GoalType:            parseGoalType(string(p.GoalType)),
		WeeklySchedule:      days,
		SessionsCompleted:   max(0, p.SessionsCompleted),
		Lifts: Big3{
			Bench: normalizeLiftGoal(p.Lifts.Bench),
			Squat: normalizeLiftGoal(p.Lifts.Squat),
			Dead:  normalizeLiftGoal(p.Lifts.Dead),
		},
	}
}

// normalizeAreas derives the area weights from goals. Without goal emphasis the given weights are kept when they
// hold a positive known area, otherwise the default applies.
func normalizeAreas(goals []GoalID, given AreaWeights) AreaWeights {
	if derived := AreaWeightsFor(goals); len(derived) > 0 {
		return derived
	}
	kept := AreaWeights{}
	for _, area := range areaOrder {
		if w := given[area]; w > 0 {
			kept[area] = w
		}
	}
	if len(kept) > 0 {
		return kept
	}
	return DefaultAreaWeights()
}

func normalizeWeeks(weeks int) int {
	if weeks < 1 {
		return defaultWeeksToGoal
	}
	return min(weeks, MaxWeeksToGoal)
}

func normalizeBodyFat(pct float64) float64 {
	if !isFinite(pct) || pct <= 0 || pct >= 100 { //nolint:mnd // percentage.
		return 0
	}
	return pct
}

func normalizeLiftValue(v LiftValue) LiftValue {
	return LiftValue{Weight: positiveOr(v.Weight, 0), Reps: max(0, v.Reps)}
}

func normalizeLiftGoal(g LiftGoal) LiftGoal {
	return LiftGoal{Current: normalizeLiftValue(g.Current), Goal: normalizeLiftValue(g.Goal)}
}

// NormalizeLog drops unknown lifts and non-positive numbers from a daily log.
func NormalizeLog(l DailyLog) DailyLog {
	out := DailyLog{Date: l.Date, BodyWeightKg: nil, Lifts: make(map[Lift]DailyLift, len(Lifts))}
	if l.BodyWeightKg != nil && isFinite(*l.BodyWeightKg) && *l.BodyWeightKg > 0 {
		w := *l.BodyWeightKg
		out.BodyWeightKg = &w
	}
	for _, lift := range Lifts {
		in, ok := l.Lifts[lift]
		if !ok {
			continue
		}
		var dl DailyLift
		dl.Success = in.Success
		if w, ok := l.liftWeight(lift); ok {
			dl.Weight = &w
		}
		if in.Reps != nil && *in.Reps > 0 {
			r := *in.Reps
			dl.Reps = &r
		}
		out.Lifts[lift] = dl
	}
	return out
}

func parseExperience(s string) Experience {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner", "初心者", "ほとんど運動していない":
		return Beginner
	case "advanced", "経験者", "週3回以上している":
		return Advanced
	default:
		return Intermediate
	}
}

func parseGoal(s string) (GoalID, bool) {
	s = strings.TrimSpace(s)
	for _, g := range goalOrder {
		if s == string(g) || s == g.Label() {
			return g, true
		}
	}
	return "", false
}

//nolint:gochecknoglobals // static table.
var barrierSynonyms = map[string]Barrier{
	"no-gym":     BarrierNoGym,
	"no_gym":     BarrierNoGym,
	"gym":        BarrierNoGym,
	"ジムには通っていない": BarrierNoGym,
	"no-heavy":   BarrierNoHeavy,
	"heavy":      BarrierNoHeavy,
	"重いバーベルは使いたくない": BarrierNoHeavy,
	"no-running":              BarrierNoRunning,
	"running":                 BarrierNoRunning,
	"走りたくない":                  BarrierNoRunning,
	"short-duration-only":     BarrierShortDurationOnly,
	"long":                    BarrierShortDurationOnly,
	"長時間は続かない":                BarrierShortDurationOnly,
	"long-duration-objection": BarrierShortDurationOnly,
}

func parseBarrier(s string) (Barrier, bool) {
	b, ok := barrierSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return b, ok
}

func parseDuration(s string) Duration {
	switch strings.TrimSpace(s) {
	case "short", "10", "10分":
		return DurationShort
	case "medium", "20-30", "20〜30分", "20-30分":
		return DurationMedium
	default:
		return DurationLong
	}
}

func parseGoalType(s string) GoalType {
	switch GoalType(strings.ToLower(strings.TrimSpace(s))) {
	case GoalTypeSlim:
		return GoalTypeSlim
	case GoalTypeBulk:
		return GoalTypeBulk
	case GoalTypeFit:
		return GoalTypeFit
	}
	return GoalTypeFit
}
