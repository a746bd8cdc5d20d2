package coach

import (
	"slices"
)

// Experience is the training experience tier.
type Experience string

const (
	Beginner     Experience = "beginner"
	Intermediate Experience = "intermediate"
	Advanced     Experience = "advanced"
)

// GoalID identifies a "desired body" goal picked during onboarding.
type GoalID string

const (
	GoalWaist      GoalID = "waist"
	GoalAbsTone    GoalID = "abs_tone"
	GoalHipUp      GoalID = "hip_up"
	GoalArms       GoalID = "arms"
	GoalPosture    GoalID = "posture"
	GoalWholeTone  GoalID = "whole_tone"
	GoalMuscleGain GoalID = "muscle_gain"
)

// Area is a body area that exercises are grouped by.
type Area string

const (
	AreaAbs   Area = "abs"
	AreaLegs  Area = "legs"
	AreaHips  Area = "hips"
	AreaArms  Area = "arms"
	AreaBack  Area = "back"
	AreaWhole Area = "whole"
)

// AreaWeights holds the relative emphasis of each body area. Areas that are absent weigh 0.
type AreaWeights map[Area]int

// Barrier is a user-declared constraint that excludes classes of exercises.
type Barrier string

const (
	BarrierNoGym             Barrier = "no-gym"
	BarrierNoHeavy           Barrier = "no-heavy"
	BarrierNoRunning         Barrier = "no-running"
	BarrierShortDurationOnly Barrier = "short-duration-only"
)

// Duration is the session length band.
type Duration string

const (
	DurationShort  Duration = "short"  // about 10 minutes
	DurationMedium Duration = "medium" // 20 to 30 minutes
	DurationLong   Duration = "long"   // 45 minutes or more
)

// GoalType selects the ratio tables used for roadmap and lift target estimation.
type GoalType string

const (
	GoalTypeSlim GoalType = "slim"
	GoalTypeFit  GoalType = "fit"
	GoalTypeBulk GoalType = "bulk"
)

// Lift is one of the three primary lifts.
type Lift string

const (
	Bench Lift = "bench"
	Squat Lift = "squat"
	Dead  Lift = "dead"
)

// Lifts lists the primary lifts in display order.
//
//nolint:gochecknoglobals // static table.
var Lifts = []Lift{Bench, Squat, Dead}

//nolint:gochecknoglobals // static tables.
var (
	goalOrder    = []GoalID{GoalWaist, GoalAbsTone, GoalHipUp, GoalArms, GoalPosture, GoalWholeTone, GoalMuscleGain}
	areaOrder    = []Area{AreaAbs, AreaLegs, AreaHips, AreaArms, AreaBack, AreaWhole}
	barrierOrder = []Barrier{BarrierNoGym, BarrierNoHeavy, BarrierNoRunning, BarrierShortDurationOnly}

	goalLabels = map[GoalID]string{
		GoalWaist:      "くびれを作りたい",
		GoalAbsTone:    "お腹を引き締めたい",
		GoalHipUp:      "ヒップアップしたい",
		GoalArms:       "二の腕をすっきりさせたい",
		GoalPosture:    "姿勢を良くしたい",
		GoalWholeTone:  "全体的に引き締めたい",
		GoalMuscleGain: "筋肉をつけたい",
	}

	goalAreaWeights = map[GoalID]AreaWeights{
		GoalWaist:      {AreaAbs: 2, AreaBack: 1},
		GoalAbsTone:    {AreaAbs: 3, AreaWhole: 1},
		GoalHipUp:      {AreaHips: 3, AreaLegs: 1},
		GoalArms:       {AreaArms: 3},
		GoalPosture:    {AreaBack: 3, AreaAbs: 1},
		GoalWholeTone:  {AreaWhole: 3, AreaLegs: 1, AreaAbs: 1},
		GoalMuscleGain: {},
	}
)

// Label returns the Japanese onboarding label of the goal.
func (g GoalID) Label() string {
	return goalLabels[g]
}

// DefaultAreaWeights is used when the selected goals emphasise no area.
func DefaultAreaWeights() AreaWeights {
	return AreaWeights{AreaWhole: 2, AreaAbs: 1} //nolint:mnd // default emphasis.
}

// AreaWeightsFor sums the goal to area table over goals.
func AreaWeightsFor(goals []GoalID) AreaWeights {
	weights := AreaWeights{}
	for _, g := range goals {
		for area, w := range goalAreaWeights[g] {
			weights[area] += w
		}
	}
	return weights
}

// RankAreas orders all areas by descending weight. Ties keep the order abs, legs, hips, arms, back, whole.
func RankAreas(weights AreaWeights) []Area {
	ranked := slices.Clone(areaOrder)
	slices.SortStableFunc(ranked, func(a, b Area) int {
		return weights[b] - weights[a]
	})
	return ranked
}

// LiftValue is a weight lifted for a number of reps.
type LiftValue struct {
	Weight float64 `json:"weight" yaml:"weight"`
	Reps   int     `json:"reps"   yaml:"reps"`
}

// LiftGoal pairs the current and the goal value of a lift.
type LiftGoal struct {
	Current LiftValue `json:"current" yaml:"current"`
	Goal    LiftValue `json:"goal"    yaml:"goal"`
}

// Big3 holds the current and goal values for bench press, squat and deadlift.
type Big3 struct {
	Bench LiftGoal `json:"bench" yaml:"bench"`
	Squat LiftGoal `json:"squat" yaml:"squat"`
	Dead  LiftGoal `json:"dead"  yaml:"dead"`
}

// Get returns the values of lift.
func (b Big3) Get(lift Lift) LiftGoal {
	switch lift {
	case Bench:
		return b.Bench
	case Squat:
		return b.Squat
	case Dead:
		return b.Dead
	}
	return LiftGoal{}
}

// Profile is the canonical training profile. Use [Normalize] to build one from any accepted input shape.
type Profile struct {
	ExperienceTier      Experience  `json:"experienceTier"         yaml:"experienceTier"`
	Goals               []GoalID    `json:"goals"                  yaml:"goals"`
	GoalAreas           AreaWeights `json:"goalAreas"              yaml:"goalAreas"`
	Barriers            []Barrier   `json:"barriers"               yaml:"barriers"`
	SessionDurationBand Duration    `json:"sessionDurationBand"    yaml:"sessionDurationBand"`
	BodyWeightKg        float64     `json:"bodyWeightKg"           yaml:"bodyWeightKg"`
	HeightCm            float64     `json:"heightCm,omitempty"     yaml:"heightCm,omitempty"`
	BodyFatPct          float64     `json:"bodyFatPct,omitempty"   yaml:"bodyFatPct,omitempty"`
	GoalWeightKg        float64     `json:"goalWeightKg,omitempty" yaml:"goalWeightKg,omitempty"`
	WeeksToGoal         int         `json:"weeksToGoal"            yaml:"weeksToGoal"`
	StartedAt           Date        `json:"startedAt,omitzero"     yaml:"startedAt,omitempty"`
	GoalType            GoalType    `json:"goalType"               yaml:"goalType"`
	WeeklySchedule      Weekdays    `json:"weeklySchedule"         yaml:"weeklySchedule"`
	SessionsCompleted   int         `json:"sessionsCompleted"      yaml:"sessionsCompleted"`
	Lifts               Big3        `json:"lifts"                  yaml:"lifts"`
}

// HasBarrier reports whether b is among the profile barriers.
func (p Profile) HasBarrier(b Barrier) bool {
	return slices.Contains(p.Barriers, b)
}

// DailyLift is the outcome of one primary lift on a training day.
type DailyLift struct {
	Weight  *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Reps    *int     `json:"reps,omitempty"   yaml:"reps,omitempty"`
	Success bool     `json:"success"          yaml:"success"`
}

// DailyLog records one calendar day of training. There is at most one log per date.
type DailyLog struct {
	Date         Date               `json:"date"                   yaml:"date"`
	BodyWeightKg *float64           `json:"bodyWeightKg,omitempty" yaml:"bodyWeightKg,omitempty"`
	Lifts        map[Lift]DailyLift `json:"lifts"                  yaml:"lifts"`
}

// Lift returns the outcome of lift, the zero value when it was not logged.
func (l DailyLog) Lift(lift Lift) DailyLift {
	return l.Lifts[lift]
}

// liftWeight returns the logged weight of lift when it is positive.
func (l DailyLog) liftWeight(lift Lift) (float64, bool) {
	w := l.Lift(lift).Weight
	if w == nil || !isFinite(*w) || *w <= 0 {
		return 0, false
	}
	return *w, true
}

// AllSucceeded reports whether bench, squat and deadlift were all logged as successful.
func (l DailyLog) AllSucceeded() bool {
	for _, lift := range Lifts {
		if !l.Lift(lift).Success {
			return false
		}
	}
	return true
}
