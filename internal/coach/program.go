package coach

import (
	"cmp"
	"slices"

	"github.com/myrjola/fitroadmap/internal/ptr"
)

// RestSessionKey is the session key of rest days.
const RestSessionKey = "REC"

const defaultEstimateBodyWeightKg = 60

// SessionExercise is one exercise of a scheduled session.
type SessionExercise struct {
	Kind            ExerciseKind `json:"kind"                      yaml:"kind"`
	Name            string       `json:"name"                      yaml:"name"`
	Sets            int          `json:"sets"                      yaml:"sets"`
	Reps            int          `json:"reps"                      yaml:"reps"`
	BaseLift        Lift         `json:"baseLift,omitempty"        yaml:"baseLift,omitempty"`
	PercentOfTarget float64      `json:"percentOfTarget,omitempty" yaml:"percentOfTarget,omitempty"`
	Notes           string       `json:"notes,omitempty"           yaml:"notes,omitempty"`
	// BaseLoadKg is the resolved load that PercentOfTarget applies to.
	BaseLoadKg        *float64 `json:"baseLoadKg,omitempty"        yaml:"baseLoadKg,omitempty"`
	SuggestedWeightKg *float64 `json:"suggestedWeightKg,omitempty" yaml:"suggestedWeightKg,omitempty"`
}

// Session is the workout of one calendar date, either a split session or a rest day.
type Session struct {
	Date          Date              `json:"date"                    yaml:"date"`
	Rest          bool              `json:"rest"                    yaml:"rest"`
	Label         string            `json:"label"                   yaml:"label"`
	SessionKey    string            `json:"sessionKey"              yaml:"sessionKey"`
	Exercises     []SessionExercise `json:"exercises"               yaml:"exercises"`
	Warmup        []Stretch         `json:"warmup,omitempty"        yaml:"warmup,omitempty"`
	Cooldown      []Stretch         `json:"cooldown,omitempty"      yaml:"cooldown,omitempty"`
	RestStretches []Stretch         `json:"restStretches,omitempty" yaml:"restStretches,omitempty"`
}

type sessionTemplate struct {
	label     string
	exercises []SessionExercise
}

func ex(kind ExerciseKind, name string, sets, reps int, pct float64) SessionExercise {
	return SessionExercise{Kind: kind, Name: name, Sets: sets, Reps: reps, PercentOfTarget: pct} //nolint:exhaustruct // filled on resolve.
}

func exFrom(kind ExerciseKind, name string, sets, reps int, base Lift, pct float64, notes string) SessionExercise {
	e := ex(kind, name, sets, reps, pct)
	e.BaseLift = base
	e.Notes = notes
	return e
}

//nolint:gochecknoglobals // static tables.
var (
	rotations = map[int][]string{
		2: {"A", "B"},
		3: {"PUSH", "PULL", "LEGS"},
		4: {"UP1", "LOW1", "UP2", "LOW2"},
	}

	sessionTemplates = map[string]sessionTemplate{
		"A": {label: "Full A", exercises: []SessionExercise{
			ex(KindSquat, "Back Squat", 5, 5, 0.85),
			ex(KindBench, "Bench Press", 5, 5, 0.85),
			exFrom(KindRow, "1-Arm DB Row", 3, 10, Dead, 0.55, "RPE 8 / 片手ずつ"),
		}},
		"B": {label: "Full B", exercises: []SessionExercise{
			ex(KindDead, "Deadlift", 3, 5, 0.85),
			ex(KindOHP, "Overhead Press", 5, 5, 0.8),
			exFrom(KindPulldown, "Lat Pulldown", 3, 10, Dead, 0.45, "広背筋意識"),
		}},
		"PUSH": {label: "Push", exercises: []SessionExercise{
			ex(KindBench, "Bench Press", 5, 5, 0.85),
			ex(KindOHP, "Overhead Press", 3, 8, 0.75),
			exFrom(KindAccessory, "Triceps Pushdown", 3, 12, Bench, 0.30, ""),
		}},
		"PULL": {label: "Pull", exercises: []SessionExercise{
			exFrom(KindRow, "Barbell Row", 4, 8, Dead, 0.75, "フォーム重視"),
			exFrom(KindPulldown, "Lat Pulldown", 3, 10, Dead, 0.45, ""),
			exFrom(KindAccessory, "Face Pull", 3, 15, Bench, 0.20, ""),
		}},
		"LEGS": {label: "Legs", exercises: []SessionExercise{
			ex(KindSquat, "Back Squat", 5, 5, 0.85),
			ex(KindDead, "Romanian DL", 3, 8, 0.7),
			exFrom(KindAccessory, "Leg Extension", 3, 12, Squat, 0.30, ""),
		}},
		"UP1": {label: "Upper 1", exercises: []SessionExercise{
			ex(KindBench, "Bench Press", 5, 5, 0.85),
			exFrom(KindRow, "Barbell Row", 4, 8, Dead, 0.75, ""),
			ex(KindOHP, "Overhead Press", 3, 8, 0.75),
		}},
		"LOW1": {label: "Lower 1", exercises: []SessionExercise{
			ex(KindSquat, "Back Squat", 5, 5, 0.85),
			ex(KindDead, "Deadlift", 3, 5, 0.85),
			exFrom(KindAccessory, "Calf Raise", 3, 15, Squat, 0.30, ""),
		}},
		"UP2": {label: "Upper 2", exercises: []SessionExercise{
			ex(KindOHP, "Overhead Press", 5, 5, 0.8),
			ex(KindBench, "Incline Bench", 3, 8, 0.75),
			exFrom(KindPulldown, "Lat Pulldown", 3, 10, Dead, 0.45, ""),
		}},
		"LOW2": {label: "Lower 2", exercises: []SessionExercise{
			ex(KindSquat, "Front Squat (軽め)", 3, 5, 0.7),
			ex(KindDead, "Romanian DL", 3, 8, 0.7),
			exFrom(KindAccessory, "Leg Curl", 3, 12, Dead, 0.35, ""),
		}},
	}

	recoveryTemplate = sessionTemplate{label: "Recovery / Stretch", exercises: []SessionExercise{
		exFrom(KindStretch, "Cat & Cow", 2, 10, "", 0, "背骨を滑らかに"),
		exFrom(KindStretch, "Seated Hamstring", 2, 30, "", 0, "左右 30 秒"),
		exFrom(KindStretch, "Hip Flexor", 2, 30, "", 0, "左右 30 秒"),
	}}

	minimumLoads = map[ExerciseKind]float64{
		KindBench:     20,
		KindSquat:     20,
		KindDead:      20,
		KindOHP:       10,
		KindRow:       20,
		KindPulldown:  15,
		KindAccessory: 5,
		KindStretch:   0,
	}

	// bodyweightBaseRatios estimate a base load from body weight when no lift target is known.
	bodyweightBaseRatios = map[ExerciseKind]float64{
		KindBench:     0.7,
		KindSquat:     1.0,
		KindDead:      1.2,
		KindOHP:       0.45,
		KindRow:       0.8,
		KindPulldown:  0.8,
		KindAccessory: 0.3,
	}

	levelCoefficients = map[Experience]map[Lift]float64{
		Beginner:     {Bench: 0.7, Squat: 1.0, Dead: 1.2},
		Intermediate: {Bench: 0.9, Squat: 1.3, Dead: 1.6},
		Advanced:     {Bench: 1.05, Squat: 1.6, Dead: 2.0},
	}
)

// Targets are the reference loads of the primary lifts that session weights are derived from.
type Targets struct {
	Bench *float64 `json:"bench,omitempty" yaml:"bench,omitempty"`
	Squat *float64 `json:"squat,omitempty" yaml:"squat,omitempty"`
	Dead  *float64 `json:"dead,omitempty"  yaml:"dead,omitempty"`
}

// Get returns the target of lift.
func (t Targets) Get(lift Lift) *float64 {
	switch lift {
	case Bench:
		return t.Bench
	case Squat:
		return t.Squat
	case Dead:
		return t.Dead
	}
	return nil
}

func (t *Targets) set(lift Lift, v *float64) {
	switch lift {
	case Bench:
		t.Bench = v
	case Squat:
		t.Squat = v
	case Dead:
		t.Dead = v
	}
}

// InferTargets resolves the reference load of each primary lift. The most recent log with any primary lift
// weight wins, then the profile goal or current lift weight, then an estimate from body weight, experience tier
// and goal type.
func InferTargets(p Profile, logs []DailyLog) Targets {
	logged := lastLoggedTargets(logs)
	estimated := EstimateTargets(p)
	var t Targets
	for _, lift := range Lifts {
		switch {
		case logged.Get(lift) != nil:
			t.set(lift, logged.Get(lift))
		case profileTarget(p, lift) != nil:
			t.set(lift, profileTarget(p, lift))
		default:
			t.set(lift, estimated.Get(lift))
		}
	}
	return t
}

// lastLoggedTargets reads the newest log that has a weight for any primary lift.
func lastLoggedTargets(logs []DailyLog) Targets {
	sorted := slices.SortedFunc(slices.Values(logs), func(a, b DailyLog) int {
		return cmp.Compare(b.Date.DaysSince(a.Date), 0)
	})
	for _, l := range sorted {
		var t Targets
		found := false
		for _, lift := range Lifts {
			if w, ok := l.liftWeight(lift); ok {
				t.set(lift, ptr.Ref(w))
				found = true
			}
		}
		if found {
			return t
		}
	}
	return Targets{}
}

func profileTarget(p Profile, lift Lift) *float64 {
	g := p.Lifts.Get(lift)
	switch {
	case isFinite(g.Goal.Weight) && g.Goal.Weight > 0:
		return ptr.Ref(g.Goal.Weight)
	case isFinite(g.Current.Weight) && g.Current.Weight > 0:
		return ptr.Ref(g.Current.Weight)
	}
	return nil
}

// EstimateTargets estimates the primary lift loads from body weight, experience tier and goal type.
func EstimateTargets(p Profile) Targets {
	bw := positiveOr(p.BodyWeightKg, defaultEstimateBodyWeightKg)
	coefficients, ok := levelCoefficients[p.ExperienceTier]
	if !ok {
		coefficients = levelCoefficients[Beginner]
	}
	adj := 1.0
	switch p.GoalType {
	case GoalTypeBulk:
		adj = 1.05
	case GoalTypeSlim:
		adj = 0.95
	case GoalTypeFit:
	}
	var t Targets
	for _, lift := range Lifts {
		t.set(lift, ptr.Ref(RoundToPlate(bw*coefficients[lift]*adj)))
	}
	return t
}

// SessionKeyFor returns the rotation slot of date, or false when date is a rest day under plan.
func SessionKeyFor(plan *WeekPlan, date Date) (string, bool) {
	if plan == nil {
		return "", false
	}
	n := plan.sessionIndex(date)
	if n < 0 {
		return "", false
	}
	rotation, ok := rotations[plan.SessionsPerWeek]
	if !ok {
		rotation = rotations[defaultSessionsPerWeek]
	}
	return rotation[n%len(rotation)], true
}

// ScheduleFor returns the workout of date. Without a plan for the week of date, or when date is not a planned
// day, the result is the recovery session. Otherwise the n-th planned day of the week gets the n-th slot of the
// rotation for the plan's sessions per week, with suggested weights resolved from [InferTargets].
func ScheduleFor(p Profile, plan *WeekPlan, date Date, logs []DailyLog) Session {
	key, ok := SessionKeyFor(plan, date)
	if !ok {
		return RecoverySession(date)
	}
	tmpl := sessionTemplates[key]
	targets := InferTargets(p, logs)
	exercises := make([]SessionExercise, 0, len(tmpl.exercises))
	for _, e := range tmpl.exercises {
		exercises = append(exercises, ResolveExercise(e, targets))
	}
	return Session{
		Date:          date,
		Rest:          false,
		Label:         tmpl.label,
		SessionKey:    key,
		Exercises:     exercises,
		Warmup:        Stretches(StretchWarmup),
		Cooldown:      Stretches(StretchCooldown),
		RestStretches: nil,
	}
}

// RecoverySession is the stretch-only session of a rest day.
func RecoverySession(date Date) Session {
	return Session{
		Date:          date,
		Rest:          true,
		Label:         recoveryTemplate.label,
		SessionKey:    RestSessionKey,
		Exercises:     slices.Clone(recoveryTemplate.exercises),
		Warmup:        nil,
		Cooldown:      nil,
		RestStretches: Stretches(StretchRest),
	}
}

// ResolveExercise fills in the base load and the suggested weight of e from targets.
func ResolveExercise(e SessionExercise, t Targets) SessionExercise {
	e.BaseLoadKg = baseLoad(e, t)
	e.SuggestedWeightKg = suggestedLoad(e.Kind, e.BaseLoadKg, e.PercentOfTarget)
	return e
}

// suggestedLoad is RoundToPlate(max(minimum load, base × pct)). Without a base or a percentage the minimum load
// of the kind is suggested. Stretches get no weight.
func suggestedLoad(kind ExerciseKind, base *float64, pct float64) *float64 {
	if kind == KindStretch {
		return nil
	}
	minLoad := minimumLoads[kind]
	if base == nil || !isFinite(*base) || pct <= 0 {
		return ptr.Ref(minLoad)
	}
	return ptr.Ref(RoundToPlate(max(minLoad, RoundToPlate(*base*pct))))
}

func baseLoad(e SessionExercise, t Targets) *float64 {
	bw := bodyweightHint(t)
	if e.BaseLift != "" {
		if v := t.Get(e.BaseLift); v != nil {
			return v
		}
		return bodyweightBase(ExerciseKind(e.BaseLift), bw)
	}

	var derived *float64
	switch e.Kind {
	case KindSquat:
		derived = t.Squat
	case KindBench, KindAccessory:
		derived = t.Bench
	case KindDead, KindPulldown:
		derived = t.Dead
	case KindOHP:
		derived = scaled(t.Bench, 0.65) //nolint:mnd // overhead press from bench.
	case KindRow:
		derived = scaled(t.Dead, 0.55) //nolint:mnd // row from deadlift.
	case KindStretch:
		return nil
	}
	if derived != nil {
		return derived
	}
	return bodyweightBase(e.Kind, bw)
}

func scaled(v *float64, ratio float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr.Ref(*v * ratio)
}

// bodyweightHint backs a body weight out of the first known target.
func bodyweightHint(t Targets) float64 {
	switch {
	case t.Bench != nil && *t.Bench > 0:
		return *t.Bench / levelCoefficients[Beginner][Bench]
	case t.Squat != nil && *t.Squat > 0:
		return *t.Squat / levelCoefficients[Beginner][Squat]
	case t.Dead != nil && *t.Dead > 0:
		return *t.Dead / levelCoefficients[Beginner][Dead]
	}
	return defaultEstimateBodyWeightKg
}

func bodyweightBase(kind ExerciseKind, bw float64) *float64 {
	ratio, ok := bodyweightBaseRatios[kind]
	if !ok {
		return nil
	}
	return ptr.Ref(positiveOr(bw, defaultEstimateBodyWeightKg) * ratio)
}
