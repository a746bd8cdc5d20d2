package coach

import "math"

// MaxWeeksToGoal bounds the roadmap horizon to ten years of weekly points.
const MaxWeeksToGoal = 520

// RoadmapPoint is the projected state at the start of one week.
type RoadmapPoint struct {
	Week        int     `json:"week"        yaml:"week"`
	Date        Date    `json:"date"        yaml:"date"`
	WeightKg    float64 `json:"weightKg"    yaml:"weightKg"`
	BenchTarget float64 `json:"benchTarget" yaml:"benchTarget"`
	SquatTarget float64 `json:"squatTarget" yaml:"squatTarget"`
	DeadTarget  float64 `json:"deadTarget"  yaml:"deadTarget"`
}

//nolint:gochecknoglobals // static tables.
var (
	goalLiftRatios = map[GoalType]map[Lift]float64{
		GoalTypeSlim: {Bench: 0.8, Squat: 1.2, Dead: 1.5},
		GoalTypeFit:  {Bench: 1.0, Squat: 1.5, Dead: 2.0},
		GoalTypeBulk: {Bench: 1.2, Squat: 1.8, Dead: 2.3},
	}
	goalBodyFatPct = map[GoalType]float64{GoalTypeSlim: 15, GoalTypeFit: 12, GoalTypeBulk: 18}
	goalBMI        = map[GoalType]float64{GoalTypeSlim: 21, GoalTypeFit: 23, GoalTypeBulk: 25}

	// MaxWeeklyGainKg caps how much a lift target may change from one week to the next.
	MaxWeeklyGainKg = map[Lift]float64{Bench: 2, Squat: 3, Dead: 3}
)

func goalTypeOrFit(g GoalType) GoalType {
	if _, ok := goalLiftRatios[g]; ok {
		return g
	}
	return GoalTypeFit
}

// EstimateGoalWeight returns the explicit goal weight when positive. Otherwise it keeps the lean mass at the
// goal type's body fat percentage, or uses the goal type's BMI for the height, or keeps the current weight.
func EstimateGoalWeight(p Profile) float64 {
	if isFinite(p.GoalWeightKg) && p.GoalWeightKg > 0 {
		return p.GoalWeightKg
	}
	goal := goalTypeOrFit(p.GoalType)
	current := positiveOr(p.BodyWeightKg, 0)
	switch {
	case isFinite(p.BodyFatPct) && p.BodyFatPct > 0:
		lean := current * (1 - p.BodyFatPct/100)                 //nolint:mnd // percent.
		return roundTenth(lean / (1 - goalBodyFatPct[goal]/100)) //nolint:mnd // percent.
	case isFinite(p.HeightCm) && p.HeightCm > 0:
		m := p.HeightCm / 100 //nolint:mnd // cm to m.
		return roundTenth(goalBMI[goal] * m * m)
	}
	return roundTenth(current)
}

// GoalLiftTarget returns the stored goal of lift when positive, otherwise RoundToPlate(goal weight × ratio).
func GoalLiftTarget(p Profile, lift Lift, goalWeightKg float64) float64 {
	if g := p.Lifts.Get(lift).Goal.Weight; isFinite(g) && g > 0 {
		return g
	}
	return RoundToPlate(goalWeightKg * goalLiftRatios[goalTypeOrFit(p.GoalType)][lift])
}

// ProjectRoadmap projects WeeksToGoal+1 weekly points starting at p.StartedAt. Body weight moves linearly to the
// goal weight. Lift targets move linearly from the current to the goal lift but change by at most
// [MaxWeeklyGainKg] per week, so a distant goal may not be reached within the horizon. The horizon is at most
// [MaxWeeksToGoal] weeks. Callers fill a zero StartedAt before projecting.
func ProjectRoadmap(p Profile) []RoadmapPoint {
	weeks := min(max(1, p.WeeksToGoal), MaxWeeksToGoal)
	current := positiveOr(p.BodyWeightKg, 0)
	goalWeight := EstimateGoalWeight(p)

	series := make(map[Lift][]float64, len(Lifts))
	for _, lift := range Lifts {
		start := positiveOr(p.Lifts.Get(lift).Current.Weight, 0)
		series[lift] = ClampWeeklyGains(lerp(start, GoalLiftTarget(p, lift, goalWeight), weeks), MaxWeeklyGainKg[lift])
	}

	weights := lerp(current, goalWeight, weeks)
	points := make([]RoadmapPoint, 0, weeks+1)
	for i := range weeks + 1 {
		points = append(points, RoadmapPoint{
			Week:        i,
			Date:        p.StartedAt.AddDays(7 * i), //nolint:mnd // weekly points.
			WeightKg:    roundTenth(weights[i]),
			BenchTarget: series[Bench][i],
			SquatTarget: series[Squat][i],
			DeadTarget:  series[Dead][i],
		})
	}
	return points
}

func lerp(start, goal float64, weeks int) []float64 {
	out := make([]float64, 0, weeks+1)
	for i := range weeks + 1 {
		t := float64(i) / float64(weeks)
		out = append(out, start+(goal-start)*t)
	}
	return out
}

// ClampWeeklyGains rounds series to plates, starting from the rounded first value, and limits every step to
// maxGain in either direction. When rounding a step would exceed maxGain the step is exactly maxGain.
func ClampWeeklyGains(series []float64, maxGain float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, 0, len(series))
	out = append(out, RoundToPlate(series[0]))
	for _, raw := range series[1:] {
		prev := out[len(out)-1]
		next := RoundToPlate(raw)
		if math.Abs(next-prev) > maxGain {
			next = prev + math.Copysign(maxGain, next-prev)
		}
		out = append(out, next)
	}
	return out
}
