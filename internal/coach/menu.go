package coach

import (
	"math"
	"slices"
)

// GoalProfile is the coarse training style that picks volume and rest for the daily menu.
type GoalProfile string

const (
	ProfileSlim    GoalProfile = "slim"
	ProfileTone    GoalProfile = "tone"
	ProfileMuscle  GoalProfile = "muscle"
	ProfileHealthy GoalProfile = "healthy"
)

const (
	beginnerNote        = "フォーム優先／痛みがあれば中止"
	minRestSeconds      = 20
	beginnerRestBonus   = 15
	advancedRestPenalty = 10
	weightBumpKg        = 0.5
	sessionsPerBump     = 2
	minSuggestedKg      = 1
)

type volume struct {
	setsLow, setsHigh int
	repsLow, repsHigh int
	restSeconds       int
}

//nolint:gochecknoglobals // static table.
var volumes = map[GoalProfile]volume{
	ProfileSlim:    {setsLow: 1, setsHigh: 2, repsLow: 12, repsHigh: 20, restSeconds: 30},
	ProfileTone:    {setsLow: 2, setsHigh: 3, repsLow: 10, repsHigh: 15, restSeconds: 45},
	ProfileMuscle:  {setsLow: 3, setsHigh: 4, repsLow: 8, repsHigh: 12, restSeconds: 60},
	ProfileHealthy: {setsLow: 1, setsHigh: 2, repsLow: 8, repsHigh: 15, restSeconds: 45},
}

// PlanItem is one exercise of the generated daily menu. It is computed on demand and never stored.
type PlanItem struct {
	Key               string   `json:"key"                         yaml:"key"`
	Name              string   `json:"name"                        yaml:"name"`
	TargetSets        int      `json:"targetSets"                  yaml:"targetSets"`
	TargetReps        int      `json:"targetReps"                  yaml:"targetReps"`
	SuggestedWeightKg *float64 `json:"suggestedWeightKg,omitempty" yaml:"suggestedWeightKg,omitempty"`
	RestSeconds       int      `json:"restSeconds"                 yaml:"restSeconds"`
	Notes             string   `json:"notes,omitempty"             yaml:"notes,omitempty"`
}

// GoalProfileFor derives the menu goal profile. Goals take priority in the order muscle gain, whole body tone,
// abs or waist, posture. Without a deciding goal the dominant area decides, abs meaning slim and back meaning
// healthy, and tone is the default.
func GoalProfileFor(goals []GoalID, areas AreaWeights) GoalProfile {
	switch {
	case slices.Contains(goals, GoalMuscleGain):
		return ProfileMuscle
	case slices.Contains(goals, GoalWholeTone):
		return ProfileTone
	case slices.Contains(goals, GoalAbsTone), slices.Contains(goals, GoalWaist):
		return ProfileSlim
	case slices.Contains(goals, GoalPosture):
		return ProfileHealthy
	case len(goals) > 0:
		return ProfileTone
	}
	top := RankAreas(areas)[0]
	switch {
	case areas[top] <= 0:
		return ProfileTone
	case top == AreaAbs:
		return ProfileSlim
	case top == AreaBack:
		return ProfileHealthy
	}
	return ProfileTone
}

// menuParams are the derived volume settings shared by all items of one menu.
type menuParams struct {
	count       int
	sets        int
	repsLow     int
	repsHigh    int
	restSeconds int
	notes       string
	bodyWeight  float64
	sessions    int
	shortOnly   bool
}

func paramsFor(p Profile) menuParams {
	v := volumes[GoalProfileFor(p.Goals, p.GoalAreas)]

	count, sets := 4, v.setsHigh //nolint:mnd // long sessions.
	switch p.SessionDurationBand {
	case DurationShort:
		count, sets = 2, v.setsLow
	case DurationMedium:
		count, sets = 3, min(v.setsHigh, 3) //nolint:mnd // medium sessions cap sets at 3.
	case DurationLong:
	}

	rest := v.restSeconds
	var notes string
	switch p.ExperienceTier {
	case Beginner:
		rest += beginnerRestBonus
		notes = beginnerNote
	case Advanced:
		rest -= advancedRestPenalty
	case Intermediate:
	}

	return menuParams{
		count:       count,
		sets:        sets,
		repsLow:     v.repsLow,
		repsHigh:    v.repsHigh,
		restSeconds: max(minRestSeconds, rest),
		notes:       notes,
		bodyWeight:  positiveOr(p.BodyWeightKg, defaultBodyWeightKg),
		sessions:    max(0, p.SessionsCompleted),
		shortOnly:   p.HasBarrier(BarrierShortDurationOnly),
	}
}

func (m menuParams) item(c Candidate) PlanItem {
	sets := m.sets
	if m.shortOnly {
		sets = max(1, sets-1)
	}
	return PlanItem{
		Key:               c.Key,
		Name:              c.Name,
		TargetSets:        sets,
		TargetReps:        ProgressiveReps(m.repsLow, m.repsHigh, m.sessions),
		SuggestedWeightKg: menuWeight(c.Key, m.bodyWeight, m.sessions),
		RestSeconds:       m.restSeconds,
		Notes:             m.notes,
	}
}

// ProgressiveReps adds one rep every two completed sessions, capped at high.
func ProgressiveReps(low, high, sessionsCompleted int) int {
	return min(high, low+max(0, sessionsCompleted)/sessionsPerBump)
}

// menuWeight is max(1, RoundToPlate(bodyWeight × coefficient + 0.5 per two sessions)). Keys without a positive
// coefficient are bodyweight exercises and get no weight.
func menuWeight(key string, bodyWeight float64, sessions int) *float64 {
	c := bodyweightCoefficients[key]
	if c <= 0 {
		return nil
	}
	bumps := math.Floor(float64(max(0, sessions)) / sessionsPerBump)
	w := max(minSuggestedKg, RoundToPlate(bodyWeight*c+bumps*weightBumpKg))
	return &w
}

// GenerateMenu builds the daily exercise menu for p. Areas are visited by descending goal weight and each
// contributes its eligible candidates in catalog order until the duration band's exercise count is reached.
// When barriers exclude everything a single bodyweight hip bridge is returned, so the menu is never empty.
func GenerateMenu(p Profile) []PlanItem {
	m := paramsFor(p)
	chosen := chooseCandidates(p, m.count)
	items := make([]PlanItem, 0, len(chosen))
	for _, c := range chosen {
		items = append(items, m.item(c))
	}
	return items
}

func chooseCandidates(p Profile, count int) []Candidate {
	var chosen []Candidate
	for _, area := range RankAreas(p.GoalAreas) {
		for _, c := range areaPool[area] {
			if len(chosen) >= count {
				return chosen
			}
			if !Eligible(c, p.Barriers) || containsKey(chosen, c.Key) {
				continue
			}
			chosen = append(chosen, c)
		}
	}
	if len(chosen) == 0 {
		chosen = append(chosen, fallbackCandidate)
	}
	return chosen
}

func containsKey(cs []Candidate, key string) bool {
	return slices.ContainsFunc(cs, func(c Candidate) bool { return c.Key == key })
}
