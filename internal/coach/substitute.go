package coach

import (
	"math/rand/v2"
	"slices"
)

// Substitute picks a random eligible replacement for the menu item with key slot. Candidates come from the
// areas that list slot and, when those are exhausted, from every area. Keys in exclude and slot itself are
// skipped. It reports false when nothing eligible is left.
//
// The result is intentionally random and must not be relied upon beyond being a valid menu item.
func Substitute(rng *rand.Rand, p Profile, slot string, exclude []string) (PlanItem, bool) {
	skip := func(c Candidate) bool {
		return c.Key == slot || slices.Contains(exclude, c.Key) || !Eligible(c, p.Barriers)
	}

	var sameArea, anyArea []Candidate
	for _, area := range RankAreas(p.GoalAreas) {
		pool := areaPool[area]
		listsSlot := containsKey(pool, slot)
		for _, c := range pool {
			if skip(c) {
				continue
			}
			if listsSlot && !containsKey(sameArea, c.Key) {
				sameArea = append(sameArea, c)
			}
			if !containsKey(anyArea, c.Key) {
				anyArea = append(anyArea, c)
			}
		}
	}

	pool := sameArea
	if len(pool) == 0 {
		pool = anyArea
	}
	if len(pool) == 0 {
		return PlanItem{}, false //nolint:exhaustruct // not found.
	}
	return paramsFor(p).item(pool[rng.IntN(len(pool))]), true
}

// SubstituteLift picks a random alternative for a scheduled exercise of kind. Alternatives whose name is in
// exclude are skipped. The suggested weight applies the alternative's ratio to base.
func SubstituteLift(rng *rand.Rand, kind ExerciseKind, base *float64, exclude []string) (SessionExercise, bool) {
	var pool []Candidate
	for _, c := range liftAlternatives[kind] {
		if !slices.Contains(exclude, c.Name) {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return SessionExercise{}, false //nolint:exhaustruct // not found.
	}
	c := pool[rng.IntN(len(pool))]
	return SessionExercise{
		Kind:              c.Kind,
		Name:              c.Name,
		Sets:              c.Sets,
		Reps:              c.Reps,
		BaseLift:          "",
		PercentOfTarget:   c.Ratio,
		Notes:             c.Notes,
		BaseLoadKg:        base,
		SuggestedWeightKg: c.Suggest(base),
	}, true
}
