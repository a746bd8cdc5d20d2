package coach

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

const streakLookbackDays = 365

// DidTrain reports whether the log records any lift weight or a body weight.
func DidTrain(l DailyLog) bool {
	for _, lift := range Lifts {
		if _, ok := l.liftWeight(lift); ok {
			return true
		}
	}
	return l.BodyWeightKg != nil && *l.BodyWeightKg > 0
}

// CurrentStreak counts consecutive training days ending today. A missing log for today does not break the
// streak since the day may not be saved yet.
func CurrentStreak(logs []DailyLog, today Date) int {
	byDate := make(map[string]DailyLog, len(logs))
	for _, l := range logs {
		byDate[l.Date.String()] = l
	}
	streak := 0
	for n := range streakLookbackDays {
		l, ok := byDate[today.AddDays(-n).String()]
		if !ok {
			if n == 0 {
				continue
			}
			break
		}
		if !DidTrain(l) {
			break
		}
		streak++
	}
	return streak
}

//nolint:gochecknoglobals // static table.
var praises = []string{
	"よくやった！🔥",
	"素晴らしい！💪",
	"コツコツ継続、最高！✨",
	"ナイスワーク！🙌",
	"未来の自分が拍手してる👏",
}

// Praise returns a random cheer that mentions longer streaks.
func Praise(streak int, rng *rand.Rand) string {
	pick := praises[rng.IntN(len(praises))]
	switch {
	case streak >= 7: //nolint:mnd // a week.
		return fmt.Sprintf("連続 %d日！神継続…%s", streak, pick)
	case streak >= 3: //nolint:mnd // three days.
		return fmt.Sprintf("連続 %d日、波に乗ってる！%s", streak, pick)
	case streak >= 1:
		return fmt.Sprintf("連続 %d日目、いい流れ！%s", streak, pick)
	}
	return pick
}

// Achievement is a milestone unlocked by training history.
type Achievement struct {
	ID          string `json:"id"          yaml:"id"`
	Title       string `json:"title"       yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon"        yaml:"icon"`
}

//nolint:gochecknoglobals // static table.
var achievements = []Achievement{
	{ID: "first-log", Title: "はじめの一歩", Description: "初めてセットを記録した", Icon: "👟"},
	{ID: "triple-clear", Title: "フルコンプリート", Description: "1日に3種目すべて達成", Icon: "🏆"},
	{ID: "streak-3", Title: "3日連続達成", Description: "3日連続で3種目達成", Icon: "🔥"},
	{ID: "bench-100", Title: "ベンチ100", Description: "ベンチで100kg達成", Icon: "💪"},
	{ID: "big3-300", Title: "合計300kg", Description: "Big3合計が300kgに到達", Icon: "⚙️"},
}

// Achievements lists every achievement in display order.
func Achievements() []Achievement {
	return slices.Clone(achievements)
}

// EvaluateAchievements returns the unlocked achievements in display order.
func EvaluateAchievements(p Profile, logs []DailyLog) []Achievement {
	sorted := slices.SortedFunc(slices.Values(logs), func(a, b DailyLog) int {
		return a.Date.DaysSince(b.Date)
	})

	unlocked := map[string]bool{}
	run := 0
	var prev Date
	for _, l := range sorted {
		if DidTrain(l) {
			unlocked["first-log"] = true
		}
		if w, ok := l.liftWeight(Bench); ok && w >= 100 { //nolint:mnd // 100 kg bench.
			unlocked["bench-100"] = true
		}
		if !l.AllSucceeded() {
			run = 0
			continue
		}
		unlocked["triple-clear"] = true
		if run > 0 && l.Date.DaysSince(prev) == 1 {
			run++
		} else {
			run = 1
		}
		prev = l.Date
		if run >= 3 { //nolint:mnd // three days.
			unlocked["streak-3"] = true
		}
	}

	var current, goal float64
	for _, lift := range Lifts {
		current += p.Lifts.Get(lift).Current.Weight
		goal += p.Lifts.Get(lift).Goal.Weight
	}
	if current >= 300 || goal >= 300 { //nolint:mnd // 300 kg total.
		unlocked["big3-300"] = true
	}

	var out []Achievement
	for _, a := range achievements {
		if unlocked[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
