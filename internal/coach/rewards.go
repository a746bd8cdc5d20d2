package coach

import "slices"

const (
	// DailyXP is granted for the first save of a training day.
	DailyXP = 10
	// Big3BonusXP is granted when bench, squat and deadlift all succeeded on the day.
	Big3BonusXP = 5
)

// Gamification is the XP, streak and badge state of a user.
type Gamification struct {
	XP       int      `json:"xp"                 yaml:"xp"`
	Streak   int      `json:"streak"             yaml:"streak"`
	LastDate Date     `json:"lastDate,omitzero"  yaml:"lastDate,omitempty"`
	Badges   []string `json:"badges"             yaml:"badges"`
}

type badgeRule struct {
	id     string
	xp     int
	streak int
}

//nolint:gochecknoglobals // static table.
var badgeRules = []badgeRule{
	{id: "XP100", xp: 100},
	{id: "XP300", xp: 300},
	{id: "XP500", xp: 500},
	{id: "Streak3", streak: 3},
	{id: "Streak7", streak: 7},
	{id: "Streak14", streak: 14},
	{id: "Streak30", streak: 30},
}

// Big3Bonus returns [Big3BonusXP] when all primary lifts of l succeeded and 0 otherwise.
func Big3Bonus(l DailyLog) int {
	if l.AllSucceeded() {
		return Big3BonusXP
	}
	return 0
}

// GrantDaily records a save on date and adds xpGain. The streak starts at 1, stays the same on a repeated
// save for the same date, grows by one on the following day and restarts at 1 after a gap or a date that
// is not after the last one. XP never drops below 0. It returns the updated state and the badges earned by
// this call in rule order; existing badges are never removed.
func GrantDaily(g Gamification, date Date, xpGain int) (Gamification, []string) {
	streak := 1
	switch {
	case g.LastDate.IsZero():
	case g.LastDate.Equal(date):
		streak = max(1, g.Streak)
	case date.DaysSince(g.LastDate) == 1:
		streak = g.Streak + 1
	}

	updated := Gamification{
		XP:       max(0, g.XP+xpGain),
		Streak:   streak,
		LastDate: date,
		Badges:   slices.Clone(g.Badges),
	}
	if updated.Badges == nil {
		updated.Badges = []string{}
	}

	var earned []string
	for _, rule := range badgeRules {
		satisfied := (rule.xp > 0 && updated.XP >= rule.xp) || (rule.streak > 0 && updated.Streak >= rule.streak)
		if satisfied && !slices.Contains(updated.Badges, rule.id) {
			updated.Badges = append(updated.Badges, rule.id)
			earned = append(earned, rule.id)
		}
	}
	return updated, earned
}
