package coach

const (
	defaultSessionsPerWeek = 3
	minSessionsPerWeek     = 2
	maxSessionsPerWeek     = 4
)

// WeekPlan marks the training days of one calendar week.
type WeekPlan struct {
	WeekStart       Date    `json:"weekStart"       yaml:"weekStart"`
	SessionsPerWeek int     `json:"sessionsPerWeek" yaml:"sessionsPerWeek"`
	Days            [7]bool `json:"days"            yaml:"days"`
}

// DefaultWeekPlan trains three sessions on Monday, Wednesday and Friday of the week containing date.
func DefaultWeekPlan(date Date) WeekPlan {
	return WeekPlan{
		WeekStart:       WeekStart(date),
		SessionsPerWeek: defaultSessionsPerWeek,
		Days:            [7]bool{true, false, true, false, true, false, false},
	}
}

// FirstWeekPlan is the plan of a user's first scheduled week. The profile's weekly schedule picks the training
// days and, clamped to the supported splits, the number of sessions. An empty schedule gives [DefaultWeekPlan].
func FirstWeekPlan(date Date, schedule Weekdays) WeekPlan {
	wp := DefaultWeekPlan(date)
	var days [7]bool
	n := 0
	for _, d := range schedule {
		if d >= Monday && d <= Sunday && !days[d] {
			days[d] = true
			n++
		}
	}
	if n == 0 {
		return wp
	}
	wp.Days = days
	wp.SessionsPerWeek = min(max(n, minSessionsPerWeek), maxSessionsPerWeek)
	return wp
}

// ValidSessionsPerWeek reports whether n is one of the supported splits.
func ValidSessionsPerWeek(n int) bool {
	return n >= minSessionsPerWeek && n <= maxSessionsPerWeek
}

// CopyTo returns the plan with the same days moved to the week containing date.
func (w WeekPlan) CopyTo(date Date) WeekPlan {
	w.WeekStart = WeekStart(date)
	return w
}

// Toggle flips whether day is a training day.
func (w WeekPlan) Toggle(day Weekday) WeekPlan {
	if day >= Monday && day <= Sunday {
		w.Days[day] = !w.Days[day]
	}
	return w
}

// PlannedDates lists the training dates of the week in ascending order.
func (w WeekPlan) PlannedDates() []Date {
	var dates []Date
	for i, on := range w.Days {
		if on {
			dates = append(dates, w.WeekStart.AddDays(i))
		}
	}
	return dates
}

// IsPlanned reports whether date falls in this plan's week and is a training day.
func (w WeekPlan) IsPlanned(date Date) bool {
	if !WeekStart(date).Equal(w.WeekStart) {
		return false
	}
	return w.Days[date.Weekday()]
}

// sessionIndex is the 0-based position of date among the planned dates, -1 when it is not planned.
func (w WeekPlan) sessionIndex(date Date) int {
	if !w.IsPlanned(date) {
		return -1
	}
	n := 0
	for d := Monday; d < date.Weekday(); d++ {
		if w.Days[d] {
			n++
		}
	}
	return n
}
