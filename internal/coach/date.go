package coach

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Date is a calendar date. The zero value means "not set".
type Date struct {
	t time.Time
}

// NewDate returns the date for year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysSince returns the number of calendar days from o to d.
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t).Hours() / 24) //nolint:mnd // hours per day, both dates are UTC midnight.
}

// Equal reports whether d and o are the same calendar date.
func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t)
}

func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

// Weekday returns the Monday-first weekday of d.
func (d Date) Weekday() Weekday {
	return Weekday((int(d.t.Weekday()) + 6) % 7) //nolint:mnd // shift Sunday=0 to Monday=0.
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts YYYY-MM-DD and RFC 3339 timestamps. A timestamp is truncated to its calendar date in its
// own offset.
func (d *Date) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if len(s) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err == nil {
		*d = parsed
		return nil
	}
	t, tsErr := time.Parse(time.RFC3339Nano, s)
	if tsErr != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// Weekday is a day of the week with Monday as 0 and Sunday as 6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

//nolint:gochecknoglobals // lookup table.
var weekdayTokens = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayTokens[w]
}

func (w Weekday) MarshalText() ([]byte, error) {
	if w < Monday || w > Sunday {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return []byte(w.String()), nil
}

func (w *Weekday) UnmarshalText(text []byte) error {
	parsed, ok := ParseWeekday(string(text))
	if !ok {
		return fmt.Errorf("unknown weekday %q", string(text))
	}
	*w = parsed
	return nil
}

// Weekdays is a list of weekdays. Decoding drops tokens that are not weekdays instead of failing.
type Weekdays []Weekday

func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var tokens []any
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("weekdays: %w", err)
	}
	*w = parseWeekdays(tokens)
	return nil
}

func (w *Weekdays) UnmarshalYAML(value *yaml.Node) error {
	var tokens []any
	if err := value.Decode(&tokens); err != nil {
		return fmt.Errorf("weekdays: %w", err)
	}
	*w = parseWeekdays(tokens)
	return nil
}

func parseWeekdays(tokens []any) Weekdays {
	var days Weekdays
	for _, token := range tokens {
		s, ok := token.(string)
		if !ok {
			continue
		}
		if day, known := ParseWeekday(s); known {
			days = append(days, day)
		}
	}
	return days
}

// ParseWeekday accepts mon..sun, full English names and the single kanji 月..日.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, token := range weekdayTokens {
		if s == token || s == strings.ToLower(time.Weekday((i+1)%7).String()) { //nolint:mnd // Monday first.
			return Weekday(i), true
		}
	}
	for i, kanji := range []string{"月", "火", "水", "木", "金", "土", "日"} {
		if s == kanji || s == kanji+"曜" || s == kanji+"曜日" {
			return Weekday(i), true
		}
	}
	return 0, false
}

// WeekStart returns the Monday of the week containing d. Sunday belongs to the week that started six days earlier.
func WeekStart(d Date) Date {
	return d.AddDays(-int(d.Weekday()))
}

// WeekIndex returns how many whole weeks lie between the week of startedAt and the week of today, never negative.
func WeekIndex(startedAt, today Date) int {
	diff := WeekStart(today).DaysSince(WeekStart(startedAt))
	return max(0, diff/7) //nolint:mnd // days per week.
}
