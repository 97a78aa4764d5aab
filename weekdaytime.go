package weekly

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
	DaysPerWeek    = 7
	MinutesPerWeek = DaysPerWeek * MinutesPerDay
)

var dayAbbrevs = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayAbbrev returns the three letter abbreviation used by the schedule grammar.
func DayAbbrev(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return wd.String()
	}
	return dayAbbrevs[wd]
}

// ParseDayAbbrev maps "Sun".."Sat" (any case) to a weekday.
func ParseDayAbbrev(s string) (time.Weekday, bool) {
	for idx, abbrev := range dayAbbrevs {
		if strings.EqualFold(s, abbrev) {
			return time.Weekday(idx), true
		}
	}
	return 0, false
}

// WeekdayTime is a minute within a recurring week. The zero value is Sunday 00:00.
// It is a value type: the Add methods return a new WeekdayTime.
type WeekdayTime struct {
	weekday time.Weekday
	hour    int
	minute  int
}

func NewWeekdayTime(weekday time.Weekday, hour, minute int) (WeekdayTime, error) {
	if weekday < time.Sunday || weekday > time.Saturday {
		return WeekdayTime{}, errors.Wrapf(ErrInvalidArgument, "weekday must be between 0 and 6 inclusive, got %d", weekday)
	}
	if hour < 0 || hour > 23 {
		return WeekdayTime{}, errors.Wrapf(ErrInvalidArgument, "hour must be between 0 and 23 inclusive, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return WeekdayTime{}, errors.Wrapf(ErrInvalidArgument, "minute must be between 0 and 59 inclusive, got %d", minute)
	}
	return WeekdayTime{weekday: weekday, hour: hour, minute: minute}, nil
}

// MustWeekdayTime is like NewWeekdayTime but panics on invalid input.
func MustWeekdayTime(weekday time.Weekday, hour, minute int) WeekdayTime {
	wdt, err := NewWeekdayTime(weekday, hour, minute)
	if err != nil {
		panic(err)
	}
	return wdt
}

// FromMinuteOfWeek returns Sunday 00:00 advanced by m minutes. Any m is accepted,
// the result always wraps back into the week.
func FromMinuteOfWeek(m int) WeekdayTime {
	return WeekdayTime{}.AddMinutes(m)
}

func (w WeekdayTime) Weekday() time.Weekday { return w.weekday }
func (w WeekdayTime) Hour() int             { return w.hour }
func (w WeekdayTime) Minute() int           { return w.minute }

// MinuteOfWeek is weekday*1440 + hour*60 + minute, in [0, 10079].
func (w WeekdayTime) MinuteOfWeek() int {
	return int(w.weekday)*MinutesPerDay + w.hour*MinutesPerHour + w.minute
}

// AddDays moves the weekday, wrapping Saturday into Sunday.
func (w WeekdayTime) AddDays(days int) WeekdayTime {
	w.weekday = time.Weekday(floorMod(int(w.weekday)+days, DaysPerWeek))
	return w
}

// AddHours carries whole days into the weekday.
func (w WeekdayTime) AddHours(hours int) WeekdayTime {
	hours += w.hour
	w.hour = floorMod(hours, 24)
	return w.AddDays(floorDiv(hours, 24))
}

// AddMinutes carries whole hours into the hour (and from there into the weekday).
func (w WeekdayTime) AddMinutes(minutes int) WeekdayTime {
	minutes += w.minute
	w.minute = floorMod(minutes, MinutesPerHour)
	return w.AddHours(floorDiv(minutes, MinutesPerHour))
}

// Add applies days, hours and minutes in that order.
func (w WeekdayTime) Add(days, hours, minutes int) WeekdayTime {
	return w.AddDays(days).AddHours(hours).AddMinutes(minutes)
}

// Clock renders the time of day as HH:MM.
func (w WeekdayTime) Clock() string {
	return fmt.Sprintf("%02d:%02d", w.hour, w.minute)
}

func (w WeekdayTime) String() string {
	return DayAbbrev(w.weekday) + " " + w.Clock()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
