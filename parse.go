package weekly

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	segmentSeparator = ";"
	rangeSeparator   = ","
	daySeparator     = ","
	timeSeparator    = "~"
)

// window is a time range within one day in minutes from midnight. end may exceed
// MinutesPerDay when the range crosses midnight.
type window struct {
	start int
	end   int
}

func (w window) anchoredAt(wd time.Weekday) Interval {
	day := int(wd) * MinutesPerDay
	return Interval{
		Start: FromMinuteOfWeek(day + w.start),
		End:   FromMinuteOfWeek(day + w.end),
	}
}

type segment struct {
	windows []window
	days    []time.Weekday
	generic bool
}

// Parse reads a schedule such as
//
//	09:00~15:00,17:00~21:00;12:00~02:00(Fri,Sat);09:00~21:00(Sun)
//
// Segments with a day list apply to those days. Segments without one apply to
// every weekday that no other segment names, even when that segment selects no
// time at all (00:00~00:00). Several generic segments are unioned, each still
// restricted to the unnamed days. Unknown day tokens are dropped; malformed
// time ranges fail with ErrParse.
func Parse(s string) (Period, error) {
	var (
		specific  []segment
		generic   []segment
		specified [DaysPerWeek]bool
	)

	for _, raw := range strings.Split(s, segmentSeparator) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		seg, err := parseSegment(raw)
		if err != nil {
			return Period{}, err
		}
		if seg.generic {
			generic = append(generic, seg)
			continue
		}
		for _, wd := range seg.days {
			specified[wd] = true
		}
		specific = append(specific, seg)
	}

	var intervals []Interval
	for _, seg := range specific {
		for _, wd := range seg.days {
			for _, w := range seg.windows {
				intervals = append(intervals, w.anchoredAt(wd))
			}
		}
	}
	for _, seg := range generic {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if specified[wd] {
				continue
			}
			for _, w := range seg.windows {
				intervals = append(intervals, w.anchoredAt(wd))
			}
		}
	}

	return New(intervals...), nil
}

// MustParse is like Parse but panics if the schedule is malformed.
func MustParse(s string) Period {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(raw string) (segment, error) {
	seg := segment{generic: true}
	timeList := raw

	if open := strings.Index(raw, "("); open >= 0 {
		if !strings.HasSuffix(raw, ")") || strings.Count(raw, "(") != 1 || strings.Count(raw, ")") != 1 {
			return segment{}, errors.Wrapf(ErrParse, "unbalanced day list in %q", raw)
		}
		seg.generic = false
		seg.days = parseDayList(raw[open+1 : len(raw)-1])
		timeList = raw[:open]
	} else if strings.Contains(raw, ")") {
		return segment{}, errors.Wrapf(ErrParse, "unbalanced day list in %q", raw)
	}

	for _, tok := range strings.Split(timeList, rangeSeparator) {
		w, err := parseTimeRange(strings.TrimSpace(tok))
		if err != nil {
			return segment{}, err
		}
		seg.windows = append(seg.windows, w)
	}
	return seg, nil
}

// parseDayList keeps the recognised abbreviations and drops everything else.
func parseDayList(list string) []time.Weekday {
	var days []time.Weekday
	for _, tok := range strings.Split(list, daySeparator) {
		if wd, ok := ParseDayAbbrev(strings.TrimSpace(tok)); ok {
			days = append(days, wd)
		}
	}
	return days
}

func parseTimeRange(tok string) (window, error) {
	parts := strings.Split(tok, timeSeparator)
	if len(parts) != 2 {
		return window{}, errors.Wrapf(ErrParse, "time range %q must look like HH:MM~HH:MM", tok)
	}
	start, err := parseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return window{}, errors.Wrapf(err, "in time range %q", tok)
	}
	end, err := parseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return window{}, errors.Wrapf(err, "in time range %q", tok)
	}
	if end < start {
		end += MinutesPerDay
	}
	return window{start: start, end: end}, nil
}

// parseClock reads H:MM or HH:MM, allowing 24:00 as the end of the day.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || !isDigits(parts[0], 1, 2) || !isDigits(parts[1], 2, 2) {
		return 0, errors.Wrapf(ErrParse, "invalid time %q", s)
	}
	hour, _ := strconv.Atoi(parts[0])
	minute, _ := strconv.Atoi(parts[1])
	if !validClock(hour, minute) {
		return 0, errors.Wrapf(ErrParse, "time %q out of range", s)
	}
	return hour*MinutesPerHour + minute, nil
}

// validClock accepts 00:00 through 24:00.
func validClock(hour, minute int) bool {
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return false
	}
	return hour < 24 || minute == 0
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
