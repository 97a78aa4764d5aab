package weekly

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type dayGroup struct {
	runs string
	days []time.Weekday
}

// Format renders the canonical schedule string. Weekdays sharing exactly the same
// ranges are merged into one group; groups with more days come first and ties
// keep weekday order. Empty weekdays are left out, so an empty period is "".
//
// Format(Parse(Format(p))) == Format(p) for every period p.
func (p Period) Format() string {
	var groups []*dayGroup
	byRuns := map[string]*dayGroup{}

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		offset := int(wd) * MinutesPerDay
		runs := p.runs(offset, offset+MinutesPerDay)
		if len(runs) == 0 {
			continue
		}

		ranges := make([]string, len(runs))
		for idx, r := range runs {
			ranges[idx] = formatClock(r[0]-offset) + timeSeparator + formatClock(r[1]-offset)
		}
		key := strings.Join(ranges, rangeSeparator)

		g, ok := byRuns[key]
		if !ok {
			g = &dayGroup{runs: key}
			byRuns[key] = g
			groups = append(groups, g)
		}
		g.days = append(g.days, wd)
	}

	// groups are already in order of their first weekday
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].days) > len(groups[j].days)
	})

	var sb strings.Builder
	for idx, g := range groups {
		if idx > 0 {
			sb.WriteString(segmentSeparator)
		}
		sb.WriteString(g.runs)
		sb.WriteString("(")
		for i, wd := range g.days {
			if i > 0 {
				sb.WriteString(daySeparator)
			}
			sb.WriteString(DayAbbrev(wd))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (p Period) String() string {
	return p.Format()
}

// formatClock renders minutes from midnight, so 1440 becomes 24:00.
func formatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/MinutesPerHour, m%MinutesPerHour)
}
