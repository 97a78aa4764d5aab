package weekly

import (
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
)

// Interval is a [Start, End) window over the week. When End is not after Start
// the window wraps from Start through Saturday night into the next Sunday.
// Start == End is an empty window.
type Interval struct {
	Start WeekdayTime
	End   WeekdayTime
}

func (i Interval) String() string {
	return i.Start.String() + " ~ " + i.End.String()
}

// Period is an immutable set of minutes of the week backed by a 10080 bit vector.
//
// Build one with New, Daily, FullWeek, FromBits, FromPlaces or Parse. The zero Period
// is not a valid operand for the set algebra and yields ErrTypeMismatch. A Period is
// never modified after construction so it may be shared between goroutines freely.
type Period struct {
	bits *bitset.BitSet
}

// New returns the union of the given intervals.
func New(intervals ...Interval) Period {
	bits := bitset.New(MinutesPerWeek)
	for _, iv := range intervals {
		markInterval(bits, iv.Start.MinuteOfWeek(), iv.End.MinuteOfWeek())
	}
	return Period{bits: bits}
}

func markInterval(bits *bitset.BitSet, start, end int) {
	switch {
	case end > start:
		setRange(bits, start, end)
	case end < start:
		// spans Saturday into Sunday
		setRange(bits, start, MinutesPerWeek)
		setRange(bits, 0, end)
	}
}

func setRange(bits *bitset.BitSet, start, end int) {
	for m := start; m < end; m++ {
		bits.Set(uint(m))
	}
}

// FullWeek is the period covering every minute of the week.
func FullWeek() Period {
	bits := bitset.New(MinutesPerWeek)
	setRange(bits, 0, MinutesPerWeek)
	return Period{bits: bits}
}

// FromBits copies an externally built vector. Its length must be exactly 10080.
func FromBits(bits *bitset.BitSet) (Period, error) {
	if bits == nil || bits.Len() != MinutesPerWeek {
		var n uint
		if bits != nil {
			n = bits.Len()
		}
		return Period{}, errors.Wrapf(ErrInvalidArgument, "bit vector must have %d bits, got %d", MinutesPerWeek, n)
	}
	return Period{bits: bits.Clone()}, nil
}

// Daily applies the same HH:MM~HH:MM window to every weekday from first to last
// inclusive (Fri..Mon wraps over the weekend). An end before the start crosses midnight
// and 24:00 ends the window at midnight.
func Daily(startHour, startMinute, endHour, endMinute int, first, last time.Weekday) (Period, error) {
	start, err := NewWeekdayTime(first, startHour, startMinute)
	if err != nil {
		return Period{}, err
	}
	if last < time.Sunday || last > time.Saturday {
		return Period{}, errors.Wrapf(ErrInvalidArgument, "weekday %d out of range", last)
	}
	if !validClock(endHour, endMinute) {
		return Period{}, errors.Wrapf(ErrInvalidArgument, "end %02d:%02d out of range", endHour, endMinute)
	}

	length := endHour*MinutesPerHour + endMinute - (startHour*MinutesPerHour + startMinute)
	if length < 0 {
		length += MinutesPerDay
	}

	days := floorMod(int(last)-int(first), DaysPerWeek) + 1
	intervals := make([]Interval, 0, days)
	for d := 0; d < days; d++ {
		s := start.AddDays(d)
		intervals = append(intervals, Interval{Start: s, End: s.AddMinutes(length)})
	}
	return New(intervals...), nil
}

func (p Period) valid() bool {
	return p.bits != nil
}

func checkOperands(p, q Period) error {
	if !p.valid() || !q.valid() {
		return ErrTypeMismatch
	}
	return nil
}

// Intersect returns the minutes present in both periods.
func (p Period) Intersect(q Period) (Period, error) {
	if err := checkOperands(p, q); err != nil {
		return Period{}, err
	}
	return Period{bits: p.bits.Intersection(q.bits)}, nil
}

// Union returns the minutes present in either period.
func (p Period) Union(q Period) (Period, error) {
	if err := checkOperands(p, q); err != nil {
		return Period{}, err
	}
	return Period{bits: p.bits.Union(q.bits)}, nil
}

// Contains reports whether every minute of q is also in p.
func (p Period) Contains(q Period) (bool, error) {
	if err := checkOperands(p, q); err != nil {
		return false, err
	}
	return p.bits.Intersection(q.bits).Count() == q.bits.Count(), nil
}

// Equal compares the two bit vectors.
func (p Period) Equal(q Period) bool {
	if !p.valid() || !q.valid() {
		return p.valid() == q.valid()
	}
	return p.bits.Equal(q.bits)
}

// Has reports whether the minute t belongs to the period.
func (p Period) Has(t WeekdayTime) bool {
	return p.valid() && p.bits.Test(uint(t.MinuteOfWeek()))
}

// Count is the number of minutes in the period.
func (p Period) Count() int {
	if !p.valid() {
		return 0
	}
	return int(p.bits.Count())
}

func (p Period) IsEmpty() bool {
	return p.Count() == 0
}

// Weekdays lists the weekdays that have at least one open minute.
func (p Period) Weekdays() []time.Weekday {
	var days []time.Weekday
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		offset := int(wd) * MinutesPerDay
		if len(p.runs(offset, offset+MinutesPerDay)) > 0 {
			days = append(days, wd)
		}
	}
	return days
}

// Bits returns a copy of the underlying vector.
func (p Period) Bits() *bitset.BitSet {
	if !p.valid() {
		return bitset.New(MinutesPerWeek)
	}
	return p.bits.Clone()
}

// Intervals lists the maximal runs of the period in week order. A run touching
// the end of Saturday is reported as ending at Sunday 00:00; runs are not joined
// across the week boundary.
func (p Period) Intervals() []Interval {
	var ret []Interval
	for _, r := range p.runs(0, MinutesPerWeek) {
		ret = append(ret, Interval{Start: FromMinuteOfWeek(r[0]), End: FromMinuteOfWeek(r[1])})
	}
	return ret
}

// runs returns the [start, end) minute ranges of set bits within [from, to).
func (p Period) runs(from, to int) [][2]int {
	if !p.valid() {
		return nil
	}
	var ret [][2]int
	idx := uint(from)
	for {
		start, ok := p.bits.NextSet(idx)
		if !ok || start >= uint(to) {
			return ret
		}
		end, ok := p.bits.NextClear(start)
		if !ok || end > uint(to) {
			end = uint(to)
		}
		ret = append(ret, [2]int{int(start), int(end)})
		idx = end
	}
}

// MarshalText encodes the period in its canonical schedule form.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.Format()), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Period) MarshalBinary() ([]byte, error) {
	if !p.valid() {
		return nil, ErrTypeMismatch
	}
	return p.bits.MarshalBinary()
}

func (p *Period) UnmarshalBinary(data []byte) error {
	bits := &bitset.BitSet{}
	if err := bits.UnmarshalBinary(data); err != nil {
		return errors.Wrap(err, "can not decode period")
	}
	parsed, err := FromBits(bits)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
