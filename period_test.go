package weekly

import (
	"testing"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestPeriodFromRegulars(t *testing.T) {
	p1 := New(
		Interval{MustWeekdayTime(2, 2, 34), MustWeekdayTime(2, 22, 9)},
		Interval{MustWeekdayTime(3, 2, 34), MustWeekdayTime(3, 22, 9)},
		Interval{MustWeekdayTime(4, 2, 34), MustWeekdayTime(4, 22, 9)},
	)
	p2, err := Daily(2, 34, 22, 9, time.Tuesday, time.Thursday)
	require.NoError(t, err)

	if !p1.Equal(p2) {
		t.Fatalf("periods differ: %s vs %s", p1, p2)
	}
	require.Equal(t, 3*(22*60+9-(2*60+34)), p1.Count())
}

func TestDailyWrapsOverWeekend(t *testing.T) {
	p, err := Daily(22, 0, 2, 0, time.Friday, time.Sunday)
	require.NoError(t, err)
	require.Equal(t, "00:00~02:00,22:00~24:00(Sun,Sat);00:00~02:00(Mon);22:00~24:00(Fri)", p.Format())
}

func TestDailyInvalid(t *testing.T) {
	_, err := Daily(25, 0, 2, 0, time.Friday, time.Sunday)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Daily(1, 0, 2, 0, time.Friday, 9)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Daily(9, 0, 24, 1, time.Monday, time.Monday)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Daily(24, 0, 2, 0, time.Monday, time.Monday)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestDailyEndsAtMidnight(t *testing.T) {
	p, err := Daily(9, 0, 24, 0, time.Monday, time.Monday)
	require.NoError(t, err)
	require.True(t, p.Equal(MustParse("09:00~24:00(Mon)")))
	require.False(t, p.Has(MustWeekdayTime(time.Tuesday, 0, 0)))

	all, err := Daily(0, 0, 24, 0, time.Sunday, time.Saturday)
	require.NoError(t, err)
	require.Equal(t, MinutesPerWeek, all.Count())
	require.True(t, all.Equal(FullWeek()))
}

func TestPeriodWrapsSaturdayIntoSunday(t *testing.T) {
	p := New(Interval{MustWeekdayTime(time.Saturday, 23, 0), MustWeekdayTime(time.Sunday, 1, 0)})

	require.Equal(t, 120, p.Count())
	require.True(t, p.Has(MustWeekdayTime(time.Saturday, 23, 59)))
	require.True(t, p.Has(MustWeekdayTime(time.Sunday, 0, 0)))
	require.False(t, p.Has(MustWeekdayTime(time.Sunday, 1, 0)))
	require.False(t, p.Has(MustWeekdayTime(time.Saturday, 22, 59)))
}

func TestPeriodZeroLengthInterval(t *testing.T) {
	midnight := MustWeekdayTime(time.Wednesday, 0, 0)
	p := New(Interval{midnight, midnight})
	require.True(t, p.IsEmpty())
	require.Equal(t, "", p.Format())
}

func TestPeriodIntervals(t *testing.T) {
	p := MustParse("12:00~02:00(Sat);09:00~10:30(Tue)")
	ivs := p.Intervals()
	require.Len(t, ivs, 3)
	require.Equal(t, "Sun 00:00 ~ Sun 02:00", ivs[0].String())
	require.Equal(t, "Tue 09:00 ~ Tue 10:30", ivs[1].String())
	require.Equal(t, "Sat 12:00 ~ Sun 00:00", ivs[2].String())
}

func TestPeriodWeekdays(t *testing.T) {
	p := MustParse("12:00~02:00(Fri)")
	require.Equal(t, []time.Weekday{time.Friday, time.Saturday}, p.Weekdays())
	require.Empty(t, New().Weekdays())
}

func TestPeriodAlgebraLaws(t *testing.T) {
	periods := []Period{
		New(),
		FullWeek(),
		MustParse("09:00~21:00(Mon,Tue,Wed,Thu,Fri);09:00~18:00(Sat)"),
		MustParse("12:00~02:00(Fri,Sat);09:00~21:00(Sun)"),
		MustParse("00:00~06:00,22:00~24:00"),
	}

	for _, a := range periods {
		self, err := a.Intersect(a)
		require.NoError(t, err)
		require.True(t, self.Equal(a), "intersect(A,A) == A for %s", a)

		ok, err := a.Contains(a)
		require.NoError(t, err)
		require.True(t, ok, "A contains A for %s", a)

		for _, b := range periods {
			ab, err := a.Union(b)
			require.NoError(t, err)
			ba, err := b.Union(a)
			require.NoError(t, err)
			require.True(t, ab.Equal(ba), "union commutes for %s and %s", a, b)

			both, err := a.Intersect(b)
			require.NoError(t, err)
			ok, err := a.Contains(both)
			require.NoError(t, err)
			require.True(t, ok, "A contains intersect(A,B) for %s and %s", a, b)

			ok, err = ab.Contains(b)
			require.NoError(t, err)
			require.True(t, ok)
		}
	}
}

func TestPeriodContainsIsAsymmetric(t *testing.T) {
	week := MustParse("09:00~21:00(Mon,Tue,Wed,Thu,Fri)")
	monday := MustParse("10:00~11:00(Mon)")

	ok, err := week.Contains(monday)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = monday.Contains(week)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPeriodAlgebraDoesNotMutate(t *testing.T) {
	a := MustParse("09:00~12:00(Mon)")
	b := MustParse("11:00~15:00(Mon)")

	u, err := a.Union(b)
	require.NoError(t, err)
	i, err := a.Intersect(b)
	require.NoError(t, err)

	require.Equal(t, "09:00~12:00(Mon)", a.Format())
	require.Equal(t, "11:00~15:00(Mon)", b.Format())
	require.Equal(t, "09:00~15:00(Mon)", u.Format())
	require.Equal(t, "11:00~12:00(Mon)", i.Format())
}

func TestPeriodTypeMismatch(t *testing.T) {
	var zero Period
	p := FullWeek()

	_, err := p.Union(zero)
	require.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = zero.Intersect(p)
	require.True(t, errors.Is(err, ErrTypeMismatch))
	_, err = p.Contains(zero)
	require.True(t, errors.Is(err, ErrTypeMismatch))

	require.False(t, p.Equal(zero))
	require.True(t, zero.Equal(Period{}))
}

func TestFromBits(t *testing.T) {
	bits := bitset.New(MinutesPerWeek)
	bits.Set(uint(MustWeekdayTime(time.Monday, 9, 0).MinuteOfWeek()))

	p, err := FromBits(bits)
	require.NoError(t, err)
	require.Equal(t, "09:00~09:01(Mon)", p.Format())

	// the period keeps its own copy
	bits.Set(0)
	require.Equal(t, 1, p.Count())

	_, err = FromBits(bitset.New(100))
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = FromBits(nil)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestPeriodBinaryEncoding(t *testing.T) {
	p := MustParse("09:00~15:00,17:00~21:00;12:00~02:00(Fri,Sat)")
	b, err := p.MarshalBinary()
	require.NoError(t, err)

	var decoded Period
	require.NoError(t, decoded.UnmarshalBinary(b))
	require.True(t, p.Equal(decoded))

	_, err = Period{}.MarshalBinary()
	require.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestPeriodJSONUsesScheduleText(t *testing.T) {
	type store struct {
		Hours Period `json:"hours"`
	}
	in := store{Hours: MustParse("09:00~18:00(Sat)")}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"hours":"09:00~18:00(Sat)"}`, string(b))

	var out store
	require.NoError(t, json.Unmarshal(b, &out))
	require.True(t, in.Hours.Equal(out.Hours))
}
