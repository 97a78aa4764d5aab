package weekly

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// PlacesTime is one end of an opening period as returned by the Google Places
// details API: day 0 is Sunday and time is "HHMM".
type PlacesTime struct {
	Day  int    `json:"day" validate:"min=0,max=6"`
	Time string `json:"time" validate:"len=4,number"`
}

// PlacesPeriod is an open/close pair. A missing Close means the place never
// closes, which the API reports as a single Sunday 0000 open.
type PlacesPeriod struct {
	Open  PlacesTime  `json:"open"`
	Close *PlacesTime `json:"close,omitempty"`
}

// PlacesResponse is the subset of a place details response that carries the hours.
type PlacesResponse struct {
	Result struct {
		OpeningHours struct {
			Periods []PlacesPeriod `json:"periods"`
		} `json:"opening_hours"`
	} `json:"result"`
	Status string `json:"status"`
}

// WeekdayTime converts the record into a week point. "2400" is accepted and
// carries into the next day.
func (t PlacesTime) WeekdayTime() (WeekdayTime, error) {
	if err := validate.Struct(t); err != nil {
		return WeekdayTime{}, errors.Wrapf(ErrInvalidArgument, "invalid places time {day:%d time:%q}: %v", t.Day, t.Time, err)
	}
	hour, _ := strconv.Atoi(t.Time[:2])
	minute, _ := strconv.Atoi(t.Time[2:])
	if hour > 24 || minute > 59 || (hour == 24 && minute != 0) {
		return WeekdayTime{}, errors.Wrapf(ErrInvalidArgument, "places time %q out of range", t.Time)
	}
	return FromMinuteOfWeek(t.Day*MinutesPerDay + hour*MinutesPerHour + minute), nil
}

// Intervals converts the record into the windows consumed by New. An open ended
// record covers the whole week, expressed as two half week windows because a
// single window from a point back to itself is empty.
func (pp PlacesPeriod) Intervals() ([]Interval, error) {
	open, err := pp.Open.WeekdayTime()
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	if pp.Close == nil {
		half := open.AddMinutes(MinutesPerWeek / 2)
		return []Interval{{Start: open, End: half}, {Start: half, End: open}}, nil
	}
	closing, err := pp.Close.WeekdayTime()
	if err != nil {
		return nil, errors.Wrap(err, "close")
	}
	return []Interval{{Start: open, End: closing}}, nil
}

// FromPlaces builds a period from Places opening periods.
func FromPlaces(periods []PlacesPeriod) (Period, error) {
	var intervals []Interval
	for idx, pp := range periods {
		ivs, err := pp.Intervals()
		if err != nil {
			return Period{}, errors.Wrapf(err, "periods[%d]", idx)
		}
		intervals = append(intervals, ivs...)
	}
	return New(intervals...), nil
}

// DecodePlacesResponse parses a place details JSON document and returns its opening hours.
func DecodePlacesResponse(data []byte) (Period, error) {
	var resp PlacesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Period{}, errors.Wrap(err, "can not decode places response")
	}
	return FromPlaces(resp.Result.OpeningHours.Periods)
}
