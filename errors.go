package weekly

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidArgument is returned when a value is out of range at construction time.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrParse is returned for a malformed time range in the schedule grammar.
	ErrParse = errors.New("parse error")
	// ErrTypeMismatch is returned when an operand is not a constructed Period.
	ErrTypeMismatch = errors.New("operand is not a valid period")
)
