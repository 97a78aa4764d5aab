package registry

import (
	"bytes"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gabstv/go-bsdiff/pkg/bsdiff"
	"github.com/gabstv/go-bsdiff/pkg/bspatch"
	"github.com/google/uuid"

	"github.com/hoyle1974/weekly"
	"github.com/hoyle1974/weekly/misc"
)

// entry is one stored revision. Keyframes hold the full binary period,
// the others a patch against the revision before them.
type entry struct {
	ID        uuid.UUID
	Timestamp time.Time
	Keyframe  []byte
	Patch     []byte
}

func (e entry) isKeyframe() bool {
	return e.Keyframe != nil
}

// revisionLog is what is stored on disk for a schedule. Once cached it is never
// modified, appending produces a new log.
type revisionLog struct {
	Name    string
	Entries []entry

	frames [][]byte
}

func decodeLog(b []byte) (*revisionLog, error) {
	var l revisionLog
	if err := misc.DecodeFromBytes(b, &l); err != nil {
		return nil, errors.Wrap(err, "can not decode revision log")
	}
	if err := l.populateFrames(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *revisionLog) encode() ([]byte, error) {
	return misc.EncodeToBytes(l)
}

func (l *revisionLog) populateFrames() error {
	l.frames = make([][]byte, len(l.Entries))
	var prev []byte
	for idx, e := range l.Entries {
		switch {
		case e.isKeyframe():
			l.frames[idx] = e.Keyframe
		case prev == nil:
			return errors.Newf("revision %d of %s has no keyframe before it", idx+1, l.Name)
		default:
			frame, err := bspatch.Bytes(prev, e.Patch)
			if err != nil {
				return errors.Wrapf(err, "can not apply patch for revision %d of %s", idx+1, l.Name)
			}
			l.frames[idx] = frame
		}
		prev = l.frames[idx]
	}
	return nil
}

func (l *revisionLog) len() int {
	return len(l.Entries)
}

func (l *revisionLog) latestFrame() []byte {
	if len(l.frames) == 0 {
		return nil
	}
	return l.frames[len(l.frames)-1]
}

// appendFrame returns a new log with frame as the next revision.
func (l *revisionLog) appendFrame(frame []byte, keyframeRate int, now time.Time) (*revisionLog, error) {
	e := entry{ID: uuid.New(), Timestamp: now}
	if prev := l.latestFrame(); prev == nil || l.len()%keyframeRate == 0 {
		e.Keyframe = misc.CopyBytes(frame)
	} else {
		patch, err := bsdiff.Bytes(prev, frame)
		if err != nil {
			return nil, errors.Wrap(err, "can not diff revisions")
		}
		e.Patch = patch
	}

	next := &revisionLog{
		Name:    l.Name,
		Entries: append(append(make([]entry, 0, l.len()+1), l.Entries...), e),
		frames:  append(append(make([][]byte, 0, l.len()+1), l.frames...), misc.CopyBytes(frame)),
	}
	return next, nil
}

func (l *revisionLog) sameAsLatest(frame []byte) bool {
	latest := l.latestFrame()
	return latest != nil && bytes.Equal(latest, frame)
}

func (l *revisionLog) period(idx int) (weekly.Period, error) {
	var p weekly.Period
	if err := p.UnmarshalBinary(l.frames[idx]); err != nil {
		return weekly.Period{}, errors.Wrapf(err, "revision %d of %s", idx+1, l.Name)
	}
	return p, nil
}

func (l *revisionLog) revision(idx int) (Revision, error) {
	p, err := l.period(idx)
	if err != nil {
		return Revision{}, err
	}
	e := l.Entries[idx]
	return Revision{
		Number:    idx + 1,
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Keyframe:  e.isKeyframe(),
		Schedule:  p.Format(),
	}, nil
}
