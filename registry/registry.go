package registry

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hoyle1974/weekly"
	"github.com/hoyle1974/weekly/storage"
	"github.com/hoyle1974/weekly/telemetry"
)

const (
	DefaultKeyframeRate = 16

	logPrefix = "schedules/"
	logSuffix = ".log"
)

var (
	ErrNotFound    = errors.New("schedule not found")
	ErrInvalidName = errors.New("invalid schedule name")
)

var validate = validator.New()

// Revision describes one stored version of a schedule.
type Revision struct {
	Number    int
	ID        uuid.UUID
	Timestamp time.Time
	Keyframe  bool
	// Schedule is the canonical text of the period
	Schedule string
}

// Registry stores named weekly schedules with their full history in a storage.System.
// Every Put appends a revision; most revisions are stored as binary diffs against
// the one before. Registry is safe for concurrent use.
type Registry struct {
	lock         sync.Mutex
	storage      storage.System
	cache        *cache.Cache
	logger       telemetry.Logger
	metrics      telemetry.Metrics
	keyframeRate int
	hits         atomic.Int64
	misses       atomic.Int64
	now          func() time.Time
}

type Option func(*Registry)

func WithLogger(l telemetry.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func WithMetrics(m telemetry.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithKeyframeRate stores a full copy every n revisions. Values below 1 are ignored.
func WithKeyframeRate(n int) Option {
	return func(r *Registry) {
		if n >= 1 {
			r.keyframeRate = n
		}
	}
}

func New(s storage.System, opts ...Option) *Registry {
	r := &Registry{
		storage:      s,
		cache:        cache.New(5*time.Minute, 10*time.Minute),
		logger:       telemetry.NOPLogger{},
		metrics:      telemetry.NOPMetrics{},
		keyframeRate: DefaultKeyframeRate,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func validateName(name string) error {
	if err := validate.Var(name, `required,max=128,printascii,excludesall=/\`); err != nil {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}

func logKey(name string) string {
	return logPrefix + name + logSuffix
}

// load returns the cached or stored log for name, or ErrNotFound.
func (r *Registry) load(ctx context.Context, name string) (*revisionLog, error) {
	if l, ok := r.cache.Get(name); ok {
		r.metrics.SetCount("registry.cache.hits", r.hits.Add(1))
		return l.(*revisionLog), nil
	}
	r.metrics.SetCount("registry.cache.misses", r.misses.Add(1))

	b, err := r.storage.Read(ctx, logKey(name))
	if errors.Is(err, storage.ErrDoesNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "can not read schedule %q", name)
	}

	l, err := decodeLog(b)
	if err != nil {
		return nil, err
	}
	r.cache.Set(name, l, cache.DefaultExpiration)
	r.logger.Debug("loaded schedule", "name", name, "revisions", l.len())
	return l, nil
}

// Put stores p as the newest revision of name. Storing a period equal to the
// newest revision changes nothing and returns that revision.
func (r *Registry) Put(ctx context.Context, name string, p weekly.Period) (Revision, error) {
	if err := validateName(name); err != nil {
		return Revision{}, err
	}
	frame, err := p.MarshalBinary()
	if err != nil {
		return Revision{}, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	l, err := r.load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		l = &revisionLog{Name: name}
	} else if err != nil {
		return Revision{}, err
	}

	if l.sameAsLatest(frame) {
		return l.revision(l.len() - 1)
	}

	next, err := l.appendFrame(frame, r.keyframeRate, r.now())
	if err != nil {
		return Revision{}, err
	}
	b, err := next.encode()
	if err != nil {
		return Revision{}, errors.Wrap(err, "can not encode revision log")
	}
	if err := r.storage.Write(ctx, logKey(name), b); err != nil {
		r.logger.Error("can not save schedule", err, "name", name)
		return Revision{}, err
	}
	r.cache.Set(name, next, cache.DefaultExpiration)
	r.metrics.SetGauge("registry.log.bytes", float64(len(b)))

	rev, err := next.revision(next.len() - 1)
	if err != nil {
		return Revision{}, err
	}
	r.logger.Info("stored schedule", "name", name, "revision", rev.Number, "schedule", rev.Schedule)
	return rev, nil
}

// Get returns the newest revision of name.
func (r *Registry) Get(ctx context.Context, name string) (weekly.Period, error) {
	if err := validateName(name); err != nil {
		return weekly.Period{}, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	l, err := r.load(ctx, name)
	if err != nil {
		return weekly.Period{}, err
	}
	return l.period(l.len() - 1)
}

// GetRevision returns revision number (starting at 1) of name.
func (r *Registry) GetRevision(ctx context.Context, name string, number int) (weekly.Period, error) {
	if err := validateName(name); err != nil {
		return weekly.Period{}, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	l, err := r.load(ctx, name)
	if err != nil {
		return weekly.Period{}, err
	}
	if number < 1 || number > l.len() {
		return weekly.Period{}, errors.Wrapf(ErrNotFound, "%q has no revision %d", name, number)
	}
	return l.period(number - 1)
}

// History lists every revision of name, oldest first.
func (r *Registry) History(ctx context.Context, name string) ([]Revision, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	l, err := r.load(ctx, name)
	if err != nil {
		return nil, err
	}
	ret := make([]Revision, 0, l.len())
	for idx := range l.Entries {
		rev, err := l.revision(idx)
		if err != nil {
			return nil, err
		}
		ret = append(ret, rev)
	}
	return ret, nil
}

// Delete removes name and its history.
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	r.cache.Delete(name)
	if err := r.storage.Delete(ctx, logKey(name)); err != nil {
		return errors.Wrapf(err, "can not delete schedule %q", name)
	}
	r.logger.Info("deleted schedule", "name", name)
	return nil
}

// List returns the stored schedule names in sorted order.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	keys, err := r.storage.GetKeysWithPrefix(ctx, logPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "can not list schedules")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if !strings.HasSuffix(k, logSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(k, logPrefix), logSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// ClearCache drops every cached log so the next read goes to storage.
func (r *Registry) ClearCache() {
	r.cache.Flush()
	r.hits.Store(0)
	r.misses.Store(0)
}
