// Package dataset builds reference datasets: for each moment, the positions
// of the requested bodies and, when a location is given, the Placidus house
// system. Builds tolerate partial failure and are deterministic.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/internal/logging"
	"github.com/signalsfoundry/ephemref/internal/observability"
	"github.com/signalsfoundry/ephemref/model"
)

// ErrDuplicateMoment marks an entry whose Julian Day is already in the dataset.
var ErrDuplicateMoment = errors.New("duplicate moment")

// MetricsRecorder receives build telemetry. *observability.DatasetCollector
// satisfies it.
type MetricsRecorder interface {
	RecordBodyQuery(body, outcome string)
	RecordHouseSystem(outcome string)
	RecordBuild(d time.Duration, records int)
}

// Entry is one moment to compute. Err carries a construction failure from
// upstream (e.g. a config date that did not parse); such entries are reported
// and skipped.
type Entry struct {
	Description string
	Moment      core.Moment
	Location    *model.GeoLocation
	Err         error
}

// Houses is a house system together with the inputs that produced it.
type Houses struct {
	model.HouseSystemResult
	SiderealTime float64 // local apparent sidereal time, degrees
	Obliquity    float64 // true obliquity, degrees
	Location     model.GeoLocation
}

// Record is everything computed for one moment.
type Record struct {
	Description string
	Moment      core.Moment
	Positions   map[model.Body]model.BodyPosition
	// Failures holds per-body provider errors; failed bodies are absent
	// from Positions.
	Failures map[model.Body]error
	// Houses is nil when no location was given or when HousesErr is set.
	Houses    *Houses
	HousesErr error
}

// JulianDay is the record key: the moment's Julian Day in UT.
func (r Record) JulianDay() float64 { return r.Moment.JulianDayUT() }

// Dataset is the result of a build. Records keep the input order.
type Dataset struct {
	Provider string
	Bodies   []model.Body
	Records  []Record
}

// Lookup returns the record for a Julian Day (UT).
func (d *Dataset) Lookup(jd float64) (Record, bool) {
	for _, r := range d.Records {
		if r.JulianDay() == jd {
			return r, true
		}
	}
	return Record{}, false
}

// FailureScope says which part of an entry a Failure affected.
type FailureScope int

const (
	// ScopeMoment failures drop the whole entry.
	ScopeMoment FailureScope = iota
	// ScopeBody failures drop one body from an otherwise complete record.
	ScopeBody
	// ScopeHouses failures drop the house section only.
	ScopeHouses
)

func (s FailureScope) String() string {
	switch s {
	case ScopeMoment:
		return "moment"
	case ScopeBody:
		return "body"
	case ScopeHouses:
		return "houses"
	default:
		return fmt.Sprintf("FailureScope(%d)", int(s))
	}
}

// Failure is one recovered error of a build.
type Failure struct {
	Scope       FailureScope
	Index       int // entry index
	Description string
	JulianDay   float64 // zero for invalid moments
	Body        model.Body
	Err         error
}

func (f Failure) Error() string {
	switch f.Scope {
	case ScopeBody:
		return fmt.Sprintf("%s (JD %s) %v: %v", f.Description, JulianDayKey(f.JulianDay), f.Body, f.Err)
	case ScopeHouses:
		return fmt.Sprintf("%s (JD %s) houses: %v", f.Description, JulianDayKey(f.JulianDay), f.Err)
	default:
		return fmt.Sprintf("%s: %v", f.Description, f.Err)
	}
}

func (f Failure) Unwrap() error { return f.Err }

// Option customises a Builder.
type Option func(*Builder)

// WithMetricsRecorder attaches a metrics sink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(b *Builder) {
		if m != nil {
			b.metrics = m
		}
	}
}

// WithWorkers bounds how many entries are computed concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// Builder assembles datasets from an EphemerisProvider. It is safe for
// concurrent use when the provider is.
type Builder struct {
	provider core.EphemerisProvider
	log      logging.Logger
	metrics  MetricsRecorder
	workers  int
}

// NewBuilder constructs a Builder.
func NewBuilder(provider core.EphemerisProvider, log logging.Logger, opts ...Option) *Builder {
	if log == nil {
		log = logging.Noop()
	}
	b := &Builder{
		provider: provider,
		log:      log,
		metrics:  noopMetrics{},
		workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type entryResult struct {
	record   Record
	failures []Failure
}

// Build computes every valid entry. Invalid and duplicate moments are
// reported and skipped before any provider query; per-body and house-system
// errors are recorded on their record and the build continues. The returned
// failures are ordered by entry index, then body order.
func (b *Builder) Build(ctx context.Context, entries []Entry, bodies []model.Body) (*Dataset, []Failure) {
	start := time.Now()
	ctx, log := logging.StartRun(ctx, b.log)
	ctx, span := observability.StartBuild(ctx, b.provider.Name(), len(entries), len(bodies), b.workers)
	defer span.End()

	log.Info(ctx, "building reference dataset",
		logging.String("provider", b.provider.Name()),
		logging.Int("entries", len(entries)),
		logging.Int("bodies", len(bodies)),
		logging.Int("workers", b.workers),
	)

	var failures []Failure
	pending := make([]int, 0, len(entries))
	seen := make(map[float64]int, len(entries))
	for i, e := range entries {
		if f, ok := b.screen(i, e, seen); !ok {
			log.Warn(ctx, "skipping entry", logging.Moment(e.Description), logging.Err(f.Err))
			failures = append(failures, f)
			continue
		}
		pending = append(pending, i)
	}

	results := make([]entryResult, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, i := range pending {
		g.Go(func() error {
			results[i] = b.buildEntry(gctx, i, entries[i], bodies)
			return nil
		})
	}
	_ = g.Wait()

	ds := &Dataset{
		Provider: b.provider.Name(),
		Bodies:   append([]model.Body(nil), bodies...),
		Records:  make([]Record, 0, len(pending)),
	}
	for _, i := range pending {
		ds.Records = append(ds.Records, results[i].record)
		failures = append(failures, results[i].failures...)
	}
	sortFailures(failures)

	elapsed := time.Since(start)
	b.metrics.RecordBuild(elapsed, len(ds.Records))
	observability.FinishBuild(span, len(ds.Records), len(failures))
	log.Info(ctx, "reference dataset built",
		logging.Int("records", len(ds.Records)),
		logging.Int("failures", len(failures)),
		logging.Duration("elapsed_seconds", elapsed),
	)
	return ds, failures
}

// screen rejects invalid and duplicate moments. seen maps Julian Days to the
// index that claimed them.
func (b *Builder) screen(i int, e Entry, seen map[float64]int) (Failure, bool) {
	f := Failure{Scope: ScopeMoment, Index: i, Description: e.Description}
	switch {
	case e.Err != nil:
		f.Err = e.Err
		if !errors.Is(e.Err, core.ErrInvalidMoment) {
			f.Err = fmt.Errorf("%w: %w", core.ErrInvalidMoment, e.Err)
		}
		return f, false
	case !e.Moment.Valid():
		f.Err = fmt.Errorf("%w: moment was not constructed", core.ErrInvalidMoment)
		return f, false
	}

	jd := e.Moment.JulianDayUT()
	f.JulianDay = jd
	if first, dup := seen[jd]; dup {
		f.Err = fmt.Errorf("%w: JD %v already used by entry %d", ErrDuplicateMoment, jd, first)
		return f, false
	}
	seen[jd] = i
	return Failure{}, true
}

func (b *Builder) buildEntry(ctx context.Context, i int, e Entry, bodies []model.Body) entryResult {
	log := logging.FromContext(ctx, b.log).With(logging.Moment(e.Description))
	jd := e.Moment.JulianDayUT()
	ctx, span := observability.StartEntry(ctx, e.Description, jd)
	defer span.End()

	res := entryResult{record: Record{
		Description: e.Description,
		Moment:      e.Moment,
		Positions:   make(map[model.Body]model.BodyPosition, len(bodies)),
		Failures:    make(map[model.Body]error),
	}}
	fail := func(scope FailureScope, body model.Body, err error) {
		res.failures = append(res.failures, Failure{
			Scope:       scope,
			Index:       i,
			Description: e.Description,
			JulianDay:   jd,
			Body:        body,
			Err:         err,
		})
	}

	for _, body := range bodies {
		if err := ctx.Err(); err != nil {
			res.record.Failures[body] = err
			fail(ScopeBody, body, err)
			continue
		}

		pos, err := b.provider.Query(jd, body, core.QueryFlags{IncludeSpeed: true})
		if err == nil {
			err = checkFinite(pos)
		}
		if err != nil {
			b.metrics.RecordBodyQuery(body.String(), observability.OutcomeOf(err))
			observability.BodyFailed(span, body.String(), err)
			log.Warn(ctx, "body query failed",
				logging.JulianDay(jd),
				logging.Body(body.String()),
				logging.Err(err))
			res.record.Failures[body] = err
			fail(ScopeBody, body, err)
			continue
		}
		b.metrics.RecordBodyQuery(body.String(), observability.OutcomeOK)
		pos.Body = body
		res.record.Positions[body] = pos
	}

	if e.Location != nil {
		houses, err := ComputeHouses(e.Moment, *e.Location)
		b.metrics.RecordHouseSystem(observability.OutcomeOf(err))
		if err != nil {
			observability.HousesFailed(span, err)
			log.Warn(ctx, "house system unavailable",
				logging.JulianDay(jd),
				logging.Float("latitude", e.Location.Latitude),
				logging.Err(err))
			res.record.HousesErr = err
			fail(ScopeHouses, 0, err)
		} else {
			res.record.Houses = houses
		}
	}

	observability.FinishEntry(span, len(res.failures))
	return res
}

// ComputeHouses derives the sidereal time, true obliquity and Placidus houses
// of a moment at a location.
func ComputeHouses(m core.Moment, loc model.GeoLocation) (*Houses, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: moment was not constructed", core.ErrInvalidMoment)
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	lst := core.LocalApparentSiderealTime(m.JulianDayUT(), loc.Longitude)
	eps := core.TrueObliquity(m.JulianDayTT())
	res, err := core.Placidus(lst, loc.Latitude, eps)
	if err != nil {
		return nil, err
	}
	return &Houses{HouseSystemResult: res, SiderealTime: lst, Obliquity: eps, Location: loc}, nil
}

// checkFinite keeps NaN or infinite provider output out of the dataset.
func checkFinite(p model.BodyPosition) error {
	for _, v := range []float64{p.Longitude, p.Latitude, p.Distance, p.LongitudeSpeed, p.LatitudeSpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("provider returned non-finite value for %v", p.Body)
		}
	}
	return nil
}

// sortFailures restores input order. Screening failures come first, so the
// sort must be stable to keep body order within an entry.
func sortFailures(fs []Failure) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].Index < fs[j].Index })
}

type noopMetrics struct{}

func (noopMetrics) RecordBodyQuery(string, string) {}
func (noopMetrics) RecordHouseSystem(string)       {}
func (noopMetrics) RecordBuild(time.Duration, int) {}
