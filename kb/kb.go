// Package kb holds previously exported reference positions in memory and
// serves them back through the core.EphemerisProvider interface, so a saved
// reference run can stand in for a live ephemeris engine.
package kb

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/signalsfoundry/ephemref/core"
	"github.com/signalsfoundry/ephemref/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventDateLoaded EventType = iota
	EventPositionAdded
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type        EventType
	JulianDay   float64
	Description string
	Body        model.Body // EventPositionAdded only
	Count       int        // positions held for JulianDay after the change
}

// KnowledgeBase is an in-memory, thread-safe store of reference positions
// keyed by exact Julian Day (UT) and body.
type KnowledgeBase struct {
	mu sync.RWMutex

	name         string
	positions    map[float64]map[model.Body]model.BodyPosition
	descriptions map[float64]string

	subs    map[uint64]func(Event)
	nextSub uint64
}

// NewKnowledgeBase constructs an empty KB. The name shows up in Name().
func NewKnowledgeBase(name string) *KnowledgeBase {
	return &KnowledgeBase{
		name:         name,
		positions:    make(map[float64]map[model.Body]model.BodyPosition),
		descriptions: make(map[float64]string),
		subs:         make(map[uint64]func(Event)),
	}
}

// LoadDocument adds every position of an exported reference document. It
// fails without changing the KB if any body name is unknown or any Julian
// Day is not finite.
func (kb *KnowledgeBase) LoadDocument(doc *model.ReferenceDocument) (int, error) {
	if doc == nil {
		return 0, fmt.Errorf("nil reference document")
	}

	type parsed struct {
		jd          float64
		description string
		positions   []model.BodyPosition
	}
	keys := make([]string, 0, len(doc.Dates))
	for k := range doc.Dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	batch := make([]parsed, 0, len(keys))
	for _, key := range keys {
		rec := doc.Dates[key]
		if math.IsNaN(rec.JD) || math.IsInf(rec.JD, 0) {
			return 0, fmt.Errorf("date %q: non-finite julian day", key)
		}
		p := parsed{jd: rec.JD, description: rec.Description}
		for name, pr := range rec.Positions {
			body, err := model.ParseBody(name)
			if err != nil {
				return 0, fmt.Errorf("date %q: %w", key, err)
			}
			p.positions = append(p.positions, pr.Position(body))
		}
		batch = append(batch, p)
	}

	kb.mu.Lock()
	total := 0
	events := make([]Event, 0, len(batch))
	for _, p := range batch {
		m := kb.positionsFor(p.jd)
		for _, pos := range p.positions {
			m[pos.Body] = pos
			total++
		}
		kb.descriptions[p.jd] = p.description
		events = append(events, Event{
			Type:        EventDateLoaded,
			JulianDay:   p.jd,
			Description: p.description,
			Count:       len(m),
		})
	}
	subs := kb.subscribers()
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, ev := range events {
		for _, sub := range subs {
			sub(ev)
		}
	}
	return total, nil
}

// AddPosition stores one position at jd, replacing any previous value for
// the same body.
func (kb *KnowledgeBase) AddPosition(jd float64, pos model.BodyPosition) error {
	if !pos.Body.Valid() {
		return fmt.Errorf("%w: %v", core.ErrUnsupportedBody, pos.Body)
	}
	if math.IsNaN(jd) || math.IsInf(jd, 0) {
		return fmt.Errorf("%w: julian day %v", core.ErrInvalidMoment, jd)
	}

	kb.mu.Lock()
	m := kb.positionsFor(jd)
	m[pos.Body] = pos
	event := Event{
		Type:        EventPositionAdded,
		JulianDay:   jd,
		Description: kb.descriptions[jd],
		Body:        pos.Body,
		Count:       len(m),
	}
	subs := kb.subscribers()
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// positionsFor returns the body map for jd, creating it. Callers hold mu.
func (kb *KnowledgeBase) positionsFor(jd float64) map[model.Body]model.BodyPosition {
	m, ok := kb.positions[jd]
	if !ok {
		m = make(map[model.Body]model.BodyPosition)
		kb.positions[jd] = m
	}
	return m
}

// Positions returns a snapshot of the positions stored at jd.
func (kb *KnowledgeBase) Positions(jd float64) map[model.Body]model.BodyPosition {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make(map[model.Body]model.BodyPosition, len(kb.positions[jd]))
	for b, p := range kb.positions[jd] {
		res[b] = p
	}
	return res
}

// Description returns the description recorded for jd, if any.
func (kb *KnowledgeBase) Description(jd float64) string {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.descriptions[jd]
}

// JulianDays returns the stored Julian Days in ascending order.
func (kb *KnowledgeBase) JulianDays() []float64 {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]float64, 0, len(kb.positions))
	for jd := range kb.positions {
		res = append(res, jd)
	}
	sort.Float64s(res)
	return res
}

// Name implements core.EphemerisProvider.
func (kb *KnowledgeBase) Name() string {
	if kb.name == "" {
		return "reference"
	}
	return "reference:" + kb.name
}

// Query implements core.EphemerisProvider by exact Julian Day match. Speeds
// are zeroed unless requested, mirroring a live provider.
func (kb *KnowledgeBase) Query(jdUT float64, body model.Body, flags core.QueryFlags) (model.BodyPosition, error) {
	kb.mu.RLock()
	pos, ok := kb.positions[jdUT][body]
	kb.mu.RUnlock()

	if !ok {
		return model.BodyPosition{}, fmt.Errorf("%w: no reference position for %v at JD %v", core.ErrUnsupportedBody, body, jdUT)
	}
	if !flags.IncludeSpeed {
		pos.LongitudeSpeed = 0
		pos.LatitudeSpeed = 0
	}
	return pos, nil
}

// Subscribe registers a callback for KB events. Callbacks run outside the
// lock, in subscription order. The returned function removes exactly this
// callback and is safe to call more than once.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	id := kb.nextSub
	kb.nextSub++
	kb.subs[id] = fn

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		delete(kb.subs, id)
	}
}

// subscribers snapshots the callbacks in subscription order. Callers hold mu.
func (kb *KnowledgeBase) subscribers() []func(Event) {
	ids := make([]uint64, 0, len(kb.subs))
	for id := range kb.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event), len(ids))
	for i, id := range ids {
		out[i] = kb.subs[id]
	}
	return out
}
