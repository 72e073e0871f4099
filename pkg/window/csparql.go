package window

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"hive/pkg/quad"
)

var (
	ErrInvalidWidth = fmt.Errorf("window width must be positive")
	ErrInvalidSlide = fmt.Errorf("window slide must be positive")
)

// ReportStrategy decides when a window instance is ready to be reported downstream.
type ReportStrategy int

const (
	NonEmptyContent ReportStrategy = iota
	OnContentChange
	OnWindowClose
	Periodic
)

func (r ReportStrategy) String() string {
	switch r {
	case NonEmptyContent:
		return "NonEmptyContent"
	case OnContentChange:
		return "OnContentChange"
	case OnWindowClose:
		return "OnWindowClose"
	case Periodic:
		return "Periodic"
	default:
		return "Unknown"
	}
}

// AddResult tells what happened to a fact handed to the windower.
type AddResult int

const (
	// Added means the fact arrived in order and was placed in every matching instance.
	Added AddResult = iota
	// Late means the fact arrived out of order but within the max delay.
	Late
	// Dropped means no instance took the fact.
	Dropped
)

func (a AddResult) String() string {
	switch a {
	case Added:
		return "Added"
	case Late:
		return "Late"
	case Dropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

type Option func(w *CSPARQL)

// WithMaxDelay sets how far, in milliseconds, an out of order fact may lag the stream time.
// Instances are also kept this long after they close.
func WithMaxDelay(maxDelay int64) Option {
	return func(w *CSPARQL) {
		w.maxDelay = maxDelay
	}
}

// WithManualEviction keeps instances active until Evict removes them.
func WithManualEviction() Option {
	return func(w *CSPARQL) {
		w.manualEviction = true
	}
}

func WithReport(report ReportStrategy) Option {
	return func(w *CSPARQL) {
		w.report = report
	}
}

// CSPARQL is a time based sliding window over a single stream. Instances are aligned on
// t0 + k*slide and are width long. It is not safe for concurrent use.
type CSPARQL struct {
	name     string
	width    int64
	slide    int64
	t0       int64
	maxDelay int64
	report   ReportStrategy

	manualEviction bool

	time      int64
	watermark int64
	active    map[Instance]*quad.Container
}

func NewCSPARQL(name string, width, slide, t0 int64, opts ...Option) (*CSPARQL, error) {
	if width <= 0 {
		return nil, errors.WithMessagef(ErrInvalidWidth, "window %s width %d", name, width)
	}
	if slide <= 0 {
		return nil, errors.WithMessagef(ErrInvalidSlide, "window %s slide %d", name, slide)
	}
	w := &CSPARQL{
		name:      name,
		width:     width,
		slide:     slide,
		t0:        t0,
		report:    OnWindowClose,
		time:      t0,
		watermark: t0,
		active:    map[Instance]*quad.Container{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *CSPARQL) Name() string {
	return w.name
}

func (w *CSPARQL) Width() int64 {
	return w.width
}

func (w *CSPARQL) Slide() int64 {
	return w.slide
}

func (w *CSPARQL) Watermark() int64 {
	return w.watermark
}

// Len returns the number of active instances.
func (w *CSPARQL) Len() int {
	return len(w.active)
}

// Add places the fact observed at ts into the active instances.
func (w *CSPARQL) Add(q quad.Quad, ts int64) AddResult {
	if ts < w.time {
		if w.time-ts > w.maxDelay {
			return Dropped
		}
		if w.insert(q, ts) == 0 {
			return Dropped
		}
		return Late
	}
	w.time = ts
	w.scope(ts)
	inserted := w.insert(q, ts)
	if !w.manualEviction {
		w.Evict(w.Expired(ts)...)
	}
	if ts > w.watermark {
		w.watermark = ts
	}
	if inserted == 0 {
		return Dropped
	}
	return Added
}

func (w *CSPARQL) insert(q quad.Quad, ts int64) int {
	inserted := 0
	for instance, container := range w.active {
		if instance.Contains(ts) {
			container.Add(q, ts)
			inserted++
		}
	}
	return inserted
}

// scope opens every instance that may contain ts.
func (w *CSPARQL) scope(ts int64) {
	cSup := ceilDiv(ts-w.t0, w.slide) * w.slide
	for open := w.t0 + cSup - w.width; open <= ts; open += w.slide {
		instance := NewInstance(open, open+w.width)
		if _, ok := w.active[instance]; !ok {
			w.active[instance] = quad.NewContainer(0)
		}
	}
}

// Ready returns the instances the report strategy allows to report at watermark, oldest first.
func (w *CSPARQL) Ready(watermark int64) []Instance {
	var ready []Instance
	for instance, container := range w.active {
		switch w.report {
		case OnWindowClose:
			if instance.Close <= watermark {
				ready = append(ready, instance)
			}
		case NonEmptyContent:
			if container.Len() > 0 {
				ready = append(ready, instance)
			}
		case OnContentChange, Periodic:
			ready = append(ready, instance)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Open != ready[j].Open {
			return ready[i].Open < ready[j].Open
		}
		return ready[i].Close < ready[j].Close
	})
	return ready
}

// Expired returns the instances no fact can reach anymore once the stream time is at watermark.
func (w *CSPARQL) Expired(watermark int64) []Instance {
	var expired []Instance
	for instance := range w.active {
		if watermark >= instance.Close+w.maxDelay {
			expired = append(expired, instance)
		}
	}
	return expired
}

// Evict removes the instances and returns how many were active.
func (w *CSPARQL) Evict(instances ...Instance) int {
	evicted := 0
	for _, instance := range instances {
		if _, ok := w.active[instance]; ok {
			delete(w.active, instance)
			evicted++
		}
	}
	return evicted
}

// Snapshot copies the active instances into an immutable buffer.
func (w *CSPARQL) Snapshot() *Snapshot {
	entries := make([]Entry, 0, len(w.active))
	for instance, container := range w.active {
		entries = append(entries, Entry{Instance: instance, Facts: container})
	}
	SortByOpen(entries)
	return NewSnapshot(w.name, w.slide, entries...)
}

// SnapshotOf copies the given instances, those no longer active are ignored.
func (w *CSPARQL) SnapshotOf(instances ...Instance) *Snapshot {
	entries := make([]Entry, 0, len(instances))
	for _, instance := range instances {
		if container, ok := w.active[instance]; ok {
			entries = append(entries, Entry{Instance: instance, Facts: container})
		}
	}
	SortByOpen(entries)
	return NewSnapshot(w.name, w.slide, entries...)
}

func (w *CSPARQL) String() string {
	return fmt.Sprintf("%s[RANGE %d STEP %d]", w.name, w.width, w.slide)
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}
