package join

import (
	"fmt"
	"sort"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"hive/pkg/quad"
	"hive/pkg/window"
)

var (
	ErrNoWindows          = fmt.Errorf("no active window instances to align")
	ErrDegenerateWindow   = fmt.Errorf("window width must be positive")
	ErrDegenerateSlide    = fmt.Errorf("window slide must be positive")
	ErrChunkOverflow      = fmt.Errorf("chunk width overflows int64")
	ErrUnknownStrategy    = fmt.Errorf("unknown join strategy")
	ErrInvalidGranularity = fmt.Errorf("granularity must be width-only or width-and-slide")
)

// Result is one joined window.
type Result struct {
	Window window.Instance
	Facts  *quad.Container
	// Left and Right are the joined instances for the pairwise strategies, zero for the
	// chunk and temporal ones whose Window is itself on a fixed grid.
	Left, Right window.Instance
}

// Joiner joins the active windows of two streams.
type Joiner interface {
	Join(left, right window.Buffer) ([]Result, error)
}

// Granularity selects which window parameters the chunk grid is aligned on.
type Granularity string

const (
	WidthOnly     Granularity = "width-only"
	WidthAndSlide Granularity = "width-and-slide"
)

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case WidthOnly, WidthAndSlide:
		return g, nil
	case "":
		return WidthOnly, nil
	default:
		return "", errors.WithMessage(ErrInvalidGranularity, s)
	}
}

type options struct {
	clock     clock.Clock
	extractor TimestampExtractor
}

type Option func(o *options)

// WithClock sets the clock used to stamp joined containers.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithExtractor sets how the chunk strategies read a fact's timestamp.
func WithExtractor(e TimestampExtractor) Option {
	return func(o *options) {
		o.extractor = e
	}
}

func newOptions(opts []Option) options {
	o := options{clock: clock.New(), extractor: ObjectLiteral}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) now() int64 {
	return o.clock.Now().UnixMilli()
}

// Config carries every parameter a registered strategy may need.
type Config struct {
	T0          int64
	Granularity Granularity
	// ResultSize and ResultSlide shape the temporal strategy's result window.
	ResultSize  int64
	ResultSlide int64
	Options     []Option
}

type NewJoinerFunc func(config Config) (Joiner, error)

var (
	joinerMap = map[string]NewJoinerFunc{}
)

func Register(name string, joinerFunc NewJoinerFunc) {
	joinerMap[name] = joinerFunc
}

// New builds the strategy registered under name.
func New(name string, config Config) (Joiner, error) {
	joinerFunc, ok := joinerMap[name]
	if !ok {
		return nil, errors.WithMessage(ErrUnknownStrategy, name)
	}
	return joinerFunc(config)
}

// Strategies lists the registered strategy names, sorted.
func Strategies() []string {
	names := make([]string, 0, len(joinerMap))
	for name := range joinerMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// union merges the facts of all containers into a fresh container, graphs removed.
func union(timestamp int64, containers ...*quad.Container) *quad.Container {
	merged := quad.NewContainer(timestamp)
	for _, c := range containers {
		c.Range(func(q quad.Quad) bool {
			merged.Insert(q.WithoutGraph())
			return true
		})
	}
	return merged
}

func unionQuads(timestamp int64, groups ...[]quad.Quad) *quad.Container {
	merged := quad.NewContainer(timestamp)
	for _, quads := range groups {
		for _, q := range quads {
			merged.Insert(q.WithoutGraph())
		}
	}
	return merged
}
