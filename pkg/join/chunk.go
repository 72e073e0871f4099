package join

import (
	"github.com/pkg/errors"

	"hive/pkg/quad"
	"hive/pkg/window"
)

// alignFunc computes the chunk width from every width (and slide) involved.
type alignFunc func(values ...int64) (int64, error)

// chunker walks a grid of equal chunks starting at t0 and joins the facts each side
// observed inside a chunk. A fact counts for a chunk when its instance overlaps the chunk
// and its own timestamp, taken relative to t0, lies in the chunk.
type chunker struct {
	options
	t0          int64
	granularity Granularity
	align       alignFunc
}

func newChunker(t0 int64, granularity Granularity, align alignFunc, opts []Option) chunker {
	if granularity == "" {
		granularity = WidthOnly
	}
	return chunker{options: newOptions(opts), t0: t0, granularity: granularity, align: align}
}

// ChunkWidth returns the grid step for the two buffers.
func (c chunker) ChunkWidth(left, right window.Buffer) (int64, error) {
	return c.chunkWidth(left, left.Active(), right, right.Active())
}

func (c chunker) chunkWidth(left window.Buffer, leftActive []window.Entry, right window.Buffer, rightActive []window.Entry) (int64, error) {
	if len(leftActive) == 0 && len(rightActive) == 0 {
		return 0, ErrNoWindows
	}
	values := make([]int64, 0, len(leftActive)+len(rightActive)+2)
	for _, entries := range [][]window.Entry{leftActive, rightActive} {
		for _, e := range entries {
			width := e.Instance.Width()
			if width <= 0 {
				return 0, errors.WithMessagef(ErrDegenerateWindow, "instance %s", e.Instance)
			}
			values = append(values, width)
		}
	}
	switch c.granularity {
	case WidthOnly:
	case WidthAndSlide:
		for _, b := range []window.Buffer{left, right} {
			if b.Slide() <= 0 {
				return 0, errors.WithMessagef(ErrDegenerateSlide, "stream %s slide %d", b.Name(), b.Slide())
			}
			values = append(values, b.Slide())
		}
	default:
		return 0, errors.WithMessage(ErrInvalidGranularity, string(c.granularity))
	}
	return c.align(values...)
}

func (c chunker) join(left, right window.Buffer) ([]Result, error) {
	leftActive, rightActive := left.Active(), right.Active()
	chunkWidth, err := c.chunkWidth(left, leftActive, right, rightActive)
	if err != nil {
		return nil, err
	}

	minOpen, maxClose := bounds(leftActive, rightActive)
	start := c.t0
	// chunks ending before the earliest open cannot overlap any instance
	if minOpen > start {
		start += (minOpen - start) / chunkWidth * chunkWidth
	}

	var results []Result
	for ; start+chunkWidth <= maxClose; start += chunkWidth {
		end := start + chunkWidth
		eventsLeft := c.collect(leftActive, start, end)
		eventsRight := c.collect(rightActive, start, end)
		if len(eventsLeft) == 0 || len(eventsRight) == 0 {
			continue
		}
		merged := unionQuads(c.now(), eventsLeft, eventsRight)
		if merged.Len() > 0 {
			results = append(results, Result{Window: window.NewInstance(start, end), Facts: merged})
		}
	}
	return results, nil
}

func (c chunker) collect(entries []window.Entry, start, end int64) []quad.Quad {
	var (
		collected []quad.Quad
		chunk     = window.NewInstance(start, end)
	)
	for _, e := range entries {
		if !e.Instance.Overlaps(chunk) {
			continue
		}
		e.Facts.Range(func(q quad.Quad) bool {
			ts, ok := c.extractor.Timestamp(q)
			if !ok {
				return true
			}
			relative := ts - float64(c.t0)
			if relative >= float64(start) && relative < float64(end) {
				collected = append(collected, q)
			}
			return true
		})
	}
	return collected
}

func bounds(groups ...[]window.Entry) (minOpen, maxClose int64) {
	first := true
	for _, entries := range groups {
		for _, e := range entries {
			if first || e.Instance.Open < minOpen {
				minOpen = e.Instance.Open
			}
			if first || e.Instance.Close > maxClose {
				maxClose = e.Instance.Close
			}
			first = false
		}
	}
	return minOpen, maxClose
}

// GreatestChunk aligns both streams on chunks as wide as the least common multiple of
// all instance widths, and of both slides in width-and-slide mode, so windows with
// different range and slide split into the same non overlapping chunks.
type GreatestChunk struct {
	chunker
}

func NewGreatestChunk(t0 int64, granularity Granularity, opts ...Option) *GreatestChunk {
	return &GreatestChunk{chunker: newChunker(t0, granularity, LCM, opts)}
}

// TemporalJoin returns one result per chunk in which both streams observed facts.
func (g *GreatestChunk) TemporalJoin(windowLeft, windowRight window.Buffer) ([]Result, error) {
	return g.join(windowLeft, windowRight)
}

func (g *GreatestChunk) Join(left, right window.Buffer) ([]Result, error) {
	return g.TemporalJoin(left, right)
}

// ChunkCreation is GreatestChunk on the finest common grid, the greatest common divisor
// of the widths (and slides).
type ChunkCreation struct {
	chunker
}

func NewChunkCreation(t0 int64, granularity Granularity, opts ...Option) *ChunkCreation {
	return &ChunkCreation{chunker: newChunker(t0, granularity, GCD, opts)}
}

func (c *ChunkCreation) TemporalJoin(windowLeft, windowRight window.Buffer) ([]Result, error) {
	return c.join(windowLeft, windowRight)
}

func (c *ChunkCreation) Join(left, right window.Buffer) ([]Result, error) {
	return c.TemporalJoin(left, right)
}

func init() {
	Register("greatest-chunk", func(config Config) (Joiner, error) {
		granularity, err := ParseGranularity(string(config.Granularity))
		if err != nil {
			return nil, err
		}
		return NewGreatestChunk(config.T0, granularity, config.Options...), nil
	})
	Register("chunk-creation", func(config Config) (Joiner, error) {
		granularity, err := ParseGranularity(string(config.Granularity))
		if err != nil {
			return nil, err
		}
		return NewChunkCreation(config.T0, granularity, config.Options...), nil
	})
}

var (
	_ Joiner = (*GreatestChunk)(nil)
	_ Joiner = (*ChunkCreation)(nil)
)
