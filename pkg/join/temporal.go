package join

import (
	"github.com/pkg/errors"

	"hive/pkg/quad"
	"hive/pkg/window"
)

// TemporalJoin slides a result window of fixed size and slide, starting at t0, across
// both streams. Every instance overlapping a result window contributes its whole container.
type TemporalJoin struct {
	options
	size  int64
	slide int64
	t0    int64
}

func NewTemporalJoin(size, slide, t0 int64, opts ...Option) (*TemporalJoin, error) {
	if size <= 0 {
		return nil, errors.WithMessagef(ErrDegenerateWindow, "result size %d", size)
	}
	if slide <= 0 {
		return nil, errors.WithMessagef(ErrDegenerateSlide, "result slide %d", slide)
	}
	return &TemporalJoin{options: newOptions(opts), size: size, slide: slide, t0: t0}, nil
}

func (t *TemporalJoin) TemporalJoin(windowLeft, windowRight window.Buffer) []Result {
	leftActive, rightActive := windowLeft.Active(), windowRight.Active()
	if len(leftActive) == 0 || len(rightActive) == 0 {
		return nil
	}
	minOpen, maxClose := bounds(leftActive, rightActive)
	end := t.t0 + t.slide
	// result windows ending at or before the earliest open overlap nothing
	if minOpen > end {
		end += (minOpen - end) / t.slide * t.slide
	}

	var results []Result
	for ; end <= maxClose; end += t.slide {
		resultWindow := window.NewInstance(end-t.size, end)
		eventsLeft := collectContainers(leftActive, resultWindow)
		eventsRight := collectContainers(rightActive, resultWindow)
		if len(eventsLeft) == 0 || len(eventsRight) == 0 {
			continue
		}
		merged := unionQuads(t.now(), eventsLeft, eventsRight)
		if merged.Len() > 0 {
			results = append(results, Result{Window: resultWindow, Facts: merged})
		}
	}
	return results
}

func (t *TemporalJoin) Join(left, right window.Buffer) ([]Result, error) {
	return t.TemporalJoin(left, right), nil
}

func collectContainers(entries []window.Entry, w window.Instance) []quad.Quad {
	var collected []quad.Quad
	for _, e := range entries {
		if e.Instance.Overlaps(w) {
			e.Facts.Range(func(q quad.Quad) bool {
				collected = append(collected, q)
				return true
			})
		}
	}
	return collected
}

func init() {
	Register("temporal", func(config Config) (Joiner, error) {
		return NewTemporalJoin(config.ResultSize, config.ResultSlide, config.T0, config.Options...)
	})
}

var _ Joiner = (*TemporalJoin)(nil)
