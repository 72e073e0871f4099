package join

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"

	_join "hive/pkg/join"
	"hive/pkg/observation"
	"hive/pkg/window"
)

// resultKey identifies an emitted joined window. Pairwise strategies may join several
// instance pairs into one interval, each pair is a result of its own.
type resultKey struct {
	window      window.Instance
	left, right window.Instance
}

func keyOf(result _join.Result) resultKey {
	return resultKey{window: result.Window, left: result.Left, right: result.Right}
}

// id is a stable identifier of the result, downstream sinks may use it to drop redeliveries.
func (k resultKey) id() uint64 {
	buf := make([]byte, 0, 48)
	for _, instance := range []window.Instance{k.window, k.left, k.right} {
		buf = binary.BigEndian.AppendUint64(buf, uint64(instance.Open))
		buf = binary.BigEndian.AppendUint64(buf, uint64(instance.Close))
	}
	return murmur3.Sum64(buf)
}

// watermark is the stream time both windows reached.
func (o *operator) watermark() int64 {
	return min(o.windows[o.left].Watermark(), o.windows[o.right].Watermark())
}

// snapshot copies the instances ready at the common watermark and collects those neither a
// late fact nor a pending partner can reach anymore, they are evicted once joined.
func (o *operator) snapshot() (left, right *window.Snapshot, expired map[string][]window.Instance) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	watermark := o.watermark()
	expired = make(map[string][]window.Instance, len(o.windows))
	expired[o.left] = o.windows[o.left].Expired(watermark - o.windows[o.right].Width())
	expired[o.right] = o.windows[o.right].Expired(watermark - o.windows[o.left].Width())
	left = o.windows[o.left].SnapshotOf(o.windows[o.left].Ready(watermark)...)
	right = o.windows[o.right].SnapshotOf(o.windows[o.right].Ready(watermark)...)
	return left, right, expired
}

func (o *operator) evict(expired map[string][]window.Instance) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	for name, instances := range expired {
		o.windows[name].Evict(instances...)
		activeInstances.WithLabelValues(o.ctx.Name(), name).Set(float64(o.windows[name].Len()))
	}
}

// evaluate joins the ready windows of both streams and emits the results not emitted yet.
func (o *operator) evaluate() {
	ticksTotal.WithLabelValues(o.ctx.Name(), o.strategy).Inc()
	left, right, expired := o.snapshot()
	defer o.evict(expired)
	if left.Len() == 0 && right.Len() == 0 {
		return
	}
	results, err := o.joiner.Join(left, right)
	if err != nil {
		if errors.Is(err, _join.ErrNoWindows) {
			o.logger.Debugw("nothing to join.", "strategy", o.strategy)
		} else {
			tickErrorsTotal.WithLabelValues(o.ctx.Name(), o.strategy).Inc()
			o.logger.Errorw("can't join windows, skip tick.", "strategy", o.strategy, "err", err)
		}
		return
	}
	for _, result := range results {
		if result.Facts.Len() == 0 {
			continue
		}
		// results are final, a later tick never revises what was emitted
		key := keyOf(result)
		if o.emitted.Contains(key) {
			continue
		}
		o.emitted.Add(key, struct{}{})
		event := observation.Joined(o.strategy, result.Window.Open, result.Window.Close, result.Facts)
		event.Meta[observation.MetaResultID] = key.id()
		o.emitNext(event, nil)
		resultsTotal.WithLabelValues(o.ctx.Name(), o.strategy).Inc()
		factsTotal.WithLabelValues(o.ctx.Name(), o.strategy).Add(float64(result.Facts.Len()))
	}
}
