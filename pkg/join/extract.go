package join

import (
	"math"

	"github.com/spf13/cast"

	"hive/pkg/quad"
)

// TimestampExtractor reads the event time embedded in a fact. ok is false when the fact
// carries no usable timestamp, such facts are skipped by the chunk strategies.
type TimestampExtractor interface {
	Timestamp(q quad.Quad) (ts float64, ok bool)
}

type ExtractorFunc func(q quad.Quad) (float64, bool)

func (f ExtractorFunc) Timestamp(q quad.Quad) (float64, bool) {
	return f(q)
}

// ObjectLiteral interprets the object literal as a number.
var ObjectLiteral TimestampExtractor = ExtractorFunc(func(q quad.Quad) (float64, bool) {
	if !q.Object.IsLiteral() {
		return 0, false
	}
	ts, err := cast.ToFloat64E(q.Object.Value)
	if err != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return 0, false
	}
	return ts, true
})
