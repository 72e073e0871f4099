package tengo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"hive/pkg/observation"
	"hive/pkg/quad"
)

const scriptTimeout = time.Second

// TimestampExtractor reads a fact's timestamp with a tengo script. The script sees the fact
// as quad and sets timestamp, leaving it undefined skips the fact.
//
//	if quad.predicate == "http://ex.org/observedAt" {
//		timestamp = int(quad.object) * 1000
//	}
type TimestampExtractor struct {
	mutex    sync.Mutex
	compiled *tengo.Compiled
}

func NewTimestampExtractor(source string) (*TimestampExtractor, error) {
	script := tengo.NewScript([]byte(source))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("quad", map[string]any{}); err != nil {
		return nil, errors.WithMessage(err, "can't add quad to timestamp script")
	}
	if err := script.Add("timestamp", nil); err != nil {
		return nil, errors.WithMessage(err, "can't add timestamp to timestamp script")
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, errors.WithMessage(err, "can't compile timestamp script")
	}
	return &TimestampExtractor{compiled: compiled}, nil
}

func (t *TimestampExtractor) Timestamp(q quad.Quad) (float64, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if err := t.compiled.Set("quad", observation.ToMap(q)); err != nil {
		return 0, false
	}
	if err := t.compiled.Set("timestamp", nil); err != nil {
		return 0, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	if err := t.compiled.RunContext(ctx); err != nil {
		return 0, false
	}
	result := t.compiled.Get("timestamp")
	if result.IsUndefined() {
		return 0, false
	}
	ts, err := cast.ToFloat64E(result.Value())
	if err != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return 0, false
	}
	return ts, true
}
