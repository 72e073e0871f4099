package replicating

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"github.com/pkg/errors"

	"hive/hive"
	"hive/lib/emit"
	"hive/lib/properties"
	"hive/pkg/constant"
)

var (
	OutputsProperty = properties.NewRequiredProperty[[]string]("outputs", "regexps selecting the downstream operators and sinks")
	ErrEmitNextNil  = fmt.Errorf("replicating emit next can't be nil")
)

// Generator replicates every event to all downstream components whose name matches
// one of the outputs regexps. In ack mode the upstream handler fires once every
// downstream acked the event.
func Generator(ctx hive.Context, allEmitGenerator map[hive.Context]hive.EmitGenerator, topology map[hive.Context][]hive.Context) hive.EmitNext {
	var emitNextSlice []hive.Emit
	for _, emitNextRegexp := range ctx.Properties().GetStringSlice(OutputsProperty) {
		compile, err := regexp.Compile(emitNextRegexp)
		if err != nil {
			panic(fmt.Sprintf("output %s can't compile.", emitNextRegexp))
		}
		for _ctx, emitGenerator := range allEmitGenerator {
			if compile.MatchString(_ctx.Name()) {
				emitNextSlice = append(emitNextSlice, emitGenerator(ctx))
				topology[_ctx] = append(topology[_ctx], ctx)
			}
		}
	}
	if len(emitNextSlice) == 0 {
		panic(errors.WithMessage(ErrEmitNextNil, ctx.Name()))
	}

	mode := ctx.Properties().Global().GetString(constant.RuntimeModeProperty)
	switch mode {
	case hive.Snapshot:
		return func(event *hive.Event, handler hive.ACKHandler) {
			for _, emit := range emitNextSlice {
				emit(event)
			}
			if handler != nil {
				handler()
			}
		}
	case hive.ACK:
		return func(event *hive.Event, handler hive.ACKHandler) {
			if handler != nil {
				var acked int64
				event.Private = map[string]any{hive.PrivateACKHandler: hive.ACKHandler(func() {
					if atomic.AddInt64(&acked, 1) == int64(len(emitNextSlice)) {
						handler()
					}
				})}
			}
			for _, emit := range emitNextSlice {
				emit(event)
			}
		}
	default:
		panic(errors.WithMessage(constant.ErrUnsupportedMode, mode))
	}
}

func init() {
	emit.RegisterEmitNextGeneratorFunc("replicating", func() hive.EmitNextGenerator {
		return Generator
	})
}
