package sample

import (
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/log"
	"hive/lib/properties"
)

var (
	RateProperty = properties.NewProperty[uint64]("rate", "forward one of every rate observations of each stream", 10)
)

// operator down-samples every stream on its own, so a chatty stream can't starve a quiet one.
type operator struct {
	ctx    hive.Context
	logger hive.Logger
	acker  hive.ACKer

	rate     uint64
	counters sync.Map
	emitNext hive.EmitNext
}

func (o *operator) Open(ctx hive.Context) error {
	o.ctx = ctx
	o.logger = log.Ctx(o.ctx)
	o.acker = hive.NewACKer()
	o.rate = ctx.Properties().GetUint64(RateProperty)
	if o.rate == 0 {
		o.rate = 1
	}
	return nil
}

func (o *operator) Close() error {
	o.acker.Close()
	return nil
}

func (o *operator) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{RateProperty}
}

func (o *operator) Collect(emitNext hive.EmitNext) error {
	o.emitNext = emitNext
	<-o.ctx.Done()
	return nil
}

func (o *operator) counter(stream string) *uint64 {
	counter, _ := o.counters.LoadOrStore(stream, new(uint64))
	return counter.(*uint64)
}

func (o *operator) GenerateEmit(_ hive.Context) hive.Emit {
	return func(event *hive.Event) {
		stream := cast.ToString(event.Meta[hive.MetaStream])
		if atomic.AddUint64(o.counter(stream), 1)%o.rate == 0 {
			o.emitNext(event, nil)
			return
		}
		o.acker.OnACK(event, false)
	}
}

func New() hive.Operator {
	return &operator{}
}

func init() {
	component.RegisterNewOperatorFunc("sample", New)
}
