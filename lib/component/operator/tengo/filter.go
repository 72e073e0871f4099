package tengo

import (
	"fmt"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/pkg/errors"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/log"
	"hive/lib/properties"
)

var (
	ConditionProperty = properties.NewRequiredProperty[string]("condition", "tengo expression over event, e.g. event.message.predicate == \"http://ex.org/temperature\"")
)

type filterOperator struct {
	ctx      hive.Context
	logger   hive.Logger
	acker    hive.ACKer
	emitNext hive.EmitNext

	mutex    sync.Mutex
	compiled *tengo.Compiled
}

func compileCondition(condition string) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(fmt.Sprintf("__res__ := (%s)", strings.TrimSpace(condition))))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("event", emptyEvent); err != nil {
		return nil, errors.WithMessage(err, "can't add event to script")
	}
	compiled, err := script.Compile()
	if err != nil {
		return nil, errors.WithMessage(err, "can't compile script")
	}
	return compiled, nil
}

func (f *filterOperator) Open(ctx hive.Context) (err error) {
	f.ctx = ctx
	f.logger = log.Ctx(f.ctx)
	f.acker = hive.NewACKer()
	f.compiled, err = compileCondition(f.ctx.Properties().GetString(ConditionProperty))
	return err
}

func (f *filterOperator) Close() error {
	f.acker.Close()
	return nil
}

func (f *filterOperator) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{ConditionProperty}
}

// match runs the condition, events the script can't judge are not matched.
func (f *filterOperator) match(event *hive.Event) bool {
	tengoEvent, err := toTengoEvent(event)
	if err != nil {
		f.logger.Errorw("can't convert event to tengo type", "event", event, "err", err)
		return false
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err := f.compiled.Set("event", tengoEvent); err != nil {
		f.logger.Errorw("add event to script vm error.", "err", err)
		return false
	}
	if err := f.compiled.RunContext(f.ctx.Ctx()); err != nil {
		f.logger.Errorw("run script error.", "err", err)
		return false
	}
	matched, ok := f.compiled.Get("__res__").Value().(bool)
	if !ok {
		f.logger.Error("script return type not is bool.")
	}
	return matched
}

func (f *filterOperator) Emit(event *hive.Event) {
	if f.match(event) {
		f.emitNext(event, nil)
		return
	}
	f.logger.Debugf("filter event: %+v", event)
	f.acker.OnACK(event, false)
}

func (f *filterOperator) GenerateEmit(_ hive.Context) hive.Emit {
	return f.Emit
}

func (f *filterOperator) Collect(emitNext hive.EmitNext) error {
	f.emitNext = emitNext
	<-f.ctx.Done()
	return nil
}

func NewFilter() hive.Operator {
	return &filterOperator{logger: log.Named("operator.tengo-filter")}
}

func init() {
	component.RegisterNewOperatorFunc("tengo-filter", NewFilter)
}
