package tengo

import (
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
	ScriptProperty = properties.NewRequiredProperty[string]("script", "tengo script rewriting event, fact terms are event.message.subject, predicate, object and graph")
)

type scriptOperator struct {
	ctx      hive.Context
	logger   hive.Logger
	acker    hive.ACKer
	emitNext hive.EmitNext

	mutex    sync.Mutex
	compiled *tengo.Compiled
}

func (o *scriptOperator) Open(ctx hive.Context) error {
	o.ctx = ctx
	o.logger = log.Ctx(o.ctx)
	o.acker = hive.NewACKer()
	script := tengo.NewScript([]byte(o.ctx.Properties().GetString(ScriptProperty)))
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("event", emptyEvent); err != nil {
		return errors.WithMessage(err, "can't add event to script")
	}
	compiled, err := script.Compile()
	if err != nil {
		return errors.WithMessage(err, "can't compile script")
	}
	o.compiled = compiled
	return nil
}

func (o *scriptOperator) Close() error {
	o.acker.Close()
	return nil
}

func (o *scriptOperator) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{ScriptProperty}
}

func (o *scriptOperator) rewrite(event *hive.Event) (*hive.Event, error) {
	tengoEvent, err := toTengoEvent(event)
	if err != nil {
		return nil, err
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if err := o.compiled.Set("event", tengoEvent); err != nil {
		return nil, errors.WithMessage(err, "add event to script vm")
	}
	if err := o.compiled.RunContext(o.ctx.Ctx()); err != nil {
		return nil, errors.WithMessage(err, "run script")
	}
	newEvent, ok := o.compiled.Get("event").Value().(*_struct)
	if !ok {
		return nil, errors.New("script return event type not is event")
	}
	meta := make(map[string]any, len(newEvent.Meta.Value))
	for key, v := range newEvent.Meta.Value {
		meta[key] = tengo.ToInterface(v)
	}
	return &hive.Event{
		Meta:    meta,
		Message: fromScriptMessage(event.Message, tengo.ToInterface(newEvent.Message)),
		Time:    newEvent.Time.Value,
		Private: event.Private,
	}, nil
}

func (o *scriptOperator) emit(event *hive.Event) {
	newEvent, err := o.rewrite(event)
	if err != nil {
		o.logger.Errorw("can't rewrite event, drop event.", "event", event, "err", err)
		o.acker.OnACK(event, false)
		return
	}
	o.emitNext(newEvent, nil)
}

func (o *scriptOperator) GenerateEmit(_ hive.Context) hive.Emit {
	return o.emit
}

func (o *scriptOperator) Collect(emitNext hive.EmitNext) error {
	o.emitNext = emitNext
	<-o.ctx.Done()
	return nil
}

func NewScript() hive.Operator {
	return &scriptOperator{}
}

func init() {
	component.RegisterNewOperatorFunc("tengo-script", NewScript)
}
