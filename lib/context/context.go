package context

import (
	_c "context"
	"strings"
	"sync"

	"hive/hive"
)

type context struct {
	ctx    _c.Context
	v      hive.Properties
	cancel _c.CancelFunc
	kv     *sync.Map
	name   string
}

func (c *context) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *context) Cancel() {
	c.cancel()
}

func (c *context) Ctx() _c.Context {
	return c.ctx
}

func (c *context) Name() string {
	return c.name
}

// Named derives a child context scoped to the value sub tree of the properties,
// the kv storage is shared with the parent.
func (c *context) Named(value string) hive.Context {
	ctx, cancel := _c.WithCancel(c.ctx)
	name := value
	if c.name != "" {
		name = strings.Join([]string{c.name, value}, ".")
	}
	var v hive.Properties
	if c.v != nil {
		v = c.v.Sub(value)
	}
	return &context{v: v, ctx: ctx, cancel: cancel, name: name, kv: c.kv}
}

func (c *context) Properties() hive.Properties {
	return c.v
}

func (c *context) Store(key string, value interface{}) {
	c.kv.Store(key, value)
}

func (c *context) Load(key string) (interface{}, bool) {
	return c.kv.Load(key)
}

func New(ctx _c.Context, properties hive.Properties) hive.Context {
	parent, cancelFunc := _c.WithCancel(ctx)
	return &context{ctx: parent, v: properties, cancel: cancelFunc, name: "", kv: &sync.Map{}}
}
