package runtime

import (
	_c "context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/tomb.v2"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/context"
	"hive/lib/emit"
	"hive/lib/log"
	"hive/lib/properties"
	"hive/lib/runtime/task"
	"hive/pkg/constant"
)

const (
	SourcePrefix   = "source"
	OperatorPrefix = "operator"
	SinkPrefix     = "sink"
)

var (
	propertiesDef = hive.PropertiesDef{
		constant.RuntimeModeProperty, constant.RuntimeLogLevelProperty, constant.RuntimeLogEncoderProperty,
		constant.RuntimeStatusDirProperty, constant.RuntimeMetricsAddrProperty,
	}
)

type Runtime struct {
	ctx           hive.Context
	logger        hive.Logger
	runtime       hive.Properties
	life          *tomb.Tomb
	sourceTasks   map[hive.Context]*task.SourceTask
	operatorTasks map[hive.Context]*task.OperatorTask
	sinkTasks     map[hive.Context]*task.SinkTask

	allEmitNext map[hive.Context]hive.EmitGenerator
	topology    map[hive.Context][]hive.Context
}

// componentCtx names the component context and renders its properties, it panics on
// configuration errors.
func (e *Runtime) componentCtx(name string, def func(_type string) (hive.Component, bool)) (hive.Context, hive.Component) {
	ctx := e.ctx.Named(name)
	if ctx.Properties() == nil {
		panic(fmt.Sprintf("%s properties can't be nil.", name))
	}
	_type := ctx.Properties().GetString(constant.TypeProperty)
	c, ok := def(_type)
	if !ok {
		panic(errors.WithMessagef(constant.ErrUnknownComponent, "%s type %s", name, _type))
	}
	renderText, err := properties.InitAndRender(ctx.Properties(), c.PropertiesDef())
	if err != nil {
		panic(errors.WithMessagef(err, "failed to init %s properties", name))
	}
	e.logger.Infof("init %s:\n%s", name, renderText)
	return ctx, c
}

func (e *Runtime) initSources() {
	sourceNames := e.ctx.Properties().PrefixKeys(SourcePrefix)
	if len(sourceNames) == 0 {
		panic("source has to have at least one.")
	}
	for _, name := range sourceNames {
		sourceName := SourcePrefix + "." + name
		sourceCtx, c := e.componentCtx(sourceName, func(_type string) (hive.Component, bool) {
			newFunc := component.NewSourceFunc(_type)
			if newFunc == nil {
				return nil, false
			}
			return newFunc(), true
		})
		e.sourceTasks[sourceCtx] = &task.SourceTask{
			Source:    c.(hive.Source),
			Ctx:       sourceCtx,
			Name:      sourceName,
			StatusDir: e.runtime.GetString(constant.RuntimeStatusDirProperty),
		}
	}
}

func (e *Runtime) initOperators() {
	for _, name := range e.ctx.Properties().PrefixKeys(OperatorPrefix) {
		operatorName := OperatorPrefix + "." + name
		operatorCtx, c := e.componentCtx(operatorName, func(_type string) (hive.Component, bool) {
			newFunc := component.NewOperatorFunc(_type)
			if newFunc == nil {
				return nil, false
			}
			return newFunc(), true
		})
		operatorTask := &task.OperatorTask{
			Operator: c.(hive.Operator),
			Ctx:      operatorCtx,
		}
		e.operatorTasks[operatorCtx] = operatorTask
		e.allEmitNext[operatorCtx] = operatorTask.GenerateEmit
	}
}

func (e *Runtime) initSinks() {
	sinkNames := e.ctx.Properties().PrefixKeys(SinkPrefix)
	if len(sinkNames) == 0 {
		panic("sink has to have at least one.")
	}
	for _, name := range sinkNames {
		sinkName := SinkPrefix + "." + name
		sinkCtx, c := e.componentCtx(sinkName, func(_type string) (hive.Component, bool) {
			newFunc := component.NewSinkFunc(_type)
			if newFunc == nil {
				return nil, false
			}
			return newFunc(), true
		})
		sinkTask := &task.SinkTask{
			Sink: c.(hive.Sink),
			Ctx:  sinkCtx,
		}
		e.sinkTasks[sinkCtx] = sinkTask
		e.allEmitNext[sinkCtx] = sinkTask.GenerateEmit
	}
}

func (e *Runtime) emitNext(ctx hive.Context) hive.EmitNext {
	selector := ctx.Properties().GetString(constant.SelectorProperty)
	if selector == "" {
		selector = "replicating"
	}
	newGenerator := emit.NewEmitNextGeneratorFunc(selector)
	if newGenerator == nil {
		panic(errors.WithMessagef(constant.ErrUnknownEmitSelect, "%s select %s", ctx.Name(), selector))
	}
	return newGenerator()(ctx, e.allEmitNext, e.topology)
}

func (e *Runtime) initTopology() {
	for _, operatorTask := range e.operatorTasks {
		operatorTask.EmitNext = e.emitNext(operatorTask.Ctx)
	}
	for _, sourceTask := range e.sourceTasks {
		sourceTask.EmitNext = e.emitNext(sourceTask.Ctx)
	}
}

// serveMetrics exposes the prometheus registry until the runtime is done.
func (e *Runtime) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	e.life.Go(func() error {
		<-e.ctx.Done()
		shutdownCtx, cancel := _c.WithTimeout(_c.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	e.life.Go(func() error {
		e.logger.Infow("serving metrics.", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Errorw("metrics server failed.", "addr", addr, "err", err)
			return err
		}
		return nil
	})
}

func (e *Runtime) Run() {
	//notify system signal
	e.life.Go(func() error {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer signal.Stop(c)
		select {
		case s := <-c:
			e.logger.Infof("notify system signal %s, done.", s)
			e.ctx.Cancel()
		case <-e.ctx.Done():
			e.logger.Warn("context done.")
		}
		return nil
	})

	e.initSources()
	e.initOperators()
	e.initSinks()
	e.initTopology()
	if addr := e.runtime.GetString(constant.RuntimeMetricsAddrProperty); addr != "" {
		e.serveMetrics(addr)
	}
	e.runAll()
	<-e.life.Dead()
	log.Sync()
}

func (e *Runtime) runTask(kind, name string, run func() error) {
	e.life.Go(func() error {
		e.logger.Infow(fmt.Sprintf("starting run %s task.", kind), "task", name)
		err := run()
		if err != nil {
			e.logger.Errorw(fmt.Sprintf("failed run %s task.", kind), "task", name, "err", err)
		} else {
			e.logger.Infow(fmt.Sprintf("%s task is complete.", kind), "task", name)
		}
		e.ctx.Cancel()
		return err
	})
}

func (e *Runtime) runAll() {
	for ctx, sinkTask := range e.sinkTasks {
		e.runTask("sink", ctx.Name(), sinkTask.Run)
	}
	for ctx, operatorTask := range e.operatorTasks {
		e.runTask("operator", ctx.Name(), operatorTask.Run)
	}
	for _, sourceTask := range e.sourceTasks {
		e.runTask("source", sourceTask.Name, sourceTask.Run)
	}
}

func New(originCtx _c.Context, propertiesName string, propertiesType string, propertiesPath ...string) *Runtime {
	return NewWithProperties(originCtx, properties.New(propertiesName, propertiesType, propertiesPath...))
}

// NewWithProperties builds a runtime over already loaded properties.
func NewWithProperties(originCtx _c.Context, ps hive.Properties) *Runtime {
	initAndRender, err := properties.InitAndRender(ps.Global(), propertiesDef)
	if err != nil {
		panic(errors.WithMessage(err, "can't init runtime properties"))
	}
	global := ps.Global()
	log.Setup(log.DefaultOptions().
		WithOutputEncoder(log.OutputEncoder(global.GetString(constant.RuntimeLogEncoderProperty))).
		WithLevel(global.GetString(constant.RuntimeLogLevelProperty)))
	ctx := context.New(originCtx, ps)
	logger := log.Ctx(ctx)
	logger.Infof("global:\n%s", initAndRender)

	life, _ := tomb.WithContext(ctx.Ctx())
	return &Runtime{
		logger:        logger,
		sourceTasks:   map[hive.Context]*task.SourceTask{},
		operatorTasks: map[hive.Context]*task.OperatorTask{},
		sinkTasks:     map[hive.Context]*task.SinkTask{},
		allEmitNext:   map[hive.Context]hive.EmitGenerator{},
		topology:      map[hive.Context][]hive.Context{},
		runtime:       global,
		life:          life,
		ctx:           ctx,
	}
}
