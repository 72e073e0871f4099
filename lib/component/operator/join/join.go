package join

import (
	"fmt"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/component/operator/tengo"
	"hive/lib/log"
	"hive/lib/properties"
	_join "hive/pkg/join"
	"hive/pkg/observation"
	"hive/pkg/window"
)

var (
	StrategyProperty    = properties.NewProperty[string]("strategy", "merge, cross, greatest-chunk, chunk-creation or temporal", "merge")
	LeftProperty        = properties.NewRequiredProperty[string]("left", "left stream name")
	RightProperty       = properties.NewRequiredProperty[string]("right", "right stream name")
	LeftWidthProperty   = properties.NewRequiredProperty[int64]("left-width", "left window width, ms")
	LeftSlideProperty   = properties.NewRequiredProperty[int64]("left-slide", "left window slide, ms")
	RightWidthProperty  = properties.NewRequiredProperty[int64]("right-width", "right window width, ms")
	RightSlideProperty  = properties.NewRequiredProperty[int64]("right-slide", "right window slide, ms")
	MaxDelayProperty    = properties.NewProperty[int64]("max-delay", "how late, ms, an out of order observation is still accepted", 0)
	T0Property          = properties.NewProperty[int64]("t0", "origin of windows and chunk grid, unix ms", 0)
	ReportProperty      = properties.NewProperty[string]("report", "on-window-close, non-empty-content, on-content-change or periodic", "on-window-close")
	GranularityProperty = properties.NewProperty[string]("granularity", "chunk grid alignment, width-only or width-and-slide", string(_join.WidthOnly))
	ResultSizeProperty  = properties.NewProperty[int64]("result-size", "temporal strategy result window size, ms", 0)
	ResultSlideProperty = properties.NewProperty[int64]("result-slide", "temporal strategy result window slide, ms", 0)
	TimestampProperty   = properties.NewProperty[string]("timestamp", "fact timestamp for chunk strategies, object or tengo", "object")
	ScriptProperty      = properties.NewProperty[string]("timestamp-script", "tengo script setting timestamp from quad", "")
	CronProperty        = properties.NewProperty[string]("cron", "join evaluation cron expression", "@every 1s")
	DedupSizeProperty   = properties.NewProperty[int]("dedup-size", "number of emitted results remembered", 4096)

	ErrSameStream = fmt.Errorf("left and right stream must differ")
)

type operator struct {
	ctx    hive.Context
	logger hive.Logger
	acker  hive.ACKer
	clock  clock.Clock
	cron   *cron.Cron

	strategy    string
	joiner      _join.Joiner
	left, right string
	maxDelay    int64

	mutex   sync.Mutex
	windows map[string]*window.CSPARQL

	emitted  *lru.Cache[resultKey, struct{}]
	emitNext hive.EmitNext
}

func parseReport(report string) (window.ReportStrategy, error) {
	switch report {
	case "on-window-close":
		return window.OnWindowClose, nil
	case "non-empty-content":
		return window.NonEmptyContent, nil
	case "on-content-change":
		return window.OnContentChange, nil
	case "periodic":
		return window.Periodic, nil
	default:
		return 0, errors.Errorf("unknown report strategy %s", report)
	}
}

func (o *operator) extractor() (_join.TimestampExtractor, error) {
	switch timestamp := o.ctx.Properties().GetString(TimestampProperty); timestamp {
	case "object":
		return _join.ObjectLiteral, nil
	case "tengo":
		script := o.ctx.Properties().GetString(ScriptProperty)
		if strings.TrimSpace(script) == "" {
			return nil, errors.New("timestamp-script is required when timestamp is tengo")
		}
		return tengo.NewTimestampExtractor(script)
	default:
		return nil, errors.Errorf("unknown timestamp %s", timestamp)
	}
}

func (o *operator) Open(ctx hive.Context) error {
	o.ctx = ctx
	o.logger = log.Ctx(o.ctx)
	o.acker = hive.NewACKer()
	if o.clock == nil {
		o.clock = clock.New()
	}
	ps := ctx.Properties()

	o.strategy = ps.GetString(StrategyProperty)
	o.left, o.right = ps.GetString(LeftProperty), ps.GetString(RightProperty)
	if o.left == o.right {
		return errors.WithMessage(ErrSameStream, o.left)
	}
	o.maxDelay = ps.GetInt64(MaxDelayProperty)
	t0 := ps.GetInt64(T0Property)
	report, err := parseReport(ps.GetString(ReportProperty))
	if err != nil {
		return err
	}
	opts := []window.Option{window.WithMaxDelay(o.maxDelay), window.WithReport(report), window.WithManualEviction()}
	leftWindow, err := window.NewCSPARQL(o.left, ps.GetInt64(LeftWidthProperty), ps.GetInt64(LeftSlideProperty), t0, opts...)
	if err != nil {
		return err
	}
	rightWindow, err := window.NewCSPARQL(o.right, ps.GetInt64(RightWidthProperty), ps.GetInt64(RightSlideProperty), t0, opts...)
	if err != nil {
		return err
	}
	o.windows = map[string]*window.CSPARQL{o.left: leftWindow, o.right: rightWindow}

	granularity, err := _join.ParseGranularity(ps.GetString(GranularityProperty))
	if err != nil {
		return err
	}
	extractor, err := o.extractor()
	if err != nil {
		return err
	}
	o.joiner, err = _join.New(o.strategy, _join.Config{
		T0:          t0,
		Granularity: granularity,
		ResultSize:  ps.GetInt64(ResultSizeProperty),
		ResultSlide: ps.GetInt64(ResultSlideProperty),
		Options:     []_join.Option{_join.WithClock(o.clock), _join.WithExtractor(extractor)},
	})
	if err != nil {
		return errors.WithMessagef(err, "strategy %s", o.strategy)
	}

	if o.emitted, err = lru.New[resultKey, struct{}](ps.GetInt(DedupSizeProperty)); err != nil {
		return errors.WithMessage(err, "can't create dedup cache")
	}

	o.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err = o.cron.AddFunc(ps.GetString(CronProperty), o.evaluate); err != nil {
		return errors.WithMessage(err, "can't add join evaluation to cron")
	}
	return nil
}

func (o *operator) Close() error {
	// cron is created last, nil means Open failed
	if o.cron != nil {
		<-o.cron.Stop().Done()
		if o.emitNext != nil {
			o.evaluate()
		}
	}
	if o.acker != nil {
		o.acker.Close()
	}
	return nil
}

func (o *operator) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{
		StrategyProperty, LeftProperty, RightProperty,
		LeftWidthProperty, LeftSlideProperty, RightWidthProperty, RightSlideProperty,
		MaxDelayProperty, T0Property, ReportProperty, GranularityProperty,
		ResultSizeProperty, ResultSlideProperty, TimestampProperty, ScriptProperty,
		CronProperty, DedupSizeProperty,
	}
}

// emit buffers one observation, it is acked once the window took it or dropped it.
func (o *operator) emit(event *hive.Event) {
	buffered := false
	defer func() {
		o.acker.OnACK(event, buffered)
	}()
	stream, q, ts, err := observation.From(event)
	if err != nil {
		o.logger.Warnw("not an observation, drop event.", "event", event, "err", err)
		observationsTotal.WithLabelValues(o.ctx.Name(), "", "invalid").Inc()
		return
	}
	w, ok := o.windows[stream]
	if !ok {
		o.logger.Debugw("unknown stream, drop event.", "stream", stream)
		observationsTotal.WithLabelValues(o.ctx.Name(), stream, "unknown").Inc()
		return
	}
	o.mutex.Lock()
	result := w.Add(q, ts)
	active := w.Len()
	o.mutex.Unlock()

	buffered = result != window.Dropped
	if !buffered {
		o.logger.Debugw("observation outside every window, dropped.", "stream", stream, "timestamp", ts)
	}
	observationsTotal.WithLabelValues(o.ctx.Name(), stream, strings.ToLower(result.String())).Inc()
	activeInstances.WithLabelValues(o.ctx.Name(), stream).Set(float64(active))
}

func (o *operator) GenerateEmit(_ hive.Context) hive.Emit {
	return o.emit
}

func (o *operator) Collect(emitNext hive.EmitNext) error {
	o.emitNext = emitNext
	o.cron.Start()
	<-o.ctx.Done()
	return nil
}

func New() hive.Operator {
	return &operator{}
}

func init() {
	component.RegisterNewOperatorFunc("window-join", New)
}
