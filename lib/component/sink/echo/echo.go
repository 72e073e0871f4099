package echo

import (
	"fmt"
	"strings"
	"sync"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/log"
	"hive/lib/properties"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

var (
	BatchSizeProperty = properties.NewProperty[int]("batch", "echo sink echo batch size", 1)
	TypeProperty      = properties.NewProperty[string]("echo", "echo type, like info debug", "info")
)

type sink struct {
	ctx       hive.Context
	logger    hive.Logger
	acker     hive.ACKer
	batch     int
	buffer    []*hive.Event
	bufferMux sync.Mutex
	echoFunc  func(format string, args ...interface{})
}

// render prints a joined window as its interval followed by its facts in N-Quads.
func render(event *hive.Event) string {
	facts, ok := event.Message.(*quad.Container)
	if !ok {
		return fmt.Sprintf("%+v", event)
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "%v [%v,%v) %d facts @%d",
		event.Meta[hive.MetaStrategy], event.Meta[observation.MetaOpen], event.Meta[observation.MetaClose],
		facts.Len(), facts.Timestamp)
	for _, q := range facts.Quads() {
		builder.WriteString("\n  ")
		builder.WriteString(q.String())
	}
	return builder.String()
}

func (s *sink) flush() {
	for _, event := range s.buffer {
		s.echoFunc("%s", render(event))
		s.acker.OnACK(event, true)
	}
	s.buffer = s.buffer[:0]
}

func (s *sink) GenerateEmit(_ hive.Context) hive.Emit {
	return func(event *hive.Event) {
		s.bufferMux.Lock()
		defer s.bufferMux.Unlock()
		s.buffer = append(s.buffer, event)
		if len(s.buffer) >= s.batch {
			s.flush()
		}
	}
}

func (s *sink) Open(ctx hive.Context) error {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)
	s.acker = hive.NewACKer()
	s.batch = ctx.Properties().GetInt(BatchSizeProperty)
	s.buffer = make([]*hive.Event, 0, s.batch)
	switch echoType := ctx.Properties().GetString(TypeProperty); echoType {
	case "debug":
		s.echoFunc = s.logger.Debugf
	case "warn":
		s.echoFunc = s.logger.Warnf
	case "error":
		s.echoFunc = s.logger.Errorf
	case "info":
		s.echoFunc = s.logger.Infof
	default:
		s.logger.Warnf("unknown echo type %s, use info", echoType)
		s.echoFunc = s.logger.Infof
	}
	return nil
}

func (s *sink) Close() error {
	s.bufferMux.Lock()
	defer s.bufferMux.Unlock()
	s.flush()
	s.acker.Close()
	return nil
}

func (s *sink) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{BatchSizeProperty, TypeProperty}
}

//New uses for test only
func New() hive.Sink {
	return &sink{}
}

func init() {
	component.RegisterNewSinkFunc("echo", New)
}
