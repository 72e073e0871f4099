package mock

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/log"
	"hive/lib/properties"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

var (
	StreamsProperty  = properties.NewProperty[[]string]("streams", "generated stream names", []string{"left", "right"})
	IntervalProperty = properties.NewProperty[int]("interval", "generate one observation per stream every interval ms", 100)
	CountProperty    = properties.NewProperty[int]("count", "stop after count rounds, 0 never stops", 0)
	BaseProperty     = properties.NewProperty[string]("base", "IRI prefix of generated terms", "https://rsp.js/")
)

// source generates sensor readings, each stream gets one fact per round whose object
// literal is the observation time in unix ms.
type source struct {
	ctx    hive.Context
	logger hive.Logger
	clock  clock.Clock

	streams  []string
	interval time.Duration
	count    int
	base     string
}

func (s *source) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{StreamsProperty, IntervalProperty, CountProperty, BaseProperty}
}

func (s *source) observations(seq int, now int64) []*hive.Event {
	events := make([]*hive.Event, 0, len(s.streams))
	for _, stream := range s.streams {
		q := quad.NewInGraph(
			quad.NewIRI(fmt.Sprintf("%stest_subject_%d", s.base, seq)),
			quad.NewIRI(s.base+"test_property"),
			quad.NewLiteral(fmt.Sprint(now)),
			quad.NewIRI(s.base+stream),
		)
		events = append(events, observation.New(stream, q, now))
	}
	return events
}

func (s *source) Collect(emitNext hive.EmitNext) error {
	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()
	for seq := 0; s.count == 0 || seq < s.count; seq++ {
		select {
		case <-s.ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, event := range s.observations(seq, now.UnixMilli()) {
				emitNext(event, nil)
			}
		}
	}
	s.logger.Infow("mock source generated every round.", "count", s.count)
	return nil
}

func (s *source) Open(ctx hive.Context) error {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)
	if s.clock == nil {
		s.clock = clock.New()
	}
	s.streams = ctx.Properties().GetStringSlice(StreamsProperty)
	s.interval = time.Duration(ctx.Properties().GetInt(IntervalProperty)) * time.Millisecond
	if s.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.interval)
	}
	s.count = ctx.Properties().GetInt(CountProperty)
	s.base = ctx.Properties().GetString(BaseProperty)
	return nil
}

func (s *source) Close() error {
	return nil
}

//New uses for test only
func New() hive.Source {
	return &source{}
}

func init() {
	component.RegisterNewSourceFunc("mock", New)
}
