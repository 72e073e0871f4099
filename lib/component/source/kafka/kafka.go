package kafka

import (
	"bufio"
	"bytes"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"

	"hive/hive"
	"hive/lib/component"
	"hive/lib/log"
	"hive/lib/properties"
	_join "hive/pkg/join"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

var (
	TopicsProperty                = properties.NewRequiredProperty[[]string]("topics", "topics carrying N-Quads lines")
	StreamsProperty               = properties.NewProperty[map[string]string]("streams", "topic to stream name, unmapped topics keep their name", map[string]string{})
	TimestampFromObjectProperty   = properties.NewProperty[bool]("timestamp-from-object", "use the object literal instead of the message timestamp", false)
	VersionProperty               = properties.NewProperty[string]("version", "", "2.4.0")
	BrokersProperty               = properties.NewRequiredProperty[[]string]("brokers", "")
	ClientIdProperty              = properties.NewProperty[string]("client.id", "client id", "")
	GroupIdProperty               = properties.NewProperty[string]("group.id", "", "hive")
	OffsetsCommitIntervalProperty = properties.NewProperty[int]("offsets.commit.interval", "kafka commit interval sec", 5)
	OffsetsInitial                = properties.NewProperty[string]("offsets.initial", "newest or oldest", "oldest")

	SASLUserProperty     = properties.NewProperty[string]("sasl-username", "", "")
	SASLPasswordProperty = properties.NewProperty[string]("sasl-password", "", "")
)

type source struct {
	ctx           hive.Context
	logger        hive.Logger
	emitNext      hive.EmitNext
	consumerGroup sarama.ConsumerGroup

	streams             map[string]string
	timestampFromObject bool
}

func (s *source) Open(ctx hive.Context) error {
	s.ctx = ctx
	s.logger = log.Ctx(s.ctx)
	s.streams = s.ctx.Properties().GetStringMapString(StreamsProperty)
	s.timestampFromObject = s.ctx.Properties().GetBool(TimestampFromObjectProperty)

	config := sarama.NewConfig()
	version, err := sarama.ParseKafkaVersion(s.ctx.Properties().GetString(VersionProperty))
	if err != nil {
		return err
	}
	config.Version = version
	//sasl
	saslUser := s.ctx.Properties().GetString(SASLUserProperty)
	saslPassword := s.ctx.Properties().GetString(SASLPasswordProperty)
	if saslUser != "" && saslPassword != "" {
		config.Net.SASL.User = saslUser
		config.Net.SASL.Password = saslPassword
		config.Net.SASL.Enable = true
	}
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.AutoCommit.Interval = time.Duration(s.ctx.Properties().GetInt(OffsetsCommitIntervalProperty)) * time.Second
	//OffsetNewest or OffsetOldest.
	if s.ctx.Properties().GetString(OffsetsInitial) == "newest" {
		config.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	if clientId := s.ctx.Properties().GetString(ClientIdProperty); clientId != "" {
		config.ClientID = clientId
	}

	s.consumerGroup, err = sarama.NewConsumerGroup(s.ctx.Properties().GetStringSlice(BrokersProperty), s.ctx.Properties().GetString(GroupIdProperty), config)
	if err != nil {
		return err
	}
	go s.handleErrors()
	return nil
}

func (s *source) Close() error {
	var err error
	for i := 1; i < 4; i++ {
		if err = s.consumerGroup.Close(); err == nil {
			return nil
		}
		s.logger.Warnw("close kafka consumer error, waiting 1 second.", "time", i, "err", err)
		time.Sleep(1 * time.Second)
	}
	return errors.WithMessage(err, "can't close kafka consumer")
}

func (s *source) PropertiesDef() hive.PropertiesDef {
	return hive.PropertiesDef{TopicsProperty, StreamsProperty, TimestampFromObjectProperty, VersionProperty, BrokersProperty,
		ClientIdProperty, GroupIdProperty, OffsetsCommitIntervalProperty, OffsetsInitial, SASLUserProperty, SASLPasswordProperty}
}

func (s *source) Collect(emitNext hive.EmitNext) error {
	s.emitNext = emitNext
	for {
		select {
		case <-s.ctx.Done():
			return nil
		default:
			if err := s.consumerGroup.Consume(s.ctx.Ctx(), s.ctx.Properties().GetStringSlice(TopicsProperty), s); err != nil {
				return errors.WithMessage(err, "can't collect kafka")
			}
		}
	}
}

func (s *source) Setup(_ sarama.ConsumerGroupSession) error {
	s.logger.Infof("set up...")
	return nil
}

func (s *source) Cleanup(_ sarama.ConsumerGroupSession) error {
	s.logger.Infof("clean up...")
	return nil
}

func (s *source) handleErrors() {
	for err := range s.consumerGroup.Errors() {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("shutdown handle errors.")
			return
		default:
			s.logger.Errorw("received error.", "err", err)
		}
	}
}

func (s *source) stream(topic string) string {
	if stream, ok := s.streams[topic]; ok && stream != "" {
		return stream
	}
	return topic
}

// decode turns every N-Quads line of the message into an observation. Lines that don't
// parse, or carry no timestamp when it is read from the object, are skipped.
func (s *source) decode(message *sarama.ConsumerMessage) []*hive.Event {
	var (
		stream  = s.stream(message.Topic)
		events  []*hive.Event
		scanner = bufio.NewScanner(bytes.NewReader(message.Value))
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		q, err := quad.Parse(line)
		if err != nil {
			s.logger.Warnw("line is not N-Quads, skip it.", "topic", message.Topic, "offset", message.Offset, "err", err)
			continue
		}
		ts := message.Timestamp.UnixMilli()
		if s.timestampFromObject {
			objectTs, ok := _join.ObjectLiteral.Timestamp(q)
			if !ok {
				s.logger.Debugw("object has no timestamp, skip fact.", "quad", q.String())
				continue
			}
			ts = int64(objectTs)
		}
		event := observation.New(stream, q, ts)
		event.Meta["topic"] = message.Topic
		event.Meta["partition"] = message.Partition
		event.Meta["offset"] = message.Offset
		events = append(events, event)
	}
	return events
}

// ConsumeClaim marks a message once every fact in it was acked.
func (s *source) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		events := s.decode(message)
		if len(events) == 0 {
			session.MarkMessage(message, "")
			continue
		}
		var (
			_message = message
			pending  = int64(len(events))
		)
		for _, event := range events {
			s.emitNext(event, func() {
				if atomic.AddInt64(&pending, -1) == 0 {
					session.MarkMessage(_message, "")
				}
			})
		}
	}
	return nil
}

func New() hive.Source {
	return &source{}
}

func init() {
	component.RegisterNewSourceFunc("kafka", New)
}
