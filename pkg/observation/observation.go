// Package observation maps fact records and joined windows to engine events.
package observation

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"hive/hive"
	"hive/pkg/quad"
)

var (
	ErrNotObservation = fmt.Errorf("event does not carry a fact")
	ErrNoStream       = fmt.Errorf("event has no stream")
	ErrNoTimestamp    = fmt.Errorf("event has no timestamp")
)

const (
	MetaOpen  = "open"
	MetaClose = "close"
	MetaFacts = "facts"
	// MetaResultID identifies a joined result across redeliveries.
	MetaResultID = "result-id"
)

// New wraps one fact observed on stream at ts, unix milliseconds.
func New(stream string, q quad.Quad, ts int64) *hive.Event {
	return &hive.Event{
		Meta:    map[string]any{hive.MetaStream: stream, hive.MetaTimestamp: ts},
		Message: q,
		Time:    time.Now(),
	}
}

// From reads the fact, its stream and timestamp back from an event.
func From(event *hive.Event) (stream string, q quad.Quad, ts int64, err error) {
	q, ok := event.Message.(quad.Quad)
	if !ok {
		return "", quad.Quad{}, 0, errors.WithMessagef(ErrNotObservation, "message %T", event.Message)
	}
	stream = cast.ToString(event.Meta[hive.MetaStream])
	if stream == "" {
		return "", quad.Quad{}, 0, ErrNoStream
	}
	rawTs, ok := event.Meta[hive.MetaTimestamp]
	if !ok {
		return "", quad.Quad{}, 0, ErrNoTimestamp
	}
	switch v := rawTs.(type) {
	case time.Time:
		ts = v.UnixMilli()
	default:
		if ts, err = cast.ToInt64E(v); err != nil {
			return "", quad.Quad{}, 0, errors.Wrap(err, "timestamp")
		}
	}
	return stream, q, ts, nil
}

// Joined wraps the facts joined over the [open, close) interval by strategy.
func Joined(strategy string, open, close int64, facts *quad.Container) *hive.Event {
	return &hive.Event{
		Meta: map[string]any{
			hive.MetaStrategy:  strategy,
			MetaOpen:           open,
			MetaClose:          close,
			hive.MetaTimestamp: facts.Timestamp,
			MetaFacts:          facts.Len(),
		},
		Message: facts,
		Time:    time.Now(),
	}
}

// ToMap exposes a fact to scripts.
func ToMap(q quad.Quad) map[string]any {
	return map[string]any{
		"subject":   q.Subject.Value,
		"predicate": q.Predicate.Value,
		"object":    q.Object.Value,
		"graph":     q.Graph.Value,
		"literal":   q.Object.IsLiteral(),
		"datatype":  q.Object.Datatype,
		"nquads":    q.String(),
	}
}
