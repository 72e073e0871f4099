package tengo

import (
	"fmt"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"hive/hive"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

var (
	emptyTime  = time.Time{}
	emptyEvent = &_struct{
		Meta:    &tengo.Map{Value: map[string]tengo.Object{}},
		Message: tengo.UndefinedValue,
		Time:    &tengo.Time{Value: emptyTime},
	}
)

// _struct is the event as scripts see it: meta, message and time.
type _struct struct {
	tengo.ObjectImpl
	Meta    *tengo.Map
	Message tengo.Object
	Time    *tengo.Time
}

func (s *_struct) TypeName() string {
	return "event"
}

func (s *_struct) String() string {
	return "<event>"
}

func (s *_struct) IsFalsy() bool {
	return s.Message.IsFalsy() && s.Meta.IsFalsy() && s.Time.IsFalsy()
}

func (s *_struct) IndexGet(o tengo.Object) (tengo.Object, error) {
	strIdx, ok := tengo.ToString(o)
	if !ok {
		return nil, tengo.ErrInvalidIndexType
	}
	switch strIdx {
	case "meta":
		return s.Meta, nil
	case "message":
		return s.Message, nil
	case "time":
		return s.Time, nil
	default:
		return tengo.UndefinedValue, fmt.Errorf("unknown key %s", strIdx)
	}
}

func (s *_struct) IndexSet(index, value tengo.Object) error {
	strIdx, ok := tengo.ToString(index)
	if !ok {
		return tengo.ErrInvalidIndexType
	}

	switch strIdx {
	case "meta":
		v, ok := value.(*tengo.Map)
		if !ok {
			return fmt.Errorf("meta only support map, but received is %s", value.TypeName())
		}
		s.Meta = v
	case "message":
		s.Message = value
	case "time":
		v, ok := value.(*tengo.Time)
		if !ok {
			return fmt.Errorf("time only support time.Time, but received is %s", value.TypeName())
		}
		s.Time = v
	default:
		return fmt.Errorf("unknown key %s", strIdx)
	}
	return nil
}

// toScriptMessage turns facts into maps, other messages pass as they are.
func toScriptMessage(message any) any {
	switch m := message.(type) {
	case quad.Quad:
		return observation.ToMap(m)
	case *quad.Container:
		facts := make([]any, 0, m.Len())
		for _, q := range m.Quads() {
			facts = append(facts, observation.ToMap(q))
		}
		return facts
	default:
		return message
	}
}

func toTengoEvent(event *hive.Event) (tengo.Object, error) {
	tengoMessage, err := tengo.FromInterface(toScriptMessage(event.Message))
	if err != nil {
		return nil, errors.WithMessage(err, "message can't convert to tengo type.")
	}
	tengoMetaValue := make(map[string]tengo.Object)
	for key, value := range event.Meta {
		object, err := tengo.FromInterface(value)
		if err != nil {
			return nil, errors.WithMessagef(err, "meta %s key can't convert to tengo type.", key)
		}
		tengoMetaValue[key] = object
	}
	return &_struct{
		Meta:    &tengo.Map{Value: tengoMetaValue},
		Message: tengoMessage,
		Time:    &tengo.Time{Value: event.Time},
	}, nil
}

// fromScriptMessage maps a rewritten fact back onto the original terms, keeping their kinds.
func fromScriptMessage(original any, message any) any {
	q, ok := original.(quad.Quad)
	if !ok {
		return message
	}
	m, ok := message.(map[string]any)
	if !ok {
		return message
	}
	for key, term := range map[string]*quad.Term{
		"subject":   &q.Subject,
		"predicate": &q.Predicate,
		"object":    &q.Object,
		"graph":     &q.Graph,
	} {
		if v, ok := m[key]; ok {
			value := cast.ToString(v)
			switch {
			case key == "graph" && value == "":
				*term = quad.Term{}
				continue
			case key == "graph" && term.Kind == quad.DefaultGraph:
				term.Kind = quad.IRI
			}
			term.Value = value
		}
	}
	return q
}
