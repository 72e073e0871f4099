package hive

import (
	"time"
)

const (
	//MetaStream names the logical stream an observation belongs to
	MetaStream = "stream"
	//MetaTimestamp is the observation event time in unix milliseconds
	MetaTimestamp = "timestamp"
	//MetaStrategy names the join strategy which produced a joined window
	MetaStrategy = "strategy"
)

//Event is not thread safety
type Event struct {
	Meta    map[string]any `json:"meta"`
	Message any            `json:"message"`
	Time    time.Time      `json:"time"`

	// for hive private use
	Private map[string]any `json:"-"`
}

const (
	PrivateACKHandler = "$private_ack_handler"
)

type ACKHandler func()

type ACKer interface {
	OnACK(event *Event, ok bool)
	Close()
}

type simpleACKer struct{}

func (n *simpleACKer) OnACK(event *Event, _ bool) {
	if event.Private != nil {
		if ackHandler, ok := event.Private[PrivateACKHandler]; ok {
			if handler, ok := ackHandler.(ACKHandler); ok {
				handler()
			}
		}
	}

}

func (n *simpleACKer) Close() {}

func NewACKer() ACKer {
	return &simpleACKer{}
}
