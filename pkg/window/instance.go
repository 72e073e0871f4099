package window

import (
	"fmt"
)

// Instance is the interval [Open, Close) a window was active, in unix milliseconds.
type Instance struct {
	Open  int64 `json:"open"`
	Close int64 `json:"close"`
}

func NewInstance(open, close int64) Instance {
	return Instance{Open: open, Close: close}
}

func (i Instance) Width() int64 {
	return i.Close - i.Open
}

// Valid reports whether open < close.
func (i Instance) Valid() bool {
	return i.Open < i.Close
}

// Contains reports whether ts falls in [Open, Close).
func (i Instance) Contains(ts int64) bool {
	return i.Open <= ts && ts < i.Close
}

// Overlaps reports whether the two intervals share any instant. It is symmetric.
func (i Instance) Overlaps(o Instance) bool {
	return i.Open < o.Close && o.Open < i.Close
}

func (i Instance) String() string {
	return fmt.Sprintf("[%d,%d)", i.Open, i.Close)
}
