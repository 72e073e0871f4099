package quad

import (
	"sort"
)

// Container is a set of quads plus the time it was last changed, in unix milliseconds.
type Container struct {
	elements  map[Quad]struct{}
	Timestamp int64
}

func NewContainer(timestamp int64, quads ...Quad) *Container {
	c := &Container{elements: make(map[Quad]struct{}, len(quads)), Timestamp: timestamp}
	for _, q := range quads {
		c.elements[q] = struct{}{}
	}
	return c
}

// Add inserts the quad and records timestamp as the last change.
func (c *Container) Add(q Quad, timestamp int64) {
	c.elements[q] = struct{}{}
	c.Timestamp = timestamp
}

// Insert adds the quad without touching the timestamp, it reports whether the quad was new.
func (c *Container) Insert(q Quad) bool {
	if _, ok := c.elements[q]; ok {
		return false
	}
	c.elements[q] = struct{}{}
	return true
}

func (c *Container) Contains(q Quad) bool {
	_, ok := c.elements[q]
	return ok
}

func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	return len(c.elements)
}

// Range calls f for every quad until f returns false. Order is unspecified.
func (c *Container) Range(f func(q Quad) bool) {
	if c == nil {
		return
	}
	for q := range c.elements {
		if !f(q) {
			return
		}
	}
}

// Quads returns the quads in a stable order.
func (c *Container) Quads() []Quad {
	quads := make([]Quad, 0, c.Len())
	c.Range(func(q Quad) bool {
		quads = append(quads, q)
		return true
	})
	sort.Slice(quads, func(i, j int) bool { return quads[i].Less(quads[j]) })
	return quads
}

// Clone returns a container that shares nothing with c.
func (c *Container) Clone() *Container {
	clone := &Container{elements: make(map[Quad]struct{}, c.Len())}
	if c == nil {
		return clone
	}
	for q := range c.elements {
		clone.elements[q] = struct{}{}
	}
	clone.Timestamp = c.Timestamp
	return clone
}

// Equal reports whether both containers hold the same set of quads.
func (c *Container) Equal(o *Container) bool {
	if c.Len() != o.Len() {
		return false
	}
	equal := true
	c.Range(func(q Quad) bool {
		equal = o.Contains(q)
		return equal
	})
	return equal
}
