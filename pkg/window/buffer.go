package window

import (
	"sort"

	"hive/pkg/quad"
)

// Entry is one active window instance with the facts it holds.
type Entry struct {
	Instance Instance
	Facts    *quad.Container
}

// Buffer is the read-only view of one stream's active windows that join strategies consume.
// Active makes no ordering promise, but no instance appears twice.
type Buffer interface {
	Name() string
	Slide() int64
	Active() []Entry
}

// Snapshot is an immutable copy of a stream's active windows.
type Snapshot struct {
	name    string
	slide   int64
	entries []Entry
}

// NewSnapshot copies entries into a snapshot, entries sharing an instance are merged.
func NewSnapshot(name string, slide int64, entries ...Entry) *Snapshot {
	index := make(map[Instance]int, len(entries))
	s := &Snapshot{name: name, slide: slide, entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if i, ok := index[e.Instance]; ok {
			e.Facts.Range(func(q quad.Quad) bool {
				s.entries[i].Facts.Insert(q)
				return true
			})
			continue
		}
		index[e.Instance] = len(s.entries)
		s.entries = append(s.entries, Entry{Instance: e.Instance, Facts: e.Facts.Clone()})
	}
	return s
}

func (s *Snapshot) Name() string {
	return s.name
}

func (s *Snapshot) Slide() int64 {
	return s.slide
}

// Active returns the entries, the slice is a copy but the containers are shared and must
// not be mutated.
func (s *Snapshot) Active() []Entry {
	active := make([]Entry, len(s.entries))
	copy(active, s.entries)
	return active
}

// Len returns the number of active instances.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// SortByOpen orders entries by open then close time, for stable output.
func SortByOpen(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Instance.Open != entries[j].Instance.Open {
			return entries[i].Instance.Open < entries[j].Instance.Open
		}
		return entries[i].Instance.Close < entries[j].Instance.Close
	})
}

var _ Buffer = (*Snapshot)(nil)
