package join

import (
	"hive/pkg/window"
)

// MergeJoin joins every overlapping pair of instances. The joined interval is the
// intersection of the pair and the facts are the union of both containers.
type MergeJoin struct {
	options
}

func NewMergeJoin(opts ...Option) *MergeJoin {
	return &MergeJoin{options: newOptions(opts)}
}

// MergeJoin returns one result per overlapping (left, right) pair, in left then right order.
func (m *MergeJoin) MergeJoin(left, right window.Buffer) []Result {
	var (
		results     []Result
		rightActive = right.Active()
	)
	for _, l := range left.Active() {
		for _, r := range rightActive {
			if !l.Instance.Overlaps(r.Instance) {
				continue
			}
			results = append(results, Result{
				Window: window.NewInstance(
					max(l.Instance.Open, r.Instance.Open),
					min(l.Instance.Close, r.Instance.Close),
				),
				Facts: union(m.now(), l.Facts, r.Facts),
				Left:  l.Instance,
				Right: r.Instance,
			})
		}
	}
	return results
}

func (m *MergeJoin) Join(left, right window.Buffer) ([]Result, error) {
	return m.MergeJoin(left, right), nil
}

func init() {
	Register("merge", func(config Config) (Joiner, error) {
		return NewMergeJoin(config.Options...), nil
	})
}

var _ Joiner = (*MergeJoin)(nil)
