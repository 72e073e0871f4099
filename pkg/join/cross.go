package join

import (
	"hive/pkg/window"
)

// CrossJoin stops at the first overlapping pair it meets. Unlike MergeJoin the joined
// interval spans both instances and closes at the later close time, the container is
// stamped with that close.
type CrossJoin struct {
	options
}

func NewCrossJoin(opts ...Option) *CrossJoin {
	return &CrossJoin{options: newOptions(opts)}
}

// CrossJoin returns the join of the first overlapping pair, ok is false when nothing overlaps.
func (c *CrossJoin) CrossJoin(windowOne, windowTwo window.Buffer) (result Result, ok bool) {
	activeTwo := windowTwo.Active()
	for _, one := range windowOne.Active() {
		for _, two := range activeTwo {
			if !one.Instance.Overlaps(two.Instance) {
				continue
			}
			closeTime := max(one.Instance.Close, two.Instance.Close)
			return Result{
				Window: window.NewInstance(min(one.Instance.Open, two.Instance.Open), closeTime),
				Facts:  union(closeTime, one.Facts, two.Facts),
				Left:   one.Instance,
				Right:  two.Instance,
			}, true
		}
	}
	return Result{}, false
}

func (c *CrossJoin) Join(left, right window.Buffer) ([]Result, error) {
	if result, ok := c.CrossJoin(left, right); ok {
		return []Result{result}, nil
	}
	return nil, nil
}

func init() {
	Register("cross", func(config Config) (Joiner, error) {
		return NewCrossJoin(config.Options...), nil
	})
}

var _ Joiner = (*CrossJoin)(nil)
