package join

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/pkg/quad"
	"hive/pkg/window"
)

func fact(name string, ts string) quad.Quad {
	return quad.New(quad.NewIRI("http://ex.org/"+name), quad.NewIRI("http://ex.org/observedAt"), quad.NewLiteral(ts))
}

func entry(open, close int64, quads ...quad.Quad) window.Entry {
	return window.Entry{Instance: window.NewInstance(open, close), Facts: quad.NewContainer(0, quads...)}
}

func buffer(name string, slide int64, entries ...window.Entry) *window.Snapshot {
	return window.NewSnapshot(name, slide, entries...)
}

func mockClock(ms int64) *clock.Mock {
	c := clock.NewMock()
	c.Set(time.UnixMilli(ms))
	return c
}

func TestMergeJoin_Overlapping(t *testing.T) {
	f1, f2 := fact("f1", "1"), fact("f2", "7")
	left := buffer("left", 5, entry(0, 10, f1))
	right := buffer("right", 5, entry(5, 15, f2))

	results := NewMergeJoin(WithClock(mockClock(42))).MergeJoin(left, right)
	require.Len(t, results, 1)
	assert.Equal(t, window.NewInstance(5, 10), results[0].Window)
	assert.Equal(t, []quad.Quad{f1, f2}, results[0].Facts.Quads())
	assert.Equal(t, int64(42), results[0].Facts.Timestamp)
	assert.Equal(t, window.NewInstance(0, 10), results[0].Left)
	assert.Equal(t, window.NewInstance(5, 15), results[0].Right)
}

func TestCrossJoin_Overlapping(t *testing.T) {
	f1, f2 := fact("f1", "1"), fact("f2", "7")
	left := buffer("left", 5, entry(0, 10, f1))
	right := buffer("right", 5, entry(5, 15, f2))

	result, ok := NewCrossJoin().CrossJoin(left, right)
	require.True(t, ok)
	assert.Equal(t, int64(15), result.Window.Close)
	assert.Equal(t, int64(0), result.Window.Open)
	assert.Equal(t, int64(15), result.Facts.Timestamp)
	assert.Equal(t, []quad.Quad{f1, f2}, result.Facts.Quads())
	assert.Equal(t, window.NewInstance(0, 10), result.Left)
	assert.Equal(t, window.NewInstance(5, 15), result.Right)
}

func TestJoin_NoOverlap(t *testing.T) {
	left := buffer("left", 5, entry(0, 5, fact("f1", "1")))
	right := buffer("right", 5, entry(10, 15, fact("f2", "11")))

	assert.Empty(t, NewMergeJoin().MergeJoin(left, right))
	_, ok := NewCrossJoin().CrossJoin(left, right)
	assert.False(t, ok)

	results, err := NewCrossJoin().Join(left, right)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestMergeJoin_EmptyBuffer(t *testing.T) {
	left := buffer("left", 5)
	right := buffer("right", 5, entry(0, 10, fact("f", "1")))
	assert.Empty(t, NewMergeJoin().MergeJoin(left, right))
	assert.Empty(t, NewMergeJoin().MergeJoin(right, left))
}

func TestMergeJoin_Exhaustive(t *testing.T) {
	var leftEntries, rightEntries []window.Entry
	for i := int64(0); i < 6; i++ {
		leftEntries = append(leftEntries, entry(i*5, i*5+10, fact(fmt.Sprintf("l%d", i), fmt.Sprint(i*5))))
		rightEntries = append(rightEntries, entry(i*7, i*7+14, fact(fmt.Sprintf("r%d", i), fmt.Sprint(i*7))))
	}
	left, right := buffer("left", 5, leftEntries...), buffer("right", 7, rightEntries...)

	expected := 0
	for _, l := range leftEntries {
		for _, r := range rightEntries {
			if l.Instance.Overlaps(r.Instance) {
				expected++
			}
		}
	}
	results := NewMergeJoin().MergeJoin(left, right)
	assert.Len(t, results, expected)

	crossResults, err := NewCrossJoin().Join(left, right)
	require.NoError(t, err)
	assert.Len(t, crossResults, 1)

	for _, result := range results {
		assert.True(t, result.Window.Valid())
		var contributing []*quad.Container
		for _, l := range leftEntries {
			for _, r := range rightEntries {
				if l.Instance.Overlaps(r.Instance) &&
					result.Window == window.NewInstance(max(l.Instance.Open, r.Instance.Open), min(l.Instance.Close, r.Instance.Close)) &&
					result.Facts.Contains(l.Facts.Quads()[0]) && result.Facts.Contains(r.Facts.Quads()[0]) {
					contributing = append(contributing, l.Facts, r.Facts)
				}
			}
		}
		require.Len(t, contributing, 2)
		assert.Equal(t, contributing[0].Len()+contributing[1].Len(), result.Facts.Len())
	}
}

func TestMergeJoin_SelfJoin(t *testing.T) {
	buf := buffer("self", 5,
		entry(0, 10, fact("a", "1"), fact("b", "2")),
		entry(20, 30, fact("c", "21")),
	)
	results := NewMergeJoin().MergeJoin(buf, buf)
	require.Len(t, results, 2)
	for i, e := range buf.Active() {
		assert.Equal(t, e.Instance, results[i].Window)
		assert.True(t, e.Facts.Equal(results[i].Facts))
	}
}

func TestJoin_StripsGraphAndDoesNotAlias(t *testing.T) {
	inGraphA := quad.NewInGraph(quad.NewIRI("s"), quad.NewIRI("p"), quad.NewLiteral("3"), quad.NewIRI("http://ex.org/streamA"))
	inGraphB := quad.NewInGraph(quad.NewIRI("s"), quad.NewIRI("p"), quad.NewLiteral("3"), quad.NewIRI("http://ex.org/streamB"))
	left := buffer("left", 10, entry(0, 10, inGraphA))
	right := buffer("right", 10, entry(0, 10, inGraphB))

	results := NewMergeJoin().MergeJoin(left, right)
	require.Len(t, results, 1)
	assert.Equal(t, []quad.Quad{inGraphA.WithoutGraph()}, results[0].Facts.Quads())

	results[0].Facts.Add(fact("extra", "4"), 4)
	assert.Equal(t, 1, left.Active()[0].Facts.Len())
	assert.True(t, left.Active()[0].Facts.Contains(inGraphA))
}

func TestLCM(t *testing.T) {
	width, err := LCM(10, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(30), width)

	inputs := [][]int64{{4, 6}, {10, 20, 5, 10}, {7, 3, 5}, {12}, {9, 6, 4}}
	for _, values := range inputs {
		width, err := LCM(values...)
		require.NoError(t, err)
		for _, v := range values {
			assert.Zero(t, width%v, "lcm %d of %v must be a multiple of %d", width, values, v)
		}
	}

	_, err = LCM()
	assert.ErrorIs(t, err, ErrNoWindows)
	_, err = LCM(10, 0)
	assert.ErrorIs(t, err, ErrDegenerateWindow)
	_, err = LCM(1<<62, 3)
	assert.ErrorIs(t, err, ErrChunkOverflow)
}

func TestGCD(t *testing.T) {
	width, err := GCD(10, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(5), width)
	_, err = GCD()
	assert.ErrorIs(t, err, ErrNoWindows)
	_, err = GCD(0, 0)
	assert.ErrorIs(t, err, ErrDegenerateWindow)
}

func TestGreatestChunk_TemporalJoin(t *testing.T) {
	l1, l2, lOutside := fact("l1", "2"), fact("l2", "15"), fact("late", "25")
	r1, rBroken := fact("r1", "4"), fact("r2", "not-a-number")
	left := buffer("left", 10, entry(0, 10, l1, lOutside), entry(10, 20, l2))
	right := buffer("right", 10, entry(0, 10, r1), entry(10, 20, rBroken))

	g := NewGreatestChunk(0, WidthOnly, WithClock(mockClock(7)))
	width, err := g.ChunkWidth(left, right)
	require.NoError(t, err)
	assert.Equal(t, int64(10), width)

	results, err := g.TemporalJoin(left, right)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, window.NewInstance(0, 10), results[0].Window)
	assert.Equal(t, []quad.Quad{l1, r1}, results[0].Facts.Quads())
	assert.Equal(t, int64(7), results[0].Facts.Timestamp)
}

func TestGreatestChunk_DifferentWidths(t *testing.T) {
	left := buffer("left", 10, entry(0, 10, fact("l1", "1")), entry(10, 20, fact("l2", "12")))
	right := buffer("right", 15, entry(0, 15, fact("r1", "3")), entry(15, 30, fact("r2", "20")))

	results, err := NewGreatestChunk(0, WidthOnly).TemporalJoin(left, right)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, window.NewInstance(0, 30), results[0].Window)
	assert.Equal(t, 4, results[0].Facts.Len())
}

func TestGreatestChunk_WidthAndSlide(t *testing.T) {
	left := buffer("left", 5, entry(0, 10, fact("l", "1")))
	right := buffer("right", 4, entry(0, 10, fact("r", "2")))

	width, err := NewGreatestChunk(0, WidthAndSlide).ChunkWidth(left, right)
	require.NoError(t, err)
	assert.Equal(t, int64(20), width)
	for _, v := range []int64{10, 5, 4} {
		assert.Zero(t, width%v)
	}

	width, err = NewGreatestChunk(0, WidthOnly).ChunkWidth(left, right)
	require.NoError(t, err)
	assert.Equal(t, int64(10), width)

	_, err = NewGreatestChunk(0, WidthAndSlide).ChunkWidth(buffer("left", 0, entry(0, 10)), right)
	assert.ErrorIs(t, err, ErrDegenerateSlide)
}

func TestGreatestChunk_RequiresBothSides(t *testing.T) {
	left := buffer("left", 10, entry(0, 10, fact("l", "1")), entry(10, 20, fact("l2", "11")))
	right := buffer("right", 10, entry(10, 20, fact("r", "12")))

	results, err := NewGreatestChunk(0, WidthOnly).TemporalJoin(left, right)
	require.NoError(t, err)
	for _, result := range results {
		assert.Equal(t, window.NewInstance(10, 20), result.Window)
	}
	assert.Len(t, results, 1)
}

func TestGreatestChunk_RelativeToT0(t *testing.T) {
	inChunk, beforeT0 := fact("in", "205"), fact("raw", "105")
	left := buffer("left", 10, entry(100, 110, inChunk, beforeT0))
	right := buffer("right", 10, entry(100, 110, fact("r", "201")))

	results, err := NewGreatestChunk(100, WidthOnly).TemporalJoin(left, right)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, window.NewInstance(100, 110), results[0].Window)
	assert.True(t, results[0].Facts.Contains(inChunk))
	assert.False(t, results[0].Facts.Contains(beforeT0))
}

func TestGreatestChunk_Preconditions(t *testing.T) {
	_, err := NewGreatestChunk(0, WidthOnly).TemporalJoin(buffer("left", 5), buffer("right", 5))
	assert.ErrorIs(t, err, ErrNoWindows)

	_, err = NewGreatestChunk(0, WidthOnly).TemporalJoin(buffer("left", 5, entry(10, 10)), buffer("right", 5))
	assert.ErrorIs(t, err, ErrDegenerateWindow)

	_, err = NewGreatestChunk(0, Granularity("daily")).TemporalJoin(buffer("left", 5, entry(0, 10)), buffer("right", 5))
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestGreatestChunk_CustomExtractor(t *testing.T) {
	withTime := quad.New(quad.NewIRI("s"), quad.NewIRI("http://ex.org/at"), quad.NewIRI("http://ex.org/t/3"))
	left := buffer("left", 10, entry(0, 10, withTime))
	right := buffer("right", 10, entry(0, 10, fact("r", "4")))

	results, err := NewGreatestChunk(0, WidthOnly).TemporalJoin(left, right)
	require.NoError(t, err)
	assert.Empty(t, results)

	everythingAtThree := ExtractorFunc(func(q quad.Quad) (float64, bool) { return 3, true })
	results, err = NewGreatestChunk(0, WidthOnly, WithExtractor(everythingAtThree)).TemporalJoin(left, right)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Facts.Len())
}

func TestGreatestChunk_SkipsLeadingChunks(t *testing.T) {
	base := int64(1_700_000_000_000)
	left := buffer("left", 10, entry(base, base+10, fact("l", fmt.Sprint(base+1))))
	right := buffer("right", 10, entry(base, base+10, fact("r", fmt.Sprint(base+2))))

	results, err := NewGreatestChunk(0, WidthOnly).TemporalJoin(left, right)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, window.NewInstance(base, base+10), results[0].Window)
}

func TestChunkCreation(t *testing.T) {
	left := buffer("left", 10, entry(0, 10, fact("l1", "1"), fact("l2", "7")))
	right := buffer("right", 15, entry(0, 15, fact("r1", "2"), fact("r2", "12")))

	c := NewChunkCreation(0, WidthOnly)
	width, err := c.ChunkWidth(left, right)
	require.NoError(t, err)
	assert.Equal(t, int64(5), width)

	results, err := c.TemporalJoin(left, right)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, window.NewInstance(0, 5), results[0].Window)
	assert.Equal(t, []quad.Quad{fact("l1", "1"), fact("r1", "2")}, results[0].Facts.Quads())
}

func TestTemporalJoin(t *testing.T) {
	a, b := fact("a", "1"), fact("b", "6")
	left := buffer("left", 5, entry(0, 10, a))
	right := buffer("right", 5, entry(5, 15, b))

	joiner, err := NewTemporalJoin(10, 5, 0)
	require.NoError(t, err)
	results := joiner.TemporalJoin(left, right)
	require.Len(t, results, 2)
	assert.Equal(t, window.NewInstance(0, 10), results[0].Window)
	assert.Equal(t, window.NewInstance(5, 15), results[1].Window)
	for _, result := range results {
		assert.Equal(t, []quad.Quad{a, b}, result.Facts.Quads())
	}

	assert.Empty(t, joiner.TemporalJoin(left, buffer("right", 5)))

	_, err = NewTemporalJoin(0, 5, 0)
	assert.ErrorIs(t, err, ErrDegenerateWindow)
	_, err = NewTemporalJoin(10, 0, 0)
	assert.ErrorIs(t, err, ErrDegenerateSlide)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"chunk-creation", "cross", "greatest-chunk", "merge", "temporal"}, Strategies())

	for _, name := range Strategies() {
		joiner, err := New(name, Config{T0: 0, Granularity: WidthOnly, ResultSize: 10, ResultSlide: 5})
		require.NoError(t, err, name)
		results, err := joiner.Join(
			buffer("left", 5, entry(0, 10, fact("f1", "1"))),
			buffer("right", 5, entry(5, 15, fact("f2", "7"))),
		)
		require.NoError(t, err, name)
		assert.NotEmpty(t, results, name)
	}

	_, err := New("nested-loop", Config{})
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	_, err = New("temporal", Config{})
	assert.ErrorIs(t, err, ErrDegenerateWindow)
	_, err = New("greatest-chunk", Config{Granularity: "hourly"})
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}

func TestObjectLiteral(t *testing.T) {
	ts, ok := ObjectLiteral.Timestamp(fact("s", "12.5"))
	assert.True(t, ok)
	assert.Equal(t, 12.5, ts)

	_, ok = ObjectLiteral.Timestamp(fact("s", "soon"))
	assert.False(t, ok)
	_, ok = ObjectLiteral.Timestamp(quad.New(quad.NewIRI("s"), quad.NewIRI("p"), quad.NewIRI("12")))
	assert.False(t, ok)
}
