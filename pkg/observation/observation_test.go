package observation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/hive"
	"hive/pkg/quad"
)

func TestFrom(t *testing.T) {
	q := quad.New(quad.NewIRI("http://ex.org/s1"), quad.NewIRI("http://ex.org/temp"), quad.NewLiteral("21.5"))

	stream, got, ts, err := From(New("temperature", q, 1000))
	require.NoError(t, err)
	assert.Equal(t, "temperature", stream)
	assert.Equal(t, q, got)
	assert.Equal(t, int64(1000), ts)

	event := New("temperature", q, 0)
	event.Meta[hive.MetaTimestamp] = time.UnixMilli(2500)
	_, _, ts, err = From(event)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), ts)

	event.Meta[hive.MetaTimestamp] = "soon"
	_, _, _, err = From(event)
	assert.Error(t, err)

	_, _, _, err = From(&hive.Event{Message: "raw line"})
	assert.ErrorIs(t, err, ErrNotObservation)

	_, _, _, err = From(&hive.Event{Message: q, Meta: map[string]any{}})
	assert.ErrorIs(t, err, ErrNoStream)

	_, _, _, err = From(&hive.Event{Message: q, Meta: map[string]any{hive.MetaStream: "humidity"}})
	assert.ErrorIs(t, err, ErrNoTimestamp)
}

func TestJoined(t *testing.T) {
	facts := quad.NewContainer(15, quad.New(quad.NewIRI("s"), quad.NewIRI("p"), quad.NewLiteral("1")))
	event := Joined("cross", 0, 15, facts)
	assert.Equal(t, "cross", event.Meta[hive.MetaStrategy])
	assert.Equal(t, int64(15), event.Meta[MetaClose])
	assert.Equal(t, 1, event.Meta[MetaFacts])
	assert.Same(t, facts, event.Message)
}
