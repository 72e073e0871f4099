package mock

import (
	_c "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/hive"
	"hive/lib/context"
	"hive/lib/properties"
	"hive/pkg/observation"
)

func TestSensor(t *testing.T) {
	ctx := context.New(_c.Background(), properties.NewFromMap(map[string]any{
		"source": map[string]any{"sensors": map[string]any{
			"streams":  []string{"temperature", "humidity"},
			"interval": 1,
			"count":    3,
		}},
	}))
	defer ctx.Cancel()
	s := New().(*source)
	sensorCtx := ctx.Named("source.sensors")
	_, err := properties.InitAndRender(sensorCtx.Properties(), s.PropertiesDef())
	require.NoError(t, err)
	require.NoError(t, s.Open(sensorCtx))

	var events []*hive.Event
	require.NoError(t, s.Collect(func(event *hive.Event, _ hive.ACKHandler) {
		events = append(events, event)
	}))
	require.Len(t, events, 6)

	stream, q, ts, err := observation.From(events[0])
	require.NoError(t, err)
	assert.Equal(t, "temperature", stream)
	assert.Equal(t, "https://rsp.js/test_subject_0", q.Subject.Value)
	assert.Equal(t, "https://rsp.js/temperature", q.Graph.Value)
	assert.Equal(t, q.Object.Value, observation.ToMap(q)["object"])
	assert.Positive(t, ts)

	stream, _, _, err = observation.From(events[5])
	require.NoError(t, err)
	assert.Equal(t, "humidity", stream)
}
