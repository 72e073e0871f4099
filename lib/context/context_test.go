package context

import (
	_c "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/lib/properties"
)

func TestNamed(t *testing.T) {
	ps := properties.NewFromMap(map[string]any{
		"source": map[string]any{"sensors": map[string]any{"type": "mock"}},
	})
	root := New(_c.Background(), ps)
	sensors := root.Named("source.sensors")
	assert.Equal(t, "source.sensors", sensors.Name())
	require.NotNil(t, sensors.Properties())
	assert.True(t, sensors.Properties().IsSet("type"))

	missing := root.Named("sink.echo")
	assert.Nil(t, missing.Properties())

	sensors.Store("offset", 3)
	v, ok := root.Load("offset")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	root.Cancel()
	<-sensors.Done()
}
