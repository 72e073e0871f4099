package sample

import (
	_c "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/hive"
	"hive/lib/context"
	"hive/lib/properties"
)

func TestSample_PerStream(t *testing.T) {
	ctx := context.New(_c.Background(), properties.NewFromMap(map[string]any{
		"operator": map[string]any{"sample": map[string]any{"rate": 3}},
	}))
	defer ctx.Cancel()
	o := New().(*operator)
	require.NoError(t, o.Open(ctx.Named("operator.sample")))

	forwarded := map[string]int{}
	o.emitNext = func(event *hive.Event, _ hive.ACKHandler) {
		forwarded[event.Meta[hive.MetaStream].(string)]++
	}
	dropped := 0
	emit := o.GenerateEmit(ctx)
	for i := 0; i < 9; i++ {
		emit(&hive.Event{Meta: map[string]any{hive.MetaStream: "temperature"}})
	}
	for i := 0; i < 3; i++ {
		emit(&hive.Event{
			Meta:    map[string]any{hive.MetaStream: "humidity"},
			Private: map[string]any{hive.PrivateACKHandler: hive.ACKHandler(func() { dropped++ })},
		})
	}
	assert.Equal(t, map[string]int{"temperature": 3, "humidity": 1}, forwarded)
	assert.Equal(t, 2, dropped)
}
