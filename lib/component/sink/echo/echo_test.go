package echo

import (
	_c "context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/hive"
	"hive/lib/context"
	"hive/lib/properties"
	"hive/pkg/observation"
	"hive/pkg/quad"
)

func TestRender(t *testing.T) {
	facts := quad.NewContainer(10,
		quad.New(quad.NewIRI("http://ex.org/b"), quad.NewIRI("http://ex.org/p"), quad.NewLiteral("2")),
		quad.New(quad.NewIRI("http://ex.org/a"), quad.NewIRI("http://ex.org/p"), quad.NewLiteral("1")),
	)
	rendered := render(observation.Joined("cross", 0, 10, facts))
	assert.Equal(t, `cross [0,10) 2 facts @10
  <http://ex.org/a> <http://ex.org/p> "1" .
  <http://ex.org/b> <http://ex.org/p> "2" .`, rendered)
}

func TestSink_Batch(t *testing.T) {
	ctx := context.New(_c.Background(), properties.NewFromMap(map[string]any{
		"sink": map[string]any{"echo": map[string]any{"batch": 2, "echo": "debug"}},
	}))
	defer ctx.Cancel()
	s := New().(*sink)
	require.NoError(t, s.Open(ctx.Named("sink.echo")))

	var echoed []string
	s.echoFunc = func(format string, args ...interface{}) {
		echoed = append(echoed, args[0].(string))
	}
	acked := 0
	emit := s.GenerateEmit(ctx)
	for i := 0; i < 3; i++ {
		emit(&hive.Event{
			Message: quad.NewContainer(int64(i)),
			Meta:    map[string]any{hive.MetaStrategy: "merge"},
			Private: map[string]any{hive.PrivateACKHandler: hive.ACKHandler(func() { acked++ })},
		})
	}
	assert.Len(t, echoed, 2)
	assert.Equal(t, 2, acked)

	require.NoError(t, s.Close())
	assert.Len(t, echoed, 3)
	assert.Equal(t, 3, acked)
}
