package spooldir

import (
	_c "context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/hive"
	"hive/lib/context"
	"hive/lib/properties"
	"hive/pkg/observation"
)

const temperature = `<http://ex.org/sensor/1> <http://ex.org/temperature> "1000" .
# sensor restarted
<http://ex.org/sensor/1> <http://ex.org/temperature> "2000" <http://ex.org/g> .
<http://ex.org/sensor/1> <http://ex.org/temperature> "later" .
`

func TestSpooldir(t *testing.T) {
	scan, backup := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(scan, "temperature.nq"), []byte(temperature), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(scan, "ignored.txt"), []byte(temperature), 0o644))

	ctx := context.New(_c.Background(), properties.NewFromMap(map[string]any{
		"source": map[string]any{"files": map[string]any{"scan": scan, "backup": backup}},
	}))
	s := New().(*source)
	filesCtx := ctx.Named("source.files")
	_, err := properties.InitAndRender(filesCtx.Properties(), s.PropertiesDef())
	require.NoError(t, err)
	require.NoError(t, s.Open(filesCtx))

	var (
		mutex  sync.Mutex
		events []*hive.Event
		done   = make(chan error)
	)
	go func() {
		done <- s.Collect(func(event *hive.Event, _ hive.ACKHandler) {
			mutex.Lock()
			defer mutex.Unlock()
			events = append(events, event)
		})
	}()

	assert.Eventually(t, func() bool {
		backups, _ := os.ReadDir(backup)
		return len(backups) == 1
	}, 5*time.Second, 10*time.Millisecond)
	ctx.Cancel()
	require.NoError(t, <-done)
	require.NoError(t, s.Close())

	mutex.Lock()
	defer mutex.Unlock()
	require.Len(t, events, 2)
	stream, q, ts, err := observation.From(events[1])
	require.NoError(t, err)
	assert.Equal(t, "temperature", stream)
	assert.Equal(t, int64(2000), ts)
	assert.Equal(t, "http://ex.org/g", q.Graph.Value)

	_, err = os.Stat(filepath.Join(scan, "ignored.txt"))
	assert.NoError(t, err)
}

func TestSnapshotRestore(t *testing.T) {
	s := &source{}
	s.state.Store(Identify{Device: 1, Inode: 42}, int64(128))
	snapshot, err := s.Snapshot()
	require.NoError(t, err)

	restored := &source{}
	require.NoError(t, restored.Restore(snapshot))
	offset, ok := restored.state.Load(Identify{Device: 1, Inode: 42})
	assert.True(t, ok)
	assert.Equal(t, int64(128), offset)
}
