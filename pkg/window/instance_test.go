package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstance_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Instance
		expected bool
	}{
		{"partial overlap", NewInstance(0, 10), NewInstance(5, 15), true},
		{"contained", NewInstance(0, 20), NewInstance(5, 10), true},
		{"identical", NewInstance(0, 10), NewInstance(0, 10), true},
		{"touching boundaries", NewInstance(0, 10), NewInstance(10, 20), false},
		{"disjoint", NewInstance(0, 5), NewInstance(10, 15), false},
		{"one millisecond shared", NewInstance(0, 11), NewInstance(10, 20), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.a.Overlaps(tt.b), tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestInstance(t *testing.T) {
	i := NewInstance(5, 15)
	assert.Equal(t, int64(10), i.Width())
	assert.True(t, i.Valid())
	assert.False(t, NewInstance(5, 5).Valid())
	assert.True(t, i.Contains(5))
	assert.False(t, i.Contains(15))
	assert.Equal(t, "[5,15)", i.String())
	assert.Equal(t, NewInstance(5, 15), i)
}
