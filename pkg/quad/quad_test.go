package quad

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Quad
	}{
		{
			name: "triple with plain literal",
			line: `<http://ex.org/s> <http://ex.org/p> "12" .`,
			expected: New(NewIRI("http://ex.org/s"), NewIRI("http://ex.org/p"), NewLiteral("12")),
		},
		{
			name: "quad with typed literal and graph",
			line: `<http://ex.org/s> <http://ex.org/p> "1.5"^^<http://www.w3.org/2001/XMLSchema#double> <http://ex.org/g> .`,
			expected: NewInGraph(NewIRI("http://ex.org/s"), NewIRI("http://ex.org/p"),
				NewTypedLiteral("1.5", "http://www.w3.org/2001/XMLSchema#double"), NewIRI("http://ex.org/g")),
		},
		{
			name:     "blank subject and language literal",
			line:     `_:b0 <http://ex.org/label> "hallo"@de .`,
			expected: New(NewBlank("b0"), NewIRI("http://ex.org/label"), NewLangLiteral("hallo", "de")),
		},
		{
			name:     "escaped literal and trailing comment",
			line:     `<http://ex.org/s> <http://ex.org/p> "a \"b\"\né" . # note`,
			expected: New(NewIRI("http://ex.org/s"), NewIRI("http://ex.org/p"), NewLiteral("a \"b\"\né")),
		},
		{
			name:     "blank object glued to terminator",
			line:     `<http://ex.org/s> <http://ex.org/p> _:x.`,
			expected: New(NewIRI("http://ex.org/s"), NewIRI("http://ex.org/p"), NewBlank("x")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, q)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	lines := []string{
		``,
		`<http://ex.org/s> <http://ex.org/p> "12"`,
		`<http://ex.org/s> <http://ex.org/p> "12 .`,
		`"s" <http://ex.org/p> "12" .`,
		`<http://ex.org/s> _:p "12" .`,
		`<http://ex.org/s> <http://ex.org/p> "12" . extra`,
		`<http://ex.org/s> <http://ex.org/p> 12 .`,
	}
	for _, line := range lines {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrSyntax, line)
	}
}

func TestQuad_StringRoundTrip(t *testing.T) {
	q := NewInGraph(NewIRI("http://ex.org/s"), NewIRI("http://ex.org/p"),
		NewLiteral("tab\there \"quoted\""), NewIRI("http://ex.org/g"))
	parsed, err := Parse(q.String())
	require.NoError(t, err)
	assert.Equal(t, q, parsed)
}

func TestParseAll(t *testing.T) {
	input := strings.Join([]string{
		"# sensor dump",
		`<http://ex.org/s1> <http://ex.org/ts> "1" .`,
		"",
		`<http://ex.org/s2> <http://ex.org/ts> "2" .`,
	}, "\n")
	quads, err := ParseAll(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, quads, 2)

	_, err = ParseAll(strings.NewReader("<http://ex.org/s> <http://ex.org/p> .\n"))
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "line 1")
}

func TestWithoutGraph(t *testing.T) {
	q := NewInGraph(NewIRI("s"), NewIRI("p"), NewLiteral("o"), NewIRI("g"))
	stripped := q.WithoutGraph()
	assert.True(t, stripped.Graph.IsDefaultGraph())
	assert.Equal(t, New(NewIRI("s"), NewIRI("p"), NewLiteral("o")), stripped)
	assert.False(t, q.Graph.IsDefaultGraph())
}

func TestContainer(t *testing.T) {
	a := New(NewIRI("a"), NewIRI("p"), NewLiteral("1"))
	b := New(NewIRI("b"), NewIRI("p"), NewLiteral("2"))

	c := NewContainer(0, b)
	c.Add(a, 10)
	c.Add(New(NewIRI("a"), NewIRI("p"), NewLiteral("1")), 11)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(11), c.Timestamp)
	assert.Equal(t, []Quad{a, b}, c.Quads())
	assert.False(t, c.Insert(a))

	clone := c.Clone()
	clone.Add(New(NewIRI("c"), NewIRI("p"), NewLiteral("3")), 12)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, clone.Len())
	assert.False(t, c.Equal(clone))
	assert.True(t, c.Equal(NewContainer(99, a, b)))

	var empty *Container
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Quads())
}
