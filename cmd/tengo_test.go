package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/d5/tengo/v2/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/pkg/quad"
)

func TestRunTimestamp(t *testing.T) {
	in := strings.NewReader(`<http://ex.org/a> <http://ex.org/at> "2" .
<http://ex.org/b> <http://ex.org/at> <http://ex.org/x> .
`)
	out := &bytes.Buffer{}
	script := `if is_string(quad.object) && quad.literal { timestamp = int(quad.object) * 1000 }`
	require.NoError(t, runTimestamp(script, in, out))
	assert.Equal(t, "2000\t<http://ex.org/a> <http://ex.org/at> \"2\" .\n"+
		"<undefined>\t<http://ex.org/b> <http://ex.org/at> <http://ex.org/x> .\n", out.String())
}

func TestRunTimestamp_CompileError(t *testing.T) {
	assert.Error(t, runTimestamp("timestamp = ", strings.NewReader(""), &bytes.Buffer{}))
}

func TestREPL_BindsQuad(t *testing.T) {
	sample, err := quad.Parse(sampleQuad)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	r, err := newREPL(stdlib.GetModuleMap(stdlib.AllModuleNames()...), sample, out)
	require.NoError(t, err)

	r.run(strings.NewReader("int(quad.object) * 2\nquad.literal\nx := quad.graph\nx +\nquad.missing\n"))
	lines := strings.Split(out.String(), replPrompt)
	require.Len(t, lines, 7)
	assert.Equal(t, "42\n", lines[1])
	assert.Equal(t, "true\n", lines[2])
	assert.Equal(t, "https://rsp.js/left\n", lines[3])
	assert.NotEmpty(t, lines[4])
	assert.Equal(t, "<undefined>\n", lines[5])
	assert.Empty(t, lines[6])
}
