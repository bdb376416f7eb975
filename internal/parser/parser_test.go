package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimplePipeline(t *testing.T) {
	p, err := Parse("ls | grep go | wc -l")
	require.NoError(t, err)
	require.Len(t, p.Commands, 3)
	assert.Equal(t, []string{"ls"}, p.Commands[0].Argv)
	assert.Equal(t, []string{"grep", "go"}, p.Commands[1].Argv)
	assert.Equal(t, []string{"wc", "-l"}, p.Commands[2].Argv)
	assert.False(t, p.Background)
}

func TestParseBackgroundFlag(t *testing.T) {
	p, err := Parse("sleep 5 &")
	require.NoError(t, err)
	assert.True(t, p.Background)
	assert.Equal(t, []string{"sleep", "5"}, p.Commands[0].Argv)
}

func TestParseRedirections(t *testing.T) {
	p, err := Parse("sort < in.txt > out.txt")
	require.NoError(t, err)
	require.Len(t, p.Commands, 1)
	c := p.Commands[0]
	assert.Equal(t, "in.txt", c.InFile)
	assert.Equal(t, "out.txt", c.OutFile)
	assert.False(t, c.AppendMode)
}

func TestParseAppendRedirection(t *testing.T) {
	p, err := Parse("cat >> log.txt")
	require.NoError(t, err)
	assert.Equal(t, "log.txt", p.Commands[0].OutFile)
	assert.True(t, p.Commands[0].AppendMode)
}

func TestParseLastRedirectionWins(t *testing.T) {
	p, err := Parse("cat > a.txt > b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", p.Commands[0].OutFile)
}

func TestParseEmptyPipeSegmentIsError(t *testing.T) {
	_, err := Parse("cmd | | cmd")
	assert.Error(t, err)
}

func TestParseDanglingRedirectionIsError(t *testing.T) {
	_, err := Parse("cmd >")
	assert.Error(t, err)
}

func TestParseLeadingBackgroundIsError(t *testing.T) {
	_, err := Parse("& cmd")
	assert.Error(t, err)
}

func TestParseTrailingPipeIsError(t *testing.T) {
	_, err := Parse("cmd |")
	assert.Error(t, err)
}

func TestParseBackgroundOnlyLineIsError(t *testing.T) {
	_, err := Parse("&")
	assert.Error(t, err)
}

func TestParseEmptyTokenSequenceIsError(t *testing.T) {
	// The REPL itself short-circuits on an empty line before ever
	// calling Parse (spec step: "If empty, continue"); Parse still
	// rejects an empty pipeline defensively.
	_, err := Parse("")
	assert.Error(t, err)
}

func TestIsSingleCommand(t *testing.T) {
	p, err := Parse("cd /tmp")
	require.NoError(t, err)
	assert.True(t, p.IsSingleCommand())

	// Redirection does not disqualify a single command: cd/exit/fg/bg
	// must still be eligible for in-shell dispatch with it present.
	p, err = Parse("cd /tmp > out.txt")
	require.NoError(t, err)
	assert.True(t, p.IsSingleCommand())

	p, err = Parse("ls | wc -l")
	require.NoError(t, err)
	assert.False(t, p.IsSingleCommand())
}

func TestStringIsStableAcrossReparse(t *testing.T) {
	p1, err := Parse("ls -la | grep go > out.txt")
	require.NoError(t, err)
	s1 := p1.String()

	p2, err := Parse(s1)
	require.NoError(t, err)
	s2 := p2.String()

	assert.Equal(t, s1, s2)
}
