package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestLexWhitespaceInsensitive(t *testing.T) {
	a, err := Lex("cmd a b c")
	require.NoError(t, err)
	b, err := Lex("cmd   a  b  c")
	require.NoError(t, err)
	assert.Equal(t, words(a), words(b))
}

func TestLexQuotingStripsQuotes(t *testing.T) {
	toks, err := Lex(`echo 'hello world' "foo bar"`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "echo", toks[0].Text)
	assert.Equal(t, "hello world", toks[1].Text)
	assert.Equal(t, "foo bar", toks[2].Text)
}

func TestLexOperators(t *testing.T) {
	toks, err := Lex("ls | wc -l > out.txt &")
	require.NoError(t, err)
	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []Kind{Word, Pipe, Word, Word, RedirOut, Word, Background}, kinds)
	assert.Equal(t, "word(ls) pipe(|) word(wc) word(-l) redir_out(>) word(out.txt) background(&)", String(toks))
}

func TestLexAppendOperatorCollapses(t *testing.T) {
	toks, err := Lex("echo hi >> out.txt")
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, RedirAppend, toks[2].Kind)
	assert.Equal(t, ">>", toks[2].Text)
}

func TestLexUnterminatedSingleQuote(t *testing.T) {
	_, err := Lex("echo 'unterminated")
	require.Error(t, err)
}

func TestLexUnterminatedDoubleQuote(t *testing.T) {
	_, err := Lex(`echo "unterminated`)
	require.Error(t, err)
}

func TestLexEmptyLine(t *testing.T) {
	toks, err := Lex("")
	require.NoError(t, err)
	assert.Empty(t, toks)
}
