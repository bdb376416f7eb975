// Package parser assembles a lexer token sequence into a Pipeline:
// an ordered command list, per-command redirections, and a
// background flag.
package parser

import (
	"fmt"

	"github.com/Armaan1620/jobshell/internal/lexer"
)

// Command is one stage of a pipeline: argv plus optional redirections.
// A Command is owned by its enclosing Pipeline.
type Command struct {
	Argv       []string
	InFile     string // "" if no input redirection
	OutFile    string // "" if no output redirection
	AppendMode bool
}

// HasInput reports whether this command redirects stdin from a file.
func (c *Command) HasInput() bool { return c.InFile != "" }

// HasOutput reports whether this command redirects stdout to a file.
func (c *Command) HasOutput() bool { return c.OutFile != "" }

// Pipeline is a non-empty ordered sequence of Commands plus the
// trailing background flag.
type Pipeline struct {
	Commands   []*Command
	Background bool
}

// IsSingleCommand reports whether this pipeline has exactly one
// command — the precondition spec.md §4.3 and §4.7 step 8 require
// before a builtin may be considered for in-shell dispatch.
// Redirection does not disqualify a command: per spec.md §4.3, cd,
// exit, fg, and bg must dispatch in-shell even with redirection
// present, since forking would defeat their purpose, and the in-shell
// dispatcher simply leaves that redirection unapplied.
func (p *Pipeline) IsSingleCommand() bool {
	return len(p.Commands) == 1
}

// Error reports a parse failure at the grammar level (as opposed to a
// lexer.Error at the tokenization level).
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Parse tokenizes and parses a raw line into a Pipeline.
func Parse(line string) (*Pipeline, error) {
	toks, err := lexer.Lex(line)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-lexed token sequence. The REPL lexes
// and parses in two steps through it; Parse does both in one call.
func ParseTokens(toks []lexer.Token) (*Pipeline, error) {
	pipeline := &Pipeline{}
	cur := &Command{}
	afterPipe := false
	pushCurrent := func() bool {
		empty := len(cur.Argv) == 0 && !cur.HasInput() && !cur.HasOutput()
		return !empty
	}

	i := 0
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case lexer.Word:
			cur.Argv = append(cur.Argv, t.Text)
			afterPipe = false
			i++

		case lexer.Pipe:
			if len(cur.Argv) == 0 {
				return nil, &Error{Msg: "expected command before '|'"}
			}
			pipeline.Commands = append(pipeline.Commands, cur)
			cur = &Command{}
			afterPipe = true
			i++

		case lexer.RedirIn:
			if i+1 >= len(toks) || toks[i+1].Kind != lexer.Word {
				return nil, &Error{Msg: "expected file after '<'"}
			}
			cur.InFile = toks[i+1].Text
			i += 2

		case lexer.RedirOut:
			if i+1 >= len(toks) || toks[i+1].Kind != lexer.Word {
				return nil, &Error{Msg: "expected file after '>'"}
			}
			cur.OutFile = toks[i+1].Text
			cur.AppendMode = false
			i += 2

		case lexer.RedirAppend:
			if i+1 >= len(toks) || toks[i+1].Kind != lexer.Word {
				return nil, &Error{Msg: "expected file after '>>'"}
			}
			cur.OutFile = toks[i+1].Text
			cur.AppendMode = true
			i += 2

		case lexer.Background:
			if i != len(toks)-1 {
				return nil, &Error{Msg: "'&' must be the last token"}
			}
			pipeline.Background = true
			i++

		default:
			return nil, &Error{Msg: fmt.Sprintf("unexpected token %q", t.Text)}
		}
	}

	if pushCurrent() {
		pipeline.Commands = append(pipeline.Commands, cur)
	} else if afterPipe {
		return nil, &Error{Msg: "expected command after '|'"}
	} else if len(pipeline.Commands) == 0 {
		return nil, &Error{Msg: "empty command"}
	}

	if len(pipeline.Commands) == 0 {
		return nil, &Error{Msg: "empty pipeline"}
	}
	for _, c := range pipeline.Commands {
		if len(c.Argv) == 0 {
			return nil, &Error{Msg: "command has no arguments"}
		}
	}

	return pipeline, nil
}

// String renders a canonical representation of the pipeline, stable
// under repeated parse/serialize cycles.
func (p *Pipeline) String() string {
	s := ""
	for i, c := range p.Commands {
		if i > 0 {
			s += " | "
		}
		for j, a := range c.Argv {
			if j > 0 {
				s += " "
			}
			s += a
		}
		if c.HasInput() {
			s += fmt.Sprintf(" < %s", c.InFile)
		}
		if c.HasOutput() {
			op := ">"
			if c.AppendMode {
				op = ">>"
			}
			s += fmt.Sprintf(" %s %s", op, c.OutFile)
		}
	}
	if p.Background {
		s += " &"
	}
	return s
}
