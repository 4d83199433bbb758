// Package editor models the parts of the browser text editor the locator needs:
// position to offset conversion and the token under the cursor.
package editor

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/shyptr/graphiql/locator"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/lexer"
)

// Position is a zero based editor coordinate. Ch counts UTF-16 code units, as
// CodeMirror does.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Token is a run of text on a single line, in rune columns [Start, End).
type Token struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	String string `json:"string"`
}

// Buffer is an immutable snapshot of the editor contents.
type Buffer struct {
	lines      [][]rune
	lineStarts []int
	tokens     map[int][]Token
}

func NewBuffer(text string) *Buffer {
	b := &Buffer{}
	runes := []rune(text)
	start := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != '\n' && runes[i] != '\r' {
			continue
		}
		b.lines = append(b.lines, runes[start:i])
		b.lineStarts = append(b.lineStarts, start)
		if i+1 < len(runes) && runes[i] == '\r' && runes[i+1] == '\n' {
			i++
		}
		start = i + 1
	}
	b.tokens = b.lexLines(text)
	return b
}

// clip returns pos as a line and a rune column inside the document.
func (b *Buffer) clip(pos Position) (line, col int) {
	if pos.Line < 0 {
		return 0, 0
	}
	if last := len(b.lines) - 1; pos.Line > last {
		return last, len(b.lines[last])
	}
	return pos.Line, runeColumn(b.lines[pos.Line], pos.Ch)
}

// runeColumn converts a UTF-16 column to a rune column, clipped to the line. A
// column inside a surrogate pair rounds up to the next rune.
func runeColumn(line []rune, ch int) int {
	units := 0
	for i, r := range line {
		if units >= ch {
			return i
		}
		units += utf16.RuneLen(r)
	}
	return len(line)
}

// IndexFromPosition converts an editor position to a rune offset, clipping the
// position to the document first.
func (b *Buffer) IndexFromPosition(pos Position) int {
	line, col := b.clip(pos)
	return b.lineStarts[line] + col
}

// TokenAt returns the token that ends at or contains the cursor: Start < col <= End
// in rune columns. At the start of a line, or when nothing matches, an empty
// token at the cursor is returned.
func (b *Buffer) TokenAt(pos Position) Token {
	line, col := b.clip(pos)
	return b.tokenAt(line, col)
}

func (b *Buffer) tokenAt(line, col int) Token {
	text := b.lines[line]
	tokens := b.tokens[line]
	if b.tokens == nil {
		tokens = scanLine(text)
	}
	for _, tok := range fillGaps(tokens, text) {
		if tok.Start < col && col <= tok.End {
			return tok
		}
	}
	return Token{Start: col, End: col}
}

// CursorRange is the offset range of the token under pos.
func (b *Buffer) CursorRange(pos Position) locator.Range {
	line, col := b.clip(pos)
	tok := b.tokenAt(line, col)
	return locator.Range{
		Start: b.lineStarts[line] + tok.Start,
		End:   b.lineStarts[line] + tok.End,
	}
}

// lexLines groups the GraphQL tokens of text by zero based line, placing them by
// their rune offsets. It returns nil when text does not lex, which happens while
// the user is still typing.
func (b *Buffer) lexLines(text string) map[int][]Token {
	lex := lexer.New(&ast.Source{Input: text})
	lines := map[int][]Token{}
	for {
		tok, err := lex.ReadToken()
		if err != nil {
			return nil
		}
		if tok.Kind == lexer.EOF {
			return lines
		}
		line := sort.SearchInts(b.lineStarts, tok.Pos.Start+1) - 1
		start := tok.Pos.Start - b.lineStarts[line]
		lines[line] = append(lines[line], Token{
			Start: start,
			End:   start + tok.Pos.End - tok.Pos.Start,
		})
	}
}

// fillGaps clamps tokens to the line, fills in their text and adds whitespace
// tokens for the runs between them.
func fillGaps(tokens []Token, line []rune) []Token {
	var out []Token
	col := 0
	for _, tok := range tokens {
		if tok.Start >= len(line) {
			break
		}
		if tok.End > len(line) {
			tok.End = len(line)
		}
		if tok.Start > col {
			out = append(out, Token{Start: col, End: tok.Start, String: string(line[col:tok.Start])})
		}
		tok.String = string(line[tok.Start:tok.End])
		out = append(out, tok)
		col = tok.End
	}
	if col < len(line) {
		out = append(out, Token{Start: col, End: len(line), String: string(line[col:])})
	}
	return out
}

type class int

const (
	classSpace class = iota
	classWord
	classPunct
)

func classOf(r rune) class {
	switch {
	case r == ' ' || r == '\t' || r == ',' || r == '\r' || r == utf8.RuneError:
		return classSpace
	case r == '_' || r == '$' || r == '@' || r == '-' ||
		'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9':
		return classWord
	default:
		return classPunct
	}
}

// scanLine splits a line that the GraphQL lexer rejected into words, single
// punctuation marks and the spread operator.
func scanLine(line []rune) []Token {
	var tokens []Token
	for i := 0; i < len(line); {
		c := classOf(line[i])
		j := i + 1
		switch {
		case c == classWord:
			for j < len(line) && classOf(line[j]) == classWord {
				j++
			}
		case line[i] == '.' && i+2 < len(line) && line[i+1] == '.' && line[i+2] == '.':
			j = i + 3
		case c == classSpace:
			for j < len(line) && classOf(line[j]) == classSpace {
				j++
			}
			i = j
			continue
		}
		tokens = append(tokens, Token{Start: i, End: j})
		i = j
	}
	return tokens
}
