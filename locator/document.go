package locator

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/lexer"
	"github.com/vektah/gqlparser/v2/parser"
)

// Span is a half-open interval [Start, End) of rune offsets into a query document.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether r lies entirely inside the span. Partial overlap does not count.
func (s Span) Contains(r Range) bool {
	return s.Start <= r.Start && s.End >= r.End
}

// Definition is a top-level block of a query document. It is implemented only by
// *OperationDefinition and *FragmentDefinition.
type Definition interface {
	isDefinition()
	// Location returns the source span of the definition, or nil if none is known.
	Location() *Span
}

type OperationDefinition struct {
	Operation ast.Operation
	Name      string
	Span      *Span
}

func (*OperationDefinition) isDefinition() {}

func (d *OperationDefinition) Location() *Span { return d.Span }

type FragmentDefinition struct {
	Name string
	Span *Span
}

func (*FragmentDefinition) isDefinition() {}

func (d *FragmentDefinition) Location() *Span { return d.Span }

var _ Definition = (*OperationDefinition)(nil)
var _ Definition = (*FragmentDefinition)(nil)

// Document is a parsed query document. Definitions are kept in the order they
// appear in the source text, operations and fragments interleaved.
type Document struct {
	Definitions []Definition
}

// Parse parses text into a Document. Every call parses afresh.
func Parse(text string) (*Document, error) {
	src := &ast.Source{Name: "query", Input: text}
	query, err := parser.ParseQuery(src)
	if err != nil {
		return nil, newParseError(err)
	}

	starts := map[int]bool{}
	for _, op := range query.Operations {
		if op.Position != nil {
			starts[op.Position.Start] = true
		}
	}
	for _, frag := range query.Fragments {
		if frag.Position != nil {
			starts[frag.Position.Start] = true
		}
	}
	spans, err := blockSpans(src, starts)
	if err != nil {
		return nil, newParseError(err)
	}

	type positioned struct {
		def   Definition
		start int
	}
	var defs []positioned
	for _, op := range query.Operations {
		d := &OperationDefinition{Operation: op.Operation, Name: op.Name}
		start := -1
		if op.Position != nil {
			start = op.Position.Start
			d.Span = spans[start]
		}
		defs = append(defs, positioned{def: d, start: start})
	}
	for _, frag := range query.Fragments {
		d := &FragmentDefinition{Name: frag.Name}
		start := -1
		if frag.Position != nil {
			start = frag.Position.Start
			d.Span = spans[start]
		}
		defs = append(defs, positioned{def: d, start: start})
	}
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].start < defs[j].start
	})

	doc := &Document{Definitions: make([]Definition, 0, len(defs))}
	for _, p := range defs {
		doc.Definitions = append(doc.Definitions, p.def)
	}
	return doc, nil
}

// blockSpans lexes the source and returns the span of every top-level block whose
// first token starts at one of the given offsets. A block closes on the brace that
// brings the brace depth back to zero outside of any parentheses, so object values
// in variable defaults or directive arguments stay inside the block. Tokens between
// blocks (comments) are ignored.
func blockSpans(src *ast.Source, starts map[int]bool) (map[int]*Span, error) {
	spans := map[int]*Span{}
	lex := lexer.New(src)

	var current *Span
	braces, parens := 0, 0
	for {
		tok, err := lex.ReadToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == lexer.EOF {
			break
		}
		if current == nil {
			if !starts[tok.Pos.Start] {
				continue
			}
			current = &Span{Start: tok.Pos.Start}
		}
		switch tok.Kind {
		case lexer.ParenL:
			parens++
		case lexer.ParenR:
			parens--
		case lexer.BraceL:
			braces++
		case lexer.BraceR:
			braces--
			if braces == 0 && parens == 0 {
				current.End = tok.Pos.End
				spans[current.Start] = current
				current = nil
			}
		}
	}
	return spans, nil
}
