package locator

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// rangeOf returns the rune range of the first occurrence of token in text.
func rangeOf(t *testing.T, text, token string) Range {
	t.Helper()
	i := strings.Index(text, token)
	require.GreaterOrEqual(t, i, 0, "token %q not in text", token)
	start := utf8.RuneCountInString(text[:i])
	return Range{Start: start, End: start + utf8.RuneCountInString(token)}
}

func TestLocate(t *testing.T) {
	t.Run("picks the second query", func(t *testing.T) {
		text := "query A { x } query B { y }"
		anchor, err := Locate(text, rangeOf(t, text, "y"))
		require.NoError(t, err)
		assert.Equal(t, "query-B", anchor.String())
	})

	t.Run("whole selection set of the second query", func(t *testing.T) {
		text := "query A { x } query B { y }"
		anchor, err := Locate(text, rangeOf(t, text, "{ y }"))
		require.NoError(t, err)
		assert.Equal(t, "query-B", anchor.String())
	})

	t.Run("fragment", func(t *testing.T) {
		text := "fragment F on T { z }"
		anchor, err := Locate(text, rangeOf(t, text, "z"))
		require.NoError(t, err)
		assert.Equal(t, "fragment-F", anchor.String())
		assert.Equal(t, ".graphiql-explorer-root #fragment-F", anchor.Selector())
	})

	t.Run("anonymous query", func(t *testing.T) {
		text := "{ a }"
		anchor, err := Locate(text, rangeOf(t, text, "a"))
		require.NoError(t, err)
		assert.Equal(t, Anchor{Kind: KindQuery, Name: "unknown"}, anchor)
		assert.Equal(t, "query-unknown", anchor.String())
	})

	t.Run("anonymous query with keyword", func(t *testing.T) {
		text := "query { a }"
		anchor, err := Locate(text, rangeOf(t, text, "a"))
		require.NoError(t, err)
		assert.Equal(t, "query-unknown", anchor.String())
	})

	t.Run("named mutation", func(t *testing.T) {
		text := "mutation M { m }"
		anchor, err := Locate(text, rangeOf(t, text, "m }"))
		require.NoError(t, err)
		assert.Equal(t, "mutation-M", anchor.String())
	})

	t.Run("subscription on its keyword", func(t *testing.T) {
		text := "subscription S { s }"
		anchor, err := Locate(text, rangeOf(t, text, "subscription"))
		require.NoError(t, err)
		assert.Equal(t, "subscription-S", anchor.String())
	})

	t.Run("whitespace between definitions", func(t *testing.T) {
		text := "query A { x } query B { y }"
		_, err := Locate(text, Range{Start: 13, End: 14})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("range straddling two definitions", func(t *testing.T) {
		text := "query A { x } query B { y }"
		r := Range{Start: rangeOf(t, text, "x").Start, End: rangeOf(t, text, "y").End}
		_, err := Locate(text, r)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("range past the end of the document", func(t *testing.T) {
		text := "query A { x }"
		_, err := Locate(text, Range{Start: 40, End: 41})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := Locate("query A { x ", Range{Start: 10, End: 11})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		require.NotNil(t, parseErr.GQLError())
		assert.NotEmpty(t, parseErr.GQLError().Locations)
	})

	t.Run("unbalanced braces", func(t *testing.T) {
		_, err := Locate("query A { x } }", Range{Start: 10, End: 11})
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := Locate("", Range{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := Locate("{ a }", Range{Start: 3, End: 2})
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("idempotent", func(t *testing.T) {
		text := "query A { x } fragment F on T { z }"
		r := rangeOf(t, text, "z")
		first, err1 := Locate(text, r)
		second, err2 := Locate(text, r)
		assert.Equal(t, first, second)
		assert.Equal(t, err1, err2)
		assert.Equal(t, "fragment-F", first.String())
	})
}

func TestLocateEveryDefinition(t *testing.T) {
	text := `# header comment
query First($id: ID = "1", $filter: Filter = {name: "x", tags: ["a"]}) @cached(opts: {ttl: 5}) {
  node(id: $id) { id ...Parts }
}

fragment Parts on Node {
  id
  ... on User { name }
}

# between
mutation Second { update(input: {id: 1}) { id } }
subscription Third { events { id } }
{ anonymous }
`
	cases := []struct {
		token string
		want  string
	}{
		{"First", "query-First"},
		{"$filter", "query-First"},
		{"ttl", "query-First"},
		{"node", "query-First"},
		{"Parts }", "query-First"},
		{"on Node", "fragment-Parts"},
		{"User", "fragment-Parts"},
		{"update", "mutation-Second"},
		{"events", "subscription-Third"},
		{"anonymous", "query-unknown"},
	}
	for _, c := range cases {
		t.Run(c.token, func(t *testing.T) {
			anchor, err := Locate(text, rangeOf(t, text, c.token))
			require.NoError(t, err)
			assert.Equal(t, c.want, anchor.String())
		})
	}

	t.Run("comments are outside every definition", func(t *testing.T) {
		for _, comment := range []string{"# header comment", "# between"} {
			_, err := Locate(text, rangeOf(t, text, comment))
			assert.ErrorIs(t, err, ErrNotFound, comment)
		}
	})
}

func TestLocateRuneOffsets(t *testing.T) {
	text := "query A { f(s: \"ünïcødé\") } query B { y }"
	anchor, err := Locate(text, rangeOf(t, text, "y"))
	require.NoError(t, err)
	assert.Equal(t, "query-B", anchor.String())
}

func TestParse(t *testing.T) {
	t.Run("keeps document order", func(t *testing.T) {
		doc, err := Parse("fragment F on T { a } query Q { ...F } fragment G on T { b } mutation M { c }")
		require.NoError(t, err)
		var anchors []string
		for _, def := range doc.Definitions {
			anchors = append(anchors, AnchorFor(def).String())
		}
		assert.Equal(t, []string{"fragment-F", "query-Q", "fragment-G", "mutation-M"}, anchors)
	})

	t.Run("spans are disjoint and cover each block", func(t *testing.T) {
		text := "query A { x }\n\nquery B { y { z } }"
		doc, err := Parse(text)
		require.NoError(t, err)
		require.Len(t, doc.Definitions, 2)
		assert.Equal(t, &Span{Start: 0, End: 13}, doc.Definitions[0].Location())
		assert.Equal(t, &Span{Start: 15, End: utf8.RuneCountInString(text)}, doc.Definitions[1].Location())
	})
}

type syntheticDefinition struct{}

func (syntheticDefinition) isDefinition() {}

func (syntheticDefinition) Location() *Span { return &Span{Start: 0, End: 100} }

func TestFind(t *testing.T) {
	t.Run("skips definitions without location", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		l := New(zap.New(core))
		doc := &Document{Definitions: []Definition{
			&OperationDefinition{Operation: ast.Query, Name: "Synthetic"},
			&FragmentDefinition{Name: "F", Span: &Span{Start: 0, End: 10}},
		}}
		def, err := l.find(doc, Range{Start: 2, End: 3})
		require.NoError(t, err)
		assert.Equal(t, "fragment-F", AnchorFor(def).String())
		require.Equal(t, 1, logs.FilterMessage("missing location information for definition").Len())
	})

	t.Run("nothing located", func(t *testing.T) {
		doc := &Document{Definitions: []Definition{&FragmentDefinition{Name: "F"}}}
		_, err := doc.Find(Range{Start: 0, End: 1})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown definition shape", func(t *testing.T) {
		doc := &Document{Definitions: []Definition{syntheticDefinition{}}}
		def, err := doc.Find(Range{Start: 1, End: 2})
		require.NoError(t, err)
		assert.Equal(t, "unknown-unknown", AnchorFor(def).String())
	})
}
