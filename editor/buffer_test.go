package editor_test

import (
	"testing"

	"github.com/shyptr/graphiql/editor"
	"github.com/shyptr/graphiql/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFromPosition(t *testing.T) {
	b := editor.NewBuffer("ab\ncd")
	assert.Equal(t, 0, b.IndexFromPosition(editor.Position{}))
	assert.Equal(t, 4, b.IndexFromPosition(editor.Position{Line: 1, Ch: 1}))

	t.Run("clips positions", func(t *testing.T) {
		assert.Equal(t, 2, b.IndexFromPosition(editor.Position{Line: 0, Ch: 10}))
		assert.Equal(t, 5, b.IndexFromPosition(editor.Position{Line: 5, Ch: 0}))
		assert.Equal(t, 0, b.IndexFromPosition(editor.Position{Line: -1, Ch: 3}))
		assert.Equal(t, 3, b.IndexFromPosition(editor.Position{Line: 1, Ch: -2}))
	})

	t.Run("counts runes", func(t *testing.T) {
		b := editor.NewBuffer("é\nü x")
		assert.Equal(t, 4, b.IndexFromPosition(editor.Position{Line: 1, Ch: 2}))
	})

	t.Run("columns are utf-16 code units", func(t *testing.T) {
		b := editor.NewBuffer("a😀b\nc")
		assert.Equal(t, 1, b.IndexFromPosition(editor.Position{Ch: 1}))
		assert.Equal(t, 2, b.IndexFromPosition(editor.Position{Ch: 2}))
		assert.Equal(t, 2, b.IndexFromPosition(editor.Position{Ch: 3}))
		assert.Equal(t, 3, b.IndexFromPosition(editor.Position{Ch: 4}))
		assert.Equal(t, 5, b.IndexFromPosition(editor.Position{Line: 1, Ch: 1}))
	})

	t.Run("every line break style", func(t *testing.T) {
		b := editor.NewBuffer("ab\r\ncd\ref\ngh")
		assert.Equal(t, 4, b.IndexFromPosition(editor.Position{Line: 1}))
		assert.Equal(t, 7, b.IndexFromPosition(editor.Position{Line: 2}))
		assert.Equal(t, 11, b.IndexFromPosition(editor.Position{Line: 3, Ch: 1}))
		assert.Equal(t, 6, b.IndexFromPosition(editor.Position{Line: 1, Ch: 9}))
	})
}

func TestTokenAt(t *testing.T) {
	b := editor.NewBuffer("query A { xyz }")

	cases := []struct {
		ch   int
		want editor.Token
	}{
		{0, editor.Token{Start: 0, End: 0}},
		{3, editor.Token{Start: 0, End: 5, String: "query"}},
		{5, editor.Token{Start: 0, End: 5, String: "query"}},
		{10, editor.Token{Start: 9, End: 10, String: " "}},
		{11, editor.Token{Start: 10, End: 13, String: "xyz"}},
		{13, editor.Token{Start: 10, End: 13, String: "xyz"}},
		{15, editor.Token{Start: 14, End: 15, String: "}"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, b.TokenAt(editor.Position{Ch: c.ch}), "ch %d", c.ch)
	}

	t.Run("spread is one token", func(t *testing.T) {
		b := editor.NewBuffer("{ ...F }")
		assert.Equal(t, editor.Token{Start: 2, End: 5, String: "..."}, b.TokenAt(editor.Position{Ch: 4}))
	})

	t.Run("falls back when the text does not lex", func(t *testing.T) {
		b := editor.NewBuffer("query A { x ~ }")
		assert.Equal(t, editor.Token{Start: 10, End: 11, String: "x"}, b.TokenAt(editor.Position{Ch: 11}))
		assert.Equal(t, editor.Token{Start: 12, End: 13, String: "~"}, b.TokenAt(editor.Position{Ch: 13}))
	})
}

func TestCursorRange(t *testing.T) {
	text := "query A { x }\nquery B {\n  yy\n}"
	b := editor.NewBuffer(text)

	r := b.CursorRange(editor.Position{Line: 2, Ch: 3})
	assert.Equal(t, locator.Range{Start: 26, End: 28}, r)

	anchor, err := locator.Locate(text, r)
	require.NoError(t, err)
	assert.Equal(t, "query-B", anchor.String())

	t.Run("first line", func(t *testing.T) {
		anchor, err := locator.Locate(text, b.CursorRange(editor.Position{Line: 0, Ch: 11}))
		require.NoError(t, err)
		assert.Equal(t, "query-A", anchor.String())
	})
}

func TestCursorRangeUTF16(t *testing.T) {
	text := `query A { f(s: "😀😀") }query B { y }`
	b := editor.NewBuffer(text)

	// CodeMirror reports the column after A's closing brace as 24: each emoji is two units.
	r := b.CursorRange(editor.Position{Ch: 24})
	assert.Equal(t, locator.Range{Start: 21, End: 22}, r)

	anchor, err := locator.Locate(text, r)
	require.NoError(t, err)
	assert.Equal(t, "query-A", anchor.String())
}

func TestCursorRangeCarriageReturn(t *testing.T) {
	for _, text := range []string{"query A { x }\rquery B { yy }", "query A { x }\r\nquery B { yy }"} {
		b := editor.NewBuffer(text)
		assert.Equal(t, editor.Token{Start: 10, End: 12, String: "yy"}, b.TokenAt(editor.Position{Line: 1, Ch: 11}), "%q", text)

		anchor, err := locator.Locate(text, b.CursorRange(editor.Position{Line: 1, Ch: 11}))
		require.NoError(t, err, "%q", text)
		assert.Equal(t, "query-B", anchor.String())
	}
}
