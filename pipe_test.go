package html2json_test

import (
	"fmt"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/qretaio/html2json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
		node html2json.Node
		want any
	}{
		{"trim strips surrounding whitespace", "$ | trim", textNode("  x \n"), "x"},
		{"text is an alias for trim", "$ | text", textNode(" x "), "x"},
		{"lower folds to lowercase", "$ | lower", textNode("AbC"), "abc"},
		{"upper folds to uppercase", "$ | upper", textNode("abc"), "ABC"},
		{"title capitalizes words", "$ | title", textNode("hello world"), "Hello World"},
		{"substr slices by offsets", "$ | substr:0:4", textNode("Hello"), "Hell"},
		{"substr counts characters not bytes", "$ | substr:0:2", textNode("héllo"), "hé"},
		{"substr without end runs to the end", "$ | substr:7", textNode("mailto:jane@example.com"), "jane@example.com"},
		{"substr clamps out-of-range offsets", "$ | substr:2:99", textNode("abc"), "c"},
		{"substr start past end yields empty", "$ | substr:4:2", textNode("hello"), ""},
		{"regex returns the first capture group", `$ | regex:\$(\d+\.\d+)`, textNode("Price: $25.99 only"), "25.99"},
		{"regex falls back to the whole match", `$ | regex:\d+`, textNode("abc 123 def"), "123"},
		{"regex without a match resolves to null", `$ | regex:^\d+$`, textNode("abc"), nil},
		{"parseAs int", "$ | parseAs:int", textNode(" 42 "), int64(42)},
		{"parseAs float", "$ | parseAs:float", textNode("19.99"), 19.99},
		{"parseAs number is an alias for float", "$ | parseAs:number", textNode("3"), 3.0},
		{"parseAs failure resolves to null", "$ | parseAs:int", textNode("n/a"), nil},
		{"attr reads an attribute", "$ | attr:href", attrNode("", map[string]string{"href": "https://example.com"}), "https://example.com"},
		{"bare attr implies the scope node", "attr:href", attrNode("", map[string]string{"href": "/about"}), "/about"},
		{"missing attribute resolves to null", "$ | attr:nope", textNode("x"), nil},
		{"void returns raw inner content", "$ | void", contentNode("x", "<b>x</b>"), "<b>x</b>"},
		{"hash fingerprints the value", "$ | hash", textNode("content"), fmt.Sprintf("%x", xxhash.Sum64String("content"))},
		{"chain composes left to right", `$ | regex:\$(\d+\.\d+) | parseAs:float`, textNode("$25.00"), 25.0},
		{"chain failure resolves to null", "$ | parseAs:int | upper", textNode("42"), nil},
		{"empty segments are skipped", "$ | | trim |", textNode(" x "), "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extract(t, tt.node, fmt.Sprintf(`{"v": %q}`, tt.expr))

			assert.Equal(t, map[string]any{"v": tt.want}, got)
		})
	}
}

func TestPipes_InvalidArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		expr string
	}{
		{"unknown pipe", "$ | zap"},
		{"trim takes no argument", "$ | trim:x"},
		{"attr requires a name", "$ | attr"},
		{"void takes no argument", "$ | void:x"},
		{"substr requires offsets", "$ | substr"},
		{"substr rejects a negative start", "$ | substr:-1"},
		{"substr rejects a malformed end", "$ | substr:0:x"},
		{"regex requires a pattern", "$ | regex"},
		{"regex rejects invalid patterns", "$ | regex:("},
		{"parseAs rejects unknown types", "$ | parseAs:bool"},
		{"source pipe must come first", "$ | trim | attr:href"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := html2json.ParseSpecBytes([]byte(fmt.Sprintf(`{"v": %q}`, tt.expr)), nil)

			require.Error(t, err)
			assert.Equal(t, html2json.EINVALID, html2json.ErrorCode(err))
		})
	}
}

func TestRegistry_CustomPipes(t *testing.T) {
	t.Parallel()

	t.Run("custom transform", func(t *testing.T) {
		t.Parallel()

		reg := html2json.DefaultRegistry()
		reg.RegisterTransform("shout", func(arg string) (html2json.Transform, error) {
			if arg != "" {
				return nil, html2json.Errorf(html2json.EINVALID, "takes no argument")
			}
			return func(v any) (any, error) {
				return fmt.Sprintf("%v!", v), nil
			}, nil
		})

		spec, err := html2json.ParseSpecBytes([]byte(`{"v": "$ | shout"}`), reg)
		require.NoError(t, err)

		got, err := html2json.Extract(docFor(textNode("hi")), spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"v": "hi!"}, got)
	})

	t.Run("custom source feeds the chain", func(t *testing.T) {
		t.Parallel()

		reg := html2json.DefaultRegistry()
		reg.RegisterSource("const", func(arg string) (html2json.Source, error) {
			return func(html2json.Node) (any, error) { return arg, nil }, nil
		})

		spec, err := html2json.ParseSpecBytes([]byte(`{"v": "$ | const:x | upper"}`), reg)
		require.NoError(t, err)

		got, err := html2json.Extract(docFor(textNode("ignored")), spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"v": "X"}, got)
	})

	t.Run("registration replaces built-ins", func(t *testing.T) {
		t.Parallel()

		reg := html2json.DefaultRegistry()
		reg.RegisterTransform("trim", func(arg string) (html2json.Transform, error) {
			return func(v any) (any, error) { return "overridden", nil }, nil
		})

		spec, err := html2json.ParseSpecBytes([]byte(`{"v": "$ | trim"}`), reg)
		require.NoError(t, err)

		got, err := html2json.Extract(docFor(textNode(" x ")), spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"v": "overridden"}, got)
	})

	t.Run("default registry is fresh per call", func(t *testing.T) {
		t.Parallel()

		reg := html2json.DefaultRegistry()
		reg.RegisterTransform("custom", func(arg string) (html2json.Transform, error) {
			return func(v any) (any, error) { return v, nil }, nil
		})

		_, err := html2json.ParseSpecBytes([]byte(`{"v": "$ | custom"}`), html2json.DefaultRegistry())
		require.Error(t, err)
		assert.Equal(t, html2json.EINVALID, html2json.ErrorCode(err))
	})
}
