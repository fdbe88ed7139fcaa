package canonical

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	t.Run("sorts map keys and drops whitespace", func(t *testing.T) {
		out, err := String(map[string]any{"b": 1, "a": map[string]any{"z": true, "y": nil}})

		require.NoError(t, err)
		assert.Equal(t, `{"a":{"y":null,"z":true},"b":1}`, out)
	})

	t.Run("sorts objects in lists by id", func(t *testing.T) {
		out, err := String([]any{
			map[string]any{"id": "c2", "name": "second"},
			map[string]any{"id": "c1", "name": "first"},
		})

		require.NoError(t, err)
		assert.Equal(t, `[{"id":"c1","name":"first"},{"id":"c2","name":"second"}]`, out)
	})

	t.Run("sorts scalars by canonical text", func(t *testing.T) {
		out, err := String([]string{"users", "orders", "accounts"})

		require.NoError(t, err)
		assert.Equal(t, `["accounts","orders","users"]`, out)
	})

	t.Run("sorts objects without id by canonical text", func(t *testing.T) {
		out, err := String([]any{
			map[string]any{"source": "fe", "target": "be"},
			map[string]any{"source": "be", "target": "db"},
		})

		require.NoError(t, err)
		assert.Equal(t, `[{"source":"be","target":"db"},{"source":"fe","target":"be"}]`, out)
	})

	t.Run("canonicalizes list elements before sorting", func(t *testing.T) {
		a, err := String([]any{[]any{"b", "a"}, []any{"d", "c"}})
		require.NoError(t, err)
		b, err := String([]any{[]any{"c", "d"}, []any{"a", "b"}})
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Equal(t, `[["a","b"],["c","d"]]`, a)
	})

	t.Run("uses struct json tags", func(t *testing.T) {
		type item struct {
			ID   string `json:"id"`
			Kind string `json:"type"`
		}
		out, err := String([]item{{ID: "r2", Kind: "table"}, {ID: "r1", Kind: "api"}})

		require.NoError(t, err)
		assert.Equal(t, `[{"id":"r1","type":"api"},{"id":"r2","type":"table"}]`, out)
	})

	t.Run("escapes non-ascii and does not escape html", func(t *testing.T) {
		out, err := String(map[string]any{"name": "café <b>&</b> 😀"})

		require.NoError(t, err)
		assert.Equal(t, `{"name":"caf\u00e9 <b>&</b> \ud83d\ude00"}`, out)
	})

	t.Run("escapes control characters", func(t *testing.T) {
		out, err := String("a\nb\t\"c\"\\\x01")

		require.NoError(t, err)
		assert.Equal(t, `"a\nb\t\"c\"\\\u0001"`, out)
	})

	t.Run("formats numbers", func(t *testing.T) {
		out, err := String([]any{json.Number("3"), json.Number("1.0"), json.Number("0.5"), json.Number("1e20"), json.Number("0.00001")})

		require.NoError(t, err)
		assert.Equal(t, `[0.5,1.0,1e+20,1e-05,3]`, out)
	})

	t.Run("rejects unsupported values", func(t *testing.T) {
		_, err := Marshal(map[string]any{"ch": make(chan int)})

		assert.Error(t, err)
	})
}

func TestMarshal_OrderIndependence(t *testing.T) {
	first := map[string]any{
		"components": []any{
			map[string]any{"id": "be", "resources": []any{
				map[string]any{"id": "r2", "properties": map[string]any{"path": "/b", "method": "GET"}},
				map[string]any{"id": "r1", "properties": map[string]any{"method": "POST", "path": "/a"}},
			}},
			map[string]any{"id": "fe", "resources": []any{}},
		},
		"relationships": []any{
			map[string]any{"source": "fe", "target": "be", "type": "calls"},
			map[string]any{"source": "r1", "target": "r2", "type": "reads"},
		},
	}
	second := map[string]any{
		"relationships": []any{
			map[string]any{"type": "reads", "target": "r2", "source": "r1"},
			map[string]any{"type": "calls", "source": "fe", "target": "be"},
		},
		"components": []any{
			map[string]any{"resources": []any{}, "id": "fe"},
			map[string]any{"id": "be", "resources": []any{
				map[string]any{"properties": map[string]any{"path": "/a", "method": "POST"}, "id": "r1"},
				map[string]any{"id": "r2", "properties": map[string]any{"method": "GET", "path": "/b"}},
			}},
		},
	}

	a, err := Marshal(first)
	require.NoError(t, err)
	b, err := Marshal(second)
	require.NoError(t, err)

	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Errorf("canonical text differs (-first +second):\n%s", diff)
	}
}

func TestHash(t *testing.T) {
	t.Run("is stable", func(t *testing.T) {
		a, err := Hash(map[string]any{"x": []any{"b", "a"}})
		require.NoError(t, err)
		b, err := Hash(map[string]any{"x": []any{"a", "b"}})
		require.NoError(t, err)

		assert.Equal(t, a, b)
		assert.Len(t, a, 64)
	})

	t.Run("changes with content", func(t *testing.T) {
		a, err := Hash(map[string]any{"x": "a"})
		require.NoError(t, err)
		b, err := Hash(map[string]any{"x": "b"})
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("matches sha256 of canonical text", func(t *testing.T) {
		h, err := Hash(map[string]any{})

		require.NoError(t, err)
		// sha256("{}")
		assert.Equal(t, "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a", h)
	})
}

func TestSum(t *testing.T) {
	data, err := Marshal(map[string]any{"b": 2, "a": 1})
	require.NoError(t, err)
	h, err := Hash(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	assert.Equal(t, h, Sum(data))
}
