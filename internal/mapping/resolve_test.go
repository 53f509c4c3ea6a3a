package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Keyed(t *testing.T) {
	doc := mustDecode(t, `{
		"a": {"b": [1, 2, 3], "n": null, "s": "str"},
		"items": [{"id": "RENEW"}, {"id": "HNLMC", "tags": ["x", "y"]}],
		"flag": false
	}`)

	tests := []struct {
		name    string
		address string
		want    any
		found   bool
	}{
		{"wildcard returns whole array", "$.a.b[*]", []any{float64(1), float64(2), float64(3)}, true},
		{"wildcard terminates walk", "$.a.b[*].ignored.rest", []any{float64(1), float64(2), float64(3)}, true},
		{"index", "$.a.b[1]", float64(2), true},
		{"index out of range", "$.a.b[9]", nil, false},
		{"nested index then key", "$.items[1].id", "HNLMC", true},
		{"nested index twice", "$.items[1].tags[0]", "x", true},
		{"missing key", "$.a.missing", nil, false},
		{"missing intermediate", "$.nope.deeper", nil, false},
		{"null short circuits", "$.a.n.deeper", nil, false},
		{"explicit null", "$.a.n", nil, true},
		{"false value", "$.flag", false, true},
		{"no dot after sentinel", "$a.s", "str", true},
		{"no sentinel", "a.s", "str", true},
		{"empty segment", "$.a..s", "str", true},
		{"plain segment stalls on scalar", "$.a.s.length", "str", true},
		{"key bracket on missing key", "$.missing[0]", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Resolve(doc, tt.address, FormatKeyed)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_RootForms(t *testing.T) {
	doc := mustDecode(t, `[{"id":"A"},{"id":"B"}]`)

	got, found := Resolve(doc, "$", FormatKeyed)
	require.True(t, found)
	assert.Equal(t, doc, got)

	got, found = Resolve(doc, "$[*]", FormatKeyed)
	require.True(t, found)
	assert.Equal(t, doc, got)

	got, found = Resolve(doc, "$[1].id", FormatKeyed)
	require.True(t, found)
	assert.Equal(t, "B", got)
}

func TestResolve_NilDocument(t *testing.T) {
	_, found := Resolve(nil, "$.a", FormatKeyed)
	assert.False(t, found)

	_, found = Resolve(nil, "0", FormatPositional)
	assert.False(t, found)
}

func TestResolve_Positional(t *testing.T) {
	doc := mustDecode(t, `[1, 2, 3]`)

	tests := []struct {
		address string
		want    any
		found   bool
	}{
		{"0", float64(1), true},
		{"2", float64(3), true},
		{" 1 ", float64(2), true},
		{"5", nil, false},
		{"-1", nil, false},
		{"+1", nil, false},
		{"abc", nil, false},
		{"1.5", nil, false},
		{"", nil, false},
	}

	for _, tt := range tests {
		got, found := Resolve(doc, tt.address, FormatPositional)
		assert.Equal(t, tt.found, found, "address %q", tt.address)
		assert.Equal(t, tt.want, got, "address %q", tt.address)
	}
}

func TestResolve_PositionalNonSequence(t *testing.T) {
	_, found := Resolve(mustDecode(t, `{"0":"x"}`), "0", FormatPositional)
	assert.False(t, found)
}

func TestResolve_MalformedNeverPanics(t *testing.T) {
	doc := mustDecode(t, `{"a":{"b":[1]}}`)
	addresses := []string{
		"$.a..b", "$..", "...", "$[", "$.a[", "$.a[]", "$.a[-1]", "$.a.b[x]",
		"$.a.b[99999999999999999999999]", "[*]", "$$", "$.a.b[0][0]",
	}

	for _, addr := range addresses {
		assert.NotPanics(t, func() {
			Resolve(doc, addr, FormatKeyed)
			Resolve(doc, addr, FormatPositional)
			Resolver{Strict: true}.Resolve(doc, addr, FormatKeyed)
		}, addr)
	}
}

func TestResolve_HugeIndexIsAbsent(t *testing.T) {
	doc := mustDecode(t, `{"a":[1]}`)
	_, found := Resolve(doc, "$.a[99999999999999999999999]", FormatKeyed)
	assert.False(t, found)
}

func TestResolver_Strict(t *testing.T) {
	doc := mustDecode(t, `{"a":5,"b":{"c":"x"}}`)

	got, found := Resolve(doc, "$.a.b", FormatKeyed)
	require.True(t, found)
	assert.Equal(t, float64(5), got)

	strict := Resolver{Strict: true}
	_, found = strict.Resolve(doc, "$.a.b", FormatKeyed)
	assert.False(t, found)

	_, found = strict.Resolve(doc, "$.b.c[0]", FormatKeyed)
	assert.False(t, found)

	got, found = strict.Resolve(doc, "$.b.c", FormatKeyed)
	require.True(t, found)
	assert.Equal(t, "x", got)
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b[0]", "c"}, Segments("$.a.b[0].c"))
	assert.Equal(t, []string{"a", "b"}, Segments("$.a..b"))
	assert.Nil(t, Segments("$"))
	assert.Nil(t, Segments("$."))
}

func TestParseIndex(t *testing.T) {
	i, ok := ParseIndex("12")
	require.True(t, ok)
	assert.Equal(t, 12, i)

	_, ok = ParseIndex("-3")
	assert.False(t, ok)
}
