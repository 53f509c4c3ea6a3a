package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumeratePaths_Nested(t *testing.T) {
	doc := mustDecode(t, `{"d":null,"a":{"b":[{"c":1,"e":{"f":"x"}},{"z":2}]}}`)

	want := []string{
		"$.a",
		"$.a.b",
		"$.a.b[*]",
		"$.a.b[*].c",
		"$.a.b[*].e",
		"$.a.b[*].e.f",
		"$.d",
	}
	assert.Equal(t, want, EnumeratePaths(doc))
}

func TestEnumeratePaths_RootSequence(t *testing.T) {
	doc := mustDecode(t, `[{"id":"RENEW","occupancy":85},{"id":"HNLMC"}]`)
	assert.Equal(t, []string{"$[*]", "$[*].id", "$[*].occupancy"}, EnumeratePaths(doc))
}

func TestEnumeratePaths_EdgeCases(t *testing.T) {
	assert.Equal(t, []string{"$[*]"}, EnumeratePaths(mustDecode(t, `[]`)))
	assert.Equal(t, []string{"$[*]", "$[*][*]"}, EnumeratePaths(mustDecode(t, `[[1,2]]`)))
	assert.Empty(t, EnumeratePaths(mustDecode(t, `42`)))
	assert.Empty(t, EnumeratePaths(nil))
	assert.Empty(t, EnumeratePaths(mustDecode(t, `{}`)))
}

func TestEnumeratePaths_Stable(t *testing.T) {
	doc := mustDecode(t, `{"k9":1,"k1":{"x":[1]},"k5":"s","k3":[{"q":1}]}`)
	first := EnumeratePaths(doc)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, EnumeratePaths(doc))
	}
}

func TestEnumeratePaths_KeyedPathsResolve(t *testing.T) {
	doc := mustDecode(t, `{"hotel":{"id":"RENEW","stats":{"occupancy":85,"adr":212.5},"tags":["a"]},"ok":true}`)

	want := map[string]any{
		"$.hotel.id":              "RENEW",
		"$.hotel.stats.occupancy": float64(85),
		"$.hotel.stats.adr":       212.5,
		"$.ok":                    true,
	}

	for _, p := range EnumeratePaths(doc) {
		expected, ok := want[p]
		if !ok {
			continue
		}
		got, found := Resolve(doc, p, FormatKeyed)
		require.True(t, found, "path %s", p)
		assert.Equal(t, expected, got, "path %s", p)
		delete(want, p)
	}
	assert.Empty(t, want, "paths not enumerated")
}

func TestPositionalLength(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{"array of arrays", `[[1,"RENEW","Hotel",72],[2,"HNLMC","Resort",85]]`, 4},
		{"array of scalars", `[1,"RENEW","Hotel",72]`, 4},
		{"array of objects", `[{"a":1}]`, 0},
		{"empty array", `[]`, 0},
		{"leading null", `[null,1]`, 0},
		{"object", `{"data":[[1,2]]}`, 0},
		{"scalar", `"x"`, 0},
		{"empty inner", `[[]]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositionalLength(mustDecode(t, tt.doc)))
		})
	}
}

func TestPositionalSamples(t *testing.T) {
	doc := mustDecode(t, `[[1,"RENEW",null,{"a":1},[2],false],[2,"HNLMC"]]`)

	got := PositionalSamples(doc)
	want := []any{float64(1), "RENEW", nil, `{"a":1}`, `[2]`, "false"}
	assert.Equal(t, want, got)
}

func TestPositionalSamples_ScalarRecord(t *testing.T) {
	doc := mustDecode(t, `[1,"RENEW","Hotel",72,{"x":true}]`)
	got := PositionalSamples(doc)
	assert.Equal(t, []any{float64(1), "RENEW", "Hotel", float64(72), `{"x":true}`}, got)
}

func TestPositionalSamples_ObjectRenderingIsStable(t *testing.T) {
	doc := mustDecode(t, `[[{"x":1,"y":2,"z":3,"w":4,"v":5,"u":6},1]]`)
	for i := 0; i < 200; i++ {
		assert.Equal(t, `{"u":6,"v":5,"w":4,"x":1,"y":2,"z":3}`, PositionalSamples(doc)[0])
	}
}

func TestPositionalSamples_AgreesWithLength(t *testing.T) {
	docs := []string{
		`[[1,2,3],[4]]`,
		`[1,2]`,
		`[{"a":1}]`,
		`[]`,
		`{"a":[1]}`,
		`null`,
		`[[]]`,
		`["x",{"y":1},[1]]`,
	}

	for _, raw := range docs {
		doc := mustDecode(t, raw)
		assert.Len(t, PositionalSamples(doc), PositionalLength(doc), raw)
	}
}

func TestLooksPositional(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`[1,"RENEW","Hotel",72]`, true},
		{`[[1,"RENEW"],[2,"HNLMC"]]`, true},
		{`["only"]`, true},
		{`[{"id":"RENEW"}]`, false},
		{`[]`, false},
		{`[null]`, false},
		{`{"data":[[1]]}`, false},
		{`7`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksPositional(mustDecode(t, tt.doc)), tt.doc)
	}
}

func TestSuggestFormat(t *testing.T) {
	positional := mustDecode(t, `[[1,2]]`)
	keyed := mustDecode(t, `{"data":[]}`)

	assert.Equal(t, FormatPositional, SuggestFormat(positional))
	assert.Equal(t, FormatKeyed, SuggestFormat(keyed))
	assert.True(t, FormatMismatch(positional, FormatKeyed))
	assert.False(t, FormatMismatch(keyed, FormatKeyed))
	assert.False(t, FormatMismatch(nil, FormatPositional))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatKeyed, f)

	f, err = ParseFormat(" Positional ")
	require.NoError(t, err)
	assert.Equal(t, FormatPositional, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
