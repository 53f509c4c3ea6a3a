package mapping

import "sort"

// RootSentinel prefixes every keyed address.
const RootSentinel = "$"

// EnumeratePaths lists every addressable keyed location in doc.
//
// Mapping keys are visited in sorted order so the result is stable across
// calls. Sequences contribute a single "[*]" path and only their first
// element is traversed, assuming homogeneous elements.
func EnumeratePaths(doc any) []string {
	var paths []string
	collectPaths(doc, RootSentinel, &paths)
	return paths
}

func collectPaths(v any, prefix string, paths *[]string) {
	switch node := v.(type) {
	case map[string]any:
		for _, key := range sortedKeys(node) {
			p := prefix + "." + key
			*paths = append(*paths, p)
			collectPaths(node[key], p, paths)
		}
	case []any:
		p := prefix + "[*]"
		*paths = append(*paths, p)
		if len(node) > 0 {
			collectPaths(node[0], p, paths)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// firstPositionalRecord returns the flat record a positional document
// starts with: the inner sequence of an array of arrays, or the document
// itself when it is an array of scalars.
func firstPositionalRecord(doc any) ([]any, bool) {
	seq, ok := doc.([]any)
	if !ok || len(seq) == 0 {
		return nil, false
	}
	if inner, ok := seq[0].([]any); ok {
		return inner, true
	}
	if isScalar(seq[0]) {
		return seq, true
	}
	return nil, false
}

// PositionalLength returns the number of positions in the first flat
// record of doc, or 0 when doc has no positional shape.
func PositionalLength(doc any) int {
	rec, ok := firstPositionalRecord(doc)
	if !ok {
		return 0
	}
	return len(rec)
}

// PositionalSamples returns the first flat record's values for preview.
// Strings, numbers and nulls are kept as is; other values are rendered as
// JSON text.
func PositionalSamples(doc any) []any {
	rec, ok := firstPositionalRecord(doc)
	if !ok {
		return []any{}
	}
	samples := make([]any, len(rec))
	for i, v := range rec {
		switch KindOf(v) {
		case KindNull, KindString, KindNumber:
			samples[i] = v
		default:
			samples[i] = Stringify(v)
		}
	}
	return samples
}
