package mapping

import (
	"regexp"
	"strconv"
	"strings"
)

// indexedSegment matches a keyed segment with a bracket suffix:
// "items[0]", "items[*]", "[2]" or "[*]".
var indexedSegment = regexp.MustCompile(`^([^\[\]]*)\[(\d+|\*)\]$`)

// Resolver resolves addresses against documents.
//
// By default a plain segment applied to a value that is not a mapping
// leaves the walk where it is and continues with the next segment, so
// "$.a.b" against {"a": 5} yields 5. Strict turns that case into absent.
type Resolver struct {
	Strict bool
}

// defaultResolver is the permissive resolver used by Resolve and Evaluate.
var defaultResolver = Resolver{}

// Resolve returns the value at address within doc using the permissive
// resolver. The boolean is false when the address is absent.
func Resolve(doc any, address string, format Format) (any, bool) {
	return defaultResolver.Resolve(doc, address, format)
}

// Resolve returns the value at address within doc. It never panics: any
// failure is reported as absent.
func (r Resolver) Resolve(doc any, address string, format Format) (value any, ok bool) {
	defer func() {
		if recover() != nil {
			value, ok = nil, false
		}
	}()

	if format == FormatPositional {
		return resolvePositional(doc, address)
	}
	return r.resolveKeyed(doc, address)
}

func resolvePositional(doc any, address string) (any, bool) {
	idx, ok := ParseIndex(address)
	if !ok {
		return nil, false
	}
	seq, isSeq := doc.([]any)
	if !isSeq || idx >= len(seq) {
		return nil, false
	}
	return seq[idx], true
}

// ParseIndex parses a positional address. Only base-10 non-negative
// integers are accepted.
func ParseIndex(address string) (int, bool) {
	address = strings.TrimSpace(address)
	if address == "" || strings.HasPrefix(address, "+") {
		return 0, false
	}
	idx, err := strconv.Atoi(address)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// Segments strips the root sentinel from a keyed address and splits it
// into non-empty segments.
func Segments(address string) []string {
	address = strings.TrimSpace(address)
	address = strings.TrimPrefix(address, RootSentinel)
	address = strings.TrimPrefix(address, ".")

	var segments []string
	for _, s := range strings.Split(address, ".") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func (r Resolver) resolveKeyed(doc any, address string) (any, bool) {
	current := doc
	present := true

	for _, seg := range Segments(address) {
		if !present || current == nil {
			return nil, false
		}

		if m := indexedSegment.FindStringSubmatch(seg); m != nil {
			key, index := m[1], m[2]
			if key != "" {
				obj, isMap := current.(map[string]any)
				if !isMap {
					return nil, false
				}
				current, present = obj[key]
				if !present {
					return nil, false
				}
			}

			seq, isSeq := current.([]any)
			if !isSeq {
				if r.Strict {
					return nil, false
				}
				continue
			}
			if index == "*" {
				return seq, true
			}
			i, err := strconv.Atoi(index)
			if err != nil || i >= len(seq) {
				return nil, false
			}
			current = seq[i]
			continue
		}

		obj, isMap := current.(map[string]any)
		if !isMap {
			if r.Strict {
				return nil, false
			}
			continue
		}
		current, present = obj[seg]
	}

	if !present {
		return nil, false
	}
	return current, true
}
