package mapping

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// ErrUnparsableDocument is returned by Decode when a response body or an
// override document is not valid JSON.
var ErrUnparsableDocument = errors.New("unparsable document")

// textCodec renders containers with sorted keys so the same value always
// produces the same text.
var textCodec = sonic.ConfigStd

// Kind is the structural kind of a document node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of a decoded document node.
// Values of unexpected Go types are treated as strings.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int32, int64, uint, uint32, uint64, jsonNumber:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindSequence
	case map[string]any:
		return KindMapping
	default:
		return KindString
	}
}

// jsonNumber matches json.Number without importing encoding/json here.
type jsonNumber interface {
	Float64() (float64, error)
	Int64() (int64, error)
	String() string
}

// Decode parses a response body or a hand-authored override document.
func Decode(data []byte) (any, error) {
	var doc any
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableDocument, err)
	}
	return doc, nil
}

// isScalar reports whether v is a non-null leaf value.
func isScalar(v any) bool {
	switch KindOf(v) {
	case KindBool, KindNumber, KindString:
		return true
	}
	return false
}

// Stringify renders a scalar as text. Numbers are rendered without
// trailing zeros, containers as compact JSON with sorted keys. nil renders
// as "".
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case jsonNumber:
		return val.String()
	default:
		b, err := textCodec.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
