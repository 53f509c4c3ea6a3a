package mapping

import (
	"fmt"
	"strings"
)

// Format is the structural format of a payload and the addressing mode of
// the mappings evaluated against it.
type Format string

const (
	FormatKeyed      Format = "keyed"
	FormatPositional Format = "positional"
)

// ParseFormat parses a format name. The empty string is keyed.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatKeyed:
		return FormatKeyed, nil
	case FormatPositional:
		return FormatPositional, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// LooksPositional reports whether doc is more plausibly a positional
// payload: a non-empty sequence whose first element is a sequence or a
// scalar. It is a heuristic used to prompt the user and never overrides an
// explicit format choice.
func LooksPositional(doc any) bool {
	_, ok := firstPositionalRecord(doc)
	return ok
}

// SuggestFormat returns the format LooksPositional favours.
func SuggestFormat(doc any) Format {
	if LooksPositional(doc) {
		return FormatPositional
	}
	return FormatKeyed
}

// FormatMismatch reports whether the chosen format disagrees with the
// classifier's suggestion for doc.
func FormatMismatch(doc any, chosen Format) bool {
	if doc == nil {
		return false
	}
	return SuggestFormat(doc) != chosen
}
