package mapping

import (
	"errors"
	"fmt"
	"strings"
)

// TargetMode selects whether a document describes one entity or many.
type TargetMode string

const (
	TargetSingle     TargetMode = "single"
	TargetCollection TargetMode = "collection"
)

// UnknownEntityKey is used when a record's entity key cannot be resolved.
const UnknownEntityKey = "unknown"

// EnvelopeKeys are probed, in order, for the record collection when a keyed
// document is a mapping rather than a sequence.
var EnvelopeKeys = []string{"data", "results", "items", "records", "rows", "entries"}

// ParseTargetMode parses a target mode name. The empty string is single.
func ParseTargetMode(s string) (TargetMode, error) {
	switch TargetMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TargetSingle:
		return TargetSingle, nil
	case TargetCollection:
		return TargetCollection, nil
	default:
		return "", fmt.Errorf("unknown target mode %q", s)
	}
}

// Config is a complete mapping declaration for one integration.
type Config struct {
	TargetMode TargetMode     `json:"targetMode" yaml:"target_mode"`
	Format     Format         `json:"format" yaml:"format"`
	EntityKey  string         `json:"entityKey" yaml:"entity_key"`
	Mappings   []FieldMapping `json:"mappings" yaml:"mappings"`
}

// Normalize fills defaults, canonicalizes the target mode and format names
// and repairs every field mapping. Unrecognized names are left for Validate
// to report.
func (c *Config) Normalize() {
	if m, err := ParseTargetMode(string(c.TargetMode)); err == nil {
		c.TargetMode = m
	}
	if f, err := ParseFormat(string(c.Format)); err == nil {
		c.Format = f
	}
	for i := range c.Mappings {
		c.Mappings[i].Normalize()
	}
}

// Validate reports configuration problems the wizard should surface before
// saving. Evaluate never requires a valid Config.
func (c Config) Validate() error {
	var errs []error

	switch c.TargetMode {
	case TargetSingle, TargetCollection:
	default:
		errs = append(errs, fmt.Errorf("unknown target mode %q", c.TargetMode))
	}

	switch c.Format {
	case FormatKeyed, FormatPositional:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}

	if c.TargetMode == TargetCollection {
		if strings.TrimSpace(c.EntityKey) == "" {
			errs = append(errs, errors.New("entity key locator is required for collections"))
		} else if c.Format == FormatPositional {
			if _, ok := ParseIndex(c.EntityKey); !ok {
				errs = append(errs, fmt.Errorf("entity key %q is not a position", c.EntityKey))
			}
		}
	}

	for _, m := range c.Mappings {
		if !m.Category.Valid() {
			errs = append(errs, fmt.Errorf("mapping %s: unknown category %q", m.ID, m.Category))
			continue
		}
		if !HasField(m.Category, m.Field) {
			errs = append(errs, fmt.Errorf("mapping %s: field %q is not a %s field", m.ID, m.Field, m.Category))
		}
		if c.Format == FormatPositional {
			if _, ok := ParseIndex(m.Address); !ok {
				errs = append(errs, fmt.Errorf("mapping %s: address %q is not a position", m.ID, m.Address))
			}
		}
	}

	return errors.Join(errs...)
}

// ResolvedRecord is one entity extracted from a collection document.
type ResolvedRecord struct {
	EntityKey   string         `json:"entityKey"`
	DisplayName string         `json:"displayName"`
	Fields      map[string]any `json:"fields"`
}

// Result is the output of Evaluate. Single is set for TargetSingle,
// Records for TargetCollection, where an empty collection is [] rather than
// null.
type Result struct {
	Mode    TargetMode       `json:"mode"`
	Single  map[string]any   `json:"single,omitempty"`
	Records []ResolvedRecord `json:"records"`
}

// Evaluate applies cfg to doc. It returns nil when doc is nil. Absent
// addresses produce nil field values; unknown entity keys produce
// placeholder display names. Evaluate holds no state between calls.
func Evaluate(doc any, cfg Config, dir Directory) *Result {
	if doc == nil {
		return nil
	}

	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		format = FormatKeyed
	}
	mode, _ := ParseTargetMode(string(cfg.TargetMode))

	if mode != TargetCollection {
		return &Result{
			Mode:   TargetSingle,
			Single: resolveFields(doc, cfg.Mappings, format),
		}
	}

	records := RecordCollection(doc, format)
	out := make([]ResolvedRecord, 0, len(records))
	for _, rec := range records {
		key := EntityKeyOf(rec, cfg.EntityKey, format)
		out = append(out, ResolvedRecord{
			EntityKey:   key,
			DisplayName: DisplayName(dir, key),
			Fields:      resolveFields(rec, cfg.Mappings, format),
		})
	}
	return &Result{Mode: TargetCollection, Records: out}
}

func resolveFields(doc any, mappings []FieldMapping, format Format) map[string]any {
	fields := make(map[string]any, len(mappings))
	for _, m := range mappings {
		v, _ := Resolve(doc, m.Address, format)
		fields[m.Label()] = v
	}
	return fields
}

// RecordCollection derives the sequence of records a collection document
// holds.
func RecordCollection(doc any, format Format) []any {
	if format == FormatPositional {
		seq, ok := doc.([]any)
		if !ok {
			return nil
		}
		if len(seq) > 0 {
			if _, nested := seq[0].([]any); nested {
				return seq
			}
		}
		return []any{seq}
	}

	if seq, ok := doc.([]any); ok {
		return seq
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	for _, key := range EnvelopeKeys {
		if seq, ok := obj[key].([]any); ok {
			return seq
		}
	}
	return []any{obj}
}

// EntityKeyOf extracts the joining key of one record. Missing keys become
// UnknownEntityKey.
func EntityKeyOf(record any, locator string, format Format) string {
	v, ok := Resolve(record, locator, format)
	if !ok || v == nil {
		return UnknownEntityKey
	}
	return Stringify(v)
}
