package mapping

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Category groups the internal target fields a mapping can write to.
type Category string

const (
	CategoryAttribute   Category = "attribute"
	CategoryMeasurement Category = "measurement"
)

// TargetField is one member of a category's closed field set.
type TargetField struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// catalog is the closed set of target fields per category.
// The first field of each category is its default.
var catalog = map[Category][]TargetField{
	CategoryAttribute: {
		{ID: "region", Label: "Region"},
		{ID: "brand", Label: "Brand"},
		{ID: "property_type", Label: "Property Type"},
		{ID: "market", Label: "Market"},
		{ID: "status", Label: "Status"},
	},
	CategoryMeasurement: {
		{ID: "occupancy", Label: "Occupancy"},
		{ID: "adr", Label: "Average Daily Rate"},
		{ID: "revpar", Label: "RevPAR"},
		{ID: "room_revenue", Label: "Room Revenue"},
		{ID: "rooms_sold", Label: "Rooms Sold"},
	},
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryAttribute, CategoryMeasurement}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := catalog[c]
	return ok
}

// Fields returns a copy of the field set for a category.
func Fields(c Category) []TargetField {
	fields := catalog[c]
	out := make([]TargetField, len(fields))
	copy(out, fields)
	return out
}

// DefaultField returns the default field id for a category, or "" if the
// category is unknown.
func DefaultField(c Category) string {
	fields := catalog[c]
	if len(fields) == 0 {
		return ""
	}
	return fields[0].ID
}

// HasField reports whether field belongs to category c.
func HasField(c Category, field string) bool {
	for _, f := range catalog[c] {
		if f.ID == field {
			return true
		}
	}
	return false
}

// OutputLabel returns the human-readable label for a target field,
// falling back to the raw field id when it is not in the catalog.
func OutputLabel(c Category, field string) string {
	for _, f := range catalog[c] {
		if f.ID == field {
			return f.Label
		}
	}
	return field
}

// FieldMapping maps one external address onto one internal target field.
type FieldMapping struct {
	ID       string   `json:"id" yaml:"id,omitempty"`
	Address  string   `json:"address" yaml:"address"`
	Category Category `json:"category" yaml:"category"`
	Field    string   `json:"field" yaml:"field"`
}

// NewFieldMapping creates a mapping with a fresh id and the category's
// default field.
func NewFieldMapping(address string, c Category) FieldMapping {
	return FieldMapping{
		ID:       uuid.NewString(),
		Address:  address,
		Category: c,
		Field:    DefaultField(c),
	}
}

// SetCategory changes the mapping's category. The target field is reset to
// the new category's default so it never points at a foreign field.
func (m *FieldMapping) SetCategory(c Category) {
	if m.Category == c && HasField(c, m.Field) {
		return
	}
	m.Category = c
	m.Field = DefaultField(c)
}

// SetField changes the target field. Fields outside the mapping's category
// are rejected.
func (m *FieldMapping) SetField(field string) error {
	if !HasField(m.Category, field) {
		return fmt.Errorf("field %q is not a %s field", field, m.Category)
	}
	m.Field = field
	return nil
}

// Normalize assigns a missing id and repairs a target field that does not
// belong to the mapping's category.
func (m *FieldMapping) Normalize() {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Category = Category(strings.ToLower(strings.TrimSpace(string(m.Category))))
	if m.Category.Valid() && !HasField(m.Category, m.Field) {
		m.Field = DefaultField(m.Category)
	}
}

// Label returns the output key this mapping writes to.
func (m FieldMapping) Label() string {
	return OutputLabel(m.Category, m.Field)
}
