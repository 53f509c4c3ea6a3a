package core

import (
	"strconv"
	"strings"
)

// WhereBuilder accumulates parameterized SQL conditions joined with AND.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder creates an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

func (wb *WhereBuilder) placeholder(arg any) string {
	wb.args = append(wb.args, arg)
	p := "$" + strconv.Itoa(wb.argIndex)
	wb.argIndex++
	return p
}

// Add appends "col = $n". Empty values are skipped.
func (wb *WhereBuilder) Add(col, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, col+" = "+wb.placeholder(value))
}

// AddILike appends a case-insensitive substring match. Empty values are skipped.
func (wb *WhereBuilder) AddILike(col, value string) {
	if value == "" {
		return
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	wb.conditions = append(wb.conditions, col+" ILIKE "+wb.placeholder("%"+escaped+"%"))
}

// AddRaw appends a condition that takes no arguments.
func (wb *WhereBuilder) AddRaw(cond string) {
	wb.conditions = append(wb.conditions, cond)
}

// Bind registers arg and returns its placeholder, for LIMIT/OFFSET clauses
// that follow the WHERE clause.
func (wb *WhereBuilder) Bind(arg any) string {
	return wb.placeholder(arg)
}

// Build returns " WHERE ..." (or "" with no conditions) and the arguments.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", wb.args
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}
