package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a view name resolved through
// the ProjectionMap; Descending selects DESC over ASC.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "name,-time_created" into sort fields. A leading
// "-" marks a field descending; blank entries are skipped. Empty input
// returns nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// condition renders one WHERE term, calling bind once per argument to
// obtain its positional placeholder.
type condition func(bind func(any) string) string

// Builder assembles SELECT statements over a ProjectionMap. Placeholders
// are numbered in the order conditions were added.
type Builder struct {
	projection *ProjectionMap
	conditions []condition
	order      []SortField
	fallback   []SortField
}

// NewBuilder creates a Builder for the given projection. defaultSort applies
// whenever OrderByFields has not been given any fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{projection: projection, fallback: defaultSort}
}

// OrderByFields replaces the default ordering.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.order = fields
	return b
}

// WhereEquals adds field = value. Nil values, including typed nil
// pointers, add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, func(bind func(any) string) string {
		return col + " = " + bind(value)
	})
	return b
}

// WhereBetween adds an inclusive field BETWEEN lo AND hi.
func (b *Builder) WhereBetween(field string, lo, hi any) *Builder {
	col := b.projection.Column(field)
	b.conditions = append(b.conditions, func(bind func(any) string) string {
		return col + " BETWEEN " + bind(lo) + " AND " + bind(hi)
	})
	return b
}

// WhereSearch matches search as a case-insensitive substring of any of
// fields. The pattern is bound once and shared by every field. A nil or
// empty search adds nothing.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}
	pattern := "%" + *search + "%"
	b.conditions = append(b.conditions, func(bind func(any) string) string {
		p := bind(pattern)
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + p
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
	return b
}

// Build returns the SELECT with conditions and ordering.
func (b *Builder) Build() (string, []any) {
	return b.selectSQL("")
}

// BuildPage returns the SELECT limited to one 1-based page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	return b.selectSQL(fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize))
}

// BuildNth returns the SELECT for the single row at zero-based position n.
func (b *Builder) BuildNth(n int) (string, []any) {
	return b.selectSQL(fmt.Sprintf(" LIMIT 1 OFFSET %d", n))
}

// BuildCount returns SELECT COUNT(*) under the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return "SELECT COUNT(*) FROM " + b.projection.From() + where, args
}

// BuildSingle returns the SELECT for one row by key, ignoring any
// conditions and ordering already added.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return NewBuilder(b.projection).WhereEquals(idField, id).Build()
}

func (b *Builder) selectSQL(suffix string) (string, []any) {
	where, args := b.where()
	sql := "SELECT " + b.projection.Columns() +
		" FROM " + b.projection.From() +
		where + b.orderBy() + suffix
	return sql, args
}

func (b *Builder) where() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	terms := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		terms[i] = c(bind)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

func (b *Builder) orderBy() string {
	fields := b.order
	if len(fields) == 0 {
		fields = b.fallback
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		terms[i] = b.projection.Column(f.Field) + dir
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
