// Package query builds parameterized PostgreSQL SELECT statements from a
// projection of view property names onto table columns.
package query

import "strings"

type projected struct {
	view   string
	column string
}

// ProjectionMap maps view property names to alias-qualified columns of a
// table and any tables joined onto it. Column order is projection order.
type ProjectionMap struct {
	table  string
	alias  string
	cols   []projected
	byView map[string]string
	joins  []string
	// current is the alias new projections qualify against.
	current string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   schema + "." + table,
		alias:   alias,
		byView:  map[string]string{},
		current: alias,
	}
}

// Project maps column of the current table to viewName.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.current + "." + column
	p.cols = append(p.cols, projected{view: viewName, column: qualified})
	p.byView[viewName] = qualified
	return p
}

// Join appends "kind schema.table alias ON on" to the FROM clause. Project
// calls after Join qualify against the joined alias.
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, kind+" "+schema+"."+table+" "+alias+" ON "+on)
	p.current = alias
	return p
}

// Table returns "schema.table alias" for the base table.
func (p *ProjectionMap) Table() string {
	return p.table + " " + p.alias
}

// From returns the base table followed by every join.
func (p *ProjectionMap) From() string {
	return strings.Join(append([]string{p.Table()}, p.joins...), " ")
}

// Column returns the qualified column for viewName. Unmapped names pass
// through unchanged so callers can reference columns directly.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.byView[viewName]; ok {
		return col
	}
	return viewName
}

// ViewName resolves name to a projected view property. Matching ignores
// case and underscores, so "time_created" resolves to "TimeCreated".
func (p *ProjectionMap) ViewName(name string) (string, bool) {
	if _, ok := p.byView[name]; ok {
		return name, true
	}
	folded := strings.ReplaceAll(name, "_", "")
	for _, c := range p.cols {
		if strings.EqualFold(c.view, folded) {
			return c.view, true
		}
	}
	return "", false
}

// Columns returns the select list in projection order.
func (p *ProjectionMap) Columns() string {
	var sb strings.Builder
	for i, c := range p.cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.column)
	}
	return sb.String()
}
