package pagination

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/actigraphy/pkg/query"
)

// SortFields is a client-supplied ordering. In JSON it may be written as
// the query-string form ("name,-time_created") or as an array of objects.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*s = query.ParseSortFields(raw)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// Known keeps the fields p can resolve, renamed to their view property.
// Anything else is dropped before it can reach SQL.
func (s SortFields) Known(p *query.ProjectionMap) SortFields {
	known := make(SortFields, 0, len(s))
	for _, f := range s {
		view, ok := p.ViewName(f.Field)
		if !ok {
			continue
		}
		f.Field = view
		known = append(known, f)
	}
	return known
}

// PageRequest selects one 1-based page of a listing, optionally filtered
// by a search term and ordered by Sort.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into
// [1, cfg.MaxPageSize], substituting cfg.DefaultPageSize when unset.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, page_size, search and sort from values
// and normalizes the result. Unparseable numbers fall back to defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	var req PageRequest
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("page_size"))
	if search := values.Get("search"); search != "" {
		req.Search = &search
	}
	req.Sort = query.ParseSortFields(values.Get("sort"))

	req.Normalize(cfg)
	return req
}

// PageResult is one page of T plus the totals a client needs to page on.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult wraps data for the given page. An empty listing still
// reports one page, and nil data encodes as [].
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = make([]T, 0)
	}

	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
