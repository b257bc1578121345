// Package listing filters and paginates collection snapshots for the views.
package listing

import (
	"strings"

	"github.com/iamarketings/Operator/internal/models"
)

const CDRPageSize = 15

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// Paginate returns the 1-based page of items, clamped to the valid range.
// An empty input yields page 1 of 0.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = CDRPageSize
	}
	total := len(items)
	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	page = min(max(page, 1), max(pages, 1))

	from := min((page-1)*perPage, total)
	to := min(from+perPage, total)
	out := make([]T, to-from)
	copy(out, items[from:to])

	return Page[T]{Items: out, Page: page, PerPage: perPage, TotalPages: pages, Total: total}
}

func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// FilterExtensions matches the name case-insensitively, the number or the IP address.
func FilterExtensions(exts []models.Extension, term string) []models.Extension {
	if term == "" {
		return exts
	}
	lower := strings.ToLower(term)
	return Filter(exts, func(e models.Extension) bool {
		return strings.Contains(strings.ToLower(e.Name), lower) ||
			strings.Contains(e.Number, term) ||
			strings.Contains(e.IPAddress, term)
	})
}

// FilterCDRs matches src, dst, or the caller id case-insensitively.
func FilterCDRs(records []models.CDR, term string) []models.CDR {
	if term == "" {
		return records
	}
	lower := strings.ToLower(term)
	return Filter(records, func(c models.CDR) bool {
		return strings.Contains(c.Src, term) ||
			strings.Contains(c.Dst, term) ||
			strings.Contains(strings.ToLower(c.CallerID), lower)
	})
}
