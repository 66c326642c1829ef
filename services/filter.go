package services

import (
	"slices"
	"strings"
)

// ItemFilter is the user's current category/description selection. Empty
// fields are inactive.
type ItemFilter struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Match reports whether item passes every active filter field.
func (f ItemFilter) Match(item Item) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Description != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(f.Description)) {
		return false
	}
	return true
}

// FilterItems returns the matching items in canonical order. items itself is
// never modified.
func FilterItems(items []Item, f ItemFilter) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return SortItems(out)
}

// FilteredTotal sums the totals of the items matching f.
func (e *Estimator) FilteredTotal(items []Item, f ItemFilter) float64 {
	var total float64
	for _, it := range FilterItems(items, f) {
		total += e.ComputeTotal(it)
	}
	return finite(total)
}

// FilterView is a read-only filtered view over a scope's items.
type FilterView struct {
	Filter        ItemFilter   `json:"filter"`
	Items         []PricedItem `json:"items"`
	FilteredTotal float64      `json:"filtered_total"`
	ScopeTotal    float64      `json:"scope_total"`
	Categories    []string     `json:"categories"`
	Units         []string     `json:"units"`
}

// View builds a FilterView. The scope total and the dropdown choices are always
// derived from the unfiltered items so a filter can be cleared again.
func (e *Estimator) View(items []Item, f ItemFilter) FilterView {
	filtered := FilterItems(items, f)
	var filteredTotal float64
	for _, it := range filtered {
		filteredTotal += e.ComputeTotal(it)
	}
	return FilterView{
		Filter:        f,
		Items:         e.Price(filtered),
		FilteredTotal: finite(filteredTotal),
		ScopeTotal:    e.AggregateScope(items).Total,
		Categories:    DistinctValues(items, FieldCategory),
		Units:         DistinctValues(items, FieldUnit),
	}
}

// ItemField names a text field of Item usable for distinct-value lookups.
type ItemField string

const (
	FieldCategory ItemField = "category"
	FieldName     ItemField = "name"
	FieldUnit     ItemField = "unit"
)

// DistinctValues returns the sorted unique non-empty values of field.
func DistinctValues(items []Item, field ItemField) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		var v string
		switch field {
		case FieldCategory:
			v = it.Category
		case FieldName:
			v = it.Name
		case FieldUnit:
			v = it.Unit
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
