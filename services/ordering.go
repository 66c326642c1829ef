package services

import (
	"slices"
	"strings"
)

// CompareItems is the canonical item order used everywhere items are listed:
// category, then name, then id. Comparison is byte-wise and case-sensitive, so
// an empty category or name sorts before any non-empty one.
func CompareItems(a, b Item) int {
	if c := strings.Compare(a.Category, b.Category); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// SortItems returns a sorted copy of items. The input slice is not modified.
func SortItems(items []Item) []Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, CompareItems)
	return out
}

// Scope is a named group of items within a project.
type Scope struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UpdatedDate string `json:"updated_date"`
}

// CompareScopes orders scopes by name, then id.
func CompareScopes(a, b Scope) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// SortScopes returns a sorted copy of scopes.
func SortScopes(scopes []Scope) []Scope {
	out := slices.Clone(scopes)
	slices.SortStableFunc(out, CompareScopes)
	return out
}
