// Package templates renders the HTML pages of the estimator.
package templates

import (
	"github.com/a-h/templ"

	"norskk/services"
)

// EstimateScope is one scope section of the estimate page.
type EstimateScope struct {
	Scope services.Scope
	Items []services.PricedItem
	Total float64
}

// EstimatePageData holds everything the estimate page shows.
type EstimatePageData struct {
	Project    services.Project
	Scopes     []EstimateScope
	ByCategory []services.CategorySummary
	GrandTotal float64
}

type metaField struct {
	Label string
	Value string
}

// projectMeta lists the header fields that have a value.
func projectMeta(p services.Project) []metaField {
	var out []metaField
	for _, f := range []metaField{
		{"Address", p.Address},
		{"Developer", p.Developer},
		{"Estimator", p.Estimator},
	} {
		if f.Value != "" {
			out = append(out, f)
		}
	}
	return out
}

func exportURL(projectID, format string) templ.SafeURL {
	return templ.URL("/projects/" + projectID + "/estimate/export/" + format)
}
