package handlers

import (
	"net/http"
	"slices"

	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
)

type itemOptions struct {
	Categories    []string `json:"categories"`
	Units         []string `json:"units"`
	TaxCategories []string `json:"tax_categories"`
}

// HandleItemOptions returns the dropdown choices for the item form. Categories
// with automatic PST are listed separately so the form can lock the PST input.
func HandleItemOptions(est *services.Estimator) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		taxCategories := est.Rules.Categories()
		slices.Sort(taxCategories)

		categories := slices.Clone(services.CategoryOptions)
		for _, c := range taxCategories {
			if !slices.Contains(categories, c) {
				categories = append(categories, c)
			}
		}
		slices.Sort(categories)

		return e.JSON(http.StatusOK, itemOptions{
			Categories:    categories,
			Units:         services.UnitOptions,
			TaxCategories: taxCategories,
		})
	}
}
