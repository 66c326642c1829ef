package collections

import (
	"fmt"
	"log"
	"math"

	"github.com/pocketbase/pocketbase"

	"norskk/services"
)

// MigrateStaleItemTax rewrites the stored pst of every automatic-tax item
// whose value no longer matches quantity × unit price × rate, e.g. after the
// configured rate changed. Safe to call on every startup. Returns the number
// of items updated.
func MigrateStaleItemTax(app *pocketbase.PocketBase, rules services.TaxRules) (int, error) {
	itemsCol, err := app.FindCollectionByNameOrId("items")
	if err != nil {
		return 0, fmt.Errorf("migrate: could not find items collection: %w", err)
	}

	records, err := app.FindAllRecords(itemsCol)
	if err != nil {
		return 0, fmt.Errorf("migrate: could not query items: %w", err)
	}

	est := services.NewEstimator(rules)
	updated := 0
	for _, rec := range records {
		category := rec.GetString("category")
		if !rules.IsAutomatic(category) {
			continue
		}
		want := est.ComputeAutoTax(services.Item{
			Category:  category,
			Quantity:  rec.GetFloat("quantity"),
			UnitPrice: rec.GetFloat("unit_price"),
		})
		if math.Abs(rec.GetFloat("pst")-want) < 1e-9 {
			continue
		}

		rec.Set("pst", want)
		if err := app.Save(rec); err != nil {
			log.Printf("migrate: failed to update pst on item %s: %v\n", rec.Id, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Printf("migrate: refreshed pst on %d item(s)\n", updated)
	}
	return updated, nil
}

// MigrateOrphanItems deletes items whose scope no longer exists. Scope deletes
// cascade, so this only cleans up rows written before the relation did.
// Returns the number of items removed.
func MigrateOrphanItems(app *pocketbase.PocketBase) (int, error) {
	scopesCol, err := app.FindCollectionByNameOrId("scopes")
	if err != nil {
		return 0, fmt.Errorf("migrate: could not find scopes collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("items")
	if err != nil {
		return 0, fmt.Errorf("migrate: could not find items collection: %w", err)
	}

	scopes, err := app.FindAllRecords(scopesCol)
	if err != nil {
		return 0, fmt.Errorf("migrate: could not query scopes: %w", err)
	}
	live := make(map[string]bool, len(scopes))
	for _, s := range scopes {
		live[s.Id] = true
	}

	items, err := app.FindAllRecords(itemsCol)
	if err != nil {
		return 0, fmt.Errorf("migrate: could not query items: %w", err)
	}

	removed := 0
	for _, rec := range items {
		if live[rec.GetString("scope")] {
			continue
		}
		if err := app.Delete(rec); err != nil {
			log.Printf("migrate: failed to delete orphan item %s: %v\n", rec.Id, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("migrate: removed %d orphan item(s)\n", removed)
	}
	return removed, nil
}
