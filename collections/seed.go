package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/services"
)

// ── Definition structs ───────────────────────────────────────────────────

type itemDef struct {
	category      string
	name          string
	quantity      float64
	unit          string
	unitPrice     float64
	pst           float64
	markupPercent float64
	notes         string
}

type scopeDef struct {
	name        string
	description string
	items       []itemDef
}

// SeedProjectName is the name of the demo project created by Seed.
const SeedProjectName = "Riverside Duplex"

var seedScopes = []scopeDef{
	{
		name:        "Foundations",
		description: "Excavation, footings and foundation walls",
		items: []itemDef{
			{category: "Equipment", name: "Excavator rental", quantity: 3, unit: "day", unitPrice: 1450},
			{category: "Labor", name: "Form crew", quantity: 64, unit: "hr", unitPrice: 68},
			{category: "Materials", name: "Ready-mix concrete 25 MPa", quantity: 38, unit: "m3", unitPrice: 245, markupPercent: 10},
			{category: "Materials", name: "Rebar 15M", quantity: 2.4, unit: "t", unitPrice: 1650, markupPercent: 10},
			{category: "Trucking & Aggregates", name: "Drain rock", quantity: 6, unit: "load", unitPrice: 420},
			{category: "Permits & Fees", name: "Building permit", quantity: 1, unit: "ls", unitPrice: 3200, notes: "City of Riverside"},
		},
	},
	{
		name:        "Framing",
		description: "Floor, wall and roof framing",
		items: []itemDef{
			{category: "Materials", name: "Dimensional lumber package", quantity: 1, unit: "ls", unitPrice: 48500, markupPercent: 8},
			{category: "Subcontractors", name: "Framing sub", quantity: 1, unit: "ls", unitPrice: 62000, markupPercent: 5},
			{category: "Equipment", name: "Telehandler", quantity: 2, unit: "wk", unitPrice: 2100, pst: 147},
			{category: "Miscellaneous", name: "Site cleanup", quantity: 12, unit: "hr", unitPrice: 55},
		},
	},
}

// Seed inserts a demo project with two scopes when the projects collection is
// empty. PST on automatic-tax categories is derived with rules.
func Seed(app *pocketbase.PocketBase, rules services.TaxRules) error {
	// ── idempotency: skip if projects already exist ──────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	existing, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query projects: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: projects collection is empty – inserting seed data …")

	scopesCol, err := app.FindCollectionByNameOrId("scopes")
	if err != nil {
		return fmt.Errorf("seed: could not find scopes collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("items")
	if err != nil {
		return fmt.Errorf("seed: could not find items collection: %w", err)
	}

	project := core.NewRecord(projectsCol)
	project.Set("name", SeedProjectName)
	project.Set("address", "1180 River Road")
	project.Set("developer", "Harbourline Homes")
	project.Set("estimator", "J. Grimsmo")
	if err := app.Save(project); err != nil {
		return fmt.Errorf("seed: save project: %w", err)
	}

	est := services.NewEstimator(rules)
	itemCount := 0
	for _, sd := range seedScopes {
		scope := core.NewRecord(scopesCol)
		scope.Set("project", project.Id)
		scope.Set("name", sd.name)
		scope.Set("description", sd.description)
		if err := app.Save(scope); err != nil {
			return fmt.Errorf("seed: save scope %q: %w", sd.name, err)
		}

		for _, d := range sd.items {
			item := est.RecomputeTax(services.Item{
				Category:  d.category,
				Quantity:  d.quantity,
				UnitPrice: d.unitPrice,
				PST:       d.pst,
			})

			rec := core.NewRecord(itemsCol)
			rec.Set("scope", scope.Id)
			rec.Set("category", d.category)
			rec.Set("name", d.name)
			rec.Set("quantity", d.quantity)
			rec.Set("unit", d.unit)
			rec.Set("unit_price", d.unitPrice)
			rec.Set("pst", item.PST)
			rec.Set("markup_percent", d.markupPercent)
			rec.Set("notes", d.notes)
			if err := app.Save(rec); err != nil {
				return fmt.Errorf("seed: save item %q: %w", d.name, err)
			}
			itemCount++
		}
	}

	log.Printf("seed: created project %q with %d scopes and %d items\n", SeedProjectName, len(seedScopes), itemCount)
	return nil
}
