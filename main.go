package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"norskk/collections"
	"norskk/config"
	"norskk/handlers"
	"norskk/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := pocketbase.New()
	cfg.BindFlags(app.RootCmd.PersistentFlags())

	var est *services.Estimator

	// Create collections, run migrations and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		rules := cfg.TaxRules()
		est = services.NewEstimator(rules)

		collections.Setup(app)
		if _, err := collections.MigrateOrphanItems(app); err != nil {
			log.Printf("Warning: orphan item cleanup failed: %v", err)
		}
		if _, err := collections.MigrateStaleItemTax(app, rules); err != nil {
			log.Printf("Warning: pst refresh failed: %v", err)
		}
		if cfg.Seed {
			if err := collections.Seed(app, rules); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {

		// ── Projects ─────────────────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app, est, cfg.LoadConcurrency))
		se.Router.POST("/projects", handlers.HandleProjectSave(app))
		se.Router.DELETE("/projects/{id}", handlers.HandleProjectDelete(app))

		// ── Scopes ───────────────────────────────────────────────
		se.Router.POST("/projects/{projectId}/scopes", handlers.HandleScopeSave(app))
		se.Router.DELETE("/projects/{projectId}/scopes/{scopeId}", handlers.HandleScopeDelete(app))

		// ── Items ────────────────────────────────────────────────
		// import routes must be before {itemId} to avoid matching "import" as an ID
		se.Router.GET("/items/options", handlers.HandleItemOptions(est))
		se.Router.GET("/items/import/template", handlers.HandleItemImportTemplate(app))
		se.Router.POST("/items/import/errors", handlers.HandleItemImportErrors(app))
		se.Router.POST("/scopes/{scopeId}/items/import", handlers.HandleItemImport(app, est))
		se.Router.GET("/scopes/{scopeId}/items", handlers.HandleItemList(app, est))
		se.Router.POST("/scopes/{scopeId}/items", handlers.HandleItemSave(app, est))
		se.Router.PATCH("/scopes/{scopeId}/items/{itemId}", handlers.HandleItemUpdate(app, est))
		se.Router.DELETE("/scopes/{scopeId}/items/{itemId}", handlers.HandleItemDelete(app, est))

		// ── Estimate ─────────────────────────────────────────────
		se.Router.GET("/projects/{projectId}/estimate", handlers.HandleEstimateView(app, est, cfg.LoadConcurrency))
		se.Router.GET("/api/projects/{projectId}/estimate", handlers.HandleEstimateJSON(app, est, cfg.LoadConcurrency))
		se.Router.GET("/projects/{projectId}/estimate/export/excel", handlers.HandleEstimateExportExcel(app, est, cfg.LoadConcurrency))
		se.Router.GET("/projects/{projectId}/estimate/export/pdf", handlers.HandleEstimateExportPDF(app, est, cfg.LoadConcurrency))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
