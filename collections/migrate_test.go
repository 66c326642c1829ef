package collections_test

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"norskk/collections"
	"norskk/services"
	"norskk/testhelpers"
)

func TestMigrateStaleItemTax(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Tax Project")
	scope := testhelpers.CreateTestScope(t, app, proj.Id, "Site")

	stale := testhelpers.CreateTestItem(t, app, scope.Id, testhelpers.TestItem{
		Category: "Materials", Name: "Gravel", Quantity: 10, UnitPrice: 5, PST: 1,
	})
	current := testhelpers.CreateTestItem(t, app, scope.Id, testhelpers.TestItem{
		Category: "Materials", Name: "Sand", Quantity: 2, UnitPrice: 50, PST: 7,
	})
	manual := testhelpers.CreateTestItem(t, app, scope.Id, testhelpers.TestItem{
		Category: "Equipment", Name: "Loader", Quantity: 1, UnitPrice: 900, PST: 12,
	})

	n, err := collections.MigrateStaleItemTax(app, services.DefaultTaxRules())
	if err != nil {
		t.Fatalf("MigrateStaleItemTax() error: %v", err)
	}
	if n != 1 {
		t.Errorf("updated = %d, want 1", n)
	}

	reload := func(id string) *core.Record {
		rec, err := app.FindRecordById("items", id)
		if err != nil {
			t.Fatalf("reload %s: %v", id, err)
		}
		return rec
	}
	if got := reload(stale.Id).GetFloat("pst"); got < 3.4999 || got > 3.5001 {
		t.Errorf("stale pst = %v, want 3.5", got)
	}
	if got := reload(current.Id).GetFloat("pst"); got != 7 {
		t.Errorf("current pst = %v, want 7", got)
	}
	if got := reload(manual.Id).GetFloat("pst"); got != 12 {
		t.Errorf("manual pst = %v, want 12 (untouched)", got)
	}

	// second run finds nothing to do
	n, err = collections.MigrateStaleItemTax(app, services.DefaultTaxRules())
	if err != nil || n != 0 {
		t.Errorf("second run = (%d, %v), want (0, nil)", n, err)
	}
}

func TestMigrateOrphanItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Orphans")
	scope := testhelpers.CreateTestScope(t, app, proj.Id, "Live")
	kept := testhelpers.CreateTestItem(t, app, scope.Id, testhelpers.TestItem{Category: "Labor", Name: "Crew"})

	itemsCol, _ := app.FindCollectionByNameOrId("items")
	orphan := core.NewRecord(itemsCol)
	orphan.Set("scope", "missingscope000")
	orphan.Set("name", "Leftover")
	if err := app.SaveNoValidate(orphan); err != nil {
		t.Fatalf("save orphan: %v", err)
	}

	n, err := collections.MigrateOrphanItems(app)
	if err != nil {
		t.Fatalf("MigrateOrphanItems() error: %v", err)
	}
	if n != 1 {
		t.Errorf("removed = %d, want 1", n)
	}
	if _, err := app.FindRecordById("items", orphan.Id); err == nil {
		t.Error("orphan item should be deleted")
	}
	if _, err := app.FindRecordById("items", kept.Id); err != nil {
		t.Errorf("live item should remain: %v", err)
	}
}

func TestMigrateOrphanItems_NothingToDo(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	n, err := collections.MigrateOrphanItems(app)
	if err != nil || n != 0 {
		t.Errorf("MigrateOrphanItems() = (%d, %v), want (0, nil)", n, err)
	}
}
