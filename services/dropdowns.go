package services

// CategoryOptions lists the item categories offered in the estimate editor.
// Free text is still accepted; only DefaultTaxCategories trigger automatic PST.
var CategoryOptions = []string{
	"Equipment",
	"Labor",
	"Materials",
	"Miscellaneous",
	"Permits & Fees",
	"Subcontractors",
	"Trucking & Aggregates",
}

// UnitOptions lists the common units of measure.
var UnitOptions = []string{
	"ea",
	"hr",
	"day",
	"wk",
	"lf",
	"sf",
	"sy",
	"cy",
	"m",
	"m2",
	"m3",
	"t",
	"kg",
	"load",
	"ls",
}
