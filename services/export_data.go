package services

import "fmt"

// ExportRow represents a single row in the estimate export (scope header or item).
type ExportRow struct {
	Level         int    // 0 = scope header, 1 = item
	Index         string // "1", "1.1" etc
	Category      string
	Description   string
	Qty           float64
	Unit          string
	UnitPrice     float64
	PST           float64
	MarkupPercent float64
	Total         float64
}

// Project is the descriptive part of a project record.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Developer string `json:"developer"`
	Estimator string `json:"estimator"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ExportData holds all data needed for export.
type ExportData struct {
	Title       string
	Address     string
	Developer   string
	Estimator   string
	CreatedDate string
	Rows        []ExportRow
	ByCategory  []CategorySummary
	GrandTotal  float64
}

// BuildExportData flattens a loaded project estimate into export rows. Scopes
// keep their load order and items their canonical order.
func (e *Estimator) BuildExportData(project Project, view ProjectView, createdDate string) ExportData {
	var rows []ExportRow
	for i, s := range view.Scopes {
		var scopeTotal float64
		if i < len(view.Estimate.Scopes) {
			scopeTotal = view.Estimate.Scopes[i].Total
		}
		rows = append(rows, ExportRow{
			Level:       0,
			Index:       fmt.Sprintf("%d", i+1),
			Description: s.Scope.Name,
			Total:       scopeTotal,
		})
		for j, p := range e.Price(SortItems(s.Items)) {
			rows = append(rows, ExportRow{
				Level:         1,
				Index:         fmt.Sprintf("%d.%d", i+1, j+1),
				Category:      p.Category,
				Description:   p.Name,
				Qty:           p.Quantity,
				Unit:          p.Unit,
				UnitPrice:     p.UnitPrice,
				PST:           p.Cost.Tax,
				MarkupPercent: p.MarkupPercent,
				Total:         p.Cost.Total,
			})
		}
	}

	return ExportData{
		Title:       project.Name,
		Address:     project.Address,
		Developer:   project.Developer,
		Estimator:   project.Estimator,
		CreatedDate: createdDate,
		Rows:        rows,
		ByCategory:  view.Estimate.ByCategory,
		GrandTotal:  view.Estimate.GrandTotal,
	}
}
