package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV_Valid(t *testing.T) {
	input := "Category,Description,Qty\nMaterials,Rebar,2\nLabor,Crew,8\n"
	headers, rows, err := parseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(headers) != 3 {
		t.Errorf("expected 3 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(rows))
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader("Category,Description\n"))
	if err == nil {
		t.Fatal("expected error for header-only file")
	}
	if !strings.Contains(err.Error(), "at least one data row") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMapHeadersToColumns(t *testing.T) {
	headers := []string{"Category", " QTY ", "Description *", "Rate", "Colour"}
	mapped, unrecognized := mapHeadersToColumns(headers, ItemImportColumns)
	want := []string{"category", "quantity", "name", "unit_price", ""}
	for i := range want {
		if mapped[i] != want[i] {
			t.Errorf("header %q mapped to %q, want %q", headers[i], mapped[i], want[i])
		}
	}
	if len(unrecognized) != 1 || unrecognized[0] != "Colour" {
		t.Errorf("unrecognized = %v", unrecognized)
	}
}

func TestParseItemFile_CSV(t *testing.T) {
	input := strings.Join([]string{
		"Category,Description,Qty,Unit,Unit Price,PST,Markup %,Notes",
		"Materials,Rebar 15M,2,t,1200,,10,",
		"Labor,Rebar placement,16,hr,abc,5,,night shift",
		",,,,,,,",
		"Equipment,,1,day,1800,,,",
	}, "\n")

	res, err := ParseItemFile(strings.NewReader(input), "items.CSV")
	if err != nil {
		t.Fatalf("ParseItemFile() error = %v", err)
	}
	if res.TotalRows != 3 || res.ValidRows != 2 || res.ErrorRows != 1 {
		t.Errorf("counts = total %d valid %d error %d", res.TotalRows, res.ValidRows, res.ErrorRows)
	}
	if len(res.Errors) != 1 || res.Errors[0].Row != 5 {
		t.Errorf("errors = %+v", res.Errors)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	if res.Items[0].Quantity != 2 || res.Items[0].UnitPrice != 1200 || res.Items[0].MarkupPercent != 10 {
		t.Errorf("item 0 = %+v", res.Items[0])
	}
	// unparsable unit price imports as 0
	if res.Items[1].UnitPrice != 0 || res.Items[1].PST != 5 || res.Items[1].Notes != "night shift" {
		t.Errorf("item 1 = %+v", res.Items[1])
	}
}

func TestParseItemFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"Description", "Quantity", "Unit Price", "Category"})
	f.SetSheetRow(sheet, "A2", &[]any{"Road base", 12, 28.5, "Trucking & Aggregates"})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	f.Close()

	res, err := ParseItemFile(&buf, "upload.xlsx")
	if err != nil {
		t.Fatalf("ParseItemFile() error = %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	got := res.Items[0]
	if got.Name != "Road base" || got.Quantity != 12 || got.UnitPrice != 28.5 || got.Category != "Trucking & Aggregates" {
		t.Errorf("item = %+v", got)
	}
}

func TestParseItemFile_Errors(t *testing.T) {
	if _, err := ParseItemFile(strings.NewReader("x"), "items.txt"); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := ParseItemFile(strings.NewReader("Category,Qty\nLabor,1\n"), "items.csv"); err == nil {
		t.Error("expected missing Description column error")
	}
}

func TestGenerateImportTemplate(t *testing.T) {
	b, err := GenerateImportTemplate()
	if err != nil {
		t.Fatalf("GenerateImportTemplate() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(b))
	if err != nil {
		t.Fatalf("template is not valid Excel: %v", err)
	}
	defer f.Close()
	v, _ := f.GetCellValue("Items", "B1")
	if v != "Description *" {
		t.Errorf("B1 = %q, want Description *", v)
	}
}

func TestGenerateErrorReport(t *testing.T) {
	b, err := GenerateErrorReport([]ValidationError{{Row: 3, Field: "Description", Message: "Description is required"}})
	if err != nil {
		t.Fatalf("GenerateErrorReport() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(b))
	if err != nil {
		t.Fatalf("report is not valid Excel: %v", err)
	}
	defer f.Close()
	v, _ := f.GetCellValue("Errors", "C2")
	if v != "Description is required" {
		t.Errorf("C2 = %q", v)
	}
}
