package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportColumn describes one recognised column of an item import file.
type ImportColumn struct {
	Key     string
	Label   string
	Aliases []string
}

// ItemImportColumns are the columns accepted by ParseItemFile, matched
// case-insensitively against the header row by label or alias.
var ItemImportColumns = []ImportColumn{
	{Key: "category", Label: "Category"},
	{Key: "name", Label: "Description", Aliases: []string{"name", "item"}},
	{Key: "quantity", Label: "Quantity", Aliases: []string{"qty"}},
	{Key: "unit", Label: "Unit", Aliases: []string{"uom"}},
	{Key: "unit_price", Label: "Unit Price", Aliases: []string{"rate", "price"}},
	{Key: "pst", Label: "PST"},
	{Key: "markup_percent", Label: "Markup %", Aliases: []string{"markup"}},
	{Key: "notes", Label: "Notes"},
}

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing an uploaded item file.
type ImportResult struct {
	TotalRows    int               `json:"total_rows"`
	ValidRows    int               `json:"valid_rows"`
	ErrorRows    int               `json:"error_rows"`
	Errors       []ValidationError `json:"errors"`
	Unrecognized []string          `json:"unrecognized_columns"`
	Items        []Item            `json:"-"`
	FileName     string            `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	return rows[0], rows[1:], nil
}

// mapHeadersToColumns maps uploaded column headers to column keys.
// Returns ordered list of keys (one per header, "" when unknown) and the
// unrecognised headers.
func mapHeadersToColumns(headers []string, columns []ImportColumn) ([]string, []string) {
	lookup := make(map[string]string)
	for _, c := range columns {
		lookup[strings.ToLower(c.Label)] = c.Key
		lookup[c.Key] = c.Key
		for _, a := range c.Aliases {
			lookup[strings.ToLower(a)] = c.Key
		}
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))
		if key, ok := lookup[norm]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ParseItemFile parses an uploaded .csv or .xlsx file into items. Blank rows
// are skipped; a row needs a description. Numeric cells follow ParseAmount,
// so unparsable values import as 0 rather than failing the row.
func ParseItemFile(file io.Reader, fileName string) (*ImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	keys, unrecognized := mapHeadersToColumns(headers, ItemImportColumns)
	hasName := false
	for _, k := range keys {
		if k == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("missing required column %q", "Description")
	}

	result := &ImportResult{FileName: fileName, Unrecognized: unrecognized}
	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row

		data := make(map[string]string, len(keys))
		blank := true
		for colIdx, key := range keys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[colIdx])
			if v != "" {
				blank = false
			}
			data[key] = v
		}
		if blank {
			continue
		}
		result.TotalRows++

		if data["name"] == "" {
			result.Errors = append(result.Errors, ValidationError{
				Row:     rowNum,
				Field:   "Description",
				Message: "Description is required",
			})
			continue
		}

		result.Items = append(result.Items, Item{
			Category:      data["category"],
			Name:          data["name"],
			Quantity:      ParseAmount(data["quantity"]),
			Unit:          data["unit"],
			UnitPrice:     ParseAmount(data["unit_price"]),
			PST:           ParseAmount(data["pst"]),
			MarkupPercent: ParseAmount(data["markup_percent"]),
			Notes:         data["notes"],
		})
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows

	return result, nil
}

// GenerateImportTemplate creates a blank .xlsx with the import header row.
func GenerateImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Items"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, c := range ItemImportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		label := c.Label
		if c.Key == "name" {
			label += " *"
		}
		f.SetCellValue(sheet, cell, label)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, e.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
