package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/xuri/excelize/v2"

	"norskk/testhelpers"
)

func uploadRequest(t *testing.T, scopeID, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte(content))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/scopes/"+scopeID+"/items/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetPathValue("scopeId", scopeID)
	return req
}

func countItems(t *testing.T, app *pocketbase.PocketBase, scopeID string) int {
	t.Helper()
	recs, err := app.FindRecordsByFilter("items", "scope = {:s}", "", 0, 0, map[string]any{"s": scopeID})
	if err != nil {
		t.Fatalf("query items: %v", err)
	}
	return len(recs)
}

func TestHandleItemImport_CSV(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Import")
	scope := testhelpers.CreateTestScope(t, app, proj.Id, "Site")

	csv := "Category,Description,Qty,Unit,Unit Price,PST\n" +
		"Materials,Gravel,10,t,5,\n" +
		"Equipment,Loader,1,day,900,63\n"
	rec := httptest.NewRecorder()
	if err := HandleItemImport(app, testEstimator())(newTestRequestEvent(app, uploadRequest(t, scope.Id, "items.csv", csv), rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := countItems(t, app, scope.Id); n != 2 {
		t.Fatalf("expected 2 imported items, got %d", n)
	}

	gravel, err := app.FindFirstRecordByData("items", "name", "Gravel")
	if err != nil {
		t.Fatalf("find gravel: %v", err)
	}
	if !approxEqual(gravel.GetFloat("pst"), 3.5) {
		t.Errorf("imported gravel pst = %v, want 3.5", gravel.GetFloat("pst"))
	}
	loader, _ := app.FindFirstRecordByData("items", "name", "Loader")
	if loader.GetFloat("pst") != 63 {
		t.Errorf("imported loader pst = %v, want 63", loader.GetFloat("pst"))
	}
}

func TestHandleItemImport_RowErrorsWriteNothing(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Import")
	scope := testhelpers.CreateTestScope(t, app, proj.Id, "Site")

	csv := "Category,Description,Qty\nLabor,Crew,8\nLabor,,4\n"
	rec := httptest.NewRecorder()
	if err := HandleItemImport(app, testEstimator())(newTestRequestEvent(app, uploadRequest(t, scope.Id, "items.csv", csv), rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Description is required") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if n := countItems(t, app, scope.Id); n != 0 {
		t.Errorf("expected no items written, got %d", n)
	}
}

func TestHandleItemImport_BadFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Import")
	scope := testhelpers.CreateTestScope(t, app, proj.Id, "Site")

	rec := httptest.NewRecorder()
	if err := HandleItemImport(app, testEstimator())(newTestRequestEvent(app, uploadRequest(t, scope.Id, "items.txt", "x"), rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleItemImportTemplate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/items/import/template", nil)
	rec := httptest.NewRecorder()
	if err := HandleItemImportTemplate(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("template is not a workbook: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Items", "A1"); v != "Category" {
		t.Errorf("A1 = %q, want Category", v)
	}
}

func TestHandleItemImportErrors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	body := `[{"row":3,"field":"Description","message":"Description is required"}]`
	req := httptest.NewRequest(http.MethodPost, "/items/import/errors", strings.NewReader(body))
	rec := httptest.NewRecorder()
	if err := HandleItemImportErrors(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("report is not a workbook: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Errors", "C2"); v != "Description is required" {
		t.Errorf("C2 = %q", v)
	}
}
