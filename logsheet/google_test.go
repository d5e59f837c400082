package logsheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const testSpreadsheetID = "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"

type request struct {
	method string
	path   string
	query  url.Values
	body   map[string]any
}

// sheetsAPI is a minimal Sheets v4 endpoint that records every request and serves
// 'values' for Values.Get.
type sheetsAPI struct {
	requests []request
	values   [][]any
	sync.Mutex
}

func (api *sheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{}
	if r.Method == http.MethodPost {
		json.NewDecoder(r.Body).Decode(&body)
	}

	api.Lock()
	api.requests = append(api.requests, request{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		body:   body,
	})
	values := api.values
	api.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/"+testSpreadsheetID:
		json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": testSpreadsheetID,
			"sheets": []any{
				map[string]any{"properties": map[string]any{"sheetId": 0, "title": "Summary"}},
				map[string]any{"properties": map[string]any{"sheetId": 1397, "title": "NewData"}},
			},
		})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/"+testSpreadsheetID+"/values/"):
		json.NewEncoder(w).Encode(map[string]any{"values": values})

	default:
		w.Write([]byte(`{"spreadsheetId":"` + testSpreadsheetID + `"}`))
	}
}

func (api *sheetsAPI) set(values [][]any) {
	api.Lock()
	defer api.Unlock()

	api.values = values
}

// last returns the most recent request, skipping the spreadsheet lookup made by OpenGoogleSheet.
func (api *sheetsAPI) last(t *testing.T) request {
	t.Helper()

	api.Lock()
	defer api.Unlock()

	if len(api.requests) < 2 {
		t.Fatalf("Expected a Sheets API request, got %v", len(api.requests)-1)
	}

	return api.requests[len(api.requests)-1]
}

func openTestSheet(t *testing.T) (*GoogleSheet, *sheetsAPI) {
	api := sheetsAPI{}
	server := httptest.NewServer(&api)
	t.Cleanup(server.Close)

	ctx := context.Background()
	google, err := sheets.NewService(ctx, option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("Error creating Sheets client (%v)", err)
	}

	sheet, err := OpenGoogleSheet(ctx, google, "https://docs.google.com/spreadsheets/d/"+testSpreadsheetID+"/edit", " newdata ")
	if err != nil {
		t.Fatalf("Error opening worksheet (%v)", err)
	}

	return sheet, &api
}

func TestSpreadsheetID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms"},
		{"https://docs.google.com/spreadsheets/d/1SDjUns8Wz5xxxxxxxxx/edit?gid=0#gid=0", "1SDjUns8Wz5xxxxxxxxx"},
		{"  https://docs.google.com/spreadsheets/d/1SDjUns8Wz5xxxxxxxxx/edit  ", "1SDjUns8Wz5xxxxxxxxx"},
	}

	for _, test := range tests {
		id, err := SpreadsheetID(test.url)
		if err != nil {
			t.Fatalf("Unexpected error extracting spreadsheet ID from %v (%v)", test.url, err)
		}

		if id != test.expected {
			t.Errorf("Incorrect spreadsheet ID for %v - expected:%v, got:%v", test.url, test.expected, id)
		}
	}
}

func TestSpreadsheetIDWithInvalidURL(t *testing.T) {
	tests := []string{
		"",
		"https://example.com/spreadsheets/d/1SDjUns8Wz5xxxxxxxxx",
		"https://docs.google.com/spreadsheets/d/",
	}

	for _, url := range tests {
		if _, err := SpreadsheetID(url); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Expected ErrInvalidURL for %q, got %v", url, err)
		}
	}
}

func TestGetSheet(t *testing.T) {
	spreadsheet := sheets.Spreadsheet{
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{SheetId: 0, Title: "Summary"}},
			{Properties: &sheets.SheetProperties{SheetId: 1397, Title: "NewData"}},
		},
	}

	sheet, err := getSheet(&spreadsheet, " newdata ")
	if err != nil {
		t.Fatalf("Unexpected error finding worksheet (%v)", err)
	}

	if sheet.Properties.SheetId != 1397 {
		t.Errorf("Incorrect worksheet - expected:%v, got:%v", 1397, sheet.Properties.SheetId)
	}

	if _, err := getSheet(&spreadsheet, "OldData"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("Expected ErrSheetNotFound, got %v", err)
	}
}

func TestArea(t *testing.T) {
	tests := []struct {
		name     string
		cells    string
		expected string
	}{
		{"NewData", "A1", "'NewData'!A1"},
		{"NewData", "", "'NewData'"},
		{"Hub's Data", "A1", "'Hub''s Data'!A1"},
	}

	for _, test := range tests {
		g := GoogleSheet{name: test.name}
		if area := g.area(test.cells); area != test.expected {
			t.Errorf("Incorrect range - expected:%v, got:%v", test.expected, area)
		}
	}
}

func TestOpenGoogleSheet(t *testing.T) {
	sheet, _ := openTestSheet(t)

	if sheet.spreadsheetID != testSpreadsheetID {
		t.Errorf("Incorrect spreadsheet ID - expected:%v, got:%v", testSpreadsheetID, sheet.spreadsheetID)
	}

	if sheet.sheetID != 1397 || sheet.name != "NewData" {
		t.Errorf("Incorrect worksheet - expected:%v %v, got:%v %v", 1397, "NewData", sheet.sheetID, sheet.name)
	}
}

func TestGoogleSheetAppend(t *testing.T) {
	sheet, api := openTestSheet(t)
	row := []any{"2023-01-15 12:04:05", "1f0030001647ffffffffffff", "2023-01-15T20:04:04.123Z", "=SUM(A1:A2)"}

	if err := sheet.Append(context.Background(), row); err != nil {
		t.Fatalf("Unexpected error appending row (%v)", err)
	}

	rq := api.last(t)

	if rq.method != http.MethodPost || rq.path != "/v4/spreadsheets/"+testSpreadsheetID+"/values/'NewData'!A1:append" {
		t.Errorf("Incorrect append request - got:%v %v", rq.method, rq.path)
	}

	if v := rq.query.Get("valueInputOption"); v != "RAW" {
		t.Errorf("Incorrect valueInputOption - expected:%v, got:%v", "RAW", v)
	}

	if v := rq.query.Get("insertDataOption"); v != "INSERT_ROWS" {
		t.Errorf("Incorrect insertDataOption - expected:%v, got:%v", "INSERT_ROWS", v)
	}

	expected := map[string]any{
		"majorDimension": "ROWS",
		"values":         []any{row},
	}

	if !reflect.DeepEqual(rq.body, expected) {
		t.Errorf("Incorrect append body\n   expected: %v\n   got:      %v\n", expected, rq.body)
	}
}

func TestGoogleSheetRowCount(t *testing.T) {
	sheet, api := openTestSheet(t)
	api.set([][]any{
		header,
		{"2023-01-15 12:04:05"},
		{"ERROR 00000000-0000-0000-0000-000000000001: quota exceeded"},
	})

	count, err := sheet.RowCount(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error counting rows (%v)", err)
	}

	if count != 3 {
		t.Errorf("Incorrect row count - expected:%v, got:%v", 3, count)
	}

	if rq := api.last(t); rq.method != http.MethodGet || rq.path != "/v4/spreadsheets/"+testSpreadsheetID+"/values/'NewData'!A:A" {
		t.Errorf("Incorrect row count request - got:%v %v", rq.method, rq.path)
	}
}

func TestGoogleSheetDeleteRows(t *testing.T) {
	sheet, api := openTestSheet(t)

	if err := sheet.DeleteRows(context.Background(), 2, 500); err != nil {
		t.Fatalf("Unexpected error deleting rows (%v)", err)
	}

	rq := api.last(t)

	if rq.method != http.MethodPost || rq.path != "/v4/spreadsheets/"+testSpreadsheetID+":batchUpdate" {
		t.Errorf("Incorrect delete request - got:%v %v", rq.method, rq.path)
	}

	expected := map[string]any{
		"requests": []any{
			map[string]any{
				"deleteDimension": map[string]any{
					"range": map[string]any{
						"sheetId":    float64(1397),
						"dimension":  "ROWS",
						"startIndex": float64(1),
						"endIndex":   float64(501),
					},
				},
			},
		},
	}

	if !reflect.DeepEqual(rq.body, expected) {
		t.Errorf("Incorrect delete body\n   expected: %v\n   got:      %v\n", expected, rq.body)
	}
}

func TestEnforceOnGoogleSheet(t *testing.T) {
	sheet, api := openTestSheet(t)
	values := [][]any{header}
	for len(values) < MaxRows {
		values = append(values, []any{"2023-01-15 12:04:05"})
	}

	api.set(values)

	deleted, err := DefaultRetention.Enforce(context.Background(), sheet)
	if err != nil {
		t.Fatalf("Unexpected error enforcing retention (%v)", err)
	}

	if deleted != RowsToDelete {
		t.Errorf("Incorrect deleted rows - expected:%v, got:%v", RowsToDelete, deleted)
	}

	rq := api.last(t)
	dimension := rq.body["requests"].([]any)[0].(map[string]any)["deleteDimension"].(map[string]any)["range"]
	expected := map[string]any{"sheetId": float64(1397), "dimension": "ROWS", "startIndex": float64(1), "endIndex": float64(501)}

	if !reflect.DeepEqual(dimension, expected) {
		t.Errorf("Incorrect deleted range\n   expected: %v\n   got:      %v\n", expected, dimension)
	}
}
