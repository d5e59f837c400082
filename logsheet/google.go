package logsheet

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/sheets/v4"
)

var (
	ErrInvalidURL    = errors.New("invalid spreadsheet URL")
	ErrSheetNotFound = errors.New("worksheet not found")
)

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// GoogleSheet is a Table backed by a single worksheet in a Google Sheets spreadsheet.
type GoogleSheet struct {
	google        *sheets.Service
	spreadsheetID string
	sheetID       int64
	name          string
}

// SpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
func SpreadsheetID(url string) (string, error) {
	match := spreadsheetURL.FindStringSubmatch(strings.TrimSpace(url))
	if len(match) < 2 || match[1] == "" {
		return "", fmt.Errorf("%w - expected something like 'https://docs.google.com/spreadsheets/d/1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms'", ErrInvalidURL)
	}

	return match[1], nil
}

// OpenGoogleSheet resolves the spreadsheet and worksheet once so that the returned
// handle can be reused for every request.
func OpenGoogleSheet(ctx context.Context, google *sheets.Service, url string, name string) (*GoogleSheet, error) {
	id, err := SpreadsheetID(url)
	if err != nil {
		return nil, err
	}

	spreadsheet, err := google.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%w)", err)
	}

	sheet, err := getSheet(spreadsheet, name)
	if err != nil {
		return nil, err
	}

	return &GoogleSheet{
		google:        google,
		spreadsheetID: spreadsheet.SpreadsheetId,
		sheetID:       sheet.Properties.SheetId,
		name:          sheet.Properties.Title,
	}, nil
}

func (g *GoogleSheet) Append(ctx context.Context, row []any) error {
	return g.AppendRows(ctx, [][]any{row})
}

// AppendRows appends the rows after the last row of the worksheet. Values are
// written RAW so that payloads are stored verbatim and never parsed as formulas.
func (g *GoogleSheet) AppendRows(ctx context.Context, rows [][]any) error {
	values := sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         rows,
	}

	if _, err := g.google.Spreadsheets.Values.Append(g.spreadsheetID, g.area("A1"), &values).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("error appending to worksheet '%v' (%w)", g.name, err)
	}

	return nil
}

// RowCount returns the number of the last row with content, header included. Only
// column A is fetched: every log and diagnostic row starts with a value.
func (g *GoogleSheet) RowCount(ctx context.Context) (int, error) {
	values, err := g.google.Spreadsheets.Values.Get(g.spreadsheetID, g.area("A:A")).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to count rows in worksheet '%v' (%w)", g.name, err)
	}

	return len(values.Values), nil
}

// DeleteRows deletes 'count' rows starting at the 1-based row 'start'.
func (g *GoogleSheet) DeleteRows(ctx context.Context, start, count int) error {
	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    g.sheetID,
						Dimension:  "ROWS",
						StartIndex: int64(start - 1),
						EndIndex:   int64(start - 1 + count),
					},
				},
			},
		},
	}

	if _, err := g.google.Spreadsheets.BatchUpdate(g.spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("error deleting rows from worksheet '%v' (%w)", g.name, err)
	}

	return nil
}

// Values retrieves the contents of the worksheet.
func (g *GoogleSheet) Values(ctx context.Context) (*sheets.ValueRange, error) {
	values, err := g.google.Spreadsheets.Values.Get(g.spreadsheetID, g.area("")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from worksheet '%v' (%w)", g.name, err)
	}

	return values, nil
}

func (g *GoogleSheet) area(cells string) string {
	name := "'" + strings.ReplaceAll(g.name, "'", "''") + "'"
	if cells == "" {
		return name
	}

	return name + "!" + cells
}

func getSheet(spreadsheet *sheets.Spreadsheet, name string) (*sheets.Sheet, error) {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && normalise(sheet.Properties.Title) == normalise(name) {
			return sheet, nil
		}
	}

	return nil, fmt.Errorf("%w: '%s'", ErrSheetNotFound, name)
}

func normalise(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
