package logsheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"google.golang.org/api/sheets/v4"
)

// MakeTSV writes the worksheet contents (header row included) to a TSV file. Rows
// are written as is, so diagnostic rows keep their shorter width.
func MakeTSV(f io.Writer, data *sheets.ValueRange) error {
	if len(data.Values) == 0 {
		return fmt.Errorf("empty sheet")
	}

	if len(data.Values[0]) == 0 {
		return fmt.Errorf("missing/invalid header row")
	}

	w := csv.NewWriter(f)
	w.Comma = '\t'

	for _, row := range data.Values {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// ParseTSV reads a TSV file in the format written by MakeTSV and returns the header
// and data rows separately.
func ParseTSV(f io.Reader) ([]any, [][]any, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("TSV file is empty")
	}

	header := make([]any, len(records[0]))
	for i, v := range records[0] {
		header[i] = v
	}

	rows := make([][]any, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = v
		}

		rows = append(rows, row)
	}

	return header, rows, nil
}
