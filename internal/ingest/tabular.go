package ingest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// readRows loads a tabular file as string rows, dispatching on extension.
// The first row is assumed to be a header and skipped.
func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("ingest: unsupported tabular format %q", filepath.Ext(path))
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Survey exports pad short rows; tolerate ragged widths.
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx has no sheets")
	}

	var rows [][]string
	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// cell returns column i of a possibly short row, trimmed.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
