package export

import (
	"bytes"
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadCSV reads an exported CSV file, header row first. A leading UTF-8
// byte order mark is ignored.
func ReadCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv")
	}
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "export: parse csv")
	}
	return rows, nil
}

// ReadXLSX reads the first sheet of an exported workbook, header row first.
func ReadXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "export: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("export: workbook has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Read reads back a written export in either format.
func Read(f *File) ([][]string, error) {
	if f.Format == FormatExcel {
		return ReadXLSX(f.Path)
	}
	return ReadCSV(f.Path)
}
