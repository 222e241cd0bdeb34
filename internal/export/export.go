// Package export writes selected business records to CSV or Excel files.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/resilience"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ParseFormat maps a request value to a Format. Anything other than
// "excel" exports as CSV.
func ParseFormat(s string) Format {
	if Format(s) == FormatExcel {
		return FormatExcel
	}
	return FormatCSV
}

const (
	baseName = "business_leads_export"

	mimeCSV  = "text/csv"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	utf8BOM = "\ufeff"
)

// File describes a written export.
type File struct {
	Path         string
	Format       Format
	ContentType  string
	DownloadName string
	Size         int64
}

// Exporter writes exports to a fixed path per format inside dir. Every
// export of the same format overwrites the previous file.
type Exporter struct {
	dir string

	mu        sync.Mutex
	writeXLSX func(t *Table, path string) error
}

// NewExporter creates an Exporter writing into dir, or the OS temp dir
// when dir is empty.
func NewExporter(dir string) *Exporter {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Exporter{dir: dir, writeXLSX: writeXLSX}
}

// Write renders a JSON array of objects as format. An Excel failure falls
// back to CSV.
func (e *Exporter) Write(records []byte, format Format) (*File, error) {
	table, err := BuildTable(records)
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, resilience.NewConfigError("No businesses selected for export")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	log := zap.L().With(zap.Int("records", len(table.Rows)), zap.String("format", string(format)))

	var f *File
	if format == FormatExcel {
		f = e.file(FormatExcel)
		if err := e.writeXLSX(table, f.Path); err != nil {
			log.Error("export: excel write failed, falling back to csv", zap.Error(err))
			f = nil
		}
	}
	if f == nil {
		f = e.file(FormatCSV)
		if err := writeCSV(table, f.Path); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: generated file %s not found", f.Path)
	}
	if info.Size() == 0 {
		return nil, eris.New("export: generated file is empty")
	}
	f.Size = info.Size()

	log.Info("export: file written", zap.String("path", f.Path), zap.Int64("bytes", f.Size))
	return f, nil
}

func (e *Exporter) file(format Format) *File {
	if format == FormatExcel {
		return &File{
			Path:         filepath.Join(e.dir, baseName+".xlsx"),
			Format:       FormatExcel,
			ContentType:  mimeXLSX,
			DownloadName: "business_leads.xlsx",
		}
	}
	return &File{
		Path:         filepath.Join(e.dir, baseName+".csv"),
		Format:       FormatCSV,
		ContentType:  mimeCSV,
		DownloadName: "business_leads.csv",
	}
}

func writeCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.WriteString(utf8BOM); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return eris.Wrap(err, "export: write rows")
	}
	if err := f.Sync(); err != nil {
		return eris.Wrap(err, "export: sync csv")
	}
	return nil
}

func writeXLSX(t *Table, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, t.Columns)
	for _, r := range t.Rows {
		addRow(sheet, r)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
