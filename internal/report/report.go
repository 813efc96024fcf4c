package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/contact-harvester/internal/schemas"
	"github.com/jonathan/contact-harvester/internal/types"
)

// Format selects the report encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// SheetName is the worksheet that holds rows in XLSX reports.
const SheetName = "Results"

var header = []string{"Company", "Emails"}

// ParseFormat parses a format name, case-insensitively. "xls" and "excel" mean XLSX.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "xls", "excel":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", &FormatError{Format: name}
	}
}

// ResolveFormat picks the format from an explicit name, falling back to the
// extension of path, then CSV.
func ResolveFormat(name, path string) (Format, error) {
	if name != "" {
		return ParseFormat(name)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return FormatCSV, nil
	}
	if f, err := ParseFormat(ext); err == nil {
		return f, nil
	}
	return FormatCSV, nil
}

// Write encodes rows to w in the given format.
func Write(w io.Writer, format Format, rows []types.Row) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLSX:
		return writeXLSX(w, rows)
	case FormatJSON:
		return writeJSON(w, rows)
	default:
		return &FormatError{Format: string(format)}
	}
}

// WriteFile writes rows to path, creating parent directories as needed.
func WriteFile(path string, format Format, rows []types.Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &WriteError{Message: "failed to create output directory", Cause: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Message: "failed to create report file", Cause: err}
	}
	if err := Write(f, format, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &WriteError{Message: "failed to close report file", Cause: err}
	}
	return nil
}

func writeCSV(w io.Writer, rows []types.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return &WriteError{Message: "failed to write CSV header", Cause: err}
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Company, row.Emails}); err != nil {
			return &WriteError{Message: "failed to write CSV row", Cause: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &WriteError{Message: "failed to flush CSV", Cause: err}
	}
	return nil
}

func writeXLSX(w io.Writer, rows []types.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return &WriteError{Message: "failed to name worksheet", Cause: err}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return &WriteError{Message: "failed to write XLSX header", Cause: err}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return &WriteError{Message: "failed to create header style", Cause: err}
	}
	if err := f.SetCellStyle(SheetName, "A1", "B1", bold); err != nil {
		return &WriteError{Message: "failed to style header", Cause: err}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &WriteError{Message: "failed to address XLSX row", Cause: err}
		}
		values := []interface{}{row.Company, row.Emails}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return &WriteError{Message: "failed to write XLSX row", Cause: err}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return &WriteError{Message: "failed to size columns", Cause: err}
	}
	if err := f.SetColWidth(SheetName, "B", "B", 60); err != nil {
		return &WriteError{Message: "failed to size columns", Cause: err}
	}

	if _, err := f.WriteTo(w); err != nil {
		return &WriteError{Message: "failed to write XLSX", Cause: err}
	}
	return nil
}

func writeJSON(w io.Writer, rows []types.Row) error {
	if rows == nil {
		rows = []types.Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return &WriteError{Message: "failed to marshal rows", Cause: err}
	}
	if err := schemas.ValidateRows(data); err != nil {
		return &WriteError{Message: "rows failed schema validation", Cause: err}
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return &WriteError{Message: "failed to write JSON", Cause: err}
	}
	return nil
}
