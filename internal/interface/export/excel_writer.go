package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"manifest-service/internal/domain/entity"
)

const (
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	defaultSheetName = "Sheet1"
)

// ExcelWriter renders export tables as XLSX workbooks
type ExcelWriter struct{}

// NewExcelWriter creates a new XLSX export writer
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{}
}

// ContentType returns the MIME type of the produced file
func (w *ExcelWriter) ContentType() string {
	return xlsxContentType
}

// Extension returns the file extension, dot included
func (w *ExcelWriter) Extension() string {
	return ".xlsx"
}

// Write lays the header in row 1 and one row per record below it
func (w *ExcelWriter) Write(ctx context.Context, table *entity.ExportTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.SheetName
	if sheet == "" {
		sheet = defaultSheetName
	}
	if sheet != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := toCells(table.Headers)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := toCells(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := styleHeader(f, sheet, len(table.Headers)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	if columns == 0 {
		return nil
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

// toCells keeps every value as text so dates and passport numbers are not reinterpreted
func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
