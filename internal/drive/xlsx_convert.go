package drive

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// IsXLSX reports whether a file name or mime type denotes a workbook.
func IsXLSX(name, mimeType string) bool {
	return mimeType == xlsxMimeType || strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// XLSXToCSV converts the first sheet of a workbook to CSV text. Fields that
// contain commas or quotes come out quoted.
func XLSXToCSV(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var out bytes.Buffer
	w := csv.NewWriter(&out)

	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return "", fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if err := rows.Error(); err != nil {
		return "", fmt.Errorf("error iterating rows in %s: %w", sheet, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return out.String(), nil
}
