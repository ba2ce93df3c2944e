package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/b2b-portal/internal/domain"
)

// ParseMode selects how a line is split into fields.
type ParseMode string

const (
	// ParseModeNaive splits on every comma. Quotes are ordinary characters,
	// so a field cannot contain a comma.
	ParseModeNaive ParseMode = "naive"
	// ParseModeQuoted reads RFC 4180 quoted fields.
	ParseModeQuoted ParseMode = "quoted"
)

func ParseModeOf(s string) (ParseMode, error) {
	switch ParseMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ParseModeNaive:
		return ParseModeNaive, nil
	case ParseModeQuoted:
		return ParseModeQuoted, nil
	default:
		return "", fmt.Errorf("unknown parse mode %q", s)
	}
}

// Required import columns.
const (
	ColumnName  = "name"
	ColumnPrice = "price"
)

// Table is a parsed upload: the header and every non-blank data row.
type Table struct {
	Header []string
	Rows   []domain.ImportRow
}

// Parse reads text whose first line is the header. Blank lines are dropped
// and not numbered. Header names are trimmed and lower-cased; every row gets
// a value for every header column ("" when the line is short), and surplus
// fields are ignored. Rows are classified as they are read.
func Parse(text string, mode ParseMode) (*Table, error) {
	var records [][]string
	var err error
	switch mode {
	case ParseModeQuoted:
		records, err = splitQuoted(text)
	default:
		records = splitNaive(text)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.NewValidationError("file is empty")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	t := &Table{Header: header, Rows: make([]domain.ImportRow, 0, len(records)-1)}
	for i, rec := range records[1:] {
		fields := make(map[string]string, len(header))
		for c, name := range header {
			if name == "" {
				continue
			}
			if c < len(rec) {
				fields[name] = strings.TrimSpace(rec[c])
			} else {
				fields[name] = ""
			}
		}
		t.Rows = append(t.Rows, Classify(domain.ImportRow{Number: i + 1, Fields: fields}))
	}
	return t, nil
}

func splitNaive(text string) [][]string {
	var records [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, strings.Split(line, ","))
	}
	return records
}

func splitQuoted(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("malformed csv: %v", err))
		}
		if blank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Classify marks a row valid when both name and price are present.
func Classify(row domain.ImportRow) domain.ImportRow {
	var missing []string
	if row.Field(ColumnName) == "" {
		missing = append(missing, ColumnName)
	}
	if row.Field(ColumnPrice) == "" {
		missing = append(missing, ColumnPrice)
	}
	row.Valid = len(missing) == 0
	row.Error = ""
	if !row.Valid {
		row.Error = "missing required field: " + strings.Join(missing, ", ")
	}
	return row
}
