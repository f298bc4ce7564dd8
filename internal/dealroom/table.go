package dealroom

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Table is a loosely typed Dealroom export: a header plus string rows.
// Dealroom exports vary by workspace, so columns are discovered, not assumed.
type Table struct {
	Header []string
	Rows   [][]string

	nameCol    int
	websiteCol int
}

// Load reads a Dealroom export. CSV and XLSX are both accepted, chosen by
// file extension.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadXLSX(path)
	default:
		return loadCSV(path)
	}
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dealroom: open csv")
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dealroom: read csv")
	}
	if len(records) == 0 {
		return nil, eris.New("dealroom: export is empty")
	}
	return newTable(records[0], records[1:])
}

func loadXLSX(path string) (*Table, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "dealroom: open xlsx")
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.New("dealroom: workbook has no sheets")
	}

	sheet := wb.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.New("dealroom: export is empty")
	}

	toStrings := func(row *xlsx.Row) []string {
		out := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			out[i] = cell.String()
		}
		return out
	}

	header := toStrings(sheet.Rows[0])
	rows := make([][]string, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		rows = append(rows, toStrings(row))
	}
	return newTable(header, rows)
}

func newTable(header []string, rows [][]string) (*Table, error) {
	t := &Table{Header: header, Rows: rows, nameCol: -1, websiteCol: -1}

	lower := make(map[string]int, len(header))
	for i, h := range header {
		lower[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, candidate := range []string{"name", "company", "company name"} {
		if i, ok := lower[candidate]; ok {
			t.nameCol = i
			break
		}
	}
	for _, candidate := range []string{"website", "website url", "url"} {
		if i, ok := lower[candidate]; ok {
			t.websiteCol = i
			break
		}
	}
	if t.nameCol < 0 {
		return nil, eris.New("dealroom: export must include a company name column (e.g. 'Name')")
	}
	return t, nil
}

// cell returns the value of column col in row, or "" when the row is ragged.
func (t *Table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Name returns the company name of one row.
func (t *Table) Name(row []string) string { return t.cell(row, t.nameCol) }

// Website returns the website of one row; empty when no website column
// exists.
func (t *Table) Website(row []string) string { return t.cell(row, t.websiteCol) }
