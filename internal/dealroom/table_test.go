package dealroom

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Companies")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Company Name", "Website URL", "HQ"} {
		header.AddCell().Value = h
	}
	row := sheet.AddRow()
	for _, v := range []string{"Quantum GmbH", "https://quantum.example", "Munich"} {
		row.AddCell().Value = v
	}
	require.NoError(t, f.Save(path))

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"Company Name", "Website URL", "HQ"}, table.Header)
	assert.Equal(t, "Quantum GmbH", table.Name(table.Rows[0]))
	assert.Equal(t, "https://quantum.example", table.Website(table.Rows[0]))
}

func TestLoadXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	f := xlsx.NewFile()
	_, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, f.Save(path))

	_, err = Load(path)
	require.Error(t, err)
}

func TestTableRaggedRow(t *testing.T) {
	table, err := newTable([]string{"Name", "Website"}, [][]string{{"OnlyName"}})
	require.NoError(t, err)
	assert.Equal(t, "OnlyName", table.Name(table.Rows[0]))
	assert.Equal(t, "", table.Website(table.Rows[0]))
}
