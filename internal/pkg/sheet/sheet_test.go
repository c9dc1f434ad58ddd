package sheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRead_CSV(t *testing.T) {
	input := "\xef\xbb\xbfE. Code,Name,Status\nA1,Asha,PRESENT\nB2,Bala\n"

	grid, err := Read(strings.NewReader(input), "upload.CSV")
	require.NoError(t, err)

	require.Len(t, grid, 3)
	assert.Equal(t, "E. Code", grid.Cell(0, 0))
	assert.Equal(t, "PRESENT", grid.Cell(1, 2))
	assert.Equal(t, "", grid.Cell(2, 2), "short rows read as blank")
	assert.Equal(t, "", grid.Cell(9, 9))
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheetName, "A1", &[]any{"Department", "Sales"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A2", &[]any{"E. Code", "Name", "Status"}))
	require.NoError(t, f.SetSheetRow(sheetName, "A3", &[]any{"S1", "Ravi", "ABSENT"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grid, err := Read(bytes.NewReader(buf.Bytes()), "march.xlsx")
	require.NoError(t, err)

	require.Len(t, grid, 3)
	assert.Equal(t, "Sales", grid.Cell(0, 1))
	assert.Equal(t, "ABSENT", grid.Cell(2, 2))
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "upload.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read(strings.NewReader(""), "empty.csv")
	assert.ErrorIs(t, err, ErrEmptyWorksheet)

	_, err = Read(strings.NewReader("not a zip"), "broken.xlsx")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	out, err := WriteCSV([]string{"a", "b"}, [][]string{{"1", "x,y"}, {"2", ""}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x,y\"\n2,\n", string(out))
}
