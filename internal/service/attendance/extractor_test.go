package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func twoSectionGrid() [][]string {
	return [][]string{
		{"Daily Attendance Report", "", ""},
		{"", "", ""},
		{"Department", "A", ""},
		{"E. Code", "Name", "Status", "", "InTime"},
		{"a1", "Asha", "present", "x", "09:10:00"},
		{" a2 ", "Bala", "ABSENT"},
		{"E. Code", "Name", "Status"},
		{"", "no identifier", "PRESENT"},
		{"Department", "B"},
		{"E. Code", "Name", "Status"},
		{"b1", "Chitra", "PRESENT", "ignored", "09:00:00", "overflow"},
	}
}

func TestExtractSections(t *testing.T) {
	sections := ExtractSections(twoSectionGrid())
	require.Len(t, sections, 2)

	a := sections[0]
	assert.Equal(t, "A", a.Label)
	assert.Equal(t, []string{"E. Code", "Name", "Status", "unnamed_3", "InTime"}, a.Header)
	require.Len(t, a.Rows, 3, "blank identifier row dropped, header echo kept until record mapping")
	assert.Equal(t, []string{"a2", "Bala", "ABSENT", "", ""}, a.Rows[1])

	b := sections[1]
	assert.Equal(t, "B", b.Label)
	require.Len(t, b.Rows, 1)
	assert.Equal(t, []string{"b1", "Chitra", "PRESENT"}, b.Rows[0])
}

func TestExtractSections_NoMarker(t *testing.T) {
	grid := [][]string{
		{"E. Code", "Name", "Department"},
		{"c1", "Dev", "Ops"},
	}
	assert.Empty(t, ExtractSections(grid))
	assert.Empty(t, ExtractSections(nil))
}

func TestExtractSections_SkipsUnusableSection(t *testing.T) {
	grid := [][]string{
		{"Department", "X"},
		{"", "", ""},
		{"Department", "Y"},
		{"E. Code", "Name"},
		{"y1", "Yamini"},
	}
	sections := ExtractSections(grid)
	require.Len(t, sections, 1)
	assert.Equal(t, "Y", sections[0].Label)
	assert.Len(t, sections[0].Rows, 1)
}

func TestParseGrid_TwoSections(t *testing.T) {
	date := day("2024-01-01")

	records, err := ParseGrid(twoSectionGrid(), &date)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "A1", records[0].PersonID)
	assert.Equal(t, "A", records[0].Department)
	assert.Equal(t, "PRESENT", records[0].Status)
	assert.Equal(t, "09:10:00", records[0].InTime)

	assert.Equal(t, "A2", records[1].PersonID)
	assert.Equal(t, "A", records[1].Department)

	assert.Equal(t, "B1", records[2].PersonID)
	assert.Equal(t, "B", records[2].Department)

	for _, r := range records {
		require.NotNil(t, r.Date)
		assert.True(t, r.Date.Equal(date))
	}
}

func TestParseGrid_FlatTable(t *testing.T) {
	grid := [][]string{
		{"Exported from portal"},
		{"E. Code", "Name", "Department", "Date", "Status"},
		{"c1", "Dev", "Ops", "2024-01-02", "PRESENT"},
		{"c1", "Dev again", "Ops", "2024-01-02", "ABSENT"},
		{"0", "sentinel", "", "", ""},
		{"c2", "Esha", "Ops", "", "absent"},
	}
	fallback := day("2024-01-05")

	records, err := ParseGrid(grid, &fallback)
	require.NoError(t, err)
	require.Len(t, records, 2, "duplicate key and sentinel row removed")

	assert.Equal(t, "Dev", records[0].Name)
	assert.Equal(t, "Ops", records[0].Department)
	assert.Equal(t, "2024-01-02", records[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2024-01-05", records[1].Date.Format("2006-01-02"))
	assert.Equal(t, "ABSENT", records[1].Status)
}

func TestParseGrid_NoTable(t *testing.T) {
	_, err := ParseGrid([][]string{{"hello", "world"}}, nil)
	assert.ErrorIs(t, err, attendance.ErrNoRecognizableTable)
}

func TestParseGrid_SchemaHeader(t *testing.T) {
	grid := [][]string{
		{"person_id", "name", "department", "date", "status", "in_time", "total_duration_minutes", "remarks"},
		{"s1", "Ravi", "Ops", "2024-01-02", "present", "09:20:00", "300", ""},
		{"s2", "Meena", "Ops", "2024-01-02", "present", "08:55:00", "", ""},
	}

	records, err := ParseGrid(grid, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "S1", records[0].PersonID)
	assert.Equal(t, "Ops", records[0].Department)
	assert.Equal(t, "09:20:00", records[0].InTime)
	require.NotNil(t, records[0].TotalDurationMinutes)
	assert.Equal(t, 300, *records[0].TotalDurationMinutes)
	assert.Nil(t, records[1].TotalDurationMinutes)
}
