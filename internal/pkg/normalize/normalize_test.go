package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{" sec23it007 ", "SEC23IT007"},
		{"e. code", "E. CODE"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Identifier(c.input), "Identifier(%q)", c.input)
	}
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ABSENT", Status("  absent "))
	assert.Equal(t, "", Status(""))
	assert.Equal(t, "½PRESENT", Status("½Present"))
}

func TestIsPlaceholderID(t *testing.T) {
	for _, id := range []string{"", " ", "E. Code", "name", "0", "1"} {
		assert.True(t, IsPlaceholderID(id), "IsPlaceholderID(%q)", id)
	}
	for _, id := range []string{"X", "1001", "E1"} {
		assert.False(t, IsPlaceholderID(id), "IsPlaceholderID(%q)", id)
	}
}

func TestDate(t *testing.T) {
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	valid := []string{
		"2024-01-01",
		" 2024-01-01 ",
		"2024/01/01",
		"1/1/2024",
		"01/01/2024",
		"01-Jan-2024",
		"Jan 1, 2024",
		"2024-01-01 08:30:00",
		"2024-01-01T08:30:00Z",
		"45292",
	}
	for _, s := range valid {
		got := Date(s)
		require.NotNil(t, got, "Date(%q)", s)
		assert.True(t, want.Equal(*got), "Date(%q) = %v", s, got)
	}
}

func TestDate_MalformedReturnsNil(t *testing.T) {
	invalid := []string{"", "   ", "not a date", "2024-13-45", "32/01/2024", "12", "99999999", "--", "NaN"}
	for _, s := range invalid {
		assert.NotPanics(t, func() {
			assert.Nil(t, Date(s), "Date(%q)", s)
		})
	}
}

func TestTimeOfDay(t *testing.T) {
	got := TimeOfDay("09:15:30")
	require.NotNil(t, got)
	assert.Equal(t, Clock{Hour: 9, Minute: 15, Second: 30}, *got)
	assert.Equal(t, 555, got.Minutes())
	assert.Equal(t, "09:15:30", got.String())

	for _, s := range []string{"", "0", "abc", "25:00:00", "09:15", "9:ab:00", "nan"} {
		assert.Nil(t, TimeOfDay(s), "TimeOfDay(%q)", s)
	}
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"06:00:00", 360},
		{"05:30", 330},
		{"07:45:59", 465},
		{" 00:10 ", 10},
	}
	for _, c := range cases {
		got := DurationMinutes(c.input)
		require.NotNil(t, got, "DurationMinutes(%q)", c.input)
		assert.Equal(t, c.want, *got)
	}

	for _, s := range []string{"", "6", "six hours", "99:99", "::", "--:--"} {
		assert.Nil(t, DurationMinutes(s), "DurationMinutes(%q)", s)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(nil))
	d := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-05", FormatDate(&d))
}
