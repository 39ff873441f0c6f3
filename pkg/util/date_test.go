package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateISO(t *testing.T) {
	got, ok := ParseDate("2023-12-31")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateRFC3339DropsClock(t *testing.T) {
	got, ok := ParseDate("2024-10-10T10:10:10Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseCalendarDateRejectsNonISO(t *testing.T) {
	for _, s := range []string{"20240105", "1704412800", "05/01/2024", ""} {
		_, ok := ParseCalendarDate(s)
		assert.False(t, ok, s)
	}
}

func TestParseDateRejectsCompactDate(t *testing.T) {
	_, ok := ParseDate("20240105")
	assert.False(t, ok)
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseDate(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateInvalid(t *testing.T) {
	_, ok := ParseDate("yesterday")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestAddDaysCrossesMonth(t *testing.T) {
	got := AddDays(time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC), 1)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, SplitList(" AAPL, ,MSFT "))
	assert.Empty(t, SplitList(""))
}
