package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthJanuary2025(t *testing.T) {
	now := time.Date(2024, time.December, 1, 10, 0, 0, 0, time.UTC)

	days := Month(0, 2025, now)

	require.Len(t, days, 2+31)
	assert.Nil(t, days[0])
	assert.Nil(t, days[1])
	for i := 1; i <= 31; i++ {
		day := days[1+i]
		require.NotNil(t, day)
		assert.Equal(t, i, day.Number)
		assert.False(t, day.IsPast)
		assert.False(t, day.IsToday)
	}
}

func TestMonthLeadingBlanksMatchWeekday(t *testing.T) {
	now := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	for year := 2023; year <= 2028; year++ {
		for month := 0; month < 12; month++ {
			days := Month(month, year, now)

			leading := 0
			for leading < len(days) && days[leading] == nil {
				leading++
			}

			first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
			daysInMonth := first.AddDate(0, 1, -1).Day()

			assert.GreaterOrEqual(t, leading, 0)
			assert.LessOrEqual(t, leading, 6)
			assert.Len(t, days, leading+daysInMonth, "month %d/%d", month+1, year)
			assert.Equal(t, (int(first.Weekday())+6)%7, leading, "month %d/%d", month+1, year)
			assert.Equal(t, 1, days[leading].Number)
			assert.Equal(t, daysInMonth, days[len(days)-1].Number)
		}
	}
}

func TestMonthLeapFebruary(t *testing.T) {
	now := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 29, Month(1, 2028, now)[len(Month(1, 2028, now))-1].Number)
	assert.Equal(t, 28, Month(1, 2027, now)[len(Month(1, 2027, now))-1].Number)
}

func TestMonthPastAndToday(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, time.October, 17, 23, 30, 0, 0, loc)

	days := Month(9, 2026, now)

	for _, day := range days {
		if day == nil {
			continue
		}
		switch {
		case day.Number < 17:
			assert.True(t, day.IsPast, "day %d", day.Number)
			assert.False(t, day.IsToday, "day %d", day.Number)
			assert.False(t, day.Selectable(), "day %d", day.Number)
		case day.Number == 17:
			assert.True(t, day.IsToday)
			assert.False(t, day.IsPast)
			assert.True(t, day.Selectable())
		default:
			assert.False(t, day.IsPast, "day %d", day.Number)
			assert.False(t, day.IsToday, "day %d", day.Number)
		}
	}

	for _, day := range Month(8, 2026, now) {
		if day != nil {
			assert.True(t, day.IsPast)
		}
	}
}

func TestPrevNextRollover(t *testing.T) {
	m, y := Prev(0, 2025)
	assert.Equal(t, 11, m)
	assert.Equal(t, 2024, y)

	m, y = Next(11, 2025)
	assert.Equal(t, 0, m)
	assert.Equal(t, 2026, y)

	m, y = Next(4, 2025)
	assert.Equal(t, 5, m)
	assert.Equal(t, 2025, y)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "15/3", DateKey(time.Date(2025, time.March, 15, 8, 30, 0, 0, time.UTC)))
	assert.Equal(t, "1/12", DateKey(time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWeeks(t *testing.T) {
	now := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	weeks := Weeks(Month(0, 2025, now))

	require.Len(t, weeks, 5)
	for _, w := range weeks {
		assert.Len(t, w, 7)
	}
	assert.Equal(t, 1, weeks[0][2].Number)
	assert.Nil(t, weeks[4][6])
}
