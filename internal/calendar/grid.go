// Package calendar builds the Monday-first month grid shown on the schedule
// page and groups events under their day keys.
package calendar

import (
	"fmt"
	"time"
)

// Day is one real day in a month grid.
type Day struct {
	Number  int
	Date    time.Time
	IsPast  bool
	IsToday bool
}

// Key returns the day/month key used to bucket events on this day.
func (d *Day) Key() string {
	return DateKey(d.Date)
}

// Selectable reports whether the day can be picked in the grid.
func (d *Day) Selectable() bool {
	return d != nil && !d.IsPast
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// WeekdayLabels are the grid column headers, Monday first.
var WeekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MonthName returns the English name of a zero-based month index.
func MonthName(month int) string {
	return monthNames[month]
}

// Month returns the grid for a zero-based month: nil placeholders for the
// weekdays before the 1st followed by every day of the month. Dates are in
// now's location and compared at local midnight.
func Month(month, year int, now time.Time) []*Day {
	loc := now.Location()

	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, loc)
	leading := (int(first.Weekday()) + 6) % 7
	daysInMonth := time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, loc).Day()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := make([]*Day, 0, leading+daysInMonth)
	for i := 0; i < leading; i++ {
		days = append(days, nil)
	}

	for i := 1; i <= daysInMonth; i++ {
		date := time.Date(year, time.Month(month+1), i, 0, 0, 0, 0, loc)
		days = append(days, &Day{
			Number:  i,
			Date:    date,
			IsPast:  date.Before(today),
			IsToday: date.Equal(today),
		})
	}

	return days
}

// Prev returns the month before (month, year), rolling January back into
// December of the previous year.
func Prev(month, year int) (int, int) {
	if month == 0 {
		return 11, year - 1
	}
	return month - 1, year
}

// Next returns the month after (month, year).
func Next(month, year int) (int, int) {
	if month == 11 {
		return 0, year + 1
	}
	return month + 1, year
}

// DateKey formats t as "day/month" without padding or year.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", t.Day(), int(t.Month()))
}

// Weeks splits a grid into rows of seven, padding the last row with nil.
func Weeks[T any](cells []*T) [][]*T {
	weeks := make([][]*T, 0, 6)
	for start := 0; start < len(cells); start += 7 {
		end := start + 7
		row := make([]*T, 7)
		if end > len(cells) {
			end = len(cells)
		}
		copy(row, cells[start:end])
		weeks = append(weeks, row)
	}
	return weeks
}
