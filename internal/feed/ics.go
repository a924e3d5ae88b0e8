// Package feed exports a volunteer's care events as an iCalendar feed.
package feed

import (
	"fmt"
	"io"
	"strings"
	"time"

	"catcare/internal/schedule"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//catcare//care schedule//EN"

const (
	shiftLength = 4 * time.Hour
	eventLength = time.Hour
)

// Calendar builds the feed for events. Completed events are kept so the
// history stays visible in calendar apps.
func Calendar(name string, events []schedule.EventView, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, ev := range events {
		vevent := cal.AddEvent(uid(ev))
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(ev.ScheduledAt)
		vevent.SetEndAt(ev.ScheduledAt.Add(length(ev)))
		vevent.SetSummary(ev.Title())
		vevent.SetDescription(description(ev))
		if ev.Clinic != "" {
			vevent.SetLocation(ev.Clinic)
		}
		if ev.Completed {
			vevent.SetStatus(ical.ObjectStatusCompleted)
		}
	}

	return cal
}

// Write serializes the feed for events to w.
func Write(w io.Writer, name string, events []schedule.EventView, now time.Time) error {
	err := Calendar(name, events, now).SerializeTo(w)
	if err != nil {
		return fmt.Errorf("failed to write calendar feed: %w", err)
	}
	return nil
}

func uid(ev schedule.EventView) string {
	return ev.ID + "@catcare"
}

func length(ev schedule.EventView) time.Duration {
	if ev.Category.HasShifts() {
		return shiftLength
	}
	return eventLength
}

func description(ev schedule.EventView) string {
	lines := []string{ev.Category.Label()}
	if ev.CatName != "" {
		lines = append(lines, "Cat: "+ev.CatName)
	}
	if ev.Medicine != "" {
		lines = append(lines, "Medicine: "+ev.Medicine)
	}
	if ev.Veterinarian != "" {
		lines = append(lines, "Veterinarian: "+ev.Veterinarian)
	}
	return strings.Join(lines, "\n")
}
