package schedule

import (
	"fmt"
	"strings"
	"time"

	"catcare/internal/calendar"
	"catcare/pkg/types"
)

// EventView is the display ready form of a care event.
type EventView struct {
	// Key identifies the event on the board. Stored events use "event-<id>".
	Key string
	// ID is the store identifier.
	ID          string
	Category    types.Category
	Shift       types.Shift
	ScheduledAt time.Time
	// Time is the localized time of day, HH:MM.
	Time string
	// DateKey is the day/month bucket the event is filed under.
	DateKey       string
	CatID         string
	CatName       string
	Medicine      string
	Veterinarian  string
	Clinic        string
	VolunteerID   string
	VolunteerName string
	Available     bool
	Completed     bool
}

func eventKey(id string) string {
	return "event-" + id
}

// Summary is the short text shown inside a calendar cell.
func (v EventView) Summary() string {
	switch v.Category {
	case types.CategoryMedication:
		return firstNonEmpty(v.CatName, v.Medicine)
	case types.CategoryConsultation:
		return firstNonEmpty(v.CatName, v.Veterinarian)
	default:
		return firstNonEmpty(string(v.Shift), v.CatName, "Event")
	}
}

// Label is the short time marker of a calendar cell entry: the time of day,
// or the shift initial when no time is known.
func (v EventView) Label() string {
	if v.Time != "" {
		return v.Time
	}
	if v.Shift != "" {
		return string(v.Shift)[:1]
	}
	return ""
}

// Detail is the secondary line shown in the day popup.
func (v EventView) Detail() string {
	switch {
	case v.CatName != "":
		return v.CatName
	case v.Medicine != "":
		return v.Medicine
	case v.Veterinarian != "":
		return "Vet: " + v.Veterinarian
	}
	return "No details"
}

func (v EventView) Title() string {
	return fmt.Sprintf("%s %s - %s", v.Category.Label(), firstNonEmpty(v.Time, string(v.Shift)), v.Summary())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalize turns a stored event into its view using the resolved names.
// A volunteer whose record could not be resolved is shown by id.
func normalize(ev *types.CareEvent, catNames, userNames map[string]string, loc *time.Location) EventView {
	at := ev.ScheduledAt.In(loc)

	view := EventView{
		Key:         eventKey(ev.ID),
		ID:          ev.ID,
		Category:    ev.Category(),
		ScheduledAt: at,
		Time:        at.Format("15:04"),
		DateKey:     calendar.DateKey(at),
		Available:   ev.Available(),
		Completed:   ev.Completed,
	}

	if ev.CatID != nil {
		view.CatID = *ev.CatID
		view.CatName = catNames[*ev.CatID]
	}

	if ev.VolunteerID != nil {
		view.VolunteerID = *ev.VolunteerID
		view.VolunteerName = firstNonEmpty(userNames[*ev.VolunteerID], *ev.VolunteerID)
	}

	switch d := ev.Detail.(type) {
	case types.Cleaning:
		view.Shift = d.Shift
	case types.Socialization:
		view.Shift = d.Shift
	case types.Medication:
		view.Medicine = d.Medicine
	case types.Consultation:
		view.Veterinarian = d.Veterinarian
		view.Clinic = d.Clinic
	}

	return view
}

// Slot is one half of the fixed morning/afternoon pattern of a shift based
// category on a given day.
type Slot struct {
	Key      string
	Category types.Category
	Shift    types.Shift
	Date     time.Time
	// Event is the stored event filling the slot, if any.
	Event *EventView
}

func (s Slot) Available() bool {
	return s.Event == nil || s.Event.Available
}

func (s Slot) VolunteerName() string {
	if s.Event == nil {
		return ""
	}
	return s.Event.VolunteerName
}

func slotKey(category types.Category, shift types.Shift, dateKey string) string {
	return fmt.Sprintf("%s-%s-%s", category, strings.ToLower(string(shift)), dateKey)
}

// shiftStart is the time of day given to slot events created without an
// explicit time.
func shiftStart(s types.Shift) (int, int) {
	if s == types.ShiftAfternoon {
		return 14, 0
	}
	return 8, 0
}

// CatOption is an entry of the cat selector.
type CatOption struct {
	ID   string
	Name string
}
