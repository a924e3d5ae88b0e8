package server

import (
	"catcare/internal/calendar"
	"catcare/internal/schedule"
	"catcare/pkg/types"
)

type monthLink struct {
	Month int
	Year  int
}

type tabLink struct {
	Category types.Category
	Label    string
	Active   bool
}

type dayCell struct {
	Day         *calendar.Day
	Events      []schedule.EventView
	More        int
	HasTabEvent bool
	Selected    bool
	Link        string
}

type eventItem struct {
	schedule.EventView
	CanEdit   bool
	CanDelete bool
	Claimed   bool
	Return    returnQuery
}

type slotItem struct {
	schedule.Slot
	Date      string
	Claimed   bool
	CanDelete bool
	Return    returnQuery
}

type SchedulePageData struct {
	types.BasePageData
	MonthName    string
	Month        int
	Year         int
	Prev         monthLink
	Next         monthLink
	Weekdays     []string
	Weeks        [][]*dayCell
	Tabs         []tabLink
	Tab          types.Category
	SelectedDay  *calendar.Day
	SelectedDate string
	DayEvents    []eventItem
	Slots        []slotItem
	HasShifts    bool
	CanCreate    bool
	Cats         []schedule.CatOption
	Clinics      []*types.Clinic
	Shifts       []types.Shift
	Claims       []schedule.EventView
	Actor        *schedule.Actor
	Return       returnQuery
}

type DayPageData struct {
	types.BasePageData
	Date   string
	Events []eventItem
	Return returnQuery
}

type EditEventPageData struct {
	types.BasePageData
	Event   schedule.EventView
	Form    schedule.EventForm
	Cats    []schedule.CatOption
	Clinics []*types.Clinic
	Shifts  []types.Shift
	Return  returnQuery
}

type CatPageData struct {
	types.BasePageData
	Cat       *types.Cat
	Form      types.CatForm
	Statuses  []string
	CanEdit   bool
	CanDelete bool
	Upcoming  []schedule.EventView
	History   []schedule.EventView
}

type ProfileEditPageData struct {
	types.BasePageData
	Email       string
	Name        string
	Phone       string
	FieldErrors map[string]string
}

type ProfilePageData struct {
	types.BasePageData
	User     *types.User
	Role     types.Role
	Events   []schedule.EventView
	Upcoming []schedule.EventView
	Claims   []schedule.EventView
}

// returnQuery is the calendar position a form posts back so the redirect
// lands on the same month, day and tab.
type returnQuery struct {
	Month int
	Year  int
	Day   string
	Tab   types.Category
}
