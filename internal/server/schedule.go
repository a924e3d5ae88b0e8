package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"catcare/internal/calendar"
	"catcare/internal/feed"
	"catcare/internal/schedule"
	"catcare/pkg/types"
)

const dateLayout = "2006-01-02"

// calendarPosition reads month (1-12), year, day and tab from values,
// defaulting to the current month and the Cleaning tab.
func (s *Service) calendarPosition(values url.Values) returnQuery {
	now := s.now().In(s.location)
	pos := returnQuery{
		Month: int(now.Month()),
		Year:  now.Year(),
		Tab:   types.CategoryCleaning,
	}

	if month, err := strconv.Atoi(values.Get("month")); err == nil && month >= 1 && month <= 12 {
		pos.Month = month
	}
	if year, err := strconv.Atoi(values.Get("year")); err == nil && year > 0 {
		pos.Year = year
	}
	if tab, err := types.ParseCategory(values.Get("tab")); err == nil {
		pos.Tab = tab
	}
	if day, err := time.ParseInLocation(dateLayout, values.Get("day"), s.location); err == nil {
		pos.Day = day.Format(dateLayout)
	}

	return pos
}

func (q returnQuery) values() url.Values {
	v := url.Values{}
	v.Set("month", strconv.Itoa(q.Month))
	v.Set("year", strconv.Itoa(q.Year))
	v.Set("tab", string(q.Tab))
	if q.Day != "" {
		v.Set("day", q.Day)
	}
	return v
}

// Query is the encoded position for links in templates.
func (q returnQuery) Query() template.URL {
	return template.URL(q.values().Encode())
}

func (s *Service) redirectSchedule(w http.ResponseWriter, r *http.Request, key, message string) {
	v := s.calendarPosition(r.Form).values()
	if message != "" {
		v.Set(key, message)
	}
	http.Redirect(w, r, "/escalas?"+v.Encode(), http.StatusSeeOther)
}

// scheduleErrorMessage is the text shown for a refused or failed calendar
// action.
func (s *Service) scheduleErrorMessage(err error, action string) string {
	var validation *schedule.ValidationError
	switch {
	case errors.As(err, &validation):
		names := make([]string, 0, len(validation.Fields))
		for _, msg := range validation.Fields {
			names = append(names, msg)
		}
		sort.Strings(names)
		return strings.Join(names, " ")
	case errors.Is(err, schedule.ErrAnonymous):
		return "Sign in to manage the schedule."
	case errors.Is(err, schedule.ErrPermissionDenied):
		return "You do not have permission to do that."
	case errors.Is(err, schedule.ErrNotClaimed):
		return "Nobody has claimed this event yet."
	case errors.Is(err, schedule.ErrAlreadyClaimed):
		return "This event already has a volunteer."
	case errors.Is(err, schedule.ErrUnknownEvent):
		return "That event no longer exists."
	}

	s.logger.WithError(err).WithField("action", action).Error("schedule action failed")
	return "Something went wrong. Please try again."
}

// loadedBoard returns the cached board of the signed in user, loading it
// when it has not been loaded for this session yet. Anonymous requests get
// ErrAnonymous and no board.
func (s *Service) loadedBoard(ctx context.Context) (*schedule.Board, error) {
	session := sessionFromContext(ctx)
	if session.UserID == "" {
		return nil, schedule.ErrAnonymous
	}

	board, _ := s.boards.get(session.UserID)
	if board.Actor() != nil {
		return board, nil
	}

	err := board.Load(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule board: %w", err)
	}

	return board, nil
}

// startOfToday is local midnight of the service clock.
func (s *Service) startOfToday() time.Time {
	now := s.now().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/escalas", http.StatusSeeOther)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)

	board, cached := s.boards.get(session.UserID)
	if !cached {
		defer board.Close()
	}

	err := board.Load(ctx, session)
	if err != nil {
		s.logger.WithError(err).Warn("schedule board load was discarded")
	}

	query := r.URL.Query()
	pos := s.calendarPosition(query)
	now := s.now().In(s.location)

	data := &SchedulePageData{
		BasePageData: types.BasePageData{
			Title:  "Schedule",
			Notice: query.Get("notice"),
			Error:  query.Get("error"),
		},
		MonthName: calendar.MonthName(pos.Month - 1),
		Month:     pos.Month,
		Year:      pos.Year,
		Weekdays:  calendar.WeekdayLabels[:],
		Tab:       pos.Tab,
		HasShifts: pos.Tab.HasShifts(),
		CanCreate: board.CanCreate(),
		Cats:      board.Cats(),
		Shifts:    types.Shifts,
		Claims:    board.Claims(),
		Actor:     board.Actor(),
		Return:    pos,
	}

	prevMonth, prevYear := calendar.Prev(pos.Month-1, pos.Year)
	nextMonth, nextYear := calendar.Next(pos.Month-1, pos.Year)
	data.Prev = monthLink{Month: prevMonth + 1, Year: prevYear}
	data.Next = monthLink{Month: nextMonth + 1, Year: nextYear}

	for _, c := range types.Categories {
		data.Tabs = append(data.Tabs, tabLink{Category: c, Label: c.Label(), Active: c == pos.Tab})
	}

	clinics, err := s.clinics.Clinics(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load clinics")
	}
	data.Clinics = clinics

	index := board.EventsByDate()
	days := calendar.Month(pos.Month-1, pos.Year, now)
	cells := make([]*dayCell, 0, len(days))
	for _, day := range days {
		if day == nil {
			cells = append(cells, nil)
			continue
		}

		events := index[day.Key()]
		shown, more := calendar.Overflow(events, calendar.CellLimit)
		cell := &dayCell{
			Day:      day,
			Events:   shown,
			More:     more,
			Selected: day.Selectable() && day.Date.Format(dateLayout) == pos.Day,
		}
		for _, ev := range events {
			if ev.Category == pos.Tab {
				cell.HasTabEvent = true
				break
			}
		}

		link := pos
		link.Day = day.Date.Format(dateLayout)
		cell.Link = "/escalas?" + link.values().Encode()

		if cell.Selected {
			data.SelectedDay = day
		}
		cells = append(cells, cell)
	}
	data.Weeks = calendar.Weeks(cells)

	if data.SelectedDay != nil {
		data.SelectedDate = pos.Day
		selected := data.SelectedDay.Date

		for _, ev := range board.EventsForDay(pos.Tab, selected) {
			data.DayEvents = append(data.DayEvents, s.eventItem(board, ev, pos))
		}

		for _, slot := range board.ShiftSlots(pos.Tab, selected) {
			item := slotItem{Slot: slot, Date: pos.Day, Return: pos}
			if slot.Event != nil {
				item.Claimed = board.Claimed(slot.Event.Key)
				item.CanDelete = board.CanDelete(*slot.Event)
			}
			data.Slots = append(data.Slots, item)
		}
	}

	err = s.renderTemplate(w, r, "page.schedule", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render schedule page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) eventItem(board *schedule.Board, ev schedule.EventView, pos returnQuery) eventItem {
	return eventItem{
		EventView: ev,
		CanEdit:   board.CanEdit(ev),
		CanDelete: board.CanDelete(ev),
		Claimed:   board.Claimed(ev.Key),
		Return:    pos,
	}
}

// handleGetScheduleDay lists every event filed under a day, whatever its
// category.
func (s *Service) handleGetScheduleDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)

	date, err := time.ParseInLocation(dateLayout, r.PathValue("date"), s.location)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	board, cached := s.boards.get(session.UserID)
	if !cached {
		defer board.Close()
	}

	err = board.Load(ctx, session)
	if err != nil {
		s.logger.WithError(err).Warn("schedule board load was discarded")
	}

	pos := s.calendarPosition(r.URL.Query())
	pos.Day = date.Format(dateLayout)

	data := &DayPageData{
		BasePageData: types.BasePageData{Title: calendar.DateKey(date)},
		Date:         calendar.DateKey(date),
		Return:       pos,
	}
	for _, ev := range board.EventsByDate()[calendar.DateKey(date)] {
		data.Events = append(data.Events, s.eventItem(board, ev, pos))
	}

	err = s.renderTemplate(w, r, "page.day", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render schedule day page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	var form schedule.EventForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode event form")
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for event create")
		s.internalServerError(w)
		return
	}

	ev, err := board.Create(ctx, form)
	if err != nil {
		s.redirectSchedule(w, r, "error", s.scheduleErrorMessage(err, "create"))
		return
	}

	s.logger.WithField("event_id", ev.ID).Info("event created")
	s.redirectSchedule(w, r, "notice", "Event created.")
}

func (s *Service) handlePostClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for claim")
		s.internalServerError(w)
		return
	}

	key := r.PathValue("key")
	if key == "slot" {
		category, cerr := types.ParseCategory(r.FormValue("category"))
		shift, serr := types.ParseShift(r.FormValue("shift"))
		day, derr := schedule.SlotDate(r.FormValue("date"), s.location)
		if cerr != nil || serr != nil || derr != nil {
			s.redirectSchedule(w, r, "error", "That slot could not be found.")
			return
		}
		_, err = board.ClaimSlot(ctx, category, shift, day)
	} else {
		_, err = board.Claim(ctx, key)
	}
	if err != nil {
		s.redirectSchedule(w, r, "error", s.scheduleErrorMessage(err, "claim"))
		return
	}

	s.redirectSchedule(w, r, "notice", "You are on it. Thank you!")
}

func (s *Service) handlePostComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for complete")
		s.internalServerError(w)
		return
	}

	_, err = board.Complete(ctx, r.PathValue("key"))
	if err != nil {
		s.redirectSchedule(w, r, "error", s.scheduleErrorMessage(err, "complete"))
		return
	}

	s.redirectSchedule(w, r, "notice", "Marked as done.")
}

func (s *Service) handlePostDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for delete")
		s.internalServerError(w)
		return
	}

	key := r.PathValue("key")
	err = board.Delete(ctx, key)
	if err != nil {
		s.redirectSchedule(w, r, "error", s.scheduleErrorMessage(err, "delete"))
		return
	}

	s.logger.WithField("event_key", key).Info("event deleted")
	s.redirectSchedule(w, r, "notice", "Event deleted.")
}

func (s *Service) handleGetEditEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for edit")
		s.internalServerError(w)
		return
	}

	form, ev, err := board.EditForm(ctx, r.PathValue("key"))
	if err != nil {
		s.redirectSchedule(w, r, "error", s.scheduleErrorMessage(err, "edit"))
		return
	}

	clinics, err := s.clinics.Clinics(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load clinics")
	}

	query := r.URL.Query()
	data := &EditEventPageData{
		BasePageData: types.BasePageData{
			Title: "Edit " + ev.Category.Label(),
			Error: query.Get("error"),
		},
		Event:   ev,
		Form:    form,
		Cats:    board.Cats(),
		Clinics: clinics,
		Shifts:  types.Shifts,
		Return:  s.calendarPosition(query),
	}

	err = s.renderTemplate(w, r, "page.event.edit", data)
	if err != nil {
		s.logger.WithError(err).Error("failed to render edit event page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostEditEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := r.PathValue("key")

	if err := r.ParseForm(); err != nil {
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	var form schedule.EventForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode event form")
		s.redirectSchedule(w, r, "error", "Invalid form payload.")
		return
	}

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for update")
		s.internalServerError(w)
		return
	}

	_, err = board.Update(ctx, key, form)
	if err != nil {
		var validation *schedule.ValidationError
		if errors.As(err, &validation) {
			v := s.calendarPosition(r.Form).values()
			v.Set("error", s.scheduleErrorMessage(err, "update"))
			http.Redirect(w, r, "/escalas/events/"+url.PathEscape(key)+"/edit?"+v.Encode(), http.StatusSeeOther)
			return
		}
		s.redirectSchedule(w, r, "error", s.scheduleErrorMessage(err, "update"))
		return
	}

	s.redirectSchedule(w, r, "notice", "Event updated.")
}

// handleGetFeed serves the signed in user's events as an iCalendar file.
func (s *Service) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	board, err := s.loadedBoard(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to load board for feed")
		s.internalServerError(w)
		return
	}

	err = board.Load(ctx, sessionFromContext(ctx))
	if err != nil {
		s.logger.WithError(err).Warn("schedule board reload was discarded")
	}

	name := "Catcare"
	if actor := board.Actor(); actor != nil {
		name = "Catcare - " + actor.Name
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catcare.ics"`)
	err = feed.Write(w, name, board.MyEvents(), s.now())
	if err != nil {
		s.logger.WithError(err).Error("failed to write calendar feed")
	}
}
