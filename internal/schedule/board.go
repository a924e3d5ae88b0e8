// Package schedule is the care calendar: it loads the care events, files
// them by day, and runs the claim, complete, create, edit and delete flows
// under the permission rules.
package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"catcare/internal/calendar"
	"catcare/pkg/types"

	"github.com/sirupsen/logrus"
)

type EventStore interface {
	Events(ctx context.Context) ([]*types.EventRow, error)
	CreateEvent(ctx context.Context, row *types.EventRow) error
	UpdateEvent(ctx context.Context, eventID string, columns map[string]any) error
	AssignVolunteer(ctx context.Context, eventID, userID string) error
	SetCompleted(ctx context.Context, eventID string, completed bool) error
	DeleteEvent(ctx context.Context, eventID string) error
}

type CatStore interface {
	Cats(ctx context.Context) ([]*types.Cat, error)
	CatsByIDs(ctx context.Context, ids []string) ([]*types.Cat, error)
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UsersByIDs(ctx context.Context, userIDs []string) ([]*types.User, error)
}

// ClinicDirectory is the clinic and veterinarian reference data.
type ClinicDirectory interface {
	Clinics(ctx context.Context) ([]*types.Clinic, error)
	ClinicByID(ctx context.Context, id string) (*types.Clinic, error)
	ClinicByVeterinarian(ctx context.Context, veterinarian string) (*types.Clinic, error)
}

// Session is what the identity provider knows about the signed in user.
// An empty UserID means nobody is signed in.
type Session struct {
	UserID string
	Email  string
}

type Deps struct {
	Events   EventStore
	Cats     CatStore
	Users    UserStore
	Clinics  ClinicDirectory
	Policy   Policy
	Location *time.Location
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

// Board is one user's view of the care calendar. It keeps the loaded
// events in memory and patches them only after the store accepted a
// change. Results that arrive after Close, or after the caller's context
// is done, are dropped.
type Board struct {
	events  EventStore
	cats    CatStore
	users   UserStore
	clinics ClinicDirectory
	policy  Policy
	loc     *time.Location
	logger  logrus.FieldLogger
	now     func() time.Time

	mu     sync.Mutex
	actor  *Actor
	roster []CatOption
	list   []EventView
	claims []EventView
	closed bool
}

func NewBoard(deps Deps) *Board {
	b := &Board{
		events:  deps.Events,
		cats:    deps.Cats,
		users:   deps.Users,
		clinics: deps.Clinics,
		policy:  deps.Policy,
		loc:     deps.Location,
		logger:  deps.Logger,
		now:     deps.Now,
	}

	if b.loc == nil {
		b.loc = time.Local
	}
	if b.logger == nil {
		b.logger = logrus.StandardLogger()
	}
	if b.now == nil {
		b.now = time.Now
	}

	return b
}

// Close detaches the board. Calls still in flight finish against the store
// but their results are not applied.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *Board) Location() *time.Location {
	return b.loc
}

func (b *Board) Policy() Policy {
	return b.policy
}

// Now is the current time in the board's location.
func (b *Board) Now() time.Time {
	return b.now().In(b.loc)
}

// apply runs fn under the lock unless the board was closed or ctx ended
// while the store call was in flight.
func (b *Board) apply(ctx context.Context, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBoardClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fn()
	return nil
}

// Load resolves the acting user and reloads the cat roster and every event.
// Read failures leave the affected slice empty and are only logged. The
// session's claims survive a reload.
func (b *Board) Load(ctx context.Context, session Session) error {
	actor := b.loadActor(ctx, session)

	roster := make([]CatOption, 0)
	cats, err := b.cats.Cats(ctx)
	if err != nil {
		b.logger.WithError(err).Error("failed to load cats")
	} else {
		for _, cat := range cats {
			roster = append(roster, CatOption{ID: cat.ID, Name: cat.Name})
		}
	}

	list := make([]EventView, 0)
	rows, err := b.events.Events(ctx)
	if err != nil {
		b.logger.WithError(err).Error("failed to load events")
		rows = nil
	}

	events := make([]*types.CareEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := row.CareEvent()
		if err != nil {
			b.logger.WithError(err).WithField("event_id", row.ID).Warn("skipping unreadable event")
			continue
		}
		events = append(events, ev)
	}

	catNames := b.catNames(ctx, events)
	userNames := b.volunteerNames(ctx, events)
	for _, ev := range events {
		list = append(list, normalize(ev, catNames, userNames, b.loc))
	}

	return b.apply(ctx, func() {
		b.actor = actor
		b.roster = roster
		b.list = list
	})
}

func (b *Board) loadActor(ctx context.Context, session Session) *Actor {
	if session.UserID == "" {
		return nil
	}

	actor := &Actor{
		ID:   session.UserID,
		Name: firstNonEmpty(session.Email, session.UserID),
		Role: types.RoleVolunteer,
	}

	user, err := b.users.User(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, types.ErrUserNotFound) {
			b.logger.WithError(err).WithField("user_id", session.UserID).Error("failed to load acting user")
		}
		return actor
	}

	actor.Name = firstNonEmpty(user.DisplayName(), actor.Name)
	actor.Role = types.ParseRole(user.Role)
	return actor
}

func (b *Board) catNames(ctx context.Context, events []*types.CareEvent) map[string]string {
	ids := distinct(events, func(ev *types.CareEvent) *string { return ev.CatID })
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	cats, err := b.cats.CatsByIDs(ctx, ids)
	if err != nil {
		b.logger.WithError(err).Error("failed to resolve cat names")
		return names
	}
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	return names
}

func (b *Board) volunteerNames(ctx context.Context, events []*types.CareEvent) map[string]string {
	ids := distinct(events, func(ev *types.CareEvent) *string { return ev.VolunteerID })
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	users, err := b.users.UsersByIDs(ctx, ids)
	if err != nil {
		b.logger.WithError(err).Error("failed to resolve volunteer names")
		return names
	}
	for _, user := range users {
		names[user.ID] = user.DisplayName()
	}
	return names
}

func distinct(events []*types.CareEvent, ref func(*types.CareEvent) *string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, ev := range events {
		id := ref(ev)
		if id == nil || *id == "" || seen[*id] {
			continue
		}
		seen[*id] = true
		out = append(out, *id)
	}
	return out
}

func (b *Board) Actor() *Actor {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.actor == nil {
		return nil
	}
	actor := *b.actor
	return &actor
}

func (b *Board) Cats() []CatOption {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]CatOption(nil), b.roster...)
}

// Events returns every loaded event in insertion order.
func (b *Board) Events() []EventView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]EventView(nil), b.list...)
}

// Event looks up an event by board key.
func (b *Board) Event(key string) (EventView, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := indexOf(b.list, key)
	if i < 0 {
		return EventView{}, false
	}
	return b.list[i], true
}

// EventsForDay returns the events of one category filed under day.
func (b *Board) EventsForDay(category types.Category, day time.Time) []EventView {
	key := calendar.DateKey(day.In(b.loc))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]EventView, 0)
	for _, ev := range b.list {
		if ev.Category == category && ev.DateKey == key {
			out = append(out, ev)
		}
	}
	return out
}

// EventsByDate indexes every event, whatever its category, by day/month.
func (b *Board) EventsByDate() map[string][]EventView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return calendar.Index(b.list, func(v EventView) string { return v.DateKey })
}

// HasEventOn reports whether any event of the category falls on day.
func (b *Board) HasEventOn(category types.Category, day time.Time) bool {
	return len(b.EventsForDay(category, day)) > 0
}

// ShiftSlots lays out the morning and afternoon slots of a shift based
// category for day, filled from the first stored event of each shift.
func (b *Board) ShiftSlots(category types.Category, day time.Time) []Slot {
	if !category.HasShifts() {
		return nil
	}

	day = day.In(b.loc)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, b.loc)
	events := b.EventsForDay(category, date)

	slots := make([]Slot, 0, len(types.Shifts))
	for _, shift := range types.Shifts {
		slot := Slot{
			Key:      slotKey(category, shift, calendar.DateKey(date)),
			Category: category,
			Shift:    shift,
			Date:     date,
		}
		for i := range events {
			if events[i].Shift == shift {
				ev := events[i]
				slot.Event = &ev
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// Claimed reports whether the event was claimed through this board.
func (b *Board) Claimed(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return indexOf(b.claims, key) >= 0
}

// Claims returns the events claimed through this board, oldest first.
func (b *Board) Claims() []EventView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]EventView(nil), b.claims...)
}

// MyEvents returns every loaded event assigned to the acting user.
func (b *Board) MyEvents() []EventView {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]EventView, 0)
	if b.actor == nil {
		return out
	}
	for _, ev := range b.list {
		if ev.VolunteerID == b.actor.ID {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Board) CanCreate() bool {
	return b.policy.CanCreate(b.Actor())
}

func (b *Board) CanEdit(ev EventView) bool {
	return b.policy.CanEdit(b.Actor(), ev)
}

func (b *Board) CanDelete(ev EventView) bool {
	return b.policy.CanDelete(b.Actor(), ev)
}

func indexOf(list []EventView, key string) int {
	for i := range list {
		if list[i].Key == key {
			return i
		}
	}
	return -1
}
