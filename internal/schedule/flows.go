package schedule

import (
	"context"
	"fmt"
	"time"

	"catcare/pkg/types"
)

// lookup resolves the acting user and the event behind key.
func (b *Board) lookup(key string) (*Actor, EventView, error) {
	actor := b.Actor()
	if actor == nil {
		return nil, EventView{}, ErrAnonymous
	}

	ev, ok := b.Event(key)
	if !ok {
		return actor, EventView{}, ErrUnknownEvent
	}

	return actor, ev, nil
}

// Claim assigns the acting user to an unassigned event.
func (b *Board) Claim(ctx context.Context, key string) (EventView, error) {
	actor, ev, err := b.lookup(key)
	if err != nil {
		return EventView{}, err
	}
	if !ev.Available {
		return EventView{}, ErrAlreadyClaimed
	}

	err = b.events.AssignVolunteer(ctx, ev.ID, actor.ID)
	if err != nil {
		return EventView{}, fmt.Errorf("failed to assign volunteer: %w", err)
	}

	ev.VolunteerID = actor.ID
	ev.VolunteerName = actor.Name
	ev.Available = false

	err = b.apply(ctx, func() {
		if i := indexOf(b.list, ev.Key); i >= 0 {
			b.list[i].VolunteerID = ev.VolunteerID
			b.list[i].VolunteerName = ev.VolunteerName
			b.list[i].Available = false
			ev = b.list[i]
		}
		b.remember(ev)
	})

	return ev, err
}

// ClaimSlot claims one shift of a Cleaning or Socialization day. A slot
// already backed by a stored event is claimed through it; an empty slot is
// inserted already assigned to the acting user.
func (b *Board) ClaimSlot(ctx context.Context, category types.Category, shift types.Shift, day time.Time) (EventView, error) {
	actor := b.Actor()
	if actor == nil {
		return EventView{}, ErrAnonymous
	}

	detail, err := types.NewShiftDetail(category, shift)
	if err != nil {
		return EventView{}, &ValidationError{Fields: map[string]string{"category": "Only shift based events have slots."}}
	}

	day = day.In(b.loc)
	now := b.Now()
	if day.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.loc)) {
		return EventView{}, &ValidationError{Fields: map[string]string{"date": "Past days cannot be claimed."}}
	}

	for _, slot := range b.ShiftSlots(category, day) {
		if slot.Shift == shift && slot.Event != nil {
			return b.Claim(ctx, slot.Event.Key)
		}
	}

	hour, minute := shiftStart(shift)
	volunteerID := actor.ID
	event := &types.CareEvent{
		ScheduledAt: time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, b.loc),
		VolunteerID: &volunteerID,
		Detail:      detail,
	}

	view, err := b.insert(ctx, event, map[string]string{actor.ID: actor.Name})
	if err != nil {
		return EventView{}, err
	}

	err = b.apply(ctx, func() {
		b.list = append(b.list, view)
		b.remember(view)
	})

	return view, err
}

// remember adds ev to the session's claims. Callers hold the lock.
func (b *Board) remember(ev EventView) {
	if i := indexOf(b.claims, ev.Key); i >= 0 {
		b.claims[i] = ev
		return
	}
	b.claims = append(b.claims, ev)
}

// Complete marks a claimed event as done. An unclaimed event is left
// untouched and ErrNotClaimed is returned.
func (b *Board) Complete(ctx context.Context, key string) (EventView, error) {
	_, ev, err := b.lookup(key)
	if err != nil {
		return EventView{}, err
	}
	if ev.VolunteerID == "" {
		return ev, ErrNotClaimed
	}
	if ev.Completed {
		return ev, nil
	}

	err = b.events.SetCompleted(ctx, ev.ID, true)
	if err != nil {
		return EventView{}, fmt.Errorf("failed to complete event: %w", err)
	}

	ev.Completed = true
	err = b.apply(ctx, func() {
		if i := indexOf(b.list, key); i >= 0 {
			b.list[i].Completed = true
		}
		if i := indexOf(b.claims, key); i >= 0 {
			b.claims[i].Completed = true
		}
	})

	return ev, err
}

// Create stores a new unassigned event described by form and adds it to
// the board.
func (b *Board) Create(ctx context.Context, form EventForm) (EventView, error) {
	actor := b.Actor()
	if actor == nil {
		return EventView{}, ErrAnonymous
	}
	if !b.policy.CanCreate(actor) {
		return EventView{}, ErrPermissionDenied
	}

	event, err := form.Event(ctx, b.clinics, b.loc)
	if err != nil {
		return EventView{}, err
	}

	view, err := b.insert(ctx, event, nil)
	if err != nil {
		return EventView{}, err
	}

	err = b.apply(ctx, func() {
		b.list = append(b.list, view)
	})

	return view, err
}

// insert writes event and returns its view. The store fills in the id and
// timestamps.
func (b *Board) insert(ctx context.Context, event *types.CareEvent, userNames map[string]string) (EventView, error) {
	if err := event.Validate(); err != nil {
		return EventView{}, err
	}

	row := types.NewEventRow(event)
	err := b.events.CreateEvent(ctx, row)
	if err != nil {
		return EventView{}, fmt.Errorf("failed to create event: %w", err)
	}

	stored, err := row.CareEvent()
	if err != nil {
		return EventView{}, err
	}

	return normalize(stored, b.rosterNames(), userNames, b.loc), nil
}

func (b *Board) rosterNames() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make(map[string]string, len(b.roster))
	for _, cat := range b.roster {
		names[cat.ID] = cat.Name
	}
	return names
}

// EditForm returns the pre-filled edit form of an event the acting user may
// edit.
func (b *Board) EditForm(ctx context.Context, key string) (EventForm, EventView, error) {
	actor, ev, err := b.lookup(key)
	if err != nil {
		return EventForm{}, EventView{}, err
	}
	if !b.policy.CanEdit(actor, ev) {
		return EventForm{}, EventView{}, ErrPermissionDenied
	}

	return formFromView(ctx, ev, b.clinics), ev, nil
}

// Update applies form to an existing event. The category of an event is
// fixed at creation, so only the columns belonging to it are written along
// with the timestamp and the cat.
func (b *Board) Update(ctx context.Context, key string, form EventForm) (EventView, error) {
	actor, ev, err := b.lookup(key)
	if err != nil {
		return EventView{}, err
	}
	if !b.policy.CanEdit(actor, ev) {
		return EventView{}, ErrPermissionDenied
	}

	form.Category = string(ev.Category)
	event, err := form.Event(ctx, b.clinics, b.loc)
	if err != nil {
		return EventView{}, err
	}

	err = b.events.UpdateEvent(ctx, ev.ID, event.PatchColumns())
	if err != nil {
		return EventView{}, fmt.Errorf("failed to update event: %w", err)
	}

	event.ID = ev.ID
	event.Completed = ev.Completed
	userNames := map[string]string{}
	if ev.VolunteerID != "" {
		volunteerID := ev.VolunteerID
		event.VolunteerID = &volunteerID
		userNames[volunteerID] = ev.VolunteerName
	}
	updated := normalize(event, b.rosterNames(), userNames, b.loc)

	err = b.apply(ctx, func() {
		for i := range b.list {
			if b.list[i].ID == updated.ID {
				b.list[i] = updated
			}
		}
		for i := range b.claims {
			if b.claims[i].ID == updated.ID {
				b.claims[i] = updated
			}
		}
	})

	return updated, err
}

// Delete removes an event the acting user may delete from the store, the
// board and the session's claims.
func (b *Board) Delete(ctx context.Context, key string) error {
	actor, ev, err := b.lookup(key)
	if err != nil {
		return err
	}
	if !b.policy.CanDelete(actor, ev) {
		return ErrPermissionDenied
	}

	err = b.events.DeleteEvent(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return b.apply(ctx, func() {
		b.list = without(b.list, key)
		b.claims = without(b.claims, key)
	})
}

func without(list []EventView, key string) []EventView {
	out := make([]EventView, 0, len(list))
	for _, ev := range list {
		if ev.Key != key {
			out = append(out, ev)
		}
	}
	return out
}

// SlotDate parses the date posted with a slot claim.
func SlotDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(formDateLayout, value, loc)
}
