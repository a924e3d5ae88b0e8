package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catcare/pkg/types"
)

type fakeEvents struct {
	mu      sync.Mutex
	rows    []*types.EventRow
	calls   []string
	nextID  int
	loadErr error
	// writeErr fails every mutating call.
	writeErr error
	// hook runs inside every mutating call before it returns.
	hook func()
}

func (f *fakeEvents) record(call string) error {
	f.calls = append(f.calls, call)
	if f.hook != nil {
		f.hook()
	}
	return f.writeErr
}

func (f *fakeEvents) find(id string) *types.EventRow {
	for _, r := range f.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeEvents) Events(ctx context.Context) ([]*types.EventRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]*types.EventRow, 0, len(f.rows))
	for _, r := range f.rows {
		c := *r
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeEvents) CreateEvent(ctx context.Context, row *types.EventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("create"); err != nil {
		return err
	}
	f.nextID++
	row.ID = fmt.Sprintf("new%d", f.nextID)
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	c := *row
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeEvents) UpdateEvent(ctx context.Context, eventID string, columns map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("update:" + eventID); err != nil {
		return err
	}
	r := f.find(eventID)
	if r == nil {
		return types.ErrEventNotFound
	}
	if v, ok := columns["scheduled_at"].(time.Time); ok {
		r.ScheduledAt = v
	}
	if v, ok := columns["medicine"].(string); ok {
		r.Medicine = &v
	}
	if v, ok := columns["shift"].(string); ok {
		r.Shift = &v
	}
	return nil
}

func (f *fakeEvents) AssignVolunteer(ctx context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("assign:" + eventID); err != nil {
		return err
	}
	r := f.find(eventID)
	if r == nil {
		return types.ErrEventNotFound
	}
	r.VolunteerID = &userID
	r.Available = false
	return nil
}

func (f *fakeEvents) SetCompleted(ctx context.Context, eventID string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("complete:" + eventID); err != nil {
		return err
	}
	if r := f.find(eventID); r != nil {
		r.Completed = completed
	}
	return nil
}

func (f *fakeEvents) DeleteEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("delete:" + eventID); err != nil {
		return err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.ID != eventID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeCats struct {
	cats      []*types.Cat
	err       error
	lookups   [][]string
	lookupErr error
}

func (f *fakeCats) Cats(ctx context.Context) ([]*types.Cat, error) {
	return f.cats, f.err
}

func (f *fakeCats) CatsByIDs(ctx context.Context, ids []string) ([]*types.Cat, error) {
	f.lookups = append(f.lookups, ids)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := make([]*types.Cat, 0)
	for _, cat := range f.cats {
		for _, id := range ids {
			if cat.ID == id {
				out = append(out, cat)
			}
		}
	}
	return out, nil
}

type fakeUsers struct {
	users   []*types.User
	err     error
	lookups [][]string
}

func (f *fakeUsers) User(ctx context.Context, userID string) (*types.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeUsers) UsersByIDs(ctx context.Context, userIDs []string) ([]*types.User, error) {
	f.lookups = append(f.lookups, userIDs)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*types.User, 0)
	for _, u := range f.users {
		for _, id := range userIDs {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakeClinics struct {
	clinics []*types.Clinic
}

func (f *fakeClinics) Clinics(ctx context.Context) ([]*types.Clinic, error) {
	return f.clinics, nil
}

func (f *fakeClinics) ClinicByID(ctx context.Context, id string) (*types.Clinic, error) {
	for _, c := range f.clinics {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, types.ErrClinicNotFound
}

func (f *fakeClinics) ClinicByVeterinarian(ctx context.Context, veterinarian string) (*types.Clinic, error) {
	for _, c := range f.clinics {
		if c.Veterinarian == veterinarian {
			return c, nil
		}
	}
	return nil, types.ErrClinicNotFound
}

func strPtr(s string) *string {
	return &s
}
