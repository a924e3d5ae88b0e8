package schedule

import "catcare/pkg/types"

// Actor is the signed in user acting on the board.
type Actor struct {
	ID   string
	Name string
	Role types.Role
}

func (a *Actor) IsLeader() bool {
	return a != nil && a.Role == types.RoleLeader
}

// Policy holds the configurable parts of the permission rules. The zero
// value is the strict rule set.
type Policy struct {
	// OpenCreation lets any signed in user create events.
	OpenCreation bool
	// OpenEdit lets any signed in user edit any event.
	OpenEdit bool
}

func (p Policy) CanCreate(a *Actor) bool {
	if a == nil {
		return false
	}
	return p.OpenCreation || a.IsLeader()
}

// CanDelete allows leaders and the event's assigned volunteer.
func (p Policy) CanDelete(a *Actor, ev EventView) bool {
	if a == nil {
		return false
	}
	return a.IsLeader() || (ev.VolunteerID != "" && ev.VolunteerID == a.ID)
}

func (p Policy) CanEdit(a *Actor, ev EventView) bool {
	if a == nil {
		return false
	}
	if p.OpenEdit {
		return true
	}
	return p.CanDelete(a, ev)
}
