package types

import (
	"strings"
	"time"
)

type Role string

const (
	RoleLeader    Role = "Leader"
	RoleVolunteer Role = "Volunteer"
)

// ParseRole maps a stored role to a Role. Older rows use the Portuguese
// spellings; anything unrecognised is treated as a volunteer.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "leader", "lider", "líder":
		return RoleLeader
	default:
		return RoleVolunteer
	}
}

type User struct {
	ID        string    `db:"id"`
	Name      *string   `db:"name"`
	Email     *string   `db:"email"`
	Role      string    `db:"role"`
	Phone     *string   `db:"phone"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) DisplayName() string {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		return strings.TrimSpace(*u.Name)
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	return u.ID
}

func (u *User) IsLeader() bool {
	return ParseRole(u.Role) == RoleLeader
}
