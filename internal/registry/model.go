package registry

import "time"

// Role is the strongest role a principal holds.
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleNone  Role = "none"
)

// Principal summarises what the registry knows about an address.
type Principal struct {
	Address string    `json:"address"`
	Role    Role      `json:"role"`
	IsUser  bool      `json:"is_user"`
	IsAdmin bool      `json:"is_admin"`
	AsOf    time.Time `json:"as_of"`
}
