package models

import "time"

type User struct {
	ID            int64      `json:"id"`
	LoginID       string     `json:"login_id"`
	Password      string     `json:"-"` // bcrypt digest
	Nickname      string     `json:"nickname"`
	PhoneNumber   string     `json:"phone_number"`
	Provider      string     `json:"provider"`
	Roles         []string   `json:"roles"`
	Enabled       bool       `json:"enabled"`
	PrivacyAgree  bool       `json:"privacy_agree"`
	PRAgree       bool       `json:"pr_agree"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor is the resolved caller identity for a single request: either a
// member loaded from the store, or a guest (zero value). Guests prove
// ownership per operation with name+phone+reservation number instead.
type Actor struct {
	Member *User
}

// Guest is the anonymous actor.
var Guest = Actor{}

func (a Actor) IsMember() bool { return a.Member != nil }

func (a Actor) IsAdmin() bool {
	return a.Member != nil && a.Member.HasRole(RoleAdmin)
}
