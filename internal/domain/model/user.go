package model

import (
	"strings"
	"time"
)

// Role is the closed classification of a user. The zero value is RoleAnonymous and is only
// used for projections of an absent user; stored users always carry one of the real roles.
type Role string

const (
	RoleAnonymous Role = ""
	RoleStudent   Role = "student"
	RoleAlumni    Role = "alumni"
	RoleAdmin     Role = "admin"
)

// Roles lists the assignable roles.
var Roles = []Role{RoleStudent, RoleAlumni, RoleAdmin}

func (r Role) String() string {
	if r == RoleAnonymous {
		return "anonymous"
	}
	return string(r)
}

func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleAlumni || r == RoleAdmin
}

// ParseRole accepts only the assignable roles, case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return RoleAnonymous, false
	}
	return r, true
}

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       *string   `json:"full_name,omitempty"`
	Role           Role      `json:"role"`
	Department     *string   `json:"department,omitempty"`
	HashedPassword string    `json:"-"` // Not exposed
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName is the full name when present, the email otherwise.
func (u *User) DisplayName() string {
	if u.FullName != nil && strings.TrimSpace(*u.FullName) != "" {
		return strings.TrimSpace(*u.FullName)
	}
	return u.Email
}

// Profile holds the fields captured at sign-up next to the credentials.
type Profile struct {
	FullName   string `json:"full_name"`
	Role       Role   `json:"role"`
	Department string `json:"department,omitempty"`
}
