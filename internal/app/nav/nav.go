// Package nav maps a user's role to where the header and dashboard redirects point.
package nav

import (
	"log"
	"strings"
	"unicode"
	"unicode/utf8"

	"alumni_connect/internal/domain/model"
)

type Action string

const (
	ActionDashboard Action = "dashboard"
	ActionProfile   Action = "profile"
	ActionSignOut   Action = "sign-out"
	ActionSignIn    Action = "sign-in"
	ActionSignUp    Action = "sign-up"
)

type MenuItem struct {
	Action Action `json:"action"`
	Label  string `json:"label"`
	Path   string `json:"path,omitempty"`
}

type Destination struct {
	Navigate bool   `json:"navigate"`
	Target   string `json:"target,omitempty"`
}

type routes struct {
	dashboard string
	profile   string
}

var table = map[model.Role]routes{
	model.RoleStudent: {dashboard: "/student-dashboard", profile: "/student-profile"},
	model.RoleAlumni:  {dashboard: "/alumni-dashboard", profile: "/alumni-profile"},
	model.RoleAdmin:   {dashboard: "/admin-dashboard"},
}

// Dashboard returns the dashboard for the user's role. Absent users and unknown roles get
// no navigation.
func Dashboard(user *model.User) Destination {
	if user == nil {
		log.Println("INFO: dashboard navigation requested without a signed-in user")
		return Destination{}
	}
	r, ok := table[user.Role]
	if !ok {
		log.Printf("WARN: no dashboard for role %q (user %s)", user.Role.String(), user.ID)
		return Destination{}
	}
	return Destination{Navigate: true, Target: r.dashboard}
}

// Profile is empty for roles without a profile page.
func Profile(user *model.User) Destination {
	if user == nil {
		return Destination{}
	}
	r, ok := table[user.Role]
	if !ok || r.profile == "" {
		return Destination{}
	}
	return Destination{Navigate: true, Target: r.profile}
}

func Menu(user *model.User) []MenuItem {
	if user == nil {
		return []MenuItem{
			{Action: ActionSignIn, Label: "Sign In"},
			{Action: ActionSignUp, Label: "Sign Up"},
		}
	}
	var items []MenuItem
	if d := Dashboard(user); d.Navigate {
		items = append(items, MenuItem{Action: ActionDashboard, Label: "Dashboard", Path: d.Target})
	}
	if p := Profile(user); p.Navigate {
		items = append(items, MenuItem{Action: ActionProfile, Label: "Profile", Path: p.Target})
	}
	return append(items, MenuItem{Action: ActionSignOut, Label: "Sign Out"})
}

// Initials takes the first letter of up to two name parts, else the email's first letter, else "U".
func Initials(user *model.User) string {
	if user == nil {
		return "U"
	}
	if user.FullName != nil {
		var b strings.Builder
		for i, part := range strings.Fields(*user.FullName) {
			if i == 2 {
				break
			}
			r, _ := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	if r, _ := utf8.DecodeRuneInString(user.Email); r != utf8.RuneError {
		return string(unicode.ToUpper(r))
	}
	return "U"
}

// Header is everything the page header needs for the current user.
type Header struct {
	Authenticated bool       `json:"authenticated"`
	DisplayName   string     `json:"display_name,omitempty"`
	Initials      string     `json:"initials,omitempty"`
	Role          string     `json:"role"`
	Menu          []MenuItem `json:"menu"`
}

func HeaderFor(user *model.User) Header {
	h := Header{Role: model.RoleAnonymous.String(), Menu: Menu(user)}
	if user != nil {
		h.Authenticated = true
		h.DisplayName = user.DisplayName()
		h.Initials = Initials(user)
		h.Role = user.Role.String()
	}
	return h
}
