package nav

import (
	"testing"

	"alumni_connect/internal/domain/model"
)

func strPtr(s string) *string { return &s }

func TestDashboardPerRole(t *testing.T) {
	cases := []struct {
		user *model.User
		want Destination
	}{
		{&model.User{Role: model.RoleStudent}, Destination{Navigate: true, Target: "/student-dashboard"}},
		{&model.User{Role: model.RoleAlumni}, Destination{Navigate: true, Target: "/alumni-dashboard"}},
		{&model.User{Role: model.RoleAdmin}, Destination{Navigate: true, Target: "/admin-dashboard"}},
		{&model.User{Role: model.RoleAnonymous}, Destination{}},
		{&model.User{Role: model.Role("moderator")}, Destination{}},
		{nil, Destination{}},
	}
	for _, tc := range cases {
		if got := Dashboard(tc.user); got != tc.want {
			t.Fatalf("Dashboard(%+v) = %+v, want %+v", tc.user, got, tc.want)
		}
	}
}

func TestMenu(t *testing.T) {
	student := Menu(&model.User{Role: model.RoleStudent})
	if len(student) != 3 || student[1].Path != "/student-profile" || student[2].Action != ActionSignOut {
		t.Fatalf("unexpected student menu %+v", student)
	}
	admin := Menu(&model.User{Role: model.RoleAdmin})
	if len(admin) != 2 || admin[0].Path != "/admin-dashboard" {
		t.Fatalf("unexpected admin menu %+v", admin)
	}
	anon := Menu(nil)
	if len(anon) != 2 || anon[0].Action != ActionSignIn || anon[1].Action != ActionSignUp {
		t.Fatalf("unexpected anonymous menu %+v", anon)
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		user *model.User
		want string
	}{
		{&model.User{FullName: strPtr("shaik muzna jawhar"), Email: "x@y.z"}, "SM"},
		{&model.User{FullName: strPtr("Venkat"), Email: "x@y.z"}, "V"},
		{&model.User{FullName: strPtr("  "), Email: "alex@example.com"}, "A"},
		{&model.User{}, "U"},
		{nil, "U"},
	}
	for _, tc := range cases {
		if got := Initials(tc.user); got != tc.want {
			t.Fatalf("Initials(%+v) = %q, want %q", tc.user, got, tc.want)
		}
	}
}

func TestHeaderFor(t *testing.T) {
	h := HeaderFor(&model.User{Email: "a@example.com", FullName: strPtr("Alex Alumni"), Role: model.RoleAlumni})
	if !h.Authenticated || h.DisplayName != "Alex Alumni" || h.Initials != "AA" || h.Role != "alumni" {
		t.Fatalf("unexpected header %+v", h)
	}
	if anon := HeaderFor(nil); anon.Authenticated || anon.Role != "anonymous" {
		t.Fatalf("unexpected anonymous header %+v", anon)
	}
}
