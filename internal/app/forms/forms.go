// Package forms holds the checks run on user input before any network call.
package forms

import (
	"strings"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
)

const MinPasswordLength = 6

const (
	MsgFillAll           = "Please fill in all fields"
	MsgFillRequired      = "Please fill in all required fields"
	MsgPasswordTooShort  = "Password must be at least 6 characters long"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgEnterEmail        = "Please enter your email address"
	MsgInvalidRole       = "Please select a valid role"
	MsgInvalidDate       = "Please choose a valid date"
)

type SignIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *SignIn) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" || f.Password == "" {
		return common.Invalid(MsgFillAll)
	}
	return nil
}

type SignUp struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Role            string `json:"role"`
	Department      string `json:"department"`
}

func (f *SignUp) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Department = strings.TrimSpace(f.Department)
	if f.Email == "" || f.Password == "" || f.FullName == "" || strings.TrimSpace(f.Role) == "" {
		return common.Invalid(MsgFillRequired)
	}
	if err := checkNewPassword(f.Password, f.ConfirmPassword); err != nil {
		return err
	}
	if _, ok := model.ParseRole(f.Role); !ok {
		return common.Invalid(MsgInvalidRole)
	}
	return nil
}

// Profile must only be called after Validate succeeded.
func (f *SignUp) Profile() model.Profile {
	role, _ := model.ParseRole(f.Role)
	return model.Profile{FullName: f.FullName, Role: role, Department: f.Department}
}

type ForgotPassword struct {
	Email string `json:"email"`
}

func (f *ForgotPassword) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" {
		return common.Invalid(MsgEnterEmail)
	}
	return nil
}

type NewPassword struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (f *NewPassword) Validate() error {
	if f.Password == "" || f.ConfirmPassword == "" {
		return common.Invalid(MsgFillAll)
	}
	return checkNewPassword(f.Password, f.ConfirmPassword)
}

func checkNewPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return common.Invalid(MsgPasswordTooShort)
	}
	if password != confirm {
		return common.Invalid(MsgPasswordsMismatch)
	}
	return nil
}

// Mentorship is the session request form on the student dashboard.
type Mentorship struct {
	StudentName   string `json:"student_name"`
	AlumniName    string `json:"alumni_name"`
	Topic         string `json:"topic"`
	PreferredDate string `json:"preferred_date"` // YYYY-MM-DD
}

func (f *Mentorship) Validate() error {
	f.StudentName = strings.TrimSpace(f.StudentName)
	f.AlumniName = strings.TrimSpace(f.AlumniName)
	f.Topic = strings.TrimSpace(f.Topic)
	f.PreferredDate = strings.TrimSpace(f.PreferredDate)
	if f.StudentName == "" || f.AlumniName == "" || f.Topic == "" || f.PreferredDate == "" {
		return common.Invalid(MsgFillAll)
	}
	if _, err := time.Parse(time.DateOnly, f.PreferredDate); err != nil {
		return common.Invalid(MsgInvalidDate)
	}
	return nil
}

// Ticket builds the outbound request. The confirmed date starts out equal to the requested one.
func (f *Mentorship) Ticket() model.MentorshipRequest {
	return model.MentorshipRequest{
		StudentName:   f.StudentName,
		AlumniName:    f.AlumniName,
		Topic:         f.Topic,
		RequestedDate: f.PreferredDate,
		ConfirmedDate: f.PreferredDate,
	}
}

type Referral struct {
	AlumniID   string `json:"alumni_id"`
	ResumeLink string `json:"resume_link"`
	ProfileURL string `json:"profile_url"`
}

func (f *Referral) Validate() error {
	f.AlumniID = strings.TrimSpace(f.AlumniID)
	f.ResumeLink = strings.TrimSpace(f.ResumeLink)
	f.ProfileURL = strings.TrimSpace(f.ProfileURL)
	if f.AlumniID == "" || f.ResumeLink == "" || f.ProfileURL == "" {
		return common.Invalid(MsgFillAll)
	}
	return nil
}
