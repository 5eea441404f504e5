package model

type ReferralStatus string

const ReferralPending ReferralStatus = "Pending"

// ReferralRequest is posted to the referral backend. Status is always Pending at creation.
type ReferralRequest struct {
	StudentName    string         `json:"studentName"`
	AlumniAssigned string         `json:"alumniAssigned"`
	JobRole        string         `json:"jobRole"`
	ResumeLink     string         `json:"resumeLink"`
	ProfileURL     string         `json:"profileUrl"`
	Status         ReferralStatus `json:"status"`
}
