package model

// MentorshipRequest is the ticket sent to the ticketing table. It is built once per form
// submission and never stored locally.
type MentorshipRequest struct {
	StudentName   string `json:"u_student"`
	AlumniName    string `json:"u_alumni"`
	Topic         string `json:"u_session_topic"`
	RequestedDate string `json:"u_requested_date"`
	ConfirmedDate string `json:"u_confirmed_date"`
}
