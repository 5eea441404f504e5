package model

import (
	"time"
)

type JobType string

const (
	JobFullTime JobType = "Full-time"
	JobRemote   JobType = "Remote"
	JobHybrid   JobType = "Hybrid"
	JobIntern   JobType = "Internship"
)

func (t JobType) IsValid() bool {
	switch t {
	case JobFullTime, JobRemote, JobHybrid, JobIntern:
		return true
	}
	return false
}

// Job is a posting on the job board.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Type        JobType   `json:"type"`
	Description string    `json:"description,omitempty"`
	Match       int       `json:"match"` // 0-100 relevance shown on the student overview
	PostedByID  *string   `json:"posted_by_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AlumniAvailability string

const (
	AlumniAvailable AlumniAvailability = "Available"
	AlumniBusy      AlumniAvailability = "Busy"
)

// AlumniContact is an entry of the alumni directory shown to students.
type AlumniContact struct {
	ID              string             `json:"id"`
	UserID          *string            `json:"user_id,omitempty"`
	Name            string             `json:"name"`
	Company         string             `json:"company"`
	Position        string             `json:"position"`
	Department      string             `json:"department"`
	Availability    AlumniAvailability `json:"availability"`
	ReferredJobRole string             `json:"referred_job_role"`
	CreatedAt       time.Time          `json:"created_at"`
}
