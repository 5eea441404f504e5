package service

import (
	"context"
	"sort"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"
)

type StudentTab string

const (
	TabOverview   StudentTab = "overview"
	TabJobs       StudentTab = "jobs"
	TabMentorship StudentTab = "mentorship"
)

const recommendedJobCount = 3

type StudentStats struct {
	ProfileScore    int `json:"profile_score"`
	OpenJobs        int `json:"open_jobs"`
	AvailableAlumni int `json:"available_alumni"`
}

type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

type StudentDashboard struct {
	Tab             StudentTab            `json:"tab"`
	Welcome         string                `json:"welcome,omitempty"`
	Stats           *StudentStats         `json:"stats,omitempty"`
	RecommendedJobs []model.Job           `json:"recommended_jobs,omitempty"`
	ActiveAlumni    []model.AlumniContact `json:"active_alumni,omitempty"`
	JobBoard        *JobPage              `json:"job_board,omitempty"`
	MentorshipForm  []FormField           `json:"mentorship_form,omitempty"`
}

type AlumniDashboard struct {
	Welcome       string `json:"welcome"`
	JobsPosted    int    `json:"jobs_posted"`
	OpenJobs      int    `json:"open_jobs"`
	DirectorySize int    `json:"directory_size"`
}

type AdminDashboard struct {
	UsersByRole   map[string]int `json:"users_by_role"`
	TotalUsers    int            `json:"total_users"`
	OpenJobs      int            `json:"open_jobs"`
	DirectorySize int            `json:"directory_size"`
}

type DashboardService struct {
	userRepo   repository.UserRepository
	jobRepo    repository.JobRepository
	alumniRepo repository.AlumniRepository
}

func NewDashboardService(userRepo repository.UserRepository, jobRepo repository.JobRepository, alumniRepo repository.AlumniRepository) *DashboardService {
	return &DashboardService{userRepo: userRepo, jobRepo: jobRepo, alumniRepo: alumniRepo}
}

func (s *DashboardService) Student(ctx context.Context, user *model.User, tab StudentTab) (*StudentDashboard, error) {
	switch tab {
	case "", TabOverview:
		return s.studentOverview(ctx, user)
	case TabJobs:
		jobs, total, err := s.jobRepo.ListJobs(ctx, defaultPageSize, 0, repository.JobFilter{})
		if err != nil {
			return nil, err
		}
		return &StudentDashboard{Tab: TabJobs, JobBoard: &JobPage{Jobs: jobs, Total: total, Page: 1, PageSize: defaultPageSize}}, nil
	case TabMentorship:
		alumni, err := s.alumniRepo.ListAlumni(ctx, "")
		if err != nil {
			return nil, err
		}
		return &StudentDashboard{Tab: TabMentorship, MentorshipForm: mentorshipForm(alumni)}, nil
	default:
		return nil, common.Invalid("Unknown dashboard tab")
	}
}

func (s *DashboardService) studentOverview(ctx context.Context, user *model.User) (*StudentDashboard, error) {
	jobs, total, err := s.jobRepo.ListJobs(ctx, maxPageSize, 0, repository.JobFilter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Match > jobs[j].Match })
	if len(jobs) > recommendedJobCount {
		jobs = jobs[:recommendedJobCount]
	}

	alumni, err := s.alumniRepo.ListAlumni(ctx, "")
	if err != nil {
		return nil, err
	}
	available := 0
	for _, a := range alumni {
		if a.Availability == model.AlumniAvailable {
			available++
		}
	}

	return &StudentDashboard{
		Tab:     TabOverview,
		Welcome: "Welcome back, " + user.DisplayName() + "!",
		Stats: &StudentStats{
			ProfileScore:    profileScore(user),
			OpenJobs:        total,
			AvailableAlumni: available,
		},
		RecommendedJobs: jobs,
		ActiveAlumni:    alumni,
	}, nil
}

func (s *DashboardService) Alumni(ctx context.Context, user *model.User) (*AlumniDashboard, error) {
	open, err := s.jobRepo.CountJobs(ctx)
	if err != nil {
		return nil, err
	}
	posted, err := s.jobRepo.CountJobsByPoster(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	alumni, err := s.alumniRepo.ListAlumni(ctx, "")
	if err != nil {
		return nil, err
	}
	return &AlumniDashboard{
		Welcome:       "Welcome back, " + user.DisplayName() + "!",
		JobsPosted:    posted,
		OpenJobs:      open,
		DirectorySize: len(alumni),
	}, nil
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	counts, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	byRole := make(map[string]int, len(model.Roles))
	total := 0
	for _, r := range model.Roles {
		byRole[r.String()] = counts[r]
		total += counts[r]
	}
	open, err := s.jobRepo.CountJobs(ctx)
	if err != nil {
		return nil, err
	}
	alumni, err := s.alumniRepo.ListAlumni(ctx, "")
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{UsersByRole: byRole, TotalUsers: total, OpenJobs: open, DirectorySize: len(alumni)}, nil
}

// profileScore is the share of optional profile fields filled in, on top of a base of 50.
func profileScore(user *model.User) int {
	score := 50
	if user.FullName != nil && *user.FullName != "" {
		score += 25
	}
	if user.Department != nil && *user.Department != "" {
		score += 25
	}
	return score
}

func mentorshipForm(alumni []model.AlumniContact) []FormField {
	names := make([]string, 0, len(alumni))
	for _, a := range alumni {
		names = append(names, a.Name)
	}
	return []FormField{
		{Name: "student_name", Label: "Student Name", Type: "text", Required: true},
		{Name: "alumni_name", Label: "Alumni Name", Type: "text", Required: true, Options: names},
		{Name: "topic", Label: "Session Topic", Type: "text", Required: true},
		{Name: "preferred_date", Label: "Preferred Date", Type: "date", Required: true},
	}
}
