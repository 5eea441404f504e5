package service

import (
	"context"
	"errors"
	"strings"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type JobService struct {
	jobRepo    repository.JobRepository
	alumniRepo repository.AlumniRepository
}

func NewJobService(jobRepo repository.JobRepository, alumniRepo repository.AlumniRepository) *JobService {
	return &JobService{jobRepo: jobRepo, alumniRepo: alumniRepo}
}

type CreateJobRequest struct {
	Title       string        `json:"title"`
	Company     string        `json:"company"`
	Location    string        `json:"location"`
	Type        model.JobType `json:"type"`
	Description string        `json:"description"`
	Match       int           `json:"match"`
}

type JobPage struct {
	Jobs     []model.Job `json:"jobs"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// CreateJob slugs the title together with the company; a clash gets a short random suffix.
func (s *JobService) CreateJob(ctx context.Context, userID string, req CreateJobRequest) (*model.Job, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Company = strings.TrimSpace(req.Company)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" || req.Company == "" || req.Location == "" || req.Type == "" {
		return nil, common.Invalid("Please fill in all required fields")
	}
	if !req.Type.IsValid() {
		return nil, common.Invalid("Unknown job type")
	}
	if req.Match < 0 || req.Match > 100 {
		return nil, common.Invalid("Match must be between 0 and 100")
	}

	job := &model.Job{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title + " " + req.Company),
		Company:     req.Company,
		Location:    req.Location,
		Type:        req.Type,
		Description: req.Description,
		Match:       req.Match,
		PostedByID:  &userID,
	}

	err := s.jobRepo.CreateJob(ctx, job)
	if errors.Is(err, common.ErrConflict) {
		job.Slug = job.Slug + "-" + job.ID[:8]
		err = s.jobRepo.CreateJob(ctx, job)
	}
	if err != nil {
		return nil, common.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, jobSlug string) (*model.Job, error) {
	return s.jobRepo.FindJobBySlug(ctx, jobSlug)
}

func (s *JobService) ListJobs(ctx context.Context, page, pageSize int, jobType model.JobType, searchTerm string) (*JobPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if jobType != "" && !jobType.IsValid() {
		return nil, common.Invalid("Unknown job type")
	}

	limit := pageSize
	offset := (page - 1) * pageSize
	jobs, total, err := s.jobRepo.ListJobs(ctx, limit, offset, repository.JobFilter{Type: jobType, SearchTerm: strings.TrimSpace(searchTerm)})
	if err != nil {
		return nil, err
	}
	return &JobPage{Jobs: jobs, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *JobService) ListAlumni(ctx context.Context, department string) ([]model.AlumniContact, error) {
	return s.alumniRepo.ListAlumni(ctx, strings.TrimSpace(department))
}
