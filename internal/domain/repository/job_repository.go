package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// JobFilter narrows ListJobs. Zero fields are ignored.
type JobFilter struct {
	Type       model.JobType
	SearchTerm string
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *model.Job) error
	FindJobBySlug(ctx context.Context, slug string) (*model.Job, error)
	ListJobs(ctx context.Context, limit, offset int, filter JobFilter) ([]model.Job, int, error)
	CountJobs(ctx context.Context) (int, error)
	CountJobsByPoster(ctx context.Context, userID string) (int, error)
}

type pgJobRepository struct {
	db *sql.DB
}

func NewPgJobRepository(db *sql.DB) JobRepository {
	return &pgJobRepository{db: db}
}

func (r *pgJobRepository) CreateJob(ctx context.Context, j *model.Job) error {
	query := `INSERT INTO jobs (id, title, slug, company, location, job_type, description, match_score, posted_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, j.ID, j.Title, j.Slug, j.Company, j.Location, j.Type, j.Description, j.Match, j.PostedByID).
		Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("job with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgJobRepository.CreateJob: %w", err)
	}
	return nil
}

func (r *pgJobRepository) FindJobBySlug(ctx context.Context, slug string) (*model.Job, error) {
	query := `SELECT id, title, slug, company, location, job_type, description, match_score, posted_by, created_at, updated_at
	          FROM jobs WHERE slug = $1`
	job, err := scanJob(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgJobRepository.FindJobBySlug: %w", err)
	}
	return job, nil
}

func (r *pgJobRepository) ListJobs(ctx context.Context, limit, offset int, filter JobFilter) ([]model.Job, int, error) {
	var baseQuery strings.Builder
	baseQuery.WriteString(`
        SELECT j.id, j.title, j.slug, j.company, j.location, j.job_type, j.description, j.match_score,
               j.posted_by, j.created_at, j.updated_at
        FROM jobs j`)

	var countQuery strings.Builder
	countQuery.WriteString(`SELECT COUNT(*) FROM jobs j`)

	var conditions []string
	var args []any
	argID := 1

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("j.job_type = $%d", argID))
		args = append(args, filter.Type)
		argID++
	}

	if filter.SearchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("(j.title ILIKE $%d OR j.company ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + filter.SearchTerm + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}

	if len(conditions) > 0 {
		whereClause := " WHERE " + strings.Join(conditions, " AND ")
		baseQuery.WriteString(whereClause)
		countQuery.WriteString(whereClause)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery.String(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgJobRepository.ListJobs count: %w", err)
	}

	baseQuery.WriteString(fmt.Sprintf(" ORDER BY j.created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgJobRepository.ListJobs query: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgJobRepository.ListJobs scan: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgJobRepository.ListJobs rows.Err: %w", err)
	}

	return jobs, total, nil
}

func (r *pgJobRepository) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgJobRepository.CountJobs: %w", err)
	}
	return n, nil
}

func scanJob(row rowScanner) (*model.Job, error) {
	j := &model.Job{}
	var jobType string
	var postedBy sql.NullString
	err := row.Scan(&j.ID, &j.Title, &j.Slug, &j.Company, &j.Location, &jobType, &j.Description, &j.Match,
		&postedBy, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Type = model.JobType(jobType)
	if postedBy.Valid {
		j.PostedByID = &postedBy.String
	}
	return j, nil
}

func (r *pgJobRepository) CountJobsByPoster(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE posted_by = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgJobRepository.CountJobsByPoster: %w", err)
	}
	return n, nil
}
