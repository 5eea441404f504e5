package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
)

type AlumniRepository interface {
	ListAlumni(ctx context.Context, department string) ([]model.AlumniContact, error)
	FindAlumniByID(ctx context.Context, id string) (*model.AlumniContact, error)
}

type pgAlumniRepository struct {
	db *sql.DB
}

func NewPgAlumniRepository(db *sql.DB) AlumniRepository {
	return &pgAlumniRepository{db: db}
}

const selectAlumni = `SELECT id, user_id, name, company, position, department, availability, referred_job_role, created_at
	FROM alumni_directory`

func (r *pgAlumniRepository) ListAlumni(ctx context.Context, department string) ([]model.AlumniContact, error) {
	query := selectAlumni + ` ORDER BY name ASC`
	var args []any
	if department != "" {
		query = selectAlumni + ` WHERE department ILIKE $1 ORDER BY name ASC`
		args = append(args, department)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgAlumniRepository.ListAlumni: %w", err)
	}
	defer rows.Close()

	alumni := []model.AlumniContact{}
	for rows.Next() {
		a, err := scanAlumni(rows)
		if err != nil {
			return nil, fmt.Errorf("pgAlumniRepository.ListAlumni scan: %w", err)
		}
		alumni = append(alumni, *a)
	}
	return alumni, rows.Err()
}

func (r *pgAlumniRepository) FindAlumniByID(ctx context.Context, id string) (*model.AlumniContact, error) {
	a, err := scanAlumni(r.db.QueryRowContext(ctx, selectAlumni+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgAlumniRepository.FindAlumniByID: %w", err)
	}
	return a, nil
}

func scanAlumni(row rowScanner) (*model.AlumniContact, error) {
	a := &model.AlumniContact{}
	var userID sql.NullString
	var availability string
	err := row.Scan(&a.ID, &userID, &a.Name, &a.Company, &a.Position, &a.Department, &availability, &a.ReferredJobRole, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		a.UserID = &userID.String
	}
	a.Availability = model.AlumniAvailability(availability)
	return a, nil
}
