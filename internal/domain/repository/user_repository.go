package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	// Create inserts the user and its profile in one transaction.
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	// Upsert mirrors a user owned by an external identity provider. The stored password hash
	// is left untouched.
	Upsert(ctx context.Context, user *model.User) error
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const selectUser = `SELECT u.id, u.email, u.hashed_password, u.role, p.full_name, p.department, u.created_at, u.updated_at
	FROM users u LEFT JOIN profiles p ON p.user_id = u.id`

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create begin: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	query := `INSERT INTO users (id, email, hashed_password, role)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, user.ID, user.Email, user.HashedPassword, user.Role).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO profiles (user_id, full_name, department) VALUES ($1, $2, $3)`,
		user.ID, user.FullName, user.Department)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Create profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgUserRepository.Create commit: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Upsert(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Upsert begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO users (id, email, hashed_password, role)
		VALUES ($1, $2, '', $3)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, role = EXCLUDED.role, updated_at = CURRENT_TIMESTAMP`,
		user.ID, user.Email, user.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email %s belongs to another user: %w", user.Email, common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Upsert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO profiles (user_id, full_name, department) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET full_name = EXCLUDED.full_name, department = EXCLUDED.department, updated_at = CURRENT_TIMESTAMP`,
		user.ID, user.FullName, user.Department)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Upsert profile: %w", err)
	}
	return tx.Commit()
}

func (r *pgUserRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.CountByRole: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Role]int, len(model.Roles))
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("pgUserRepository.CountByRole scan: %w", err)
		}
		counts[model.Role(role)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var role string
	var fullName, department sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.HashedPassword, &role, &fullName, &department, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	if fullName.Valid {
		user.FullName = &fullName.String
	}
	if department.Valid {
		user.Department = &department.String
	}
	return user, nil
}
