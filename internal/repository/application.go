package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/joinportal/intake/internal/model"
)

// Common errors for application repository operations.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrEmailExists         = errors.New("application email already exists")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// CreateApplication inserts a new application and fills in the store-assigned
// created_at. The email unique index is authoritative for duplicates: a
// violation is reported as ErrEmailExists.
func (r *Repository) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO join_applications (id, name, email, phone, age, governorate, education, experience, motivation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		app.ID,
		app.Name,
		app.Email,
		app.Phone,
		app.Age,
		app.Governorate,
		app.Education,
		app.Experience,
		app.Motivation,
	).Scan(&app.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// ApplicationExistsByEmail reports whether an application with the given
// normalized email is already on file.
func (r *Repository) ApplicationExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM join_applications WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check application email: %w", err)
	}

	return exists, nil
}

// GetApplicationByID retrieves an application by its ID.
func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*model.Application, error) {
	query := `
		SELECT id, name, email, phone, age, governorate, education, experience, motivation, created_at
		FROM join_applications
		WHERE id = $1
	`

	var app model.Application
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.Name,
		&app.Email,
		&app.Phone,
		&app.Age,
		&app.Governorate,
		&app.Education,
		&app.Experience,
		&app.Motivation,
		&app.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application by ID: %w", err)
	}

	return &app, nil
}

// CountApplicationsByEmail returns how many applications share an email.
// Used by operators and tests to verify the uniqueness invariant.
func (r *Repository) CountApplicationsByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM join_applications WHERE email = $1`, email).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
