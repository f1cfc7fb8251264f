package postgres

import (
	"context"
	"fmt"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationColumns = `a.id, a.job_id, a.jobseeker_id, a.employer_id, a.cover_letter, a.resume_url,
	a.status, a.notes, a.applied_at, a.reviewed_at, a.updated_at, j.title`

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.JobID, &app.JobseekerID, &app.EmployerID, &app.CoverLetter, &app.ResumeURL,
		&app.Status, &app.Notes, &app.AppliedAt, &app.ReviewedAt, &app.UpdatedAt, &app.JobTitle,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) queryList(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		applications = append(applications, *app)
	}
	return applications, rows.Err()
}

// Create inserts the application, then bumps the job's counter and id list in
// the same transaction. The (job_id, jobseeker_id) unique constraint is the
// only duplicate check.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO applications (job_id, jobseeker_id, employer_id, cover_letter, resume_url, status, applied_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err = tx.QueryRow(ctx, query,
		app.JobID,
		app.JobseekerID,
		app.EmployerID,
		app.CoverLetter,
		app.ResumeURL,
		app.Status,
		app.AppliedAt,
		app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateRecord
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE jobs
		SET application_count = application_count + 1,
			application_ids = array_append(application_ids, $2)
		WHERE id = $1`, app.JobID, app.ID)
	if err != nil {
		return fmt.Errorf("failed to update job counters: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves an application by ID with the job title joined in
func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications a
		LEFT JOIN jobs j ON a.job_id = j.id
		WHERE a.id = $1`

	app, err := scanApplication(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) GetByJobID(ctx context.Context, jobID int64) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications a
		LEFT JOIN jobs j ON a.job_id = j.id
		WHERE a.job_id = $1
		ORDER BY a.applied_at DESC`
	return r.queryList(ctx, query, jobID)
}

func (r *applicationRepo) GetByJobseekerID(ctx context.Context, jobseekerID string) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications a
		LEFT JOIN jobs j ON a.job_id = j.id
		WHERE a.jobseeker_id = $1
		ORDER BY a.applied_at DESC`
	return r.queryList(ctx, query, jobseekerID)
}

// ListBetween orders eligible applications first so the row that opens a
// conversation comes before newer pending ones.
func (r *applicationRepo) ListBetween(ctx context.Context, userA, userB string, jobID *int64) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + `
		FROM applications a
		LEFT JOIN jobs j ON a.job_id = j.id
		WHERE ((a.jobseeker_id = $1 AND a.employer_id = $2) OR (a.jobseeker_id = $2 AND a.employer_id = $1))
			AND ($3::bigint IS NULL OR a.job_id = $3)
		ORDER BY (a.status IN ('shortlisted', 'accepted')) DESC, a.applied_at DESC`
	return r.queryList(ctx, query, userA, userB, jobID)
}

// UpdateReview stores the review outcome. Nil notes keep the existing notes.
func (r *applicationRepo) UpdateReview(ctx context.Context, id int64, review domain.StatusReview) error {
	query := `
		UPDATE applications
		SET status = $2, notes = COALESCE($3, notes), reviewed_at = $4, updated_at = $4
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, review.Status, review.Notes, review.ReviewedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
