package postgres

import (
	"context"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const jobColumns = `id, employer_id, title, description, location, employment_type, salary_min, salary_max,
	skills_required, status, is_published, is_active, application_deadline, application_count, application_ids,
	published_at, created_at, updated_at, company_name, company_logo_url, company_address, industry`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID, &job.EmployerID, &job.Title, &job.Description, &job.Location, &job.EmploymentType, &job.SalaryMin, &job.SalaryMax,
		pq.Array(&job.SkillsRequired), &job.Status, &job.IsPublished, &job.IsActive, &job.ApplicationDeadline, &job.ApplicationCount, pq.Array(&job.ApplicationIDs),
		&job.PublishedAt, &job.CreatedAt, &job.UpdatedAt, &job.CompanyName, &job.CompanyLogoURL, &job.CompanyAddress, &job.Industry,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (employer_id, title, description, location, employment_type, salary_min, salary_max,
			skills_required, status, is_published, is_active, application_deadline, published_at,
			company_name, company_logo_url, company_address, industry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`
	return r.db.QueryRow(ctx, query,
		job.EmployerID, job.Title, job.Description, job.Location, job.EmploymentType, job.SalaryMin, job.SalaryMax,
		pq.Array(job.SkillsRequired), job.Status, job.IsPublished, job.IsActive, job.ApplicationDeadline, job.PublishedAt,
		job.CompanyName, job.CompanyLogoURL, job.CompanyAddress, job.Industry, job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// FetchByEmployerID retrieves jobs for a specific employer (employer's jobs only)
func (r *jobRepo) FetchByEmployerID(ctx context.Context, employerID string) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE employer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, employerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Update writes the editable fields and publication flags.
// application_count and application_ids are owned by the application insert.
func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE jobs SET
			title = $2, description = $3, location = $4, employment_type = $5, salary_min = $6, salary_max = $7,
			skills_required = $8, status = $9, is_published = $10, is_active = $11, application_deadline = $12,
			published_at = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		job.ID, job.Title, job.Description, job.Location, job.EmploymentType, job.SalaryMin, job.SalaryMax,
		pq.Array(job.SkillsRequired), job.Status, job.IsPublished, job.IsActive, job.ApplicationDeadline,
		job.PublishedAt, job.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
