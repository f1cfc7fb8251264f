package postgres

import (
	"context"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepo struct {
	db *pgxpool.Pool
}

// NewProfileRepository returns the read side of the profile tables.
func NewProfileRepository(db *pgxpool.Pool) domain.ProfileStore {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetJobseeker(ctx context.Context, userID string) (*domain.JobseekerProfile, error) {
	query := `SELECT user_id, full_name, is_active, skills, resume_url FROM jobseeker_profiles WHERE user_id = $1`
	var p domain.JobseekerProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.IsActive, pq.Array(&p.Skills), &p.ResumeURL)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetEmployer(ctx context.Context, userID string) (*domain.EmployerProfile, error) {
	query := `SELECT user_id, company_name, logo_url, address, industry FROM employer_profiles WHERE user_id = $1`
	var p domain.EmployerProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.CompanyName, &p.LogoURL, &p.Address, &p.Industry)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListActiveJobseekersWithSkills pages by user_id so a fan-out never holds
// the whole candidate table in memory.
func (r *profileRepo) ListActiveJobseekersWithSkills(ctx context.Context, afterID string, limit int) ([]domain.JobseekerProfile, error) {
	query := `SELECT user_id, full_name, is_active, skills, resume_url
		FROM jobseeker_profiles
		WHERE is_active AND cardinality(skills) > 0 AND user_id > $1
		ORDER BY user_id
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.JobseekerProfile{}
	for rows.Next() {
		var p domain.JobseekerProfile
		if err := rows.Scan(&p.UserID, &p.FullName, &p.IsActive, pq.Array(&p.Skills), &p.ResumeURL); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
