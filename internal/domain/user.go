package domain

import (
	"context"
)

// Roles
const (
	RoleJobseeker = "jobseeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

// Actor is the authenticated caller of a usecase.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsJobseeker() bool { return a.Role == RoleJobseeker }
func (a Actor) IsEmployer() bool  { return a.Role == RoleEmployer }

// JobseekerProfile is the read-only slice of a graduate's profile the core needs.
type JobseekerProfile struct {
	UserID    string   `json:"user_id"`
	FullName  string   `json:"full_name"`
	IsActive  bool     `json:"is_active"`
	Skills    []string `json:"skills"`
	ResumeURL string   `json:"resume_url"`
}

// EmployerProfile carries the fields denormalized onto jobs.
type EmployerProfile struct {
	UserID      string  `json:"user_id"`
	CompanyName string  `json:"company_name"`
	LogoURL     *string `json:"logo_url"`
	Address     *string `json:"address"`
	Industry    *string `json:"industry"`
}

// ProfileStore is the identity/profile store owned by the surrounding CRUD
// screens. The core only reads from it.
type ProfileStore interface {
	GetJobseeker(ctx context.Context, userID string) (*JobseekerProfile, error)
	GetEmployer(ctx context.Context, userID string) (*EmployerProfile, error)
	// ListActiveJobseekersWithSkills returns up to limit active jobseekers with a
	// non-empty skill set whose id sorts after afterID.
	ListActiveJobseekersWithSkills(ctx context.Context, afterID string, limit int) ([]JobseekerProfile, error)
}
