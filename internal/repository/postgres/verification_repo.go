package postgres

import (
	"context"
	"fmt"
	"time"

	"gradhire-backend/internal/domain"
	"gradhire-backend/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
)

type verificationRepo struct {
	db *pgxpool.Pool
}

func NewVerificationRepository(db *pgxpool.Pool) domain.VerificationStore {
	return &verificationRepo{db: db}
}

func slotColumn(slot domain.DocumentSlot) (string, error) {
	switch slot {
	case domain.SlotRegistration:
		return "registration_proof", nil
	case domain.SlotGovernmentID:
		return "government_id", nil
	case domain.SlotAddress:
		return "address_proof", nil
	}
	return "", fmt.Errorf("unknown document slot %q", slot)
}

// GetByEmployerID returns an unverified record for employers that never
// submitted anything. The stored overall_status is ignored and derived again.
func (r *verificationRepo) GetByEmployerID(ctx context.Context, employerID string) (*domain.EmployerVerification, error) {
	query := `SELECT registration_proof, government_id, address_proof, updated_at
		FROM employer_verifications
		WHERE employer_id = $1`

	v := domain.EmployerVerification{EmployerID: employerID}
	err := r.db.QueryRow(ctx, query, employerID).Scan(
		&v.Docs.Registration, &v.Docs.GovernmentID, &v.Docs.Address, &v.UpdatedAt,
	)
	if err != nil && !database.IsNoRows(err) {
		return nil, err
	}
	v.OverallStatus = domain.DeriveOverallStatus(v.Docs)
	return &v, nil
}

// SetDocumentStatus changes one document and persists the recomputed overall
// status under a row lock.
func (r *verificationRepo) SetDocumentStatus(ctx context.Context, employerID string, slot domain.DocumentSlot, status domain.DocumentStatus) (*domain.EmployerVerification, error) {
	column, err := slotColumn(slot)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO employer_verifications (employer_id) VALUES ($1) ON CONFLICT (employer_id) DO NOTHING`, employerID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure verification row: %w", err)
	}

	v := domain.EmployerVerification{EmployerID: employerID}
	err = tx.QueryRow(ctx, `SELECT registration_proof, government_id, address_proof
		FROM employer_verifications WHERE employer_id = $1 FOR UPDATE`, employerID).Scan(
		&v.Docs.Registration, &v.Docs.GovernmentID, &v.Docs.Address,
	)
	if err != nil {
		return nil, err
	}

	docs, _ := v.Docs.WithStatus(slot, status)
	v.Docs = docs
	v.OverallStatus = domain.DeriveOverallStatus(docs)
	v.UpdatedAt = time.Now()

	query := fmt.Sprintf(`UPDATE employer_verifications SET %s = $2, overall_status = $3, updated_at = $4 WHERE employer_id = $1`, column)
	if _, err := tx.Exec(ctx, query, employerID, status, v.OverallStatus, v.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &v, nil
}
