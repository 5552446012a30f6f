package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"vantage/internal/domain"
	"vantage/internal/domain/repositories"
)

// PostgresMembershipRepository implements the MembershipRepository interface
type PostgresMembershipRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(config *RepositoryConfig) repositories.MembershipRepository {
	return &PostgresMembershipRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetRole returns the user's role in the company
func (r *PostgresMembershipRepository) GetRole(ctx context.Context, userID uuid.UUID, companyID int64) (string, error) {
	query := fmt.Sprintf(`
		SELECT role
		FROM %s
		WHERE user_id = $1 AND company_id = $2
	`, r.tables.CompanyMembers)

	var role string
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, userID, companyID).Scan(&role)
	if err != nil {
		if IsPgNoRowsError(err) {
			return "", fmt.Errorf("membership of company %d: %w", companyID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get membership: %w", err)
	}
	return role, nil
}

// AddMember creates or updates a membership
func (r *PostgresMembershipRepository) AddMember(ctx context.Context, userID uuid.UUID, companyID int64, role string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (company_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`, r.tables.CompanyMembers)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, companyID, userID, role, time.Now()); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("company %d: %w", companyID, domain.ErrNotFound)
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}
