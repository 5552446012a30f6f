package services

import (
	"context"

	"github.com/google/uuid"
)

// CompanyAuthorizer checks if a user can act on a company's org tree.
// Both methods return an error wrapping domain.ErrForbidden on denial.
//
// Services call the authorizer before loading or writing anything, so a
// denied request never touches the hierarchy tables.
type CompanyAuthorizer interface {
	// CanViewCompany checks read access to the company tree
	CanViewCompany(ctx context.Context, userID uuid.UUID, companyID int64) error

	// CanEditCompany checks write access (reorder, drag sessions)
	CanEditCompany(ctx context.Context, userID uuid.UUID, companyID int64) error
}
