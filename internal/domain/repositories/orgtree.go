package repositories

import (
	"context"

	"github.com/google/uuid"
	models "vantage/internal/domain/models/orgtree"
)

// HierarchyRepository reads and reorders a company's org structure
type HierarchyRepository interface {
	// GetCompanyHierarchy loads the company with every tier nested and each
	// child list ordered by order_index. Returns domain.ErrNotFound for an
	// unknown company.
	GetCompanyHierarchy(ctx context.Context, companyID int64) (*models.Company, error)

	// ApplyReorder writes order_index and, when set, the new parent of each
	// record. Items outside the company fail with domain.ErrNotFound.
	// Callers wrap it in a transaction so a partial reorder never lands.
	ApplyReorder(ctx context.Context, companyID int64, records []models.ReorderRecord) error

	// CreateCompany inserts a full hierarchy, assigning IDs in place and
	// order_index from slice position. Shared roles are matched by name.
	CreateCompany(ctx context.Context, company *models.Company) error
}

// MembershipRepository resolves a user's role within a company
type MembershipRepository interface {
	// GetRole returns the member role slug, e.g. "admin", "editor", "viewer".
	// Returns domain.ErrNotFound when the user is not a member.
	GetRole(ctx context.Context, userID uuid.UUID, companyID int64) (string, error)

	// AddMember creates or updates a membership
	AddMember(ctx context.Context, userID uuid.UUID, companyID int64, role string) error
}
