package orgtree

import (
	"context"

	"github.com/google/uuid"
	models "vantage/internal/domain/models/orgtree"
	engine "vantage/internal/orgtree"
)

// CompanyTree is a company hierarchy adapted for the tree editor
type CompanyTree struct {
	CompanyID int64                  `json:"company_id"`
	Items     []*engine.TreeItem     `json:"items"`
	Flattened []engine.FlattenedItem `json:"flattened"`
}

// TreeService loads company trees
type TreeService interface {
	// GetCompanyTree returns the adapted tree for a company.
	// userID is used for authorization check.
	GetCompanyTree(ctx context.Context, userID uuid.UUID, companyID int64) (*CompanyTree, error)

	// GetHierarchy returns the raw nested hierarchy, served from the snapshot
	// cache when possible
	GetHierarchy(ctx context.Context, userID uuid.UUID, companyID int64) (*models.Company, error)
}

// ReorderService persists reorder payloads
type ReorderService interface {
	// ReorderTree validates and applies the records in one transaction, then
	// invalidates the cached snapshot of the company
	ReorderTree(ctx context.Context, userID uuid.UUID, companyID int64, records []models.ReorderRecord) error
}

// SnapshotCache holds loaded company hierarchies between requests
type SnapshotCache interface {
	// Get returns (nil, nil) on a miss
	Get(ctx context.Context, companyID int64) (*models.Company, error)
	Set(ctx context.Context, company *models.Company) error
	Invalidate(ctx context.Context, companyID int64) error
}
