package orgtree

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
	"vantage/internal/domain/services"
	orgtreeSvc "vantage/internal/domain/services/orgtree"
	engine "vantage/internal/orgtree"
)

// treeService implements the TreeService interface
type treeService struct {
	loader     *snapshotLoader
	authorizer services.CompanyAuthorizer
	logger     *slog.Logger
}

// NewTreeService creates a new tree service. cache may be nil.
func NewTreeService(
	hierarchy repositories.HierarchyRepository,
	cache orgtreeSvc.SnapshotCache,
	authorizer services.CompanyAuthorizer,
	logger *slog.Logger,
) orgtreeSvc.TreeService {
	return &treeService{
		loader:     &snapshotLoader{hierarchy: hierarchy, cache: cache, logger: logger},
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetHierarchy returns the nested company hierarchy
func (s *treeService) GetHierarchy(ctx context.Context, userID uuid.UUID, companyID int64) (*models.Company, error) {
	if err := s.authorizer.CanViewCompany(ctx, userID, companyID); err != nil {
		return nil, err
	}
	return s.loader.load(ctx, companyID)
}

// GetCompanyTree adapts the hierarchy into tree items and their flat view
func (s *treeService) GetCompanyTree(ctx context.Context, userID uuid.UUID, companyID int64) (*orgtreeSvc.CompanyTree, error) {
	company, err := s.GetHierarchy(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	items := engine.Adapt(company)
	return &orgtreeSvc.CompanyTree{
		CompanyID: companyID,
		Items:     items,
		Flattened: engine.Flatten(items),
	}, nil
}
