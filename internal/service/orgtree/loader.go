package orgtree

import (
	"context"
	"fmt"
	"log/slog"

	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/metrics"
)

// snapshotLoader reads company hierarchies through the snapshot cache.
// Cache failures are logged and fall through to the repository.
type snapshotLoader struct {
	hierarchy repositories.HierarchyRepository
	cache     orgtreeSvc.SnapshotCache
	logger    *slog.Logger
}

func (l *snapshotLoader) load(ctx context.Context, companyID int64) (*models.Company, error) {
	if l.cache != nil {
		company, err := l.cache.Get(ctx, companyID)
		metrics.RecordCacheLookup(company != nil, err)
		if err != nil {
			l.logger.Warn("snapshot cache read failed", "company_id", companyID, "error", err)
		} else if company != nil {
			return company, nil
		}
	}

	company, err := l.hierarchy.GetCompanyHierarchy(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load hierarchy: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, company); err != nil {
			l.logger.Warn("snapshot cache write failed", "company_id", companyID, "error", err)
		}
	}
	return company, nil
}

func (l *snapshotLoader) invalidate(ctx context.Context, companyID int64) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, companyID); err != nil {
		l.logger.Warn("snapshot cache invalidation failed", "company_id", companyID, "error", err)
	}
}
