package orgtree

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"vantage/internal/config"
	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
	"vantage/internal/domain/services"
	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/hierarchy"
)

// ReorderService applies reorder payloads. It serves the reorder endpoint
// and doubles as the in-process TreePersister of the editor service.
type ReorderService struct {
	hierarchy  repositories.HierarchyRepository
	txManager  repositories.TransactionManager
	loader     *snapshotLoader
	authorizer services.CompanyAuthorizer
	tiers      *hierarchy.Registry
	logger     *slog.Logger
}

var (
	_ orgtreeSvc.ReorderService = (*ReorderService)(nil)
	_ orgtreeSvc.TreePersister  = (*ReorderService)(nil)
)

// NewReorderService creates a new reorder service. cache may be nil.
func NewReorderService(
	hierarchyRepo repositories.HierarchyRepository,
	txManager repositories.TransactionManager,
	cache orgtreeSvc.SnapshotCache,
	authorizer services.CompanyAuthorizer,
	tiers *hierarchy.Registry,
	logger *slog.Logger,
) *ReorderService {
	if tiers == nil {
		tiers = hierarchy.Default()
	}
	return &ReorderService{
		hierarchy:  hierarchyRepo,
		txManager:  txManager,
		loader:     &snapshotLoader{hierarchy: hierarchyRepo, cache: cache, logger: logger},
		authorizer: authorizer,
		tiers:      tiers,
		logger:     logger,
	}
}

// ReorderTree checks write access, then persists the records
func (s *ReorderService) ReorderTree(ctx context.Context, userID uuid.UUID, companyID int64, records []models.ReorderRecord) error {
	if err := s.authorizer.CanEditCompany(ctx, userID, companyID); err != nil {
		return err
	}
	return s.Persist(ctx, companyID, records)
}

// Persist validates and applies records in one transaction. Callers are
// expected to have authorized the write already.
func (s *ReorderService) Persist(ctx context.Context, companyID int64, records []models.ReorderRecord) error {
	if err := s.validateRecords(records); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.hierarchy.ApplyReorder(ctx, companyID, records)
	})
	if err != nil {
		return fmt.Errorf("apply reorder: %w", err)
	}

	s.loader.invalidate(ctx, companyID)

	s.logger.Info("tree reordered",
		"company_id", companyID,
		"records", len(records),
		"reparented", countReparented(records),
	)
	return nil
}

// validateRecords checks the request shape. Whether the items exist and
// belong to the company is left to the repository.
func (s *ReorderService) validateRecords(records []models.ReorderRecord) error {
	if err := validation.Validate(records,
		validation.Required.Error("at least one record is required"),
		validation.Length(1, config.MaxReorderRecords),
	); err != nil {
		return err
	}

	movable := s.movableTypes()
	seen := make(map[string]bool, len(records))
	for i := range records {
		r := &records[i]
		err := validation.ValidateStruct(r,
			validation.Field(&r.ID, validation.Required, validation.Min(int64(1))),
			validation.Field(&r.Type, validation.Required, validation.In(movable...).Error("must be a movable tier")),
			validation.Field(&r.OrderIndex, validation.Min(0)),
			validation.Field(&r.ParentID,
				validation.When(r.ParentType != nil, validation.NotNil.Error("is required with parent_type")),
				validation.Min(int64(1)),
			),
			validation.Field(&r.ParentType,
				validation.When(r.ParentID != nil, validation.NotNil.Error("is required with parent_id")),
			),
		)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		if r.ParentType != nil && !s.tiers.AllowsParent(r.Type, *r.ParentType) {
			return fmt.Errorf("record %d: %s cannot be a child of %s", i, r.Type, *r.ParentType)
		}

		key := fmt.Sprintf("%s_%d", r.Type, r.ID)
		if seen[key] {
			return fmt.Errorf("record %d: duplicate item %s", i, key)
		}
		seen[key] = true
	}
	return nil
}

func (s *ReorderService) movableTypes() []interface{} {
	var types []interface{}
	for _, t := range s.tiers.Types() {
		if t != models.EntityCompany {
			types = append(types, t)
		}
	}
	return types
}

func countReparented(records []models.ReorderRecord) int {
	n := 0
	for _, r := range records {
		if r.ParentID != nil {
			n++
		}
	}
	return n
}
