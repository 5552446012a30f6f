package orgtree

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"vantage/internal/domain"
	"vantage/internal/domain/models"
	orgmodels "vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// testCompany: Acme > Operations > North > Mine A > {Fixed Plant > Crushing, Mobile Fleet > Haul}
func testCompany() *orgmodels.Company {
	return &orgmodels.Company{
		ID:   1,
		Name: "Acme",
		BusinessUnits: []orgmodels.BusinessUnit{{
			ID: 1, Name: "Operations",
			Regions: []orgmodels.Region{{
				ID: 1, Name: "North",
				Sites: []orgmodels.Site{{
					ID: 1, Name: "Mine A",
					AssetGroups: []orgmodels.AssetGroup{
						{ID: 1, Name: "Fixed Plant", WorkGroups: []orgmodels.WorkGroup{{
							ID: 10, Name: "Crushing",
							Roles: []orgmodels.Role{
								{ID: 1, Name: "Maintenance Planner", SharedRoleID: ptr(int64(5))},
								{ID: 2, Name: "Operator", SharedRoleID: ptr(int64(6)), OrderIndex: 1},
							},
						}}},
						{ID: 2, Name: "Mobile Fleet", OrderIndex: 1, WorkGroups: []orgmodels.WorkGroup{{
							ID: 12, Name: "Haul",
							Roles: []orgmodels.Role{{ID: 5, Name: "Maintenance Planner", SharedRoleID: ptr(int64(5))}},
						}}},
					},
				}},
			}},
		}},
	}
}

type txKey struct{}

type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(context.WithValue(ctx, txKey{}, true))
}

type fakeHierarchy struct {
	mu       sync.Mutex
	company  *orgmodels.Company
	getCalls int
	applied  [][]orgmodels.ReorderRecord
	inTx     bool
	applyErr error
}

func (f *fakeHierarchy) GetCompanyHierarchy(ctx context.Context, companyID int64) (*orgmodels.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.company == nil || f.company.ID != companyID {
		return nil, fmt.Errorf("company %d: %w", companyID, domain.ErrNotFound)
	}
	return f.company, nil
}

func (f *fakeHierarchy) ApplyReorder(ctx context.Context, companyID int64, records []orgmodels.ReorderRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inTx, _ = ctx.Value(txKey{}).(bool)
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, records)
	return nil
}

func (f *fakeHierarchy) CreateCompany(ctx context.Context, company *orgmodels.Company) error {
	f.company = company
	return nil
}

type fakeAuthorizer struct {
	denyView bool
	denyEdit bool
}

func (a *fakeAuthorizer) CanViewCompany(ctx context.Context, userID uuid.UUID, companyID int64) error {
	if a.denyView {
		return fmt.Errorf("access denied to company %d: %w", companyID, domain.ErrForbidden)
	}
	return nil
}

func (a *fakeAuthorizer) CanEditCompany(ctx context.Context, userID uuid.UUID, companyID int64) error {
	if a.denyEdit {
		return fmt.Errorf("access denied to company %d: %w", companyID, domain.ErrForbidden)
	}
	return nil
}

type fakePersister struct {
	mu    sync.Mutex
	calls [][]orgmodels.ReorderRecord
	err   error
}

func (p *fakePersister) Persist(ctx context.Context, companyID int64, records []orgmodels.ReorderRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, records)
	return p.err
}

type fakePrefs struct {
	width int
}

func (p *fakePrefs) GetPreferences(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error) {
	prefs := &models.UserPreferences{UserID: userID}
	if err := prefs.SetNamespace(models.NamespaceTree, models.TreePreferences{IndentationWidth: &p.width}); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (p *fakePrefs) UpdatePreferences(ctx context.Context, userID uuid.UUID, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	return p.GetPreferences(ctx, userID)
}

type failingCache struct{}

func (failingCache) Get(ctx context.Context, companyID int64) (*orgmodels.Company, error) {
	return nil, fmt.Errorf("cache down")
}

func (failingCache) Set(ctx context.Context, company *orgmodels.Company) error {
	return fmt.Errorf("cache down")
}

func (failingCache) Invalidate(ctx context.Context, companyID int64) error {
	return fmt.Errorf("cache down")
}
