package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
	"vantage/internal/domain/repositories"
	"vantage/internal/hierarchy"
)

// PostgresHierarchyRepository implements the HierarchyRepository interface.
// Every tier table carries company_id so a whole tree loads with one query
// per tier.
type PostgresHierarchyRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	tiers  *hierarchy.Registry
	logger *slog.Logger
}

// NewHierarchyRepository creates a new hierarchy repository
func NewHierarchyRepository(config *RepositoryConfig) repositories.HierarchyRepository {
	return &PostgresHierarchyRepository{
		pool:   config.Pool,
		tables: config.Tables,
		tiers:  hierarchy.Default(),
		logger: config.Logger,
	}
}

// tierRow is the common shape of every non-role tier row
type tierRow struct {
	id, parentID      int64
	name, code, descr string
	orderIndex        int
	lat, lng          *float64
}

// GetCompanyHierarchy loads and nests all tiers of a company
func (r *PostgresHierarchyRepository) GetCompanyHierarchy(ctx context.Context, companyID int64) (*models.Company, error) {
	executor := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT id, name, COALESCE(code, ''), COALESCE(description, ''), created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Companies)

	var company models.Company
	err := executor.QueryRow(ctx, query, companyID).Scan(
		&company.ID,
		&company.Name,
		&company.Code,
		&company.Description,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("company %d: %w", companyID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get company: %w", err)
	}

	bus, err := r.loadTier(ctx, models.EntityBusinessUnit, companyID)
	if err != nil {
		return nil, err
	}
	regions, err := r.loadTier(ctx, models.EntityRegion, companyID)
	if err != nil {
		return nil, err
	}
	sites, err := r.loadTier(ctx, models.EntitySite, companyID)
	if err != nil {
		return nil, err
	}
	assetGroups, err := r.loadTier(ctx, models.EntityAssetGroup, companyID)
	if err != nil {
		return nil, err
	}
	workGroups, err := r.loadTier(ctx, models.EntityWorkGroup, companyID)
	if err != nil {
		return nil, err
	}
	managers, reports, err := r.loadRoles(ctx, companyID)
	if err != nil {
		return nil, err
	}

	// Nest bottom-up so every child slice is complete before its parent is copied
	wgByAG := make(map[int64][]models.WorkGroup)
	for _, row := range workGroups {
		roles := managers[row.id]
		for i := range roles {
			roles[i].ReportingRoles = reports[roles[i].ID]
		}
		wgByAG[row.parentID] = append(wgByAG[row.parentID], models.WorkGroup{
			ID: row.id, Name: row.name, Code: row.code, Description: row.descr,
			OrderIndex: row.orderIndex, Roles: orEmpty(roles),
		})
	}

	agBySite := make(map[int64][]models.AssetGroup)
	for _, row := range assetGroups {
		agBySite[row.parentID] = append(agBySite[row.parentID], models.AssetGroup{
			ID: row.id, Name: row.name, Code: row.code, Description: row.descr,
			OrderIndex: row.orderIndex, WorkGroups: orEmpty(wgByAG[row.id]),
		})
	}

	sitesByRegion := make(map[int64][]models.Site)
	for _, row := range sites {
		sitesByRegion[row.parentID] = append(sitesByRegion[row.parentID], models.Site{
			ID: row.id, Name: row.name, Code: row.code, Description: row.descr,
			Lat: row.lat, Lng: row.lng,
			OrderIndex: row.orderIndex, AssetGroups: orEmpty(agBySite[row.id]),
		})
	}

	regionsByBU := make(map[int64][]models.Region)
	for _, row := range regions {
		regionsByBU[row.parentID] = append(regionsByBU[row.parentID], models.Region{
			ID: row.id, Name: row.name, Code: row.code, Description: row.descr,
			OrderIndex: row.orderIndex, Sites: orEmpty(sitesByRegion[row.id]),
		})
	}

	company.BusinessUnits = make([]models.BusinessUnit, 0, len(bus))
	for _, row := range bus {
		company.BusinessUnits = append(company.BusinessUnits, models.BusinessUnit{
			ID: row.id, Name: row.name, Code: row.code, Description: row.descr,
			OrderIndex: row.orderIndex, Regions: orEmpty(regionsByBU[row.id]),
		})
	}

	r.logger.Debug("company hierarchy loaded",
		"company_id", companyID,
		"business_units", len(bus),
		"sites", len(sites),
		"work_groups", len(workGroups),
	)

	return &company, nil
}

// loadTier reads one non-role tier of a company ordered for display
func (r *PostgresHierarchyRepository) loadTier(ctx context.Context, tier models.EntityType, companyID int64) ([]tierRow, error) {
	table, _ := r.tables.ForTier(tier)
	parentColumn := parentColumns[tier]

	extra := "NULL::double precision, NULL::double precision"
	if tier == models.EntitySite {
		extra = "lat, lng"
	}

	query := fmt.Sprintf(`
		SELECT id, %s, name, COALESCE(code, ''), COALESCE(description, ''), order_index, %s
		FROM %s
		WHERE company_id = $1
		ORDER BY order_index, id
	`, parentColumn, extra, table)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tier, err)
	}
	defer rows.Close()

	var out []tierRow
	for rows.Next() {
		var row tierRow
		if err := rows.Scan(&row.id, &row.parentID, &row.name, &row.code, &row.descr, &row.orderIndex, &row.lat, &row.lng); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tier, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", tier, err)
	}
	return out, nil
}

// loadRoles returns top-level roles keyed by work group and reporting roles
// keyed by manager role
func (r *PostgresHierarchyRepository) loadRoles(ctx context.Context, companyID int64) (map[int64][]models.Role, map[int64][]models.Role, error) {
	query := fmt.Sprintf(`
		SELECT r.id, r.work_group_id, r.shared_role_id, COALESCE(sr.name, ''),
		       COALESCE(r.level, ''), r.order_index, r.reports_to_role_id
		FROM %s r
		LEFT JOIN %s sr ON sr.id = r.shared_role_id
		WHERE r.company_id = $1
		ORDER BY r.order_index, r.id
	`, r.tables.Roles, r.tables.SharedRoles)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, companyID)
	if err != nil {
		return nil, nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	managers := make(map[int64][]models.Role)
	reports := make(map[int64][]models.Role)
	for rows.Next() {
		var role models.Role
		var workGroupID int64
		if err := rows.Scan(
			&role.ID,
			&workGroupID,
			&role.SharedRoleID,
			&role.Name,
			&role.Level,
			&role.OrderIndex,
			&role.ReportsToRoleID,
		); err != nil {
			return nil, nil, fmt.Errorf("scan role: %w", err)
		}

		if role.ReportsToRoleID != nil {
			reports[*role.ReportsToRoleID] = append(reports[*role.ReportsToRoleID], role)
			continue
		}
		managers[workGroupID] = append(managers[workGroupID], role)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate roles: %w", err)
	}
	return managers, reports, nil
}

// ApplyReorder writes each record's order_index and optional new parent.
// Both the item and its new parent must belong to the company.
func (r *PostgresHierarchyRepository) ApplyReorder(ctx context.Context, companyID int64, records []models.ReorderRecord) error {
	executor := GetExecutor(ctx, r.pool)
	now := time.Now()

	for _, rec := range records {
		table, ok := r.tables.ForTier(rec.Type)
		if !ok || rec.Type == models.EntityCompany {
			return &domain.ValidationError{Message: fmt.Sprintf("cannot reorder items of type %q", rec.Type)}
		}

		var err error
		switch {
		case rec.ParentID == nil:
			err = r.updateOrder(ctx, executor, table, companyID, rec, now)
		case rec.Type == models.EntityRole:
			err = r.moveRole(ctx, executor, companyID, rec, now)
		default:
			err = r.moveItem(ctx, executor, table, companyID, rec, now)
		}
		if err != nil {
			return err
		}
	}

	r.logger.Debug("reorder applied", "company_id", companyID, "records", len(records))
	return nil
}

func (r *PostgresHierarchyRepository) updateOrder(ctx context.Context, executor repositories.DBTX, table string, companyID int64, rec models.ReorderRecord, now time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET order_index = $1, updated_at = $2
		WHERE id = $3 AND company_id = $4
	`, table)

	result, err := executor.Exec(ctx, query, rec.OrderIndex, now, rec.ID, companyID)
	if err != nil {
		return fmt.Errorf("reorder %s %d: %w", rec.Type, rec.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %d: %w", rec.Type, rec.ID, domain.ErrNotFound)
	}
	return nil
}

// moveItem reparents a non-role item, checking the parent tier and tenant
func (r *PostgresHierarchyRepository) moveItem(ctx context.Context, executor repositories.DBTX, table string, companyID int64, rec models.ReorderRecord, now time.Time) error {
	parentType := r.parentType(rec)
	if !r.tiers.AllowsParent(rec.Type, parentType) {
		return &domain.ValidationError{Message: fmt.Sprintf("%s cannot be placed under %s", rec.Type, parentType)}
	}
	parentTable, _ := r.tables.ForTier(parentType)

	// Business units hang off the company itself, which has no company_id
	parentScope := "company_id = $5"
	if parentType == models.EntityCompany {
		parentScope = "id = $5"
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET order_index = $1, %s = $2, updated_at = $3
		WHERE id = $4 AND company_id = $5
		  AND EXISTS (SELECT 1 FROM %s WHERE id = $2 AND %s)
	`, table, parentColumns[rec.Type], parentTable, parentScope)

	result, err := executor.Exec(ctx, query, rec.OrderIndex, *rec.ParentID, now, rec.ID, companyID)
	if err != nil {
		return fmt.Errorf("move %s %d: %w", rec.Type, rec.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %d under %s %d: %w", rec.Type, rec.ID, parentType, *rec.ParentID, domain.ErrNotFound)
	}
	return nil
}

// moveRole reparents a role. Under a work group it becomes a top-level role;
// under another role it becomes a reporting role in that role's work group.
// Its own reporting roles follow it to the new work group.
func (r *PostgresHierarchyRepository) moveRole(ctx context.Context, executor repositories.DBTX, companyID int64, rec models.ReorderRecord, now time.Time) error {
	parentType := r.parentType(rec)

	var query string
	switch parentType {
	case models.EntityWorkGroup:
		query = fmt.Sprintf(`
			UPDATE %s
			SET order_index = $1, work_group_id = $2, reports_to_role_id = NULL, updated_at = $3
			WHERE id = $4 AND company_id = $5
			  AND EXISTS (SELECT 1 FROM %s WHERE id = $2 AND company_id = $5)
		`, r.tables.Roles, r.tables.WorkGroups)
	case models.EntityRole:
		query = fmt.Sprintf(`
			UPDATE %[1]s
			SET order_index = $1,
			    reports_to_role_id = $2,
			    work_group_id = (SELECT work_group_id FROM %[1]s WHERE id = $2 AND company_id = $5),
			    updated_at = $3
			WHERE id = $4 AND company_id = $5
			  AND EXISTS (SELECT 1 FROM %[1]s WHERE id = $2 AND company_id = $5 AND reports_to_role_id IS NULL)
		`, r.tables.Roles)
	default:
		return &domain.ValidationError{Message: fmt.Sprintf("role cannot be placed under %s", parentType)}
	}

	result, err := executor.Exec(ctx, query, rec.OrderIndex, *rec.ParentID, now, rec.ID, companyID)
	if err != nil {
		return fmt.Errorf("move role %d: %w", rec.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("role %d under %s %d: %w", rec.ID, parentType, *rec.ParentID, domain.ErrNotFound)
	}

	followers := fmt.Sprintf(`
		UPDATE %[1]s
		SET work_group_id = (SELECT work_group_id FROM %[1]s WHERE id = $1), updated_at = $2
		WHERE reports_to_role_id = $1 AND company_id = $3
	`, r.tables.Roles)
	if _, err := executor.Exec(ctx, followers, rec.ID, now, companyID); err != nil {
		return fmt.Errorf("move reporting roles of %d: %w", rec.ID, err)
	}
	return nil
}

// parentType falls back to the tier's primary parent when the record omits it
func (r *PostgresHierarchyRepository) parentType(rec models.ReorderRecord) models.EntityType {
	if rec.ParentType != nil {
		return *rec.ParentType
	}
	if parents := r.tiers.Parents(rec.Type); len(parents) > 0 {
		return parents[0]
	}
	return ""
}

// CreateCompany inserts a whole hierarchy inside the caller's transaction
func (r *PostgresHierarchyRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	executor := GetExecutor(ctx, r.pool)
	now := time.Now()

	query := fmt.Sprintf(`
		INSERT INTO %s (name, code, description, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Companies)
	if err := executor.QueryRow(ctx, query, company.Name, company.Code, company.Description, now).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}

	ins := &inserter{repo: r, executor: executor, companyID: company.ID, now: now, sharedRoles: map[string]int64{}}
	for i := range company.BusinessUnits {
		bu := &company.BusinessUnits[i]
		bu.OrderIndex = i
		if err := ins.insert(ctx, models.EntityBusinessUnit, company.ID, &bu.ID, bu.Name, bu.Code, bu.Description, i, nil, nil); err != nil {
			return err
		}
		for j := range bu.Regions {
			if err := ins.region(ctx, bu.ID, j, &bu.Regions[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// inserter carries the shared state of one CreateCompany call
type inserter struct {
	repo        *PostgresHierarchyRepository
	executor    repositories.DBTX
	companyID   int64
	now         time.Time
	sharedRoles map[string]int64
}

func (in *inserter) insert(ctx context.Context, tier models.EntityType, parentID int64, id *int64, name, code, descr string, order int, lat, lng *float64) error {
	table, _ := in.repo.tables.ForTier(tier)
	query := fmt.Sprintf(`
		INSERT INTO %s (company_id, %s, name, code, description, order_index, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $7)
		RETURNING id
	`, table, parentColumns[tier])
	args := []interface{}{in.companyID, parentID, name, code, descr, order, in.now}

	if tier == models.EntitySite {
		query = fmt.Sprintf(`
			INSERT INTO %s (company_id, region_id, name, code, description, order_index, created_at, updated_at, lat, lng)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $7, $8, $9)
			RETURNING id
		`, table)
		args = append(args, lat, lng)
	}

	if err := in.executor.QueryRow(ctx, query, args...).Scan(id); err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("%s %q already exists", tier, name),
				ResourceType: string(tier),
			}
		}
		return fmt.Errorf("insert %s %q: %w", tier, name, err)
	}
	return nil
}

func (in *inserter) region(ctx context.Context, buID int64, order int, region *models.Region) error {
	region.OrderIndex = order
	if err := in.insert(ctx, models.EntityRegion, buID, &region.ID, region.Name, region.Code, region.Description, order, nil, nil); err != nil {
		return err
	}
	for i := range region.Sites {
		site := &region.Sites[i]
		site.OrderIndex = i
		if err := in.insert(ctx, models.EntitySite, region.ID, &site.ID, site.Name, site.Code, site.Description, i, site.Lat, site.Lng); err != nil {
			return err
		}
		for j := range site.AssetGroups {
			ag := &site.AssetGroups[j]
			ag.OrderIndex = j
			if err := in.insert(ctx, models.EntityAssetGroup, site.ID, &ag.ID, ag.Name, ag.Code, ag.Description, j, nil, nil); err != nil {
				return err
			}
			for k := range ag.WorkGroups {
				wg := &ag.WorkGroups[k]
				wg.OrderIndex = k
				if err := in.insert(ctx, models.EntityWorkGroup, ag.ID, &wg.ID, wg.Name, wg.Code, wg.Description, k, nil, nil); err != nil {
					return err
				}
				if err := in.roles(ctx, wg.ID, nil, wg.Roles); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (in *inserter) roles(ctx context.Context, workGroupID int64, managerID *int64, roles []models.Role) error {
	for i := range roles {
		role := &roles[i]
		role.OrderIndex = i
		role.ReportsToRoleID = managerID

		sharedID, err := in.sharedRole(ctx, role.Name)
		if err != nil {
			return err
		}
		role.SharedRoleID = &sharedID

		query := fmt.Sprintf(`
			INSERT INTO %s (company_id, work_group_id, shared_role_id, level, order_index, reports_to_role_id, created_at, updated_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $7)
			RETURNING id
		`, in.repo.tables.Roles)
		if err := in.executor.QueryRow(ctx, query,
			in.companyID, workGroupID, sharedID, role.Level, i, managerID, in.now,
		).Scan(&role.ID); err != nil {
			return fmt.Errorf("insert role %q: %w", role.Name, err)
		}

		if managerID == nil {
			id := role.ID
			if err := in.roles(ctx, workGroupID, &id, role.ReportingRoles); err != nil {
				return err
			}
		}
	}
	return nil
}

// sharedRole finds or creates the shared role with the given name
func (in *inserter) sharedRole(ctx context.Context, name string) (int64, error) {
	if id, ok := in.sharedRoles[name]; ok {
		return id, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, created_at)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, in.repo.tables.SharedRoles)

	var id int64
	if err := in.executor.QueryRow(ctx, query, name, in.now).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert shared role %q: %w", name, err)
	}
	in.sharedRoles[name] = id
	return id, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
